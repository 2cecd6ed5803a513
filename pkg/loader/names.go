package loader

import "regexp"

// Patterns for simplifying names lifted into hierarchy labels: spaces and
// carets fold to underscores, runs collapse, and anything outside the safe
// filename charset is stripped.
var (
	underscore = regexp.MustCompile(`[\s/^]`)
	leading    = regexp.MustCompile(`^_+`)
	trailing   = regexp.MustCompile(`_+$`)
	repeated   = regexp.MustCompile(`_{2,}`)
	unsafe     = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// SimplifyName cleans a person-name style value: underscores for
// spaces/carets, no leading/trailing/repeated underscores, safe charset.
func SimplifyName(name string) string {
	s := underscore.ReplaceAllString(name, "_")
	s = leading.ReplaceAllString(s, "")
	s = trailing.ReplaceAllString(s, "")
	s = repeated.ReplaceAllString(s, "_")
	return unsafe.ReplaceAllString(s, "")
}

// SimplifyDescription cleans a study/series description: underscores for
// spaces/carets and a safe charset, keeping the shape otherwise.
func SimplifyDescription(desc string) string {
	s := underscore.ReplaceAllString(desc, "_")
	return unsafe.ReplaceAllString(s, "")
}
