package diff

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

// FilterConfig is the immutable filtering snapshot resolved before a
// comparison run. Keyword tags must already be resolved to canonical
// (group, element) identity; see LoadTagList.
type FilterConfig struct {
	// CompareOnly, when non-empty, is an exclusive allow-list: only listed
	// tags participate and all ignore rules are rejected as conflicting.
	CompareOnly []tag.Tag

	IgnoreTags    []tag.Tag
	IgnoreGroups  []uint16
	IgnoreVRs     []vr.VR
	IgnorePrivate bool // exclude odd group numbers
}

func (c FilterConfig) hasIgnoreRules() bool {
	return len(c.IgnoreTags) > 0 || len(c.IgnoreGroups) > 0 || len(c.IgnoreVRs) > 0 || c.IgnorePrivate
}

// Filter decides whether a tag/VR pair participates in comparison. The
// decision is a priority chain, not a set union: rules are consulted in
// order and the first rule that applies wins.
type Filter struct {
	rules []rule
}

// rule is one link of the priority chain. ok reports whether the rule
// applies to the tag/VR pair; include is its verdict when it does.
type rule interface {
	decide(t tag.Tag, v vr.VR) (include, ok bool)
}

// compareOnlyRule is the exclusive allow-list mode: it always applies
type compareOnlyRule struct{ allow map[tag.Tag]bool }

func (r compareOnlyRule) decide(t tag.Tag, _ vr.VR) (bool, bool) {
	return r.allow[t], true
}

// privateRule excludes odd group numbers
type privateRule struct{}

func (privateRule) decide(t tag.Tag, _ vr.VR) (bool, bool) {
	if t.IsPrivate() {
		return false, true
	}
	return false, false
}

// groupRule excludes whole groups
type groupRule struct{ groups map[uint16]bool }

func (r groupRule) decide(t tag.Tag, _ vr.VR) (bool, bool) {
	if r.groups[t.Group] {
		return false, true
	}
	return false, false
}

// vrRule excludes value representations
type vrRule struct{ vrs map[vr.VR]bool }

func (r vrRule) decide(_ tag.Tag, v vr.VR) (bool, bool) {
	if r.vrs[v] {
		return false, true
	}
	return false, false
}

// tagRule excludes individual tags
type tagRule struct{ tags map[tag.Tag]bool }

func (r tagRule) decide(t tag.Tag, _ vr.VR) (bool, bool) {
	if r.tags[t] {
		return false, true
	}
	return false, false
}

// NewFilter compiles a FilterConfig into its rule chain. A non-empty
// allow-list combined with any ignore rule is a ConfigError: the two modes
// are mutually exclusive.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	if len(cfg.CompareOnly) > 0 {
		if cfg.hasIgnoreRules() {
			return nil, &ConfigError{Reason: "a compare-only tag list cannot be combined with ignore rules"}
		}
		allow := make(map[tag.Tag]bool, len(cfg.CompareOnly))
		for _, t := range cfg.CompareOnly {
			allow[t] = true
		}
		return &Filter{rules: []rule{compareOnlyRule{allow: allow}}}, nil
	}

	var rules []rule
	if cfg.IgnorePrivate {
		rules = append(rules, privateRule{})
	}
	if len(cfg.IgnoreGroups) > 0 {
		groups := make(map[uint16]bool, len(cfg.IgnoreGroups))
		for _, g := range cfg.IgnoreGroups {
			groups[g] = true
		}
		rules = append(rules, groupRule{groups: groups})
	}
	if len(cfg.IgnoreVRs) > 0 {
		vrs := make(map[vr.VR]bool, len(cfg.IgnoreVRs))
		for _, v := range cfg.IgnoreVRs {
			vrs[v] = true
		}
		rules = append(rules, vrRule{vrs: vrs})
	}
	if len(cfg.IgnoreTags) > 0 {
		tags := make(map[tag.Tag]bool, len(cfg.IgnoreTags))
		for _, t := range cfg.IgnoreTags {
			tags[t] = true
		}
		rules = append(rules, tagRule{tags: tags})
	}
	return &Filter{rules: rules}, nil
}

// Participates reports whether a tag/VR pair takes part in comparison.
// Pure function of the compiled configuration.
func (f *Filter) Participates(t tag.Tag, v vr.VR) bool {
	for _, r := range f.rules {
		if include, ok := r.decide(t, v); ok {
			return include
		}
	}
	return true
}

// LoadTagList reads a tag list file: one tag per line, as a keyword
// (RepetitionTime) or combined group/element number (0x00180080). Blank
// lines and #-comments are skipped. Unresolvable entries are collected and
// reported once as a ConfigError, never silently dropped.
func LoadTagList(r io.Reader, dict *tag.Dictionary) ([]tag.Tag, error) {
	var tags []tag.Tag
	var bad []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := dict.Parse(line)
		if err != nil {
			bad = append(bad, line)
			continue
		}
		tags = append(tags, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tag list: %w", err)
	}

	if len(bad) > 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("unresolvable tags: %s", strings.Join(bad, ", "))}
	}
	if len(tags) == 0 {
		return nil, &ConfigError{Reason: "tag list holds no tags"}
	}
	return tags, nil
}
