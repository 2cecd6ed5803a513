package diff

import (
	"fmt"
)

// Match scores. The default scheme is two-tier: an exact match on
// (Modality, SeriesDescription) outranks a modality-only match where both
// descriptions are empty. Anything below ScoreModality is never accepted
// automatically.
const (
	ScoreNone     = 0
	ScoreModality = 1
	ScoreExact    = 2
)

// Scorer rates a candidate test series against a reference series.
// Overridable for site-specific matching policies.
type Scorer func(ref, candidate *Series) int

// DefaultScorer implements the two-tier scheme
func DefaultScorer(ref, candidate *Series) int {
	if ref.Modality != candidate.Modality {
		return ScoreNone
	}
	if ref.Description == candidate.Description && ref.Description != "" {
		return ScoreExact
	}
	if ref.Description == "" && candidate.Description == "" {
		return ScoreModality
	}
	return ScoreNone
}

// MatchReason records how a pairing was decided
type MatchReason int

const (
	// MatchedExact means modality and description matched exactly
	MatchedExact MatchReason = iota
	// MatchedModality means modality matched with both descriptions empty
	MatchedModality
	// MatchedManual means the resolver chose the pairing
	MatchedManual
	// Unmatched means the resolver explicitly declined a pairing
	Unmatched
)

func (r MatchReason) String() string {
	switch r {
	case MatchedExact:
		return "exact"
	case MatchedModality:
		return "modality"
	case MatchedManual:
		return "manual"
	case Unmatched:
		return "unmatched"
	default:
		return fmt.Sprintf("MatchReason(%d)", int(r))
	}
}

// SeriesMatch pairs one reference series with at most one test series.
// Test is nil when the pairing was explicitly declined.
type SeriesMatch struct {
	Ref    *Series
	Test   *Series
	Reason MatchReason
}

// Resolver supplies the manual decisions the matcher cannot make on its
// own: ambiguous or unmatched series and multiply-matched instances.
// A nil result is an explicit "no match". An error aborts the study run.
// Implementations are interactive; tests substitute scripted fakes.
type Resolver interface {
	ResolveSeries(ref *Series, candidates []*Series) (*Series, error)
	ResolveInstance(ref *Instance, candidates []*Instance) (*Instance, error)
}

// Matcher pairs the series of a reference study with those of a test study
type Matcher struct {
	resolver  Resolver
	scorer    Scorer
	threshold int
}

// MatcherOption configures a Matcher
type MatcherOption func(*Matcher)

// WithScorer replaces the default two-tier scorer
func WithScorer(s Scorer) MatcherOption {
	return func(m *Matcher) { m.scorer = s }
}

// WithThreshold sets the minimum score accepted automatically
func WithThreshold(n int) MatcherOption {
	return func(m *Matcher) { m.threshold = n }
}

// NewMatcher creates a Matcher delegating undecidable pairings to resolver
func NewMatcher(resolver Resolver, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		resolver:  resolver,
		scorer:    DefaultScorer,
		threshold: ScoreModality,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match produces one SeriesMatch per reference series, in the study's
// series order. Consumed test series leave the candidate pool, so the
// result is one-to-one: no test series is matched twice. Reference series
// the scorer cannot decide (no candidate at or above the threshold, or a
// tie for best) go to the resolver, never silently skipped.
func (m *Matcher) Match(ref, test *Study) ([]SeriesMatch, error) {
	if len(ref.Series) == 0 {
		return nil, &NoSeriesError{StudyUID: ref.UID}
	}

	pool := make([]*Series, len(test.Series))
	copy(pool, test.Series)

	matches := make([]SeriesMatch, 0, len(ref.Series))
	for _, r := range ref.Series {
		best, tied := m.bestCandidates(r, pool)

		if len(tied) == 1 && best >= m.threshold {
			chosen := tied[0]
			reason := MatchedModality
			if best >= ScoreExact {
				reason = MatchedExact
			}
			matches = append(matches, SeriesMatch{Ref: r, Test: chosen, Reason: reason})
			pool = remove(pool, chosen)
			continue
		}

		// Ambiguous ties offer only the tied candidates; everything else
		// offers the whole remaining pool.
		candidates := pool
		if len(tied) > 1 && best >= m.threshold {
			candidates = tied
		}
		chosen, err := m.resolver.ResolveSeries(r, candidates)
		if err != nil {
			return nil, fmt.Errorf("resolving series %s: %w", r.Label(), err)
		}
		if chosen == nil {
			matches = append(matches, SeriesMatch{Ref: r, Reason: Unmatched})
			continue
		}
		if !contains(pool, chosen) {
			return nil, fmt.Errorf("resolved series %s is not an available candidate", chosen.Label())
		}
		matches = append(matches, SeriesMatch{Ref: r, Test: chosen, Reason: MatchedManual})
		pool = remove(pool, chosen)
	}

	return matches, nil
}

// bestCandidates returns the best score and every candidate achieving it
func (m *Matcher) bestCandidates(ref *Series, pool []*Series) (int, []*Series) {
	best := ScoreNone
	var tied []*Series
	for _, c := range pool {
		score := m.scorer(ref, c)
		switch {
		case score > best:
			best = score
			tied = []*Series{c}
		case score == best && best > ScoreNone:
			tied = append(tied, c)
		}
	}
	return best, tied
}

func remove(pool []*Series, s *Series) []*Series {
	out := pool[:0]
	for _, c := range pool {
		if c != s {
			out = append(out, c)
		}
	}
	return out
}

func contains(pool []*Series, s *Series) bool {
	for _, c := range pool {
		if c == s {
			return true
		}
	}
	return false
}
