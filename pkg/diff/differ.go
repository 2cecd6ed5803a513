package diff

import (
	"fmt"
	"log/slog"
)

// Comparer runs one study-pair comparison end to end: series matching,
// instance pairing, attribute comparison and aggregation.
type Comparer struct {
	filter      *Filter
	resolver    Resolver
	matcher     *Matcher
	oneInstance bool
	log         *slog.Logger
}

// ComparerOption configures a Comparer
type ComparerOption func(*Comparer)

// WithOneInstancePerSeries compares only the first instance of each matched
// series; the remainder are excluded from the diff entirely.
func WithOneInstancePerSeries() ComparerOption {
	return func(d *Comparer) { d.oneInstance = true }
}

// WithMatcherOptions forwards options to the series matcher
func WithMatcherOptions(opts ...MatcherOption) ComparerOption {
	return func(d *Comparer) { d.matcher = NewMatcher(d.resolver, opts...) }
}

// WithLogger sets the progress logger
func WithLogger(l *slog.Logger) ComparerOption {
	return func(d *Comparer) { d.log = l }
}

// NewComparer creates a Comparer. The filter and resolver are read-only for
// the lifetime of every run.
func NewComparer(filter *Filter, resolver Resolver, opts ...ComparerOption) *Comparer {
	d := &Comparer{
		filter:   filter,
		resolver: resolver,
		matcher:  NewMatcher(resolver),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CompareStudies diffs a reference study against a test study. Errors are
// fatal for this study pair only; no state survives into other runs.
func (d *Comparer) CompareStudies(ref, test *Study) (*StudyDiff, error) {
	matches, err := d.matcher.Match(ref, test)
	if err != nil {
		return nil, err
	}

	out := &StudyDiff{Ref: ref, Test: test}
	for _, match := range matches {
		sd, err := d.compareSeries(match)
		if err != nil {
			return nil, err
		}
		out.Series = append(out.Series, sd)
	}
	return out, nil
}

func (d *Comparer) compareSeries(match SeriesMatch) (SeriesDiff, error) {
	sd := SeriesDiff{Match: match}
	if match.Test == nil {
		d.log.Info("series unmatched", "series", match.Ref.Label())
		return sd, nil
	}
	d.log.Info("comparing series",
		"reference", match.Ref.Label(),
		"test", match.Test.Label(),
		"match", match.Reason.String(),
	)

	refInstances := match.Ref.Instances
	if d.oneInstance && len(refInstances) > 1 {
		refInstances = refInstances[:1]
	}

	for _, refInst := range refInstances {
		testInst, err := d.pairInstance(refInst, match.Test)
		if err != nil {
			return sd, err
		}
		id := InstanceDiff{Ref: refInst, Test: testInst}
		if testInst != nil {
			id.Records = Compare(refInst.Attrs, testInst.Attrs, d.filter)
		} else {
			d.log.Warn("no test instance for comparison",
				"series", match.Ref.Label(), "instance", refInst.SOPInstanceUID)
		}
		sd.Instances = append(sd.Instances, id)
	}
	return sd, nil
}

// pairInstance finds the test instance for a reference instance by
// InstanceNumber. A single candidate series instance stands in when no
// number matches; several number matches go to the resolver.
func (d *Comparer) pairInstance(refInst *Instance, test *Series) (*Instance, error) {
	var matched []*Instance
	for _, t := range test.Instances {
		if t.Number == refInst.Number {
			matched = append(matched, t)
		}
	}

	switch len(matched) {
	case 0:
		if len(test.Instances) == 1 {
			return test.Instances[0], nil
		}
		return nil, nil
	case 1:
		return matched[0], nil
	default:
		chosen, err := d.resolver.ResolveInstance(refInst, matched)
		if err != nil {
			return nil, fmt.Errorf("resolving instance %s: %w", refInst.SOPInstanceUID, err)
		}
		return chosen, nil
	}
}
