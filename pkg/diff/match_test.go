package diff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver scripts manual pairing decisions. A nil func fails the test
// when the matcher consults it unexpectedly.
type fakeResolver struct {
	t        *testing.T
	series   func(ref *Series, candidates []*Series) (*Series, error)
	instance func(ref *Instance, candidates []*Instance) (*Instance, error)
}

func (f *fakeResolver) ResolveSeries(ref *Series, candidates []*Series) (*Series, error) {
	if f.series == nil {
		f.t.Fatalf("unexpected ResolveSeries for %s", ref.Label())
	}
	return f.series(ref, candidates)
}

func (f *fakeResolver) ResolveInstance(ref *Instance, candidates []*Instance) (*Instance, error) {
	if f.instance == nil {
		f.t.Fatalf("unexpected ResolveInstance for %s", ref.SOPInstanceUID)
	}
	return f.instance(ref, candidates)
}

func newSeries(uid string, number int, modality, description string, instances ...*Instance) *Series {
	return &Series{
		UID:         uid,
		Number:      number,
		Modality:    modality,
		Description: description,
		Instances:   instances,
	}
}

func newStudy(uid string, series ...*Series) *Study {
	return &Study{UID: uid, Series: series}
}

func TestDefaultScorer(t *testing.T) {
	mrT1 := newSeries("1", 1, "MR", "t1")
	assert.Equal(t, ScoreExact, DefaultScorer(mrT1, newSeries("2", 1, "MR", "t1")))
	assert.Equal(t, ScoreNone, DefaultScorer(mrT1, newSeries("2", 1, "MR", "t2")))
	assert.Equal(t, ScoreNone, DefaultScorer(mrT1, newSeries("2", 1, "CT", "t1")))

	// modality-only holds when both descriptions are empty, never one-sided
	mrBlank := newSeries("1", 1, "MR", "")
	assert.Equal(t, ScoreModality, DefaultScorer(mrBlank, newSeries("2", 1, "MR", "")))
	assert.Equal(t, ScoreNone, DefaultScorer(mrBlank, newSeries("2", 1, "MR", "t1")))
	assert.Equal(t, ScoreNone, DefaultScorer(mrT1, newSeries("2", 1, "MR", "")))
}

func TestMatch_ExactDescriptionWins(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 1, "MR", "t1"))
	test := newStudy("test", newSeries("x1", 1, "MR", "t2"), newSeries("x2", 2, "MR", "t1"))

	m := NewMatcher(&fakeResolver{t: t}) // resolver must stay idle
	matches, err := m.Match(ref, test)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "x2", matches[0].Test.UID)
	assert.Equal(t, MatchedExact, matches[0].Reason)
}

func TestMatch_AmbiguousTieDelegates(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 1, "MR", "t1"))
	dup1 := newSeries("x1", 1, "MR", "t1")
	dup2 := newSeries("x2", 2, "MR", "t1")
	test := newStudy("test", dup1, dup2)

	resolver := &fakeResolver{
		t: t,
		series: func(ref *Series, candidates []*Series) (*Series, error) {
			// only the tied candidates are offered
			require.Len(t, candidates, 2)
			return candidates[1], nil
		},
	}
	matches, err := NewMatcher(resolver).Match(ref, test)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Same(t, dup2, matches[0].Test)
	assert.Equal(t, MatchedManual, matches[0].Reason)
}

func TestMatch_BelowThresholdOffersWholePool(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 1, "MR", "t1"))
	ct := newSeries("x1", 1, "CT", "chest")
	mrT2 := newSeries("x2", 2, "MR", "t2")
	test := newStudy("test", ct, mrT2)

	resolver := &fakeResolver{
		t: t,
		series: func(ref *Series, candidates []*Series) (*Series, error) {
			require.Len(t, candidates, 2)
			return nil, nil // decline
		},
	}
	matches, err := NewMatcher(resolver).Match(ref, test)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Nil(t, matches[0].Test)
	assert.Equal(t, Unmatched, matches[0].Reason)
}

func TestMatch_OneToOneConsumption(t *testing.T) {
	// two identical reference series but only one matching test series:
	// the second reference must not reuse the consumed candidate
	ref := newStudy("ref",
		newSeries("r1", 1, "MR", "t1"),
		newSeries("r2", 2, "MR", "t1"),
	)
	only := newSeries("x1", 1, "MR", "t1")
	test := newStudy("test", only)

	var offered []*Series
	resolver := &fakeResolver{
		t: t,
		series: func(ref *Series, candidates []*Series) (*Series, error) {
			offered = candidates
			return nil, nil
		},
	}
	matches, err := NewMatcher(resolver).Match(ref, test)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Same(t, only, matches[0].Test)
	assert.Nil(t, matches[1].Test)
	assert.Empty(t, offered, "consumed series must leave the candidate pool")
}

func TestMatch_ModalityOnlyTier(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 1, "MR", ""))
	test := newStudy("test", newSeries("x1", 1, "MR", ""))

	matches, err := NewMatcher(&fakeResolver{t: t}).Match(ref, test)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchedModality, matches[0].Reason)
}

func TestMatch_EmptyReferenceStudy(t *testing.T) {
	_, err := NewMatcher(&fakeResolver{t: t}).Match(newStudy("ref"), newStudy("test"))

	var noSeries *NoSeriesError
	require.ErrorAs(t, err, &noSeries)
	assert.Equal(t, "ref", noSeries.StudyUID)
}

func TestMatch_ResolverErrorAborts(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 1, "MR", "t1"))
	test := newStudy("test", newSeries("x1", 1, "CT", "chest"))

	boom := errors.New("terminal gone")
	resolver := &fakeResolver{
		t:      t,
		series: func(*Series, []*Series) (*Series, error) { return nil, boom },
	}
	_, err := NewMatcher(resolver).Match(ref, test)
	require.ErrorIs(t, err, boom)
}

func TestMatch_ResolverMustChooseFromPool(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 1, "MR", "t1"))
	test := newStudy("test", newSeries("x1", 1, "CT", "chest"))

	rogue := newSeries("not-in-pool", 9, "MR", "t1")
	resolver := &fakeResolver{
		t:      t,
		series: func(*Series, []*Series) (*Series, error) { return rogue, nil },
	}
	_, err := NewMatcher(resolver).Match(ref, test)
	require.Error(t, err)
}

func TestMatch_CustomScorerAndThreshold(t *testing.T) {
	ref := newStudy("ref", newSeries("r1", 7, "MR", "t1"))
	test := newStudy("test", newSeries("x1", 7, "CT", "other"))

	bySeriesNumber := func(ref, candidate *Series) int {
		if ref.Number == candidate.Number {
			return 5
		}
		return 0
	}
	m := NewMatcher(&fakeResolver{t: t}, WithScorer(bySeriesNumber), WithThreshold(5))
	matches, err := m.Match(ref, test)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "x1", matches[0].Test.UID)
}
