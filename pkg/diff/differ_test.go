package diff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

// buildStudy creates a study with one series holding n instances, each
// carrying the given RepetitionTime value
func buildStudy(uid string, n int, repetitionTime string) *Study {
	se := newSeries(uid+".se", 1, "MR", "t1")
	for i := 1; i <= n; i++ {
		attrs := dicom.NewDataset()
		attrs.Put(tag.Modality, vr.CS, "MR")
		attrs.Put(tag.RepetitionTime, vr.DS, repetitionTime)
		se.Instances = append(se.Instances, &Instance{
			SOPInstanceUID: fmt.Sprintf("%s.%d", uid, i),
			Number:         i,
			PatientID:      "p1",
			StudyUID:       uid,
			SeriesUID:      se.UID,
			Modality:       "MR",
			Attrs:          attrs,
		})
	}
	return newStudy(uid, se)
}

func TestCompareStudies_EndToEnd(t *testing.T) {
	ref := buildStudy("ref", 3, "800")
	test := buildStudy("test", 3, "750")

	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t})
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	require.Len(t, result.Series, 1)
	require.Len(t, result.Series[0].Instances, 3)

	summary := result.Summary()
	assert.Equal(t, 3, summary.Differ) // RepetitionTime per instance
	assert.Equal(t, 3, summary.Equal)  // Modality per instance
	assert.True(t, summary.Changed())
}

func TestCompareStudies_OneInstancePerSeries(t *testing.T) {
	ref := buildStudy("ref", 5, "800")
	test := buildStudy("test", 5, "800")

	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t}, WithOneInstancePerSeries())
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	require.Len(t, result.Series, 1)
	assert.Len(t, result.Series[0].Instances, 1)
}

func TestCompareStudies_Idempotent(t *testing.T) {
	ref := buildStudy("ref", 2, "800")
	test := buildStudy("test", 2, "750")

	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t})
	first, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	second, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCompareStudies_UnmatchedSeriesStaysInReport(t *testing.T) {
	ref := buildStudy("ref", 1, "800")
	test := newStudy("test", newSeries("test.se", 1, "CT", "chest"))

	resolver := &fakeResolver{
		t:      t,
		series: func(*Series, []*Series) (*Series, error) { return nil, nil },
	}
	d := NewComparer(mustFilter(t, FilterConfig{}), resolver)
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	require.Len(t, result.Series, 1)
	assert.Equal(t, Unmatched, result.Series[0].Match.Reason)
	assert.Empty(t, result.Series[0].Instances)
}

func TestCompareStudies_NoSeries(t *testing.T) {
	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t})
	_, err := d.CompareStudies(newStudy("ref"), newStudy("test"))

	var noSeries *NoSeriesError
	require.ErrorAs(t, err, &noSeries)
}

func TestPairInstance_ByNumber(t *testing.T) {
	ref := buildStudy("ref", 3, "800")
	test := buildStudy("test", 3, "800")
	// shuffle the test side; pairing goes by InstanceNumber, not position
	se := test.Series[0]
	se.Instances[0], se.Instances[2] = se.Instances[2], se.Instances[0]

	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t})
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	for _, id := range result.Series[0].Instances {
		require.NotNil(t, id.Test)
		assert.Equal(t, id.Ref.Number, id.Test.Number)
	}
}

func TestPairInstance_SingleCandidateFallback(t *testing.T) {
	ref := buildStudy("ref", 1, "800")
	test := buildStudy("test", 1, "800")
	test.Series[0].Instances[0].Number = 99 // no number match possible

	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t})
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	require.NotNil(t, result.Series[0].Instances[0].Test)
}

func TestPairInstance_NoMatchAmongMany(t *testing.T) {
	ref := buildStudy("ref", 1, "800")
	test := buildStudy("test", 2, "800")
	test.Series[0].Instances[0].Number = 98
	test.Series[0].Instances[1].Number = 99

	d := NewComparer(mustFilter(t, FilterConfig{}), &fakeResolver{t: t})
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)

	id := result.Series[0].Instances[0]
	assert.Nil(t, id.Test)
	assert.Empty(t, id.Records)
}

func TestPairInstance_DuplicateNumberDelegates(t *testing.T) {
	ref := buildStudy("ref", 1, "800")
	test := buildStudy("test", 2, "800")
	test.Series[0].Instances[1].Number = 1 // duplicate of the first

	resolver := &fakeResolver{
		t: t,
		instance: func(ref *Instance, candidates []*Instance) (*Instance, error) {
			require.Len(t, candidates, 2)
			return candidates[1], nil
		},
	}
	d := NewComparer(mustFilter(t, FilterConfig{}), resolver)
	result, err := d.CompareStudies(ref, test)
	require.NoError(t, err)
	assert.Equal(t, "test.2", result.Series[0].Instances[0].Test.SOPInstanceUID)
}

func TestSummary_CountsNestedItems(t *testing.T) {
	nested := DiffRecord{
		Tag:    tag.ReferencedImageSequence,
		Status: Differ,
		Items: []ItemDiff{{
			Index: 0,
			Records: []DiffRecord{
				{Tag: tag.ReferencedSOPInstanceUID, Status: Differ},
				{Tag: tag.InstanceNumber, Status: Equal},
			},
		}},
	}
	id := InstanceDiff{Records: []DiffRecord{nested}}

	s := id.Summary()
	assert.Equal(t, 2, s.Differ)
	assert.Equal(t, 1, s.Equal)
}
