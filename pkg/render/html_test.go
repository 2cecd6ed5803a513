package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
	"github.com/jpfielding/dcmdiff.go/pkg/diff"
)

func sampleStudyDiff() *diff.StudyDiff {
	refSeries := &diff.Series{UID: "r.se", Number: 1, Modality: "MR", Description: "t1"}
	testSeries := &diff.Series{UID: "t.se", Number: 1, Modality: "MR", Description: "t1"}
	refInst := &diff.Instance{SOPInstanceUID: "1.2.3.1", Number: 1}
	testInst := &diff.Instance{SOPInstanceUID: "1.2.4.1", Number: 1}

	records := []diff.DiffRecord{
		{
			Tag: tag.Modality, VR: vr.CS, Status: diff.Equal,
			Ref:  &dicom.Element{Tag: tag.Modality, VR: vr.CS, Value: "MR"},
			Test: &dicom.Element{Tag: tag.Modality, VR: vr.CS, Value: "MR"},
		},
		{
			Tag: tag.RepetitionTime, VR: vr.DS, Status: diff.Differ,
			Ref:  &dicom.Element{Tag: tag.RepetitionTime, VR: vr.DS, Value: "800"},
			Test: &dicom.Element{Tag: tag.RepetitionTime, VR: vr.DS, Value: "750"},
		},
	}

	return &diff.StudyDiff{
		Ref:  &diff.Study{UID: "r.st", DateTime: "20240105.142530", Description: "head"},
		Test: &diff.Study{UID: "t.st", DateTime: "20240106.091500", Description: "head"},
		Series: []diff.SeriesDiff{{
			Match: diff.SeriesMatch{Ref: refSeries, Test: testSeries, Reason: diff.MatchedExact},
			Instances: []diff.InstanceDiff{{
				Ref: refInst, Test: testInst, Records: records,
			}},
		}},
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{OutDir: dir}, tag.NewDictionary())

	index, err := r.Render(sampleStudyDiff())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "study_index.html"), index)

	idx, err := os.ReadFile(index)
	require.NoError(t, err)
	assert.Contains(t, string(idx), "0001-MR-t1.html")
	assert.Contains(t, string(idx), "1 differ")

	series, err := os.ReadFile(filepath.Join(dir, "0001-MR-t1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(series), "1.2.3.1.html")
	assert.Contains(t, string(series), "exact match")

	inst, err := os.ReadFile(filepath.Join(dir, "1.2.3.1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(inst), "RepetitionTime")
	assert.Contains(t, string(inst), "800")
	assert.Contains(t, string(inst), "750")
	assert.Contains(t, string(inst), `class="differ"`)
	assert.Contains(t, string(inst), "(0018,0080)")
}

func TestRender_UnmatchedSeries(t *testing.T) {
	dir := t.TempDir()
	sd := &diff.StudyDiff{
		Ref:  &diff.Study{UID: "r.st"},
		Test: &diff.Study{UID: "t.st"},
		Series: []diff.SeriesDiff{{
			Match: diff.SeriesMatch{
				Ref:    &diff.Series{UID: "r.se", Number: 2, Modality: "CT", Description: "chest"},
				Reason: diff.Unmatched,
			},
		}},
	}

	_, err := New(Config{OutDir: dir}, tag.NewDictionary()).Render(sd)
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(dir, "0002-CT-chest.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "No series from test study")
}

func TestRows_NestedItems(t *testing.T) {
	r := New(Config{}, tag.NewDictionary())
	records := []diff.DiffRecord{{
		Tag: tag.ReferencedImageSequence, VR: vr.SQ, Status: diff.Differ,
		Items: []diff.ItemDiff{{
			Index: 0,
			Records: []diff.DiffRecord{{
				Tag: tag.ReferencedSOPInstanceUID, VR: vr.UI, Status: diff.Differ,
				Ref:  &dicom.Element{Tag: tag.ReferencedSOPInstanceUID, VR: vr.UI, Value: "1.2.3"},
				Test: &dicom.Element{Tag: tag.ReferencedSOPInstanceUID, VR: vr.UI, Value: "1.2.4"},
			}},
		}},
	}}

	rows := r.rows(records, 0)
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].Depth)
	assert.True(t, rows[1].Item)
	assert.Equal(t, "item 1", rows[1].Tag)
	assert.Equal(t, 1, rows[2].Depth)
	assert.Equal(t, "    ", rows[2].Indent())
}

func TestContextRows(t *testing.T) {
	rows := []row{
		{Tag: "a"},
		{Tag: "b"},
		{Tag: "c", Changed: true},
		{Tag: "d"},
		{Tag: "e"},
		{Tag: "f"},
	}

	kept := contextRows(rows, 1)
	require.Len(t, kept, 3)
	assert.Equal(t, "b", kept[0].Tag)
	assert.Equal(t, "c", kept[1].Tag)
	assert.Equal(t, "d", kept[2].Tag)

	// wide enough context keeps everything
	assert.Len(t, contextRows(rows, 10), 6)

	// no changes means an empty context view
	assert.Empty(t, contextRows(rows[:2], 1))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "800", formatValue(&dicom.Element{Value: "800"}))
	assert.Equal(t, "sequence (2 items)", formatValue(&dicom.Element{Value: []*dicom.Dataset{nil, nil}}))
	assert.Equal(t, "binary (64 bytes)", formatValue(&dicom.Element{Value: make([]byte, 64)}))
}
