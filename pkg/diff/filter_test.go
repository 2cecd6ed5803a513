package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

func TestFilter_DefaultIncludesEverything(t *testing.T) {
	f := mustFilter(t, FilterConfig{})
	assert.True(t, f.Participates(tag.RepetitionTime, vr.DS))
	assert.True(t, f.Participates(tag.New(0x0009, 0x0010), vr.LO)) // private
	assert.True(t, f.Participates(tag.PixelData, vr.OW))
}

func TestFilter_IgnorePrivate(t *testing.T) {
	f := mustFilter(t, FilterConfig{IgnorePrivate: true})
	assert.False(t, f.Participates(tag.New(0x0009, 0x0010), vr.LO))
	assert.True(t, f.Participates(tag.RepetitionTime, vr.DS))
}

func TestFilter_IgnoreGroup(t *testing.T) {
	f := mustFilter(t, FilterConfig{IgnoreGroups: []uint16{0x0018}})
	assert.False(t, f.Participates(tag.RepetitionTime, vr.DS))
	assert.False(t, f.Participates(tag.EchoTime, vr.DS))
	assert.True(t, f.Participates(tag.Modality, vr.CS))
}

func TestFilter_IgnoreVR(t *testing.T) {
	f := mustFilter(t, FilterConfig{IgnoreVRs: []vr.VR{vr.SQ, vr.OB}})
	assert.False(t, f.Participates(tag.ReferencedImageSequence, vr.SQ))
	assert.False(t, f.Participates(tag.PixelData, vr.OB))
	assert.True(t, f.Participates(tag.PixelData, vr.OW))
}

func TestFilter_IgnoreTag(t *testing.T) {
	f := mustFilter(t, FilterConfig{IgnoreTags: []tag.Tag{tag.RepetitionTime}})
	assert.False(t, f.Participates(tag.RepetitionTime, vr.DS))
	assert.True(t, f.Participates(tag.EchoTime, vr.DS))
}

func TestFilter_CompareOnlyIsExclusive(t *testing.T) {
	f := mustFilter(t, FilterConfig{CompareOnly: []tag.Tag{tag.RepetitionTime}})
	assert.True(t, f.Participates(tag.RepetitionTime, vr.DS))
	// everything off the list is out, whatever its VR or group
	assert.False(t, f.Participates(tag.Modality, vr.CS))
	assert.False(t, f.Participates(tag.New(0x0009, 0x0010), vr.LO))
}

func TestFilter_CompareOnlyRejectsIgnoreRules(t *testing.T) {
	cases := []FilterConfig{
		{CompareOnly: []tag.Tag{tag.Modality}, IgnorePrivate: true},
		{CompareOnly: []tag.Tag{tag.Modality}, IgnoreTags: []tag.Tag{tag.EchoTime}},
		{CompareOnly: []tag.Tag{tag.Modality}, IgnoreGroups: []uint16{0x0018}},
		{CompareOnly: []tag.Tag{tag.Modality}, IgnoreVRs: []vr.VR{vr.SQ}},
	}
	for _, cfg := range cases {
		_, err := NewFilter(cfg)
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	}
}

func TestFilter_PrecedenceOverlappingRules(t *testing.T) {
	// private beats group beats VR beats tag; a tag matched by an earlier
	// rule never reaches a later one, the verdict stays exclusion either way
	f := mustFilter(t, FilterConfig{
		IgnorePrivate: true,
		IgnoreGroups:  []uint16{0x0009},
		IgnoreTags:    []tag.Tag{tag.New(0x0009, 0x0010)},
	})
	assert.False(t, f.Participates(tag.New(0x0009, 0x0010), vr.LO))
}

func TestLoadTagList(t *testing.T) {
	dict := tag.NewDictionary()
	in := strings.NewReader(`
# acquisition timing
RepetitionTime
0x00180081

(0018,1314)
`)
	tags, err := LoadTagList(in, dict)
	require.NoError(t, err)
	assert.Equal(t, []tag.Tag{
		tag.RepetitionTime,
		tag.New(0x0018, 0x0081),
		tag.New(0x0018, 0x1314),
	}, tags)
}

func TestLoadTagList_UnresolvableEntries(t *testing.T) {
	dict := tag.NewDictionary()
	in := strings.NewReader("RepetitionTime\nNotARealKeyword\n0xZZZZ\n")
	_, err := LoadTagList(in, dict)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	// every bad line is reported, not just the first
	assert.Contains(t, cfgErr.Reason, "NotARealKeyword")
	assert.Contains(t, cfgErr.Reason, "0xZZZZ")
}

func TestLoadTagList_Empty(t *testing.T) {
	dict := tag.NewDictionary()
	_, err := LoadTagList(strings.NewReader("# only a comment\n\n"), dict)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
