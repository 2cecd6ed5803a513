package diff

import (
	"reflect"
	"sort"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

// DiffStatus classifies one tag within one instance pair. Absence is a
// first-class status, never an error.
type DiffStatus int

const (
	// Equal means both sides carry the same VR and normalized value
	Equal DiffStatus = iota
	// EqualIgnored means the filter excluded the tag; both values are
	// carried for audit but never counted as a difference
	EqualIgnored
	// Differ means both sides are present and disagree
	Differ
	// OnlyInReference means the test side lacks the tag
	OnlyInReference
	// OnlyInTest means the reference side lacks the tag
	OnlyInTest
)

func (s DiffStatus) String() string {
	switch s {
	case Equal:
		return "equal"
	case EqualIgnored:
		return "ignored"
	case Differ:
		return "differ"
	case OnlyInReference:
		return "only-in-reference"
	case OnlyInTest:
		return "only-in-test"
	default:
		return "unknown"
	}
}

// DiffRecord is the comparison outcome for one tag within one instance
// pair. Ref/Test carry the (possibly absent) attribute values; Items holds
// the per-item results when a participating sequence was recursed into.
type DiffRecord struct {
	Tag    tag.Tag
	VR     vr.VR
	Status DiffStatus
	Ref    *dicom.Element
	Test   *dicom.Element
	Items  []ItemDiff
}

// ItemDiff is the nested comparison of one sequence item pair
type ItemDiff struct {
	Index   int
	Records []DiffRecord
}

// Compare diffs two attribute sets under a filter, tag by tag. The result
// covers the union of tags present on either side, ascending by
// (group, element). Sequence attributes recurse index-aligned; when item
// counts differ the shorter side's missing items surface as nested
// OnlyInReference/OnlyInTest records.
func Compare(ref, test *dicom.Dataset, f *Filter) []DiffRecord {
	records := make([]DiffRecord, 0, len(ref.Elements)+len(test.Elements))

	for _, t := range unionTags(ref, test) {
		refElem := ref.Elements[t]
		testElem := test.Elements[t]
		records = append(records, compareTag(t, refElem, testElem, f))
	}
	return records
}

func compareTag(t tag.Tag, refElem, testElem *dicom.Element, f *Filter) DiffRecord {
	rec := DiffRecord{Tag: t, Ref: refElem, Test: testElem}

	// VR comes from whichever side has the element; when the sides
	// disagree both are checked and either being excluded excludes the tag.
	if refElem != nil {
		rec.VR = refElem.VR
	} else {
		rec.VR = testElem.VR
	}
	excluded := false
	if refElem != nil && !f.Participates(t, refElem.VR) {
		excluded = true
	}
	if testElem != nil && !f.Participates(t, testElem.VR) {
		excluded = true
	}
	if excluded {
		rec.Status = EqualIgnored
		return rec
	}

	switch {
	case refElem != nil && testElem == nil:
		rec.Status = OnlyInReference
	case refElem == nil && testElem != nil:
		rec.Status = OnlyInTest
	case refElem.VR != testElem.VR:
		rec.Status = Differ
	case refElem.VR.IsSequence():
		rec.Items, rec.Status = compareItems(refElem, testElem, f)
	default:
		if valuesEqual(refElem.Value, testElem.Value) {
			rec.Status = Equal
		} else {
			rec.Status = Differ
		}
	}
	return rec
}

// compareItems walks a sequence pair index-aligned. Missing trailing items
// on the shorter side become absence records at the nested level rather
// than failing the sequence outright.
func compareItems(refElem, testElem *dicom.Element, f *Filter) ([]ItemDiff, DiffStatus) {
	refItems, _ := refElem.GetItems()
	testItems, _ := testElem.GetItems()

	n := len(refItems)
	if len(testItems) > n {
		n = len(testItems)
	}

	empty := dicom.NewDataset()
	items := make([]ItemDiff, 0, n)
	status := Equal
	for i := 0; i < n; i++ {
		refItem, testItem := empty, empty
		if i < len(refItems) {
			refItem = refItems[i]
		}
		if i < len(testItems) {
			testItem = testItems[i]
		}
		records := Compare(refItem, testItem, f)
		for _, r := range records {
			if r.Status != Equal && r.Status != EqualIgnored {
				status = Differ
			}
		}
		items = append(items, ItemDiff{Index: i, Records: records})
	}
	return items, status
}

// unionTags returns every tag present on either side, ascending
func unionTags(ref, test *dicom.Dataset) []tag.Tag {
	seen := make(map[tag.Tag]bool, len(ref.Elements)+len(test.Elements))
	tags := make([]tag.Tag, 0, len(ref.Elements)+len(test.Elements))
	for t := range ref.Elements {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	for t := range test.Elements {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Compare(tags[j]) < 0
	})
	return tags
}

// valuesEqual compares normalized values for exact equality. Values are
// scalars, scalar slices or raw bytes; slices compare component-wise
// including element count.
func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}
