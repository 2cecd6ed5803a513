// Package dicom implements a small DICOM object model and codec sufficient
// for attribute-level comparison: datasets are parsed into typed elements,
// sequences recurse into nested datasets, and pixel payloads can be skipped.
package dicom

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

// Tag alias to avoid duplication
type Tag = tag.Tag

// Dataset represents a complete DICOM dataset: one instance's attributes
type Dataset struct {
	Elements map[Tag]*Element
}

// Element represents a single DICOM element
type Element struct {
	Tag   Tag
	VR    vr.VR
	Value interface{} // Parsed value; []*Dataset for SQ
}

// NewDataset creates an empty dataset
func NewDataset() *Dataset {
	return &Dataset{Elements: make(map[Tag]*Element)}
}

// FindElement returns an element by group and element number
func (ds *Dataset) FindElement(group, element uint16) (*Element, bool) {
	elem, ok := ds.Elements[Tag{Group: group, Element: element}]
	return elem, ok
}

// Find returns an element by tag
func (ds *Dataset) Find(t Tag) (*Element, bool) {
	elem, ok := ds.Elements[t]
	return elem, ok
}

// Put adds or replaces an element
func (ds *Dataset) Put(t Tag, v vr.VR, value interface{}) {
	ds.Elements[t] = &Element{Tag: t, VR: v, Value: value}
}

// SortedTags returns the dataset's tags ascending by (group, element)
func (ds *Dataset) SortedTags() []Tag {
	keys := make([]Tag, 0, len(ds.Elements))
	for k := range ds.Elements {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	return keys
}

// StringValue returns the trimmed string value of a tag, or "" when the
// element is absent or not string-valued
func (ds *Dataset) StringValue(t Tag) string {
	elem, ok := ds.Elements[t]
	if !ok {
		return ""
	}
	s, _ := elem.GetString()
	return strings.TrimSpace(s)
}

// IntValue returns the integer value of a tag, or def when absent or unparsable
func (ds *Dataset) IntValue(t Tag, def int) int {
	elem, ok := ds.Elements[t]
	if !ok {
		return def
	}
	if i, ok := elem.GetInt(); ok {
		return i
	}
	return def
}

// GetString returns a string value from an element
func (elem *Element) GetString() (string, bool) {
	if s, ok := elem.Value.(string); ok {
		return s, true
	}
	return "", false
}

// GetInt returns an int value from an element
func (elem *Element) GetInt() (int, bool) {
	switch v := elem.Value.(type) {
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int:
		return v, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return i, true
		}
	}
	return 0, false
}

// GetItems returns the nested datasets of a sequence element
func (elem *Element) GetItems() ([]*Dataset, bool) {
	items, ok := elem.Value.([]*Dataset)
	return items, ok
}

// IsEmpty returns true if the element carries no value
func (elem *Element) IsEmpty() bool {
	if elem == nil || elem.Value == nil {
		return true
	}
	switch v := elem.Value.(type) {
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	case []*Dataset:
		return len(v) == 0
	default:
		return false
	}
}

// Clone creates a deep copy of a dataset
func (ds *Dataset) Clone() *Dataset {
	clone := &Dataset{Elements: make(map[Tag]*Element, len(ds.Elements))}
	for t, elem := range ds.Elements {
		c := &Element{Tag: elem.Tag, VR: elem.VR}
		switch v := elem.Value.(type) {
		case []byte:
			copied := make([]byte, len(v))
			copy(copied, v)
			c.Value = copied
		case []*Dataset:
			items := make([]*Dataset, len(v))
			for i, item := range v {
				items[i] = item.Clone()
			}
			c.Value = items
		default:
			c.Value = v
		}
		clone.Elements[t] = c
	}
	return clone
}
