package dicom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// String returns a string representation of the Element
func (e *Element) String() string {
	valStr := ""
	switch v := e.Value.(type) {
	case []*Dataset:
		valStr = fmt.Sprintf("Sequence (%d items)", len(v))
	case []uint16:
		if len(v) > 10 {
			valStr = fmt.Sprintf("Array of %d values", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	case []byte:
		if len(v) > 20 {
			valStr = fmt.Sprintf("Binary Data (%d bytes)", len(v))
		} else {
			valStr = fmt.Sprintf("%v", v)
		}
	default:
		valStr = fmt.Sprintf("%v", v)
	}

	return fmt.Sprintf("[%s] %s: %s", e.Tag, e.VR, valStr)
}

// MarshalJSON returns a JSON representation of the Element
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Tag   string      `json:"tag"`
		VR    string      `json:"vr"`
		Value interface{} `json:"value"`
	}{
		Tag:   e.Tag.String(),
		VR:    string(e.VR),
		Value: e.Value,
	})
}

// String returns a string representation of the Dataset, one element per
// line, ascending by tag
func (ds *Dataset) String() string {
	if ds == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, t := range ds.SortedTags() {
		b.WriteString(ds.Elements[t].String())
		b.WriteString("\n")
	}
	return b.String()
}

// MarshalJSON returns a JSON representation of the Dataset as a sorted
// array of Elements instead of a map
func (ds *Dataset) MarshalJSON() ([]byte, error) {
	var elements []*Element
	for _, t := range ds.SortedTags() {
		elements = append(elements, ds.Elements[t])
	}
	return json.Marshal(elements)
}
