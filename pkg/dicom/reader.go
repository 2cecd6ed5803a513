package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

// MediaStorageDirectoryStorage is the SOP class of DICOMDIR index files
const MediaStorageDirectoryStorage = "1.2.840.10008.1.3.10"

// Reader reads DICOM files
type Reader struct {
	r                io.Reader
	dict             *tag.Dictionary
	transferSyntax   string
	explicitVR       bool
	littleEndian     bool
	stopBeforePixels bool
}

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithDictionary sets the dictionary consulted for implicit VR lookups
func WithDictionary(d *tag.Dictionary) ReaderOption {
	return func(r *Reader) { r.dict = d }
}

// StopBeforePixels skips the PixelData value; the element is omitted from
// the dataset. Attribute comparison never needs pixel payloads.
func StopBeforePixels() ReaderOption {
	return func(r *Reader) { r.stopBeforePixels = true }
}

// NewReader creates a new DICOM reader
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:            r,
		explicitVR:   true,
		littleEndian: true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Parse reads a complete DICOM file
func Parse(r io.Reader, opts ...ReaderOption) (*Dataset, error) {
	return NewReader(r, opts...).ReadDataset()
}

// ReadFile reads a complete DICOM file from disk
func ReadFile(path string, opts ...ReaderOption) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts...)
}

// IsDICOM sniffs a file for the 128-byte preamble plus "DICM" magic
func IsDICOM(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	header := make([]byte, 132)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return string(header[128:]) == "DICM"
}

// ReadDataset reads the complete dataset
func (r *Reader) ReadDataset() (*Dataset, error) {
	ds := NewDataset()

	// Read preamble (128 bytes) and DICM magic
	preamble := make([]byte, 128)
	if _, err := io.ReadFull(r.r, preamble); err != nil {
		return nil, fmt.Errorf("failed to read preamble: %w", err)
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return nil, fmt.Errorf("failed to read DICM magic: %w", err)
	}
	if string(magic) != "DICM" {
		return nil, errors.New("invalid DICOM file: missing DICM magic")
	}

	// Group 0002 (File Meta Information) is ALWAYS Explicit VR Little Endian
	r.explicitVR = true
	r.littleEndian = true

	for {
		t, err := r.readTag()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tag: %w", err)
		}

		// Transition from File Meta to Dataset: default to Implicit VR
		// when no TransferSyntaxUID was seen
		if t.Group != 0x0002 && r.transferSyntax == "" {
			r.transferSyntax = "1.2.840.10008.1.2"
			r.updateTransferSyntax()
		}

		elem, err := r.readElementWithTag(t)
		if err != nil {
			return nil, fmt.Errorf("failed to read element %v: %w", t, err)
		}
		if elem != nil {
			ds.Elements[elem.Tag] = elem
		}

		// TransferSyntaxUID governs the rest of the file
		if t == tag.TransferSyntaxUID {
			if elem != nil {
				if tsStr, ok := elem.Value.(string); ok {
					r.transferSyntax = tsStr
					r.updateTransferSyntax()
				}
			}
		}
	}

	return ds, nil
}

// readElementWithTag reads a DICOM element after the tag has been read.
// Returns (nil, nil) for skipped elements.
func (r *Reader) readElementWithTag(t Tag) (*Element, error) {
	v, vl, err := r.readVRAndLength(t)
	if err != nil {
		return nil, err
	}

	if r.stopBeforePixels && t == tag.PixelData {
		if err := r.skipValue(vl); err != nil {
			return nil, err
		}
		return nil, nil
	}

	value, err := r.readValue(t, v, vl)
	if err != nil {
		return nil, err
	}

	return &Element{Tag: t, VR: v, Value: value}, nil
}

// readVRAndLength reads the VR (explicit) or derives it (implicit), plus
// the value length
func (r *Reader) readVRAndLength(t Tag) (vr.VR, uint32, error) {
	var v vr.VR
	var vl uint32

	if r.explicitVR {
		vrBytes := make([]byte, 2)
		if _, err := io.ReadFull(r.r, vrBytes); err != nil {
			return "", 0, err
		}
		v = vr.VR(vrBytes)

		if !v.IsExplicitLength() {
			// Reserved 2 bytes then 4-byte VL
			reserved := make([]byte, 2)
			if _, err := io.ReadFull(r.r, reserved); err != nil {
				return "", 0, err
			}
			if err := binary.Read(r.r, binary.LittleEndian, &vl); err != nil {
				return "", 0, err
			}
		} else {
			var vl16 uint16
			if err := binary.Read(r.r, binary.LittleEndian, &vl16); err != nil {
				return "", 0, err
			}
			vl = uint32(vl16)
		}
	} else {
		// Implicit VR: VL is always 4 bytes, VR comes from the dictionary
		if err := binary.Read(r.r, binary.LittleEndian, &vl); err != nil {
			return "", 0, err
		}
		v = r.implicitVR(t)
	}
	return v, vl, nil
}

// readTag reads a DICOM tag
func (r *Reader) readTag() (Tag, error) {
	var group, element uint16
	if err := binary.Read(r.r, binary.LittleEndian, &group); err != nil {
		return Tag{}, err
	}
	if err := binary.Read(r.r, binary.LittleEndian, &element); err != nil {
		return Tag{}, err
	}
	return Tag{Group: group, Element: element}, nil
}

// readValue reads the value based on VR and VL
func (r *Reader) readValue(t Tag, v vr.VR, vl uint32) (interface{}, error) {
	if v.IsSequence() {
		return r.readSequence(vl)
	}

	if vl == 0xFFFFFFFF {
		// Undefined length outside SQ is encapsulated pixel data; the
		// comparison model carries no pixel payloads, so skip it.
		if err := r.skipEncapsulated(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	data := make([]byte, vl)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, err
	}
	return parseValue(v, data)
}

// skipValue discards a value of the given length
func (r *Reader) skipValue(vl uint32) error {
	if vl == 0xFFFFFFFF {
		return r.skipEncapsulated()
	}
	if vl > 0 {
		if _, err := io.CopyN(io.Discard, r.r, int64(vl)); err != nil {
			return fmt.Errorf("skipping value: %w", err)
		}
	}
	return nil
}

// readSequence parses SQ items into nested datasets
func (r *Reader) readSequence(vl uint32) ([]*Dataset, error) {
	if vl != 0xFFFFFFFF {
		// Defined length: the whole sequence fits in vl bytes
		data := make([]byte, vl)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, fmt.Errorf("reading sequence body: %w", err)
		}
		return r.sub(bytes.NewReader(data)).readItems()
	}

	// Undefined length: items until Sequence Delimitation
	return r.readItems()
}

// readItems reads sequence items until Sequence Delimitation or EOF
func (r *Reader) readItems() ([]*Dataset, error) {
	items := []*Dataset{}
	for {
		itemTag, err := r.readTag()
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading sequence item tag: %w", err)
		}

		var itemLen uint32
		if err := binary.Read(r.r, binary.LittleEndian, &itemLen); err != nil {
			return nil, fmt.Errorf("reading item length: %w", err)
		}

		switch itemTag {
		case tag.SequenceDelimitationItem:
			return items, nil
		case tag.Item:
			item, err := r.readItem(itemLen)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, fmt.Errorf("expected item tag, got %v", itemTag)
		}
	}
}

// readItem reads one sequence item dataset
func (r *Reader) readItem(itemLen uint32) (*Dataset, error) {
	if itemLen != 0xFFFFFFFF {
		data := make([]byte, itemLen)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, fmt.Errorf("reading item body: %w", err)
		}
		return r.sub(bytes.NewReader(data)).readBody()
	}

	// Undefined length item: elements until Item Delimitation
	ds := NewDataset()
	for {
		t, err := r.readTag()
		if err != nil {
			return nil, fmt.Errorf("reading item element tag: %w", err)
		}
		if t == tag.ItemDelimitationItem {
			var zero uint32
			if err := binary.Read(r.r, binary.LittleEndian, &zero); err != nil {
				return nil, fmt.Errorf("reading item delimiter length: %w", err)
			}
			return ds, nil
		}
		elem, err := r.readElementWithTag(t)
		if err != nil {
			return nil, err
		}
		if elem != nil {
			ds.Elements[elem.Tag] = elem
		}
	}
}

// readBody reads elements until EOF (used for defined-length item buffers)
func (r *Reader) readBody() (*Dataset, error) {
	ds := NewDataset()
	for {
		t, err := r.readTag()
		if err == io.EOF {
			return ds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading element tag: %w", err)
		}
		elem, err := r.readElementWithTag(t)
		if err != nil {
			return nil, err
		}
		if elem != nil {
			ds.Elements[elem.Tag] = elem
		}
	}
}

// sub creates a reader over nested content inheriting the parent's settings
func (r *Reader) sub(nested io.Reader) *Reader {
	return &Reader{
		r:                nested,
		dict:             r.dict,
		transferSyntax:   r.transferSyntax,
		explicitVR:       r.explicitVR,
		littleEndian:     r.littleEndian,
		stopBeforePixels: r.stopBeforePixels,
	}
}

// skipEncapsulated discards encapsulated pixel data items until Sequence
// Delimitation
func (r *Reader) skipEncapsulated() error {
	for {
		itemTag, err := r.readTag()
		if err != nil {
			return fmt.Errorf("reading encapsulated item tag: %w", err)
		}
		var itemLen uint32
		if err := binary.Read(r.r, binary.LittleEndian, &itemLen); err != nil {
			return fmt.Errorf("reading encapsulated item length: %w", err)
		}
		if itemTag == tag.SequenceDelimitationItem {
			return nil
		}
		if itemTag != tag.Item {
			return fmt.Errorf("expected item tag, got %v", itemTag)
		}
		if itemLen > 0 {
			if _, err := io.CopyN(io.Discard, r.r, int64(itemLen)); err != nil {
				return fmt.Errorf("skipping encapsulated frame: %w", err)
			}
		}
	}
}

// updateTransferSyntax updates reader settings based on transfer syntax
func (r *Reader) updateTransferSyntax() {
	switch r.transferSyntax {
	case "1.2.840.10008.1.2": // Implicit VR Little Endian
		r.explicitVR = false
		r.littleEndian = true
	default: // Explicit VR Little Endian and all encapsulated syntaxes
		r.explicitVR = true
		r.littleEndian = true
	}
}

// implicitVR derives a VR for a tag when using Implicit VR transfer syntax
func (r *Reader) implicitVR(t Tag) vr.VR {
	if r.dict != nil {
		if v := r.dict.DefaultVR(t); v != "" {
			return vr.VR(v)
		}
	}
	switch {
	case t.Group == 0x0002:
		return vr.UL
	case t == tag.PixelData:
		return vr.OW
	}
	return vr.UN
}

// parseValue converts raw bytes to a typed value based on VR
func parseValue(v vr.VR, data []byte) (interface{}, error) {
	if v.IsString() {
		// Trim null and trailing space padding
		s := string(data)
		for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
			s = s[:len(s)-1]
		}
		return s, nil
	}

	switch v {
	case vr.US:
		if len(data) == 2 {
			return binary.LittleEndian.Uint16(data), nil
		}
		values := make([]uint16, len(data)/2)
		for i := range values {
			values[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		return values, nil
	case vr.UL:
		if len(data) == 4 {
			return binary.LittleEndian.Uint32(data), nil
		}
		values := make([]uint32, len(data)/4)
		for i := range values {
			values[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return values, nil
	case vr.SS:
		if len(data) == 2 {
			return int16(binary.LittleEndian.Uint16(data)), nil
		}
	case vr.SL:
		if len(data) == 4 {
			return int32(binary.LittleEndian.Uint32(data)), nil
		}
	case vr.FL:
		if len(data) == 4 {
			var f float32
			if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &f); err != nil {
				return nil, err
			}
			return f, nil
		}
		values := make([]float32, len(data)/4)
		if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &values); err != nil {
			return nil, err
		}
		return values, nil
	case vr.FD:
		if len(data) == 8 {
			var f float64
			if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &f); err != nil {
				return nil, err
			}
			return f, nil
		}
		values := make([]float64, len(data)/8)
		if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &values); err != nil {
			return nil, err
		}
		return values, nil
	}
	// OB, OW, UN, AT and anything unrecognized stay as raw bytes
	return data, nil
}
