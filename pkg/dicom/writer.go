package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
)

// WriteFile writes a dataset to a DICOM file
func WriteFile(path string, ds *Dataset) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Write(f, ds)
}

// Write writes a dataset to a writer using Explicit VR Little Endian
func Write(w io.Writer, ds *Dataset) (int64, error) {
	cw := &CountingWriter{Writer: w}

	// Preamble (128 bytes 0x00) and DICM magic
	preamble := make([]byte, 128)
	if _, err := cw.Write(preamble); err != nil {
		return cw.Count.Load(), err
	}
	if _, err := cw.Write([]byte("DICM")); err != nil {
		return cw.Count.Load(), err
	}

	if _, err := writeDatasetBody(cw, ds); err != nil {
		return cw.Count.Load(), err
	}
	return cw.Count.Load(), nil
}

func writeDatasetBody(w io.Writer, ds *Dataset) (int64, error) {
	cw := &CountingWriter{Writer: w}
	for _, t := range ds.SortedTags() {
		if err := writeElement(cw, ds.Elements[t]); err != nil {
			return cw.Count.Load(), fmt.Errorf("failed to write element %v: %w", t, err)
		}
	}
	return cw.Count.Load(), nil
}

func writeElement(w io.Writer, elem *Element) error {
	if err := binary.Write(w, binary.LittleEndian, elem.Tag.Group); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, elem.Tag.Element); err != nil {
		return err
	}

	v := elem.VR
	if len(v) != 2 {
		v = vr.UN
	}
	if _, err := w.Write([]byte(v)); err != nil {
		return err
	}

	valBytes, undefined, err := encodeValue(elem.Value, v)
	if err != nil {
		return err
	}

	if !v.IsExplicitLength() {
		// Reserved 2 bytes then 4-byte length
		if _, err := w.Write([]byte{0, 0}); err != nil {
			return err
		}
		length := uint32(len(valBytes))
		if undefined {
			length = 0xFFFFFFFF
		}
		if err := binary.Write(w, binary.LittleEndian, length); err != nil {
			return err
		}
	} else {
		if undefined {
			return fmt.Errorf("undefined length not supported for short VR %s", v)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(valBytes))); err != nil {
			return err
		}
	}

	_, err = w.Write(valBytes)
	return err
}

// encodeValue returns encoded bytes and whether undefined length is used
func encodeValue(value interface{}, v vr.VR) ([]byte, bool, error) {
	if value == nil {
		return []byte{}, false, nil
	}

	switch val := value.(type) {
	case []*Dataset:
		if !v.IsSequence() {
			return nil, false, fmt.Errorf("unexpected []*Dataset for VR %s", v)
		}
		b, err := encodeSequence(val)
		return b, true, err
	case string:
		b := []byte(val)
		if len(b)%2 != 0 {
			b = append(b, ' ')
		}
		return b, false, nil
	case uint16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, val)
		return b, false, nil
	case []uint16:
		b := make([]byte, len(val)*2)
		for i, u := range val {
			binary.LittleEndian.PutUint16(b[i*2:], u)
		}
		return b, false, nil
	case uint32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, val)
		return b, false, nil
	case int16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(val))
		return b, false, nil
	case int32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(val))
		return b, false, nil
	case float32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(val))
		return b, false, nil
	case float64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(val))
		return b, false, nil
	case []float32:
		b := make([]byte, len(val)*4)
		for i, f := range val {
			binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
		}
		return b, false, nil
	case []float64:
		b := make([]byte, len(val)*8)
		for i, f := range val {
			binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(f))
		}
		return b, false, nil
	case []byte:
		return val, false, nil
	}

	return nil, false, fmt.Errorf("unsupported value type %T for VR %s", value, v)
}

func encodeSequence(items []*Dataset) ([]byte, error) {
	var buf bytes.Buffer

	for _, item := range items {
		// Item tag (FFFE,E000)
		buf.Write([]byte{0xFE, 0xFF, 0x00, 0xE0})

		var body bytes.Buffer
		if _, err := writeDatasetBody(&body, item); err != nil {
			return nil, fmt.Errorf("failed to encode sequence item: %w", err)
		}

		if err := binary.Write(&buf, binary.LittleEndian, uint32(body.Len())); err != nil {
			return nil, err
		}
		buf.Write(body.Bytes())
	}

	// Sequence Delimitation Item (FFFE,E0DD), zero length
	buf.Write([]byte{0xFE, 0xFF, 0xDD, 0xE0})
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})

	return buf.Bytes(), nil
}

type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		c.Count.Add(int64(n))
	}
	return n, err
}
