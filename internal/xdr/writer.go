package xdr

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer encodes a recording to an io.Writer in file order: header, dataref
// definitions, frames, optional footer. It performs no buffering of its own;
// wrap the destination if write granularity matters.
type Writer struct {
	w    io.Writer
	defs []DatarefDef
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the file header and the dataref definition table. The
// header's DatarefCount is taken from len(defs). Dataref names longer than
// 65535 bytes are truncated to fit the length prefix.
func (w *Writer) WriteHeader(h FileHeader, defs []DatarefDef) error {
	if _, err := io.WriteString(w.w, Magic); err != nil {
		return fmt.Errorf("failed to write magic: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, h.Version); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint8(h.Level)); err != nil {
		return fmt.Errorf("failed to write level: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, h.Interval); err != nil {
		return fmt.Errorf("failed to write interval: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, h.StartTime); err != nil {
		return fmt.Errorf("failed to write start timestamp: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint16(len(defs))); err != nil {
		return fmt.Errorf("failed to write dataref count: %w", err)
	}

	for i, d := range defs {
		name := []byte(d.Name)
		if len(name) > 65535 {
			name = name[:65535]
		}
		if err := binary.Write(w.w, binary.LittleEndian, uint16(len(name))); err != nil {
			return fmt.Errorf("failed to write dataref %d name length: %w", i, err)
		}
		if _, err := w.w.Write(name); err != nil {
			return fmt.Errorf("failed to write dataref %d name: %w", i, err)
		}
		if err := binary.Write(w.w, binary.LittleEndian, uint8(d.Kind)); err != nil {
			return fmt.Errorf("failed to write dataref %d kind: %w", i, err)
		}
		if err := binary.Write(w.w, binary.LittleEndian, d.ArraySize); err != nil {
			return fmt.Errorf("failed to write dataref %d array size: %w", i, err)
		}
	}

	w.defs = defs
	return nil
}

// WriteFrame writes one DATA frame. The frame must carry exactly one value
// per dataref passed to WriteHeader, shaped to match each definition. Strings
// are truncated to 255 bytes to fit their length prefix.
func (w *Writer) WriteFrame(f Frame) error {
	if len(f.Values) != len(w.defs) {
		return fmt.Errorf("frame has %d values, schema has %d datarefs", len(f.Values), len(w.defs))
	}

	if _, err := io.WriteString(w.w, FrameMarker); err != nil {
		return fmt.Errorf("failed to write frame marker: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, f.Timestamp); err != nil {
		return fmt.Errorf("failed to write frame timestamp: %w", err)
	}

	for i, v := range f.Values {
		if err := w.writeValue(v, w.defs[i]); err != nil {
			return fmt.Errorf("failed to write value for %q: %w", w.defs[i].Name, err)
		}
	}
	return nil
}

func (w *Writer) writeValue(v Value, d DatarefDef) error {
	switch v := v.(type) {
	case Float:
		return binary.Write(w.w, binary.LittleEndian, float32(v))
	case Int:
		return binary.Write(w.w, binary.LittleEndian, int32(v))
	case String:
		b := []byte(v)
		if len(b) > 255 {
			b = b[:255]
		}
		if err := binary.Write(w.w, binary.LittleEndian, uint8(len(b))); err != nil {
			return err
		}
		_, err := w.w.Write(b)
		return err
	case FloatArray:
		if len(v) != int(d.ArraySize) {
			return fmt.Errorf("array has %d elements, definition declares %d", len(v), d.ArraySize)
		}
		return binary.Write(w.w, binary.LittleEndian, []float32(v))
	case IntArray:
		if len(v) != int(d.ArraySize) {
			return fmt.Errorf("array has %d elements, definition declares %d", len(v), d.ArraySize)
		}
		return binary.Write(w.w, binary.LittleEndian, []int32(v))
	}
	return fmt.Errorf("unsupported value type %T", v)
}

// WriteFooter writes the ENDR footer, sealing the recording.
func (w *Writer) WriteFooter(f Footer) error {
	if _, err := io.WriteString(w.w, FooterMarker); err != nil {
		return fmt.Errorf("failed to write footer marker: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, f.TotalFrames); err != nil {
		return fmt.Errorf("failed to write total frame count: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, f.EndTime); err != nil {
		return fmt.Errorf("failed to write end timestamp: %w", err)
	}
	return nil
}
