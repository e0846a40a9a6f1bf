package xdr

import (
	"encoding/binary"
	"fmt"
	"math"
)

// cursor is a bounds-checked little-endian reader over a byte window. All
// reads fail with ErrTruncated when the window runs out; callers that decode
// speculatively save and restore the offset themselves.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int { return len(c.buf) - c.off }

func (c *cursor) bytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, ErrTruncated
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) i32() (int32, error) {
	v, err := c.u32()
	return int32(v), err
}

func (c *cursor) f32() (float32, error) {
	v, err := c.u32()
	return math.Float32frombits(v), err
}

// DecodeHeader decodes the fixed file header from the start of buf. It
// returns the header and the number of bytes consumed. A wrong magic is
// ErrBadMagic; a buffer shorter than HeaderSize is ErrTruncated. Both are
// fatal to opening the file.
func DecodeHeader(buf []byte) (FileHeader, int, error) {
	c := &cursor{buf: buf}

	magic, err := c.bytes(markerSize)
	if err != nil {
		return FileHeader{}, 0, fmt.Errorf("header: %w", err)
	}
	if string(magic) != Magic {
		return FileHeader{}, 0, fmt.Errorf("%w: expected %q, got %q", ErrBadMagic, Magic, magic)
	}

	var h FileHeader
	if h.Version, err = c.u16(); err != nil {
		return FileHeader{}, 0, fmt.Errorf("header version: %w", err)
	}
	level, err := c.u8()
	if err != nil {
		return FileHeader{}, 0, fmt.Errorf("header level: %w", err)
	}
	h.Level = RecordingLevel(level)
	if h.Interval, err = c.f32(); err != nil {
		return FileHeader{}, 0, fmt.Errorf("header interval: %w", err)
	}
	if h.StartTime, err = c.u64(); err != nil {
		return FileHeader{}, 0, fmt.Errorf("header start timestamp: %w", err)
	}
	if h.DatarefCount, err = c.u16(); err != nil {
		return FileHeader{}, 0, fmt.Errorf("header dataref count: %w", err)
	}

	return h, c.off, nil
}

// DecodeDatarefs decodes exactly count dataref definitions from the start of
// buf and returns them with the number of bytes consumed. The definition
// table is assumed fully present: any underflow here is a fatal ErrTruncated,
// and a kind tag outside the known set is a fatal ErrUnknownKind.
func DecodeDatarefs(buf []byte, count int) ([]DatarefDef, int, error) {
	c := &cursor{buf: buf}
	defs := make([]DatarefDef, 0, count)

	for i := 0; i < count; i++ {
		nameLen, err := c.u16()
		if err != nil {
			return nil, 0, fmt.Errorf("dataref %d name length: %w", i, err)
		}
		name, err := c.bytes(int(nameLen))
		if err != nil {
			return nil, 0, fmt.Errorf("dataref %d name: %w", i, err)
		}
		kind, err := c.u8()
		if err != nil {
			return nil, 0, fmt.Errorf("dataref %d kind: %w", i, err)
		}
		if Kind(kind) > KindString {
			return nil, 0, fmt.Errorf("dataref %d (%q): %w: %d", i, name, ErrUnknownKind, kind)
		}
		arraySize, err := c.u8()
		if err != nil {
			return nil, 0, fmt.Errorf("dataref %d array size: %w", i, err)
		}
		defs = append(defs, DatarefDef{
			Name:      string(name),
			Kind:      Kind(kind),
			ArraySize: arraySize,
		})
	}

	return defs, c.off, nil
}

// FixedFrameWidth returns the byte width contributed to each frame by the
// fixed-size (float/int) fields. ok is false when the schema contains a
// string dataref, in which case whole-frame sizes are data-dependent and
// cannot be precomputed.
func FixedFrameWidth(defs []DatarefDef) (width int, ok bool) {
	ok = true
	for _, d := range defs {
		switch d.Kind {
		case KindString:
			ok = false
		default:
			if d.ArraySize > 0 {
				width += 4 * int(d.ArraySize)
			} else {
				width += 4
			}
		}
	}
	return width, ok
}
