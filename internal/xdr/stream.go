package xdr

// StopReason says why a decode pass stopped consuming bytes.
type StopReason int

const (
	// StopNeedMore means the window ended cleanly or mid-frame; the producer
	// is presumably still writing. Not an error.
	StopNeedMore StopReason = iota
	// StopSealed means the footer was decoded; the recording is complete.
	StopSealed
	// StopForeignMarker means four bytes were present that are neither DATA
	// nor ENDR. Decoding stops before them; the tag is surfaced so callers
	// can report possible corruption instead of silently dropping data.
	StopForeignMarker
)

func (r StopReason) String() string {
	switch r {
	case StopNeedMore:
		return "need more data"
	case StopSealed:
		return "sealed"
	case StopForeignMarker:
		return "foreign marker"
	}
	return "unknown"
}

// DecodeResult is the outcome of one frame-loop pass over a byte window.
// Consumed counts only fully committed bytes; a partially decoded trailing
// frame contributes nothing to it.
type DecodeResult struct {
	Frames   []Frame
	Footer   *Footer
	Consumed int
	Stop     StopReason
	Marker   [4]byte // set when Stop == StopForeignMarker
}

// FrameStream decodes DATA frames and the optional ENDR footer against a
// fixed schema. It is stateless between calls: resumption is expressed by
// handing the next call a window that starts at the previously committed
// offset.
type FrameStream struct {
	defs []DatarefDef
}

// NewFrameStream returns a stream decoder for the given dataref schema.
func NewFrameStream(defs []DatarefDef) *FrameStream {
	return &FrameStream{defs: defs}
}

// Decode runs the frame loop over buf until it cannot make progress. Every
// frame decode is speculative: on any underflow the cursor rolls back to the
// byte before that frame's marker and the pass ends with StopNeedMore. A
// short footer likewise leaves the cursor unmoved. Decode never fails; while
// a recorder is appending, running out of bytes is the steady state.
func (s *FrameStream) Decode(buf []byte) DecodeResult {
	c := &cursor{buf: buf}
	var res DecodeResult

	for {
		mark := c.off

		tag, err := c.bytes(markerSize)
		if err != nil {
			break
		}

		switch string(tag) {
		case FooterMarker:
			total, err := c.u32()
			if err != nil {
				c.off = mark
				res.Consumed = c.off
				return res
			}
			end, err := c.u64()
			if err != nil {
				c.off = mark
				res.Consumed = c.off
				return res
			}
			res.Footer = &Footer{TotalFrames: total, EndTime: end}
			res.Stop = StopSealed
			res.Consumed = c.off
			return res

		case FrameMarker:
			frame, err := s.decodeFrame(c)
			if err != nil {
				c.off = mark
				res.Consumed = c.off
				return res
			}
			res.Frames = append(res.Frames, frame)

		default:
			c.off = mark
			res.Stop = StopForeignMarker
			copy(res.Marker[:], tag)
			res.Consumed = c.off
			return res
		}
	}

	res.Consumed = c.off
	return res
}

// decodeFrame reads the timestamp and one value per dataref. Any error is
// ErrTruncated; the caller discards the cursor position.
func (s *FrameStream) decodeFrame(c *cursor) (Frame, error) {
	ts, err := c.f32()
	if err != nil {
		return Frame{}, err
	}

	values := make([]Value, 0, len(s.defs))
	for _, d := range s.defs {
		v, err := decodeValue(c, d)
		if err != nil {
			return Frame{}, err
		}
		values = append(values, v)
	}

	return Frame{Timestamp: ts, Values: values}, nil
}

func decodeValue(c *cursor, d DatarefDef) (Value, error) {
	if d.ArraySize > 0 && d.Kind != KindString {
		switch d.Kind {
		case KindFloat:
			arr := make(FloatArray, d.ArraySize)
			for i := range arr {
				v, err := c.f32()
				if err != nil {
					return nil, err
				}
				arr[i] = v
			}
			return arr, nil
		case KindInt:
			arr := make(IntArray, d.ArraySize)
			for i := range arr {
				v, err := c.i32()
				if err != nil {
					return nil, err
				}
				arr[i] = v
			}
			return arr, nil
		}
	}

	switch d.Kind {
	case KindFloat:
		v, err := c.f32()
		return Float(v), err
	case KindInt:
		v, err := c.i32()
		return Int(v), err
	case KindString:
		n, err := c.u8()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return String(""), nil
		}
		b, err := c.bytes(int(n))
		if err != nil {
			return nil, err
		}
		return String(b), nil
	}
	// Unknown kinds are rejected during schema decode.
	return nil, ErrUnknownKind
}
