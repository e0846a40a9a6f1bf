// Package xdr implements the XBlackBox flight-data-recorder container format.
//
// An .xdr file is little-endian throughout: a fixed 21-byte header, a
// variable-length dataref definition table, zero or more "DATA" frames and an
// optional "ENDR" footer. A recording that is still in progress simply lacks
// the footer; readers are expected to tolerate a partially written final
// frame and pick it up on a later pass.
package xdr

import (
	"errors"
	"fmt"
)

// Wire markers and fixed section widths.
const (
	Magic        = "XFDR"
	FrameMarker  = "DATA"
	FooterMarker = "ENDR"

	HeaderSize = 21 // magic + version + level + interval + start + count
	FooterSize = 16 // marker + total frames + end timestamp
	markerSize = 4
)

// Decode failures that are fatal when opening a file. Truncation inside the
// frame loop is not an error condition and never surfaces as one.
var (
	ErrBadMagic    = errors.New("invalid file format: bad magic")
	ErrTruncated   = errors.New("truncated data")
	ErrUnknownKind = errors.New("unknown dataref kind tag")
)

// Kind is the value type of a recorded dataref.
type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	}
	return "unknown"
}

// RecordingLevel is the detail level the recorder was configured with.
type RecordingLevel uint8

const (
	LevelSimple   RecordingLevel = 1
	LevelNormal   RecordingLevel = 2
	LevelDetailed RecordingLevel = 3
)

func (l RecordingLevel) String() string {
	switch l {
	case LevelSimple:
		return "Simple"
	case LevelNormal:
		return "Normal"
	case LevelDetailed:
		return "Detailed"
	}
	return "Unknown"
}

// FileHeader is the fixed file header.
type FileHeader struct {
	Version      uint16
	Level        RecordingLevel
	Interval     float32 // configured seconds between frames
	StartTime    uint64  // epoch seconds
	DatarefCount uint16
}

// DatarefDef describes one recorded parameter. The definition order fixes the
// value layout of every frame. ArraySize 0 means scalar. String datarefs are
// always scalar on the wire; the recorder never emits string arrays.
type DatarefDef struct {
	Name      string
	Kind      Kind
	ArraySize uint8
}

// Columns returns the column names this dataref expands to in tabular
// output: one per array element for arrays, the bare name otherwise.
func (d DatarefDef) Columns() []string {
	if d.ArraySize > 0 && d.Kind != KindString {
		cols := make([]string, d.ArraySize)
		for i := range cols {
			cols[i] = fmt.Sprintf("%s[%d]", d.Name, i)
		}
		return cols
	}
	return []string{d.Name}
}

// Frame is one timestamped sample: one value per dataref, in declared order.
type Frame struct {
	Timestamp float32 // seconds since recording start
	Values    []Value
}

// Footer seals a finished recording.
type Footer struct {
	TotalFrames uint32
	EndTime     uint64 // epoch seconds
}

// Value is one decoded frame field. The concrete type is determined by the
// dataref's kind and arity; consumers switch exhaustively over the five
// variants.
type Value interface {
	isValue()
}

type (
	Float      float32
	Int        int32
	String     string
	FloatArray []float32
	IntArray   []int32
)

func (Float) isValue()      {}
func (Int) isValue()        {}
func (String) isValue()     {}
func (FloatArray) isValue() {}
func (IntArray) isValue()   {}
