package dataset

import (
	"fmt"

	"xdr-analyzer/internal/xdr"
)

// DefaultPointCeiling bounds how many points a display-oriented extraction
// returns; callers derive a stride from it for large recordings.
const DefaultPointCeiling = 5000

// Parameter is one entry of the plottable-series catalog: a scalar numeric
// dataref, or a single element of an array dataref.
type Parameter struct {
	Dataref    int // index into Datarefs()
	ArrayIndex int
	Name       string
	Kind       xdr.Kind
}

// TimeRange filters frames to start <= timestamp <= end, inclusive on both
// ends.
type TimeRange struct {
	Start, End float32
}

func (r TimeRange) contains(ts float32) bool {
	return ts >= r.Start && ts <= r.End
}

// Parameters returns the catalog of plottable series: one per scalar numeric
// dataref, one per element of each array dataref. String datarefs never
// appear here; they are kept for tabular output only.
func (d *Dataset) Parameters() []Parameter {
	var params []Parameter
	for i, def := range d.defs {
		if def.Kind == xdr.KindString {
			continue
		}
		if def.ArraySize > 0 {
			for j := 0; j < int(def.ArraySize); j++ {
				params = append(params, Parameter{
					Dataref:    i,
					ArrayIndex: j,
					Name:       fmt.Sprintf("%s[%d]", def.Name, j),
					Kind:       def.Kind,
				})
			}
		} else {
			params = append(params, Parameter{Dataref: i, Name: def.Name, Kind: def.Kind})
		}
	}
	return params
}

// StrideFor returns the downsampling stride that keeps an extraction of
// total frames under ceiling points: max(1, total/ceiling).
func StrideFor(total, ceiling int) int {
	if ceiling <= 0 {
		return 1
	}
	stride := total / ceiling
	if stride < 1 {
		return 1
	}
	return stride
}

// Series projects one parameter as (timestamps, values). Frame i is included
// iff i % stride == 0 and, when tr is non-nil, its timestamp lies inside the
// range. A stride below 1 is treated as 1. String datarefs yield the neutral
// placeholder 0 per included frame; an array index past a value's bounds
// yields 0 for that frame. An out-of-range dataref index yields empty slices.
func (d *Dataset) Series(dataref, arrayIndex int, tr *TimeRange, stride int) (ts, vals []float64) {
	if dataref < 0 || dataref >= len(d.defs) {
		return nil, nil
	}
	if stride < 1 {
		stride = 1
	}

	for i, frame := range d.frames {
		if i%stride != 0 {
			continue
		}
		if tr != nil && !tr.contains(frame.Timestamp) {
			continue
		}
		ts = append(ts, float64(frame.Timestamp))
		vals = append(vals, numericAt(frame.Values[dataref], arrayIndex))
	}
	return ts, vals
}

// numericAt converts a single frame value to float64 for analytics. Strings
// deliberately coerce to 0 rather than failing, so mixed schemas keep a
// defined shape in every numeric path.
func numericAt(v xdr.Value, arrayIndex int) float64 {
	switch v := v.(type) {
	case xdr.Float:
		return float64(v)
	case xdr.Int:
		return float64(v)
	case xdr.FloatArray:
		if arrayIndex >= 0 && arrayIndex < len(v) {
			return float64(v[arrayIndex])
		}
	case xdr.IntArray:
		if arrayIndex >= 0 && arrayIndex < len(v) {
			return float64(v[arrayIndex])
		}
	case xdr.String:
		return 0
	}
	return 0
}
