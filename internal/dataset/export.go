package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"xdr-analyzer/internal/xdr"
)

// WriteCSV writes the full recording as rows: a header row of "timestamp"
// plus one column per scalar dataref and per array element, then one row per
// frame. Array values expand into their columns in index order; string
// values pass through as text.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"timestamp"}
	for _, def := range d.defs {
		header = append(header, def.Columns()...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	row := make([]string, 0, len(header))
	for _, frame := range d.frames {
		row = row[:0]
		row = append(row, formatFloat32(frame.Timestamp))
		for _, v := range frame.Values {
			row = appendValueColumns(row, v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write frame row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func appendValueColumns(row []string, v xdr.Value) []string {
	switch v := v.(type) {
	case xdr.Float:
		return append(row, formatFloat32(float32(v)))
	case xdr.Int:
		return append(row, strconv.FormatInt(int64(v), 10))
	case xdr.String:
		return append(row, string(v))
	case xdr.FloatArray:
		for _, f := range v {
			row = append(row, formatFloat32(f))
		}
		return row
	case xdr.IntArray:
		for _, n := range v {
			row = append(row, strconv.FormatInt(int64(n), 10))
		}
		return row
	}
	return append(row, "")
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
