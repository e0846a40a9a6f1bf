package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xdr-analyzer/internal/xdr"
)

func testSchema() []xdr.DatarefDef {
	return []xdr.DatarefDef{
		{Name: "sim/flightmodel/position/elevation", Kind: xdr.KindFloat},
		{Name: "sim/flightmodel/engine/n1", Kind: xdr.KindFloat, ArraySize: 2},
		{Name: "sim/cockpit/warnings/master", Kind: xdr.KindInt},
		{Name: "sim/aircraft/view/tailnum", Kind: xdr.KindString},
	}
}

func testFrame(i int) xdr.Frame {
	return xdr.Frame{
		Timestamp: float32(i) * 0.5,
		Values: []xdr.Value{
			xdr.Float(1000 + 10*float32(i)),
			xdr.FloatArray{float32(i), float32(i) * 2},
			xdr.Int(int32(i % 2)),
			xdr.String("N172SP"),
		},
	}
}

// writeRecording writes a recording with n frames to a temp file and returns
// its path along with the open writer handle for appending more.
func writeRecording(t *testing.T, n int, sealed bool) (string, *os.File, *xdr.Writer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flight.xdr")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	w := xdr.NewWriter(f)
	header := xdr.FileHeader{Version: 1, Level: xdr.LevelNormal, Interval: 0.5, StartTime: 1700000000}
	if err := w.WriteHeader(header, testSchema()); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	for i := 0; i < n; i++ {
		if err := w.WriteFrame(testFrame(i)); err != nil {
			t.Fatalf("WriteFrame %d failed: %v", i, err)
		}
	}
	if sealed {
		if err := w.WriteFooter(xdr.Footer{TotalFrames: uint32(n), EndTime: 1700000000 + uint64(n)/2}); err != nil {
			t.Fatalf("WriteFooter failed: %v", err)
		}
	}
	return path, f, w
}

func TestOpenSealedRecording(t *testing.T) {
	path, _, _ := writeRecording(t, 5, true)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !d.Complete() {
		t.Error("expected a sealed dataset")
	}
	if d.FrameCount() != 5 {
		t.Errorf("expected 5 frames, got %d", d.FrameCount())
	}
	if d.Footer().TotalFrames != 5 {
		t.Errorf("expected footer count 5, got %d", d.Footer().TotalFrames)
	}
	if dur, ok := d.Duration(); !ok || dur != 2 {
		t.Errorf("expected duration (2, true), got (%d, %v)", dur, ok)
	}
}

func TestOpenInProgressRecording(t *testing.T) {
	// No ENDR marker: the file opens fine but is not complete and carries no
	// totals.
	path, _, _ := writeRecording(t, 3, false)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if d.Complete() {
		t.Error("expected an in-progress dataset")
	}
	if d.Footer() != nil {
		t.Error("expected no footer")
	}
	if _, ok := d.Duration(); ok {
		t.Error("expected unknown duration while in progress")
	}
	if d.FrameCount() != 3 {
		t.Errorf("expected 3 frames, got %d", d.FrameCount())
	}
}

func TestPollIdempotentWithoutNewBytes(t *testing.T) {
	path, _, _ := writeRecording(t, 3, false)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		n, err := d.Poll()
		if err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if n != 0 {
			t.Fatalf("poll %d: expected 0 new frames, got %d", i, n)
		}
	}
	if d.FrameCount() != 3 {
		t.Errorf("frame count changed to %d", d.FrameCount())
	}
}

func TestPollPicksUpAppendedFrames(t *testing.T) {
	path, f, w := writeRecording(t, 2, false)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := w.WriteFrame(testFrame(2)); err != nil {
		t.Fatalf("append WriteFrame failed: %v", err)
	}
	if err := w.WriteFrame(testFrame(3)); err != nil {
		t.Fatalf("append WriteFrame failed: %v", err)
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	n, err := d.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 new frames, got %d", n)
	}
	if d.FrameCount() != 4 {
		t.Errorf("expected 4 frames total, got %d", d.FrameCount())
	}
	if d.Frame(3).Timestamp != 1.5 {
		t.Errorf("expected last timestamp 1.5, got %v", d.Frame(3).Timestamp)
	}
}

func TestPollPartialFrameThenRest(t *testing.T) {
	path, f, _ := writeRecording(t, 1, false)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Encode one frame off to the side, then append it in two pieces to
	// simulate a recorder caught mid-write.
	var side bytes.Buffer
	sw := xdr.NewWriter(&side)
	if err := sw.WriteHeader(xdr.FileHeader{}, testSchema()); err != nil {
		t.Fatalf("side WriteHeader failed: %v", err)
	}
	side.Reset()
	if err := sw.WriteFrame(testFrame(1)); err != nil {
		t.Fatalf("side WriteFrame failed: %v", err)
	}
	raw := side.Bytes()

	// Tag and timestamp present, values cut short.
	if _, err := f.Write(raw[:10]); err != nil {
		t.Fatalf("partial append failed: %v", err)
	}
	n, err := d.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 frames from a partial write, got %d", n)
	}
	if d.FrameCount() != 1 {
		t.Fatalf("frame count moved to %d on a partial write", d.FrameCount())
	}

	// The remainder arrives; exactly one frame must appear, intact.
	if _, err := f.Write(raw[10:]); err != nil {
		t.Fatalf("remainder append failed: %v", err)
	}
	n, err = d.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 new frame, got %d", n)
	}
	got := d.Frame(1)
	if got.Timestamp != 0.5 {
		t.Errorf("expected timestamp 0.5, got %v", got.Timestamp)
	}
	if v := got.Values[0].(xdr.Float); v != 1010 {
		t.Errorf("expected elevation 1010, got %v", v)
	}
}

func TestPollSealsAndStops(t *testing.T) {
	path, _, w := writeRecording(t, 2, false)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := w.WriteFooter(xdr.Footer{TotalFrames: 2, EndTime: 1700000001}); err != nil {
		t.Fatalf("WriteFooter failed: %v", err)
	}
	if _, err := d.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !d.Complete() {
		t.Fatal("expected dataset to seal after footer append")
	}

	// Sealed datasets never touch the file again.
	n, err := d.Poll()
	if err != nil || n != 0 {
		t.Fatalf("expected sealed no-op poll, got (%d, %v)", n, err)
	}
}

func TestForeignMarkerDiagnostic(t *testing.T) {
	path, f, _ := writeRecording(t, 1, false)

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := f.Write([]byte("GARBAGE?")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	n, err := d.Poll()
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 frames, got %d", n)
	}

	reason, marker := d.LastStop()
	if reason != xdr.StopForeignMarker {
		t.Fatalf("expected StopForeignMarker, got %v", reason)
	}
	if string(marker[:]) != "GARB" {
		t.Errorf("expected marker GARB, got %q", marker)
	}
}

func TestParametersCatalog(t *testing.T) {
	path, _, _ := writeRecording(t, 1, true)
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	params := d.Parameters()
	want := []string{
		"sim/flightmodel/position/elevation",
		"sim/flightmodel/engine/n1[0]",
		"sim/flightmodel/engine/n1[1]",
		"sim/cockpit/warnings/master",
	}
	if len(params) != len(want) {
		t.Fatalf("expected %d catalog entries, got %d", len(want), len(params))
	}
	for i, p := range params {
		if p.Name != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], p.Name)
		}
	}
	// The string dataref must not be plottable.
	for _, p := range params {
		if strings.Contains(p.Name, "tailnum") {
			t.Errorf("string dataref leaked into catalog: %q", p.Name)
		}
	}
}

func TestSeriesDownsampleDeterminism(t *testing.T) {
	const total, stride = 10, 3
	path, _, _ := writeRecording(t, total, true)
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ts, vals := d.Series(0, 0, nil, stride)

	wantPoints := (total + stride - 1) / stride // ceil
	if len(ts) != wantPoints || len(vals) != wantPoints {
		t.Fatalf("expected %d points, got %d/%d", wantPoints, len(ts), len(vals))
	}
	for i := range vals {
		raw := i * stride
		if vals[i] != float64(1000+10*raw) {
			t.Errorf("point %d: expected frame %d's value %v, got %v", i, raw, 1000+10*raw, vals[i])
		}
	}
}

func TestSeriesTimeRangeInclusive(t *testing.T) {
	path, _, _ := writeRecording(t, 6, true) // timestamps 0, 0.5, ..., 2.5
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ts, _ := d.Series(0, 0, &TimeRange{Start: 0.5, End: 1.5}, 1)
	if len(ts) != 3 {
		t.Fatalf("expected 3 points in [0.5, 1.5], got %d", len(ts))
	}
	if ts[0] != 0.5 || ts[2] != 1.5 {
		t.Errorf("range endpoints must be inclusive, got %v..%v", ts[0], ts[len(ts)-1])
	}
}

func TestSeriesArrayElementAndPlaceholders(t *testing.T) {
	path, _, _ := writeRecording(t, 4, true)
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, vals := d.Series(1, 1, nil, 1) // n1[1] = 2*i
	for i, v := range vals {
		if v != float64(2*i) {
			t.Errorf("n1[1] frame %d: expected %d, got %v", i, 2*i, v)
		}
	}

	// String dataref: defined neutral placeholder, not a failure.
	ts, vals := d.Series(3, 0, nil, 1)
	if len(ts) != 4 {
		t.Fatalf("expected 4 placeholder points, got %d", len(ts))
	}
	for _, v := range vals {
		if v != 0 {
			t.Errorf("expected 0 placeholder for string dataref, got %v", v)
		}
	}

	// Out-of-range dataref index yields an empty series.
	ts, vals = d.Series(99, 0, nil, 1)
	if len(ts) != 0 || len(vals) != 0 {
		t.Errorf("expected empty series for bad index, got %d/%d", len(ts), len(vals))
	}
}

func TestStrideFor(t *testing.T) {
	cases := []struct {
		total, ceiling, want int
	}{
		{100, 5000, 1},
		{5000, 5000, 1},
		{10000, 5000, 2},
		{50001, 5000, 10},
		{10, 0, 1},
	}
	for _, c := range cases {
		if got := StrideFor(c.total, c.ceiling); got != c.want {
			t.Errorf("StrideFor(%d, %d): expected %d, got %d", c.total, c.ceiling, got, c.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	path, _, _ := writeRecording(t, 2, true)
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var out bytes.Buffer
	if err := d.WriteCSV(&out); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}

	header := strings.Split(lines[0], ",")
	wantHeader := []string{
		"timestamp",
		"sim/flightmodel/position/elevation",
		"sim/flightmodel/engine/n1[0]",
		"sim/flightmodel/engine/n1[1]",
		"sim/cockpit/warnings/master",
		"sim/aircraft/view/tailnum",
	}
	if len(header) != len(wantHeader) {
		t.Fatalf("expected %d columns, got %d", len(wantHeader), len(header))
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("column %d: expected %q, got %q", i, wantHeader[i], header[i])
		}
	}

	row := strings.Split(lines[2], ",")
	want := []string{"0.5", "1010", "1", "2", "1", "N172SP"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row 2 column %d: expected %q, got %q", i, want[i], row[i])
		}
	}
}
