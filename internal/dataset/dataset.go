// Package dataset holds a decoded XDR recording and derives the plottable
// series catalog from it. A Dataset is created by fully decoding whatever the
// file currently contains and can then be grown by Poll while a recorder is
// still appending. Frames are append-only; once the footer has been observed
// the dataset is sealed and never touches the file again.
//
// A Dataset is owned by one logical task: the single mutation path is Poll,
// and callers that poll from a background goroutine must not run reads
// concurrently with it.
package dataset

import (
	"fmt"
	"io"
	"os"

	"xdr-analyzer/internal/xdr"
)

// Dataset is a recording: header, dataref schema, the frames decoded so far
// and the footer once it appears.
type Dataset struct {
	path   string
	header xdr.FileHeader
	defs   []xdr.DatarefDef
	frames []xdr.Frame
	footer *xdr.Footer

	stream *xdr.FrameStream
	offset int64 // committed file offset; next poll resumes here

	lastStop   xdr.StopReason
	lastMarker [4]byte
}

// Open decodes an .xdr file. Header and definition-table errors are fatal;
// running out of bytes inside the frame section is not, it just means the
// recording is still in progress (or was cut short) and Poll may find more
// later.
func Open(path string) (*Dataset, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	header, n, err := xdr.DecodeHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	defs, m, err := xdr.DecodeDatarefs(buf[n:], int(header.DatarefCount))
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataref definitions: %w", err)
	}

	d := &Dataset{
		path:   path,
		header: header,
		defs:   defs,
		stream: xdr.NewFrameStream(defs),
		offset: int64(n + m),
	}
	d.apply(d.stream.Decode(buf[n+m:]))
	return d, nil
}

// apply commits one decode pass: appends its frames, advances the committed
// offset, and records the footer and stop diagnostic.
func (d *Dataset) apply(res xdr.DecodeResult) int {
	d.frames = append(d.frames, res.Frames...)
	d.offset += int64(res.Consumed)
	d.lastStop = res.Stop
	d.lastMarker = res.Marker
	if res.Footer != nil {
		d.footer = res.Footer
	}
	return len(res.Frames)
}

// Poll re-reads the file from the committed offset and appends any frames
// that have been completed since the last pass. It returns the number of new
// frames, 0 when nothing usable was appended. Once the dataset is sealed,
// Poll is a no-op.
func (d *Dataset) Poll() (int, error) {
	if d.footer != nil {
		return 0, nil
	}

	f, err := os.Open(d.path)
	if err != nil {
		return 0, fmt.Errorf("failed to reopen file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(d.offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to committed offset: %w", err)
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read appended data: %w", err)
	}

	return d.apply(d.stream.Decode(buf)), nil
}

// Header returns the file header.
func (d *Dataset) Header() xdr.FileHeader { return d.header }

// Datarefs returns the dataref definitions in declared order.
func (d *Dataset) Datarefs() []xdr.DatarefDef { return d.defs }

// FrameCount returns the number of frames decoded so far.
func (d *Dataset) FrameCount() int { return len(d.frames) }

// Frame returns frame i in arrival order.
func (d *Dataset) Frame(i int) xdr.Frame { return d.frames[i] }

// Complete reports whether the footer has been observed.
func (d *Dataset) Complete() bool { return d.footer != nil }

// Footer returns the footer, or nil while the recording is in progress.
func (d *Dataset) Footer() *xdr.Footer { return d.footer }

// Duration returns the recorded wall-clock duration in seconds. It is only
// known once the recording is sealed.
func (d *Dataset) Duration() (uint64, bool) {
	if d.footer == nil {
		return 0, false
	}
	return d.footer.EndTime - d.header.StartTime, true
}

// LastStop reports why the most recent decode pass stopped, along with the
// offending tag when the reason is a foreign marker. Decoding stops safely in
// that case rather than failing, but callers can surface the tag instead of
// masking possible corruption.
func (d *Dataset) LastStop() (xdr.StopReason, [4]byte) {
	return d.lastStop, d.lastMarker
}
