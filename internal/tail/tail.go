// Package tail follows a recording that is still being written, driving
// Dataset.Poll from a single goroutine so readers only ever observe fully
// appended frames.
package tail

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"xdr-analyzer/internal/dataset"
	"xdr-analyzer/internal/xdr"
)

// DefaultInterval matches the original viewer's live refresh rate.
const DefaultInterval = 500 * time.Millisecond

// Update reports the outcome of one poll that made progress.
type Update struct {
	Added  int  // frames appended by this poll
	Sealed bool // footer observed; no further updates will follow
}

// Follower polls a Dataset whenever its backing file is written, with a
// timer fallback for filesystems that deliver no events. All polling happens
// on the goroutine that calls Run; the Dataset needs no locking of its own.
type Follower struct {
	path     string
	ds       *dataset.Dataset
	interval time.Duration
	logger   *zap.Logger
}

// New returns a Follower for ds, which must have been opened from path.
// A non-positive interval falls back to DefaultInterval; a nil logger
// disables logging.
func New(path string, ds *dataset.Dataset, interval time.Duration, logger *zap.Logger) *Follower {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Follower{path: path, ds: ds, interval: interval, logger: logger}
}

// Run polls until the recording seals or ctx is cancelled, invoking onUpdate
// for every poll that appended frames or observed the footer. Cancellation
// simply stops scheduling the next poll; each poll is a small bounded read
// that is allowed to finish.
func (f *Follower) Run(ctx context.Context, onUpdate func(Update)) error {
	if f.ds.Complete() {
		return nil
	}

	// Watch the containing directory: watching the file itself breaks on
	// editors and recorders that rotate or recreate it.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(f.path), err)
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("following recording",
		zap.String("path", f.path),
		zap.Duration("interval", f.interval))

	warnedMarker := false
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("follow cancelled", zap.Int("frames", f.ds.FrameCount()))
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher closed unexpectedly")
			}
			if event.Name != f.path || !event.Has(fsnotify.Write) {
				continue
			}

		case werr, ok := <-watcher.Errors:
			if ok && werr != nil {
				// Events are best-effort; the ticker still drives progress.
				f.logger.Warn("file watcher error", zap.Error(werr))
			}
			continue

		case <-ticker.C:
		}

		added, err := f.ds.Poll()
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}

		if reason, marker := f.ds.LastStop(); reason == xdr.StopForeignMarker && !warnedMarker {
			warnedMarker = true
			f.logger.Warn("unrecognized frame marker, decoding stopped before it",
				zap.ByteString("marker", marker[:]),
				zap.Int("frames", f.ds.FrameCount()))
		}

		if added > 0 || f.ds.Complete() {
			onUpdate(Update{Added: added, Sealed: f.ds.Complete()})
		}
		if f.ds.Complete() {
			f.logger.Info("recording sealed",
				zap.Int("frames", f.ds.FrameCount()),
				zap.Uint32("declared", f.ds.Footer().TotalFrames))
			return nil
		}
	}
}
