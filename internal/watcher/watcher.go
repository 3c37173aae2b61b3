// Package watcher monitors the tracks directory for new files and
// feeds them into the ingest pipeline, the same shape as the
// original's notify-based file watcher.
package watcher

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/media-luna/sonica/internal/audio"
	"github.com/media-luna/sonica/internal/logging"
	"github.com/media-luna/sonica/internal/pipeline"
)

// settleDelay lets a file finish being written before it's read; a
// Create event fires the moment a file is opened for writing, not
// when it's closed.
const settleDelay = 500 * time.Millisecond

// Watcher observes a single directory and ingests new audio files as
// they appear.
type Watcher struct {
	dir string
	fsw *fsnotify.Watcher
	p   *pipeline.Pipeline
}

// New starts watching dir. Call Run to begin processing events.
func New(dir string, p *pipeline.Pipeline) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, fsw: fsw, p: p}, nil
}

// Run processes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !audio.IsAudioFile(event.Name) {
				continue
			}
			go w.ingestAfterSettle(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watcher: fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) ingestAfterSettle(ctx context.Context, path string) {
	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return
	}

	title, artist := audio.ExtractMetadata(path)
	_, created, err := w.p.Ingest(ctx, path, path, title, artist)
	if err != nil {
		logging.Warn("watcher: ingest failed", "path", path, "err", err)
		return
	}
	if created {
		logging.Info("watcher: ingested new file", "path", path)
	}
}
