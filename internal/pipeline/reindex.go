package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/media-luna/sonica/internal/audio"
	"github.com/media-luna/sonica/internal/logging"
)

// LoadDirectory walks dir and ingests every audio file not already
// indexed, bounded by CPU count — the "bulk re-indexing at startup"
// data-parallel worker pool from spec §5. Already-ingested files are
// skipped cheaply via Index.Exists, so this is safe to call on every
// startup.
func (p *Pipeline) LoadDirectory(ctx context.Context, dir string) (int, error) {
	return p.walkAndIngest(ctx, dir, false)
}

// ReindexAll clears the index and rebuilds it from scratch by walking
// dir, mirroring the original's standalone reindex binary.
func (p *Pipeline) ReindexAll(ctx context.Context, dir string) (int, error) {
	if err := p.Index.Clear(ctx); err != nil {
		return 0, fmt.Errorf("pipeline: clear index: %w", err)
	}
	return p.walkAndIngest(ctx, dir, true)
}

func (p *Pipeline) walkAndIngest(ctx context.Context, dir string, force bool) (int, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && audio.IsAudioFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("pipeline: walk %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return 0, nil
	}

	bar := progressbar.Default(int64(len(paths)), "indexing tracks")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var indexed int32
	for _, path := range paths {
		path := path
		g.Go(func() error {
			defer bar.Add(1)

			sourceKey := path
			if !force {
				exists, err := p.Index.Exists(ctx, sourceKey)
				if err != nil {
					return fmt.Errorf("pipeline: exists check for %s: %w", path, err)
				}
				if exists {
					return nil
				}
			}

			title, artist := audio.ExtractMetadata(path)
			_, created, err := p.Ingest(ctx, path, sourceKey, title, artist)
			if err != nil {
				logging.Warn("reindex: skipping file", "path", path, "err", err)
				return nil
			}
			if created {
				atomic.AddInt32(&indexed, 1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(indexed), fmt.Errorf("pipeline: bulk index: %w", err)
	}

	logging.Info("reindex complete", "scanned", len(paths), "indexed", indexed)
	return int(indexed), nil
}
