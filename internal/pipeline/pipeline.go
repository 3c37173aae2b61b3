// Package pipeline orchestrates the two entry points the spec names:
// Ingest (reference audio -> index) and Recognize (query audio ->
// best match), wiring together the transcoder, decoder, fingerprint
// extractor, index, and matcher.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/media-luna/sonica/internal/audio"
	"github.com/media-luna/sonica/internal/fingerprint"
	"github.com/media-luna/sonica/internal/index"
	"github.com/media-luna/sonica/internal/logging"
	"github.com/media-luna/sonica/internal/matcher"
)

// ErrInvalidInput is returned for recognition requests too small to
// plausibly contain audio (spec §7: bytes < 1000).
var ErrInvalidInput = errors.New("pipeline: audio payload too small")

// Match is the caller-facing recognition result, joining the
// matcher's score to the winning track's metadata.
type Match struct {
	Track index.Track
	Score float64
}

// Pipeline holds the collaborators Ingest and Recognize share.
type Pipeline struct {
	Index      index.Index
	Transcoder *audio.Transcoder
	TempDir    string
	Threshold  int
}

// New wires a Pipeline. TempDir is created if it doesn't exist.
func New(idx index.Index, transcoder *audio.Transcoder, tempDir string) (*Pipeline, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create temp dir: %w", err)
	}
	return &Pipeline{
		Index:      idx,
		Transcoder: transcoder,
		TempDir:    tempDir,
		Threshold:  matcher.DefaultThreshold,
	}, nil
}

// Ingest adds a reference recording to the index under sourceKey.
// Already-ingested keys are a no-op (created=false), per spec §3's
// "re-ingesting the same key is a no-op (early return before decode)".
func (p *Pipeline) Ingest(ctx context.Context, sourcePath, sourceKey, title, artist string) (trackID int64, created bool, err error) {
	exists, err := p.Index.Exists(ctx, sourceKey)
	if err != nil {
		return 0, false, fmt.Errorf("pipeline: exists check: %w", err)
	}
	if exists {
		logging.Info("ingest: already exists", "source_key", sourceKey)
		return 0, false, nil
	}

	hashes, cleanup, err := p.fingerprintFile(ctx, sourcePath)
	defer cleanup()
	if err != nil {
		return 0, false, err
	}

	id, err := p.Index.InsertTrack(ctx, title, artist, sourceKey, hashes)
	if err != nil {
		if errors.Is(err, index.ErrDuplicateKey) {
			// Lost a race against a concurrent ingest of the same key;
			// the loser's transcode work is wasted but correctness holds.
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("pipeline: insert track: %w", err)
	}

	logging.Info("ingest: indexed", "source_key", sourceKey, "track_id", id, "hashes", len(hashes))
	return id, true, nil
}

// Recognize identifies the best-matching reference track for a raw
// audio buffer. A nil *Match with a nil error means "no match", not a
// failure — the matcher never errors per spec §7.
func (p *Pipeline) Recognize(ctx context.Context, audioBytes []byte) (*Match, error) {
	if len(audioBytes) < 1000 {
		return nil, ErrInvalidInput
	}

	inputPath := filepath.Join(p.TempDir, uuid.NewString())
	if err := os.WriteFile(inputPath, audioBytes, 0o644); err != nil {
		return nil, fmt.Errorf("pipeline: write temp input: %w", err)
	}
	defer os.Remove(inputPath)

	hashes, cleanup, err := p.fingerprintFile(ctx, inputPath)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	if len(hashes) == 0 {
		return nil, nil
	}

	grouped, err := p.Index.Lookup(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("pipeline: lookup: %w", err)
	}

	result, ok := matcher.Match(grouped, p.Threshold)
	if !ok {
		return nil, nil
	}

	track, err := p.Index.Get(ctx, result.TrackID)
	if err != nil {
		return nil, fmt.Errorf("pipeline: get track: %w", err)
	}
	if track == nil {
		// Referential integrity violated underneath us; treat as no match
		// rather than surfacing an internal inconsistency to the caller.
		logging.Warn("recognize: matched track vanished", "track_id", result.TrackID)
		return nil, nil
	}

	return &Match{Track: *track, Score: result.Score}, nil
}

// fingerprintFile transcodes sourcePath to 16kHz mono WAV, decodes it,
// and extracts hashes. The returned cleanup func removes the
// transcoded temp file on every exit path and is always safe to call.
func (p *Pipeline) fingerprintFile(ctx context.Context, sourcePath string) ([]fingerprint.Hash, func(), error) {
	outputPath := filepath.Join(p.TempDir, uuid.NewString()+"_processed.wav")
	cleanup := func() { os.Remove(outputPath) }

	if err := p.Transcoder.Transcode(ctx, sourcePath, outputPath); err != nil {
		return nil, cleanup, fmt.Errorf("pipeline: transcode: %w", err)
	}

	samples, err := audio.Decode(outputPath)
	if err != nil {
		return nil, cleanup, fmt.Errorf("pipeline: decode: %w", err)
	}

	return fingerprint.Extract(samples), cleanup, nil
}
