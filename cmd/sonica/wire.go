package main

import (
	"fmt"
	"os"

	"github.com/media-luna/sonica/internal/audio"
	"github.com/media-luna/sonica/internal/config"
	"github.com/media-luna/sonica/internal/index"
	"github.com/media-luna/sonica/internal/pipeline"
)

// buildPipeline opens the configured index and transcoder and wires
// them into a Pipeline. Every subcommand but "serve" uses this
// directly; "serve" wraps it with a watcher and HTTP server.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	idx, err := index.Open(index.Driver(cfg.Index.Driver), cfg.Index.DSN)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	transcoder := audio.NewTranscoder(cfg.Transcoder.Binary)

	tempDir, err := os.MkdirTemp("", "sonica-pipeline-*")
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	p, err := pipeline.New(idx, transcoder, tempDir)
	if err != nil {
		idx.Close()
		return nil, err
	}
	return p, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "sonica: "+format+"\n", args...)
	os.Exit(1)
}
