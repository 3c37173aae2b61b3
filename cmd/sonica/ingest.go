package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/media-luna/sonica/internal/audio"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Add a single reference recording to the index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		path := args[0]

		p, err := buildPipeline(cfg)
		if err != nil {
			fatalf("ingest: %v", err)
		}
		defer p.Index.Close()

		title, artist := audio.ExtractMetadata(path)
		id, created, err := p.Ingest(context.Background(), path, path, title, artist)
		if err != nil {
			fatalf("ingest: %v", err)
		}
		if !created {
			fmt.Printf("already indexed: %s\n", path)
			return
		}
		fmt.Printf("indexed track %d: %q by %q\n", id, title, artist)
	},
}
