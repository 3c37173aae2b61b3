package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reindexCmd)
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Clear the index and rebuild it from the tracks directory",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		p, err := buildPipeline(cfg)
		if err != nil {
			fatalf("reindex: %v", err)
		}
		defer p.Index.Close()

		count, err := p.ReindexAll(context.Background(), cfg.Tracks.Dir)
		if err != nil {
			fatalf("reindex: %v", err)
		}
		fmt.Printf("reindexed %d tracks from %s\n", count, cfg.Tracks.Dir)
	},
}
