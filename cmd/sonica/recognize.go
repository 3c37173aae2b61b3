package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recognizeCmd)
}

var recognizeCmd = &cobra.Command{
	Use:   "recognize [file]",
	Short: "Identify a query recording against the index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		data, err := os.ReadFile(args[0])
		if err != nil {
			fatalf("recognize: %v", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			fatalf("recognize: %v", err)
		}
		defer p.Index.Close()

		match, err := p.Recognize(context.Background(), data)
		if err != nil {
			fatalf("recognize: %v", err)
		}
		if match == nil {
			fmt.Println("no match")
			return
		}
		fmt.Printf("match: %q by %q (score %.3f)\n", match.Track.Title, match.Track.Artist, match.Score)
	},
}
