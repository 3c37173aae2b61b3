package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(clearCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every indexed track",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		p, err := buildPipeline(cfg)
		if err != nil {
			fatalf("list: %v", err)
		}
		defer p.Index.Close()

		tracks, err := p.Index.ListAll(context.Background())
		if err != nil {
			fatalf("list: %v", err)
		}
		if len(tracks) == 0 {
			fmt.Println("index is empty")
			return
		}
		for _, t := range tracks {
			fmt.Printf("%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Artist, t.SourceKey)
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every track from the index",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		p, err := buildPipeline(cfg)
		if err != nil {
			fatalf("clear: %v", err)
		}
		defer p.Index.Close()

		if err := p.Index.Clear(context.Background()); err != nil {
			fatalf("clear: %v", err)
		}
		fmt.Println("index cleared")
	},
}
