// Command sonica is the CLI entry point: serve the recognition API,
// ingest or recognize a single file from the shell, list or clear the
// index, and rebuild it from a directory of reference tracks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/media-luna/sonica/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sonica",
	Short: "Landmark-based audio fingerprinting and recognition",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sonica: "+err.Error())
		os.Exit(1)
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
