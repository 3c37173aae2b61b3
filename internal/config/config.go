// Package config loads sonica's YAML configuration, the same way the
// teacher's configs.LoadConfig reads config.yaml next to the binary.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs the service needs. Non-core
// collaborators (transcoder binary, watch directory, server port) sit
// alongside the index driver selection.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Index struct {
		Driver string `yaml:"driver"` // "sqlite" | "postgres" | "mysql"
		DSN    string `yaml:"dsn"`
	} `yaml:"index"`

	Transcoder struct {
		Binary string `yaml:"binary"`
	} `yaml:"transcoder"`

	Tracks struct {
		Dir   string `yaml:"dir"`
		Watch bool   `yaml:"watch"`
	} `yaml:"tracks"`
}

// Default returns the configuration sonica runs with when no file is
// present: an embedded SQLite index and an ffmpeg transcoder.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8000
	cfg.Index.Driver = "sqlite"
	cfg.Index.DSN = "sonica.db"
	cfg.Transcoder.Binary = "ffmpeg"
	cfg.Tracks.Dir = "tracks"
	cfg.Tracks.Watch = true
	return cfg
}

// Load reads path if it exists (Default() otherwise) and applies the
// PORT environment variable override from spec §6.
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Server.Port = port
	}

	return cfg, nil
}
