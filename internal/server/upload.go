package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// spoolToTracksDir writes an uploaded multipart part into dir under a
// collision-proof name derived from the original filename, returning
// the path the pipeline should treat as both the decode source and
// the source_key default.
func spoolToTracksDir(r io.Reader, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("server: create tracks dir: %w", err)
	}

	if filename == "" {
		filename = "upload"
	}
	ext := filepath.Ext(filename)
	base := filename[:len(filename)-len(ext)]
	destPath := filepath.Join(dir, fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext))

	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("server: create %s: %w", destPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, maxUploadBytes)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("server: spool upload: %w", err)
	}
	return destPath, nil
}
