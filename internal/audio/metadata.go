package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// ExtractMetadata recovers a title and artist for a reference file.
// It prefers embedded ID3/tag metadata and falls back to the
// filename stem, mirroring the contract in spec §1(e): metadata
// extraction from filenames is an external collaborator, not core.
func ExtractMetadata(path string) (title, artist string) {
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if m, err := tag.ReadFrom(f); err == nil {
			title = strings.TrimSpace(m.Title())
			artist = strings.TrimSpace(m.Artist())
		}
	}

	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if artist == "" {
		artist = "Unknown"
	}

	return title, artist
}

// IsAudioFile reports whether path's extension matches a container
// the transcoder is expected to handle.
func IsAudioFile(path string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "mp3", "wav", "flac", "m4a", "aac", "ogg", "opus", "wma":
		return true
	default:
		return false
	}
}
