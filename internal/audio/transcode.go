package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Transcoder normalizes an arbitrary container/codec into 16kHz mono
// PCM WAV by shelling out to an external binary (ffmpeg by default).
// This is deliberately a thin exec.Command wrapper, not a library
// binding: the contract is the subprocess's command-line interface,
// not an in-process API.
type Transcoder struct {
	Binary string
}

// NewTranscoder returns a Transcoder invoking the given binary name
// (looked up on PATH), defaulting to "ffmpeg".
func NewTranscoder(binary string) *Transcoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{Binary: binary}
}

// Transcode runs the transcoder against inputPath, writing 16kHz mono
// PCM WAV to outputPath. A non-zero exit status or an empty output
// file is reported as an error.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, t.Binary,
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("audio: %s failed: %w: %s", t.Binary, err, output)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("audio: transcoder produced no output file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("audio: transcoder produced an empty output file")
	}

	return nil
}
