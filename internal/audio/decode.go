// Package audio wraps the collaborators the fingerprint pipeline
// depends on but does not own: the external transcoder subprocess,
// in-process WAV decoding, and best-effort tag-based metadata
// extraction.
package audio

import (
	"fmt"
	"os"

	"github.com/faiface/beep/wav"
)

const expectedSampleRate = 16000

// ErrNoSamples is returned when a file decodes to zero samples.
var ErrNoSamples = fmt.Errorf("audio: no samples decoded")

// Decode reads a WAV file already normalized to 16kHz mono PCM by the
// transcoder and returns its samples as float32 in [-1, 1]. Only the
// first channel is read, per contract — the file is mono by
// construction, but beep always exposes stereo frames.
func Decode(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}
	defer streamer.Close()

	if int(format.SampleRate) != expectedSampleRate {
		return nil, fmt.Errorf("audio: %s is %dHz, expected %dHz (transcoder should have normalized it)",
			path, int(format.SampleRate), expectedSampleRate)
	}

	var samples []float32
	buf := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, float32(buf[i][0]))
		}
		if !ok {
			break
		}
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	return samples, nil
}
