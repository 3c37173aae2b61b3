// Package fingerprint implements the landmark-based acoustic
// fingerprinting core: spectrogram generation, banded peak picking,
// and landmark-pair hashing.
package fingerprint

const (
	// SampleRate is the only rate the pipeline accepts; everything
	// upstream (the transcoder) is responsible for getting audio here.
	SampleRate = 16000

	// WindowSize and HopSize fix the STFT resolution: 256ms windows,
	// 50% overlap.
	WindowSize = 4096
	HopSize    = 2048

	// NoiseFloor is an absolute magnitude threshold, not relative —
	// a consequence of FFT magnitudes being unnormalized.
	NoiseFloor = 1.0

	// MinTargetDelta and MaxTargetDelta bound the target zone in frames.
	MinTargetDelta = 5
	MaxTargetDelta = 50

	// MaxHashBin is the field width cap (9 bits): peaks at or above
	// this bin are dropped from hashing.
	MaxHashBin = 512
)

// bands are the frequency bin ranges searched independently for a
// local maximum each frame. They must not overlap.
var bands = [4][2]int{
	{0, 50},
	{50, 200},
	{200, 500},
	{500, WindowSize / 2},
}

// Peak is a single time-frequency landmark: frame index t, bin index f.
type Peak struct {
	T int
	F int
}

// Hash is a 32-bit landmark-pair hash paired with the anchor's frame
// offset, ready for indexing or lookup.
type Hash struct {
	Value  uint32
	Offset uint32
}

// Extract runs the full fingerprint pipeline over a mono 16kHz sample
// buffer: spectrogram -> peaks -> hashes.
func Extract(samples []float32) []Hash {
	spec := Spectrogram(samples)
	peaks := PickPeaks(spec)
	return GenerateHashes(peaks)
}
