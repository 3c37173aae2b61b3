package fingerprint

import (
	"math"
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
)

// hannWindow is cached at package scope since it depends only on
// WindowSize, the same way the teacher precomputes band tables once.
var hannWindow = buildHannWindow(WindowSize)

func buildHannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Spectrogram computes the magnitude STFT of a mono sample buffer
// using a Hann window and go-dsp's real-input FFT. It returns an
// N x (WindowSize/2) row-major matrix of non-negative magnitudes,
// where N = max(0, (len(samples)-WindowSize)/HopSize).
func Spectrogram(samples []float32) [][]float64 {
	if len(samples) < WindowSize {
		return nil
	}

	numFrames := (len(samples) - WindowSize) / HopSize
	spec := make([][]float64, numFrames)

	frame := make([]float64, WindowSize)
	for t := 0; t < numFrames; t++ {
		start := t * HopSize
		for i := 0; i < WindowSize; i++ {
			frame[i] = float64(samples[start+i]) * hannWindow[i]
		}

		transformed := fft.FFTReal(frame)
		row := make([]float64, WindowSize/2)
		for k := 0; k < WindowSize/2; k++ {
			row[k] = cmplx.Abs(transformed[k])
		}
		spec[t] = row
	}

	return spec
}
