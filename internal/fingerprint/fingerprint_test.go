package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func sineBuffer(n int, freqs []float64, noiseAmp float64, seed uint32) []float32 {
	buf := make([]float32, n)
	rng := seed
	for i := 0; i < n; i++ {
		var v float64
		for _, f := range freqs {
			v += math.Sin(2 * math.Pi * f * float64(i) / SampleRate)
		}
		// cheap deterministic PRNG noise so tests don't depend on math/rand's global state
		rng = rng*1664525 + 1013904223
		noise := (float64(rng%2000)/1000.0 - 1.0) * noiseAmp
		buf[i] = float32(v/float64(len(freqs)) + noise)
	}
	return buf
}

func TestSpectrogramFrameCount(t *testing.T) {
	cases := []int{0, WindowSize - 1, WindowSize, WindowSize + HopSize - 1, WindowSize + HopSize, WindowSize + 5*HopSize}
	for _, n := range cases {
		samples := make([]float32, n)
		spec := Spectrogram(samples)
		want := 0
		if n >= WindowSize {
			want = (n - WindowSize) / HopSize
		}
		assert.Equal(t, want, len(spec), "n=%d", n)
		for _, row := range spec {
			assert.Equal(t, WindowSize/2, len(row))
		}
	}
}

func TestHashPackRoundTrip(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		f1 := rapid.IntRange(0, MaxHashBin-1).Draw(tt, "f1")
		f2 := rapid.IntRange(0, MaxHashBin-1).Draw(tt, "f2")
		dt := rapid.IntRange(MinTargetDelta, MaxTargetDelta).Draw(tt, "dt")

		h := PackHash(f1, f2, dt)
		gotF1, gotF2, gotDt := UnpackHash(h)

		assert.Equal(tt, f1, gotF1)
		assert.Equal(tt, f2, gotF2)
		assert.Equal(tt, dt, gotDt)
	})
}

func TestGenerateHashesRespectsTargetZone(t *testing.T) {
	mk := func(dt int) []Peak { return []Peak{{T: 0, F: 10}, {T: dt, F: 20}} }

	assert.Empty(t, GenerateHashes(mk(4)))
	assert.Len(t, GenerateHashes(mk(5)), 1)
	assert.Len(t, GenerateHashes(mk(50)), 1)
	assert.Empty(t, GenerateHashes(mk(51)))
}

func TestGenerateHashesDropsWideBins(t *testing.T) {
	in500 := []Peak{{T: 0, F: 500}, {T: 10, F: 10}}
	require.Len(t, GenerateHashes(in500), 1)

	in600 := []Peak{{T: 0, F: 600}, {T: 10, F: 10}}
	assert.Empty(t, GenerateHashes(in600))
}

func TestPeaksSatisfyInvariants(t *testing.T) {
	samples := sineBuffer(SampleRate*5, []float64{440, 880, 1400}, 0.05, 42)
	spec := Spectrogram(samples)
	peaks := PickPeaks(spec)

	require.NotEmpty(t, peaks)
	for _, p := range peaks {
		assert.Greater(t, spec[p.T][p.F], NoiseFloor)
		for _, dt := range []int{1, 2} {
			if p.T-dt >= 0 {
				assert.LessOrEqual(t, spec[p.T-dt][p.F], spec[p.T][p.F])
			}
			if p.T+dt < len(spec) {
				assert.LessOrEqual(t, spec[p.T+dt][p.F], spec[p.T][p.F])
			}
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	samples := sineBuffer(SampleRate*3, []float64{440, 660, 880}, 0.02, 7)
	a := Extract(samples)
	b := Extract(samples)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i], b[i])
	}
}
