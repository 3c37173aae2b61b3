package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/sonica/internal/fingerprint"
	"github.com/media-luna/sonica/internal/index"
	"github.com/media-luna/sonica/internal/matcher"
)

// These exercise spec.md §8's end-to-end scenarios directly over the
// fingerprint/index/matcher chain, without routing through the
// external transcoder or decoder — the collaborators spec.md treats as
// out of scope. What's under test here is the core: spectrogram, peak
// picking, hashing, index storage, and histogram matching.

// synthSamples builds a deterministic stand-in for scenario 2's "sum of
// 5 stationary sinusoids ... with additive white noise at -20dB": a
// seeded linear-congruential PRNG keeps the test reproducible without
// depending on math/rand's global state.
func synthSamples(seconds float64, freqs []float64, noiseAmp float64, seed uint32) []float32 {
	n := int(seconds * fingerprint.SampleRate)
	buf := make([]float32, n)
	rng := seed
	for i := 0; i < n; i++ {
		var v float64
		for _, f := range freqs {
			v += math.Sin(2 * math.Pi * f * float64(i) / fingerprint.SampleRate)
		}
		rng = rng*1664525 + 1013904223
		noise := (float64(rng%2000)/1000.0 - 1.0) * noiseAmp
		buf[i] = float32(v/float64(len(freqs)) + noise)
	}
	return buf
}

func noiseOnlySamples(seconds float64, seed uint32) []float32 {
	n := int(seconds * fingerprint.SampleRate)
	buf := make([]float32, n)
	rng := seed
	for i := 0; i < n; i++ {
		rng = rng*1664525 + 1013904223
		buf[i] = float32(float64(rng%2000)/1000.0 - 1.0)
	}
	return buf
}

func recognizeSamples(t *testing.T, idx index.Index, samples []float32) (*matcher.Result, bool) {
	t.Helper()
	hashes := fingerprint.Extract(samples)
	if len(hashes) == 0 {
		return nil, false
	}
	grouped, err := idx.Lookup(context.Background(), hashes)
	require.NoError(t, err)
	return matcher.Match(grouped, matcher.DefaultThreshold)
}

func TestEmptyCorpusRecognitionMisses(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	samples := synthSamples(5, []float64{440, 660}, 0.05, 1)
	_, ok := recognizeSamples(t, idx, samples)
	assert.False(t, ok)
}

func TestSelfRecognitionScoresHigh(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	freqs := []float64{440, 660, 880, 1200, 1500}
	samples := synthSamples(30, freqs, 0.1, 42) // -20dB ~= amplitude ratio 0.1

	hashes := fingerprint.Extract(samples)
	require.NotEmpty(t, hashes)

	trackID, err := idx.InsertTrack(context.Background(), "A", "X", "a.wav", hashes)
	require.NoError(t, err)

	result, ok := recognizeSamples(t, idx, samples)
	require.True(t, ok)
	assert.Equal(t, trackID, result.TrackID)
	assert.GreaterOrEqual(t, result.Score, 0.98)
}

func TestExcerptRecognitionMatchesFullTrack(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	freqs := []float64{440, 660, 880, 1200, 1500}
	samples := synthSamples(30, freqs, 0.1, 42)

	trackID, err := idx.InsertTrack(context.Background(), "A", "X", "a.wav", fingerprint.Extract(samples))
	require.NoError(t, err)

	excerpt := samples[160000:240000] // 5s starting at 10s
	result, ok := recognizeSamples(t, idx, excerpt)
	require.True(t, ok)
	assert.Equal(t, trackID, result.TrackID)
	assert.GreaterOrEqual(t, result.Score, 0.8)
}

func TestNonMatchingNoiseIsRejected(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	freqs := []float64{440, 660, 880, 1200, 1500}
	samples := synthSamples(30, freqs, 0.1, 42)
	_, err = idx.InsertTrack(context.Background(), "A", "X", "a.wav", fingerprint.Extract(samples))
	require.NoError(t, err)

	noise := noiseOnlySamples(5, 999)
	_, ok := recognizeSamples(t, idx, noise)
	assert.False(t, ok)
}

func TestDistinctTracksDoNotCrossMatch(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	aSamples := synthSamples(20, []float64{440, 660, 880}, 0.1, 1)
	bSamples := synthSamples(20, []float64{523, 784, 1046}, 0.1, 2)

	aID, err := idx.InsertTrack(ctx, "A", "X", "a.wav", fingerprint.Extract(aSamples))
	require.NoError(t, err)
	_, err = idx.InsertTrack(ctx, "B", "Y", "b.wav", fingerprint.Extract(bSamples))
	require.NoError(t, err)

	excerpt := aSamples[80000:160000]
	result, ok := recognizeSamples(t, idx, excerpt)
	require.True(t, ok)
	assert.Equal(t, aID, result.TrackID)
}

func TestClearThenReingestReplacesCorpus(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	aSamples := synthSamples(20, []float64{440, 660, 880}, 0.1, 1)
	_, err = idx.InsertTrack(ctx, "A", "X", "a.wav", fingerprint.Extract(aSamples))
	require.NoError(t, err)

	require.NoError(t, idx.Clear(ctx))

	bSamples := synthSamples(20, []float64{523, 784, 1046}, 0.1, 2)
	bID, err := idx.InsertTrack(ctx, "B", "Y", "b.wav", fingerprint.Extract(bSamples))
	require.NoError(t, err)

	all, err := idx.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, bID, all[0].ID)

	_, ok := recognizeSamples(t, idx, aSamples[:80000])
	assert.False(t, ok)
}
