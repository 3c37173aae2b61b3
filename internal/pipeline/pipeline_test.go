package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/sonica/internal/audio"
	"github.com/media-luna/sonica/internal/index"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	p, err := New(idx, audio.NewTranscoder("ffmpeg"), t.TempDir())
	require.NoError(t, err)
	return p
}

func TestRecognizeRejectsUndersizedPayload(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Recognize(context.Background(), []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIngestSkipsAlreadyIndexedSourceKey(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.Index.InsertTrack(ctx, "Song", "Band", "already-there", nil)
	require.NoError(t, err)

	id, created, err := p.Ingest(ctx, "/does/not/matter.wav", "already-there", "Song", "Band")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, id)
}
