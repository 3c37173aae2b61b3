package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-luna/sonica/internal/index"
	"github.com/media-luna/sonica/internal/pipeline"
)

func TestMatchJSONNil(t *testing.T) {
	assert.Nil(t, matchJSON(nil))
}

func TestMatchJSONPopulated(t *testing.T) {
	m := &pipeline.Match{
		Track: index.Track{Title: "Song", Artist: "Band"},
		Score: 0.75,
	}
	got := matchJSON(m)
	assert.Equal(t, "Song", got["title"])
	assert.Equal(t, "Band", got["artist"])
	assert.Equal(t, 0.75, got["score"])
}

func TestHealthEndpoint(t *testing.T) {
	idx, err := index.Open(index.SQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer idx.Close()

	p, err := pipeline.New(idx, nil, t.TempDir())
	require.NoError(t, err)

	srv := New(p, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
