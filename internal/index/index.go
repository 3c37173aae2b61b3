// Package index is the fingerprint index: an inverted index from
// 32-bit landmark hash to (track_id, offset) postings, persisted to a
// relational store but semantically a hash map.
package index

import (
	"context"
	"errors"
	"time"

	"github.com/media-luna/sonica/internal/fingerprint"
)

// Track is a reference recording row.
type Track struct {
	ID        int64
	Title     string
	Artist    string
	SourceKey string
	CreatedAt time.Time
}

// OffsetPair is a (db_offset, query_offset) alignment candidate
// produced by Lookup, ready for the matcher's histogram step.
type OffsetPair struct {
	DBOffset    uint32
	QueryOffset uint32
}

// ErrDuplicateKey is returned by InsertTrack when source_key already
// exists. Callers are expected to check Exists first — idempotency on
// re-ingest is the caller's responsibility, not the index's.
var ErrDuplicateKey = errors.New("index: source_key already exists")

// Index is the storage contract the matching engine and ingest
// pipeline depend on. A relational store is the only implementation
// here, but nothing above this interface assumes SQL.
type Index interface {
	// InsertTrack atomically creates a track row and its postings.
	// Returns ErrDuplicateKey if sourceKey is already present.
	InsertTrack(ctx context.Context, title, artist, sourceKey string, hashes []fingerprint.Hash) (int64, error)

	// Exists reports whether sourceKey has already been ingested.
	Exists(ctx context.Context, sourceKey string) (bool, error)

	// Lookup returns, for each track with at least one matching
	// posting, the list of (db_offset, query_offset) pairs produced
	// by joining queryHashes against the posting table.
	Lookup(ctx context.Context, queryHashes []fingerprint.Hash) (map[int64][]OffsetPair, error)

	// Get returns a single track's metadata, or nil if absent.
	Get(ctx context.Context, trackID int64) (*Track, error)

	// ListAll returns every track, most-recent first.
	ListAll(ctx context.Context) ([]Track, error)

	// Clear truncates both tracks and postings atomically.
	Clear(ctx context.Context) error

	Close() error
}
