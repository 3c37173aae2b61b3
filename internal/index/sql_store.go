package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/media-luna/sonica/internal/fingerprint"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names the three backends the spec's "pluggable relational
// store" contract supports.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
	MySQL    Driver = "mysql"
)

// lookupBatchSize caps the number of hashes per IN(...) query, the
// same defensive batching the teacher used against MySQL's bound
// placeholder limit.
const lookupBatchSize = 900

// sqlStore is the single Index implementation, parameterized over the
// three supported drivers. The teacher guards its single connection
// with a process-wide mutex; we upgrade to a RWMutex per the design
// note's own recommendation, since readers (Lookup/Get/ListAll/Exists)
// vastly outnumber writers (InsertTrack/Clear) in a recognition
// service.
type sqlStore struct {
	db     *sql.DB
	driver Driver
	mu     sync.RWMutex
}

// Open connects to driver at dsn and ensures the schema exists.
func Open(driver Driver, dsn string) (Index, error) {
	sqlDriverName := string(driver)
	if driver == SQLite {
		sqlDriverName = "sqlite"
	}

	db, err := sql.Open(sqlDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("index: ping %s: %w", driver, err)
	}
	if driver == SQLite {
		db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer at a time
	}

	s := &sqlStore{db: db, driver: driver}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) createSchema() error {
	var stmts []string

	switch s.driver {
	case SQLite:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS tracks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT,
				artist TEXT,
				source_key TEXT UNIQUE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS postings (
				hash INTEGER NOT NULL,
				track_id INTEGER NOT NULL,
				offset INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_postings_hash ON postings(hash)`,
		}
	case Postgres:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS tracks (
				id BIGSERIAL PRIMARY KEY,
				title TEXT,
				artist TEXT,
				source_key TEXT UNIQUE,
				created_at TIMESTAMP DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS postings (
				hash BIGINT NOT NULL,
				track_id BIGINT NOT NULL,
				"offset" BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_postings_hash ON postings(hash)`,
		}
	case MySQL:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS tracks (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				title TEXT,
				artist TEXT,
				source_key VARCHAR(767) UNIQUE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS postings (
				hash BIGINT NOT NULL,
				track_id BIGINT NOT NULL,
				` + "`offset`" + ` BIGINT NOT NULL
			)`,
		}
	default:
		return fmt.Errorf("index: unsupported driver %q", s.driver)
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("index: schema: %w", err)
		}
	}

	if s.driver == MySQL {
		// MySQL (pre-8.0) lacks CREATE INDEX IF NOT EXISTS; tolerate
		// "already exists" on repeated Open calls.
		if _, err := s.db.Exec(`CREATE INDEX idx_postings_hash ON postings(hash)`); err != nil &&
			!strings.Contains(err.Error(), "Duplicate key name") {
			return fmt.Errorf("index: schema: %w", err)
		}
	}

	return nil
}

// offsetCol quotes the "offset" column the way each driver requires.
func (s *sqlStore) offsetCol() string {
	switch s.driver {
	case Postgres:
		return `"offset"`
	case MySQL:
		return "`offset`"
	default:
		return "offset"
	}
}

// ph returns the nth (1-indexed) placeholder for this driver.
func (s *sqlStore) ph(n int) string {
	if s.driver == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *sqlStore) isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	switch s.driver {
	case SQLite:
		return strings.Contains(msg, "UNIQUE constraint failed")
	case Postgres:
		return strings.Contains(msg, "duplicate key value violates unique constraint")
	case MySQL:
		return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "Error 1062")
	}
	return false
}

func (s *sqlStore) InsertTrack(ctx context.Context, title, artist, sourceKey string, hashes []fingerprint.Hash) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	var trackID int64
	insertTrackSQL := fmt.Sprintf(
		"INSERT INTO tracks (title, artist, source_key) VALUES (%s, %s, %s)",
		s.ph(1), s.ph(2), s.ph(3),
	)

	if s.driver == Postgres {
		row := tx.QueryRowContext(ctx, insertTrackSQL+" RETURNING id", title, artist, sourceKey)
		if err := row.Scan(&trackID); err != nil {
			if s.isDuplicateKeyErr(err) {
				return 0, ErrDuplicateKey
			}
			return 0, fmt.Errorf("index: insert track: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, insertTrackSQL, title, artist, sourceKey)
		if err != nil {
			if s.isDuplicateKeyErr(err) {
				return 0, ErrDuplicateKey
			}
			return 0, fmt.Errorf("index: insert track: %w", err)
		}
		trackID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("index: last insert id: %w", err)
		}
	}

	insertPostingSQL := fmt.Sprintf(
		"INSERT INTO postings (hash, track_id, %s) VALUES (%s, %s, %s)",
		s.offsetCol(), s.ph(1), s.ph(2), s.ph(3),
	)
	stmt, err := tx.PrepareContext(ctx, insertPostingSQL)
	if err != nil {
		return 0, fmt.Errorf("index: prepare postings: %w", err)
	}
	defer stmt.Close()

	for _, h := range hashes {
		if _, err := stmt.ExecContext(ctx, int64(h.Value), trackID, int64(h.Offset)); err != nil {
			return 0, fmt.Errorf("index: insert posting: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("index: commit: %w", err)
	}

	return trackID, nil
}

func (s *sqlStore) Exists(ctx context.Context, sourceKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT 1 FROM tracks WHERE source_key = %s LIMIT 1", s.ph(1))
	var dummy int
	err := s.db.QueryRowContext(ctx, query, sourceKey).Scan(&dummy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("index: exists: %w", err)
	}
	return true, nil
}

func (s *sqlStore) Lookup(ctx context.Context, queryHashes []fingerprint.Hash) (map[int64][]OffsetPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grouped := make(map[int64][]OffsetPair)
	if len(queryHashes) == 0 {
		return grouped, nil
	}

	// hash value -> every query offset that produced it (usually one,
	// but duplicate hashes at different offsets are legal).
	queryOffsetsByHash := make(map[int64][]uint32, len(queryHashes))
	order := make([]int64, 0, len(queryHashes))
	for _, h := range queryHashes {
		key := int64(h.Value)
		if _, seen := queryOffsetsByHash[key]; !seen {
			order = append(order, key)
		}
		queryOffsetsByHash[key] = append(queryOffsetsByHash[key], h.Offset)
	}

	for start := 0; start < len(order); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(order) {
			end = len(order)
		}
		batch := order[start:end]

		placeholders := make([]string, len(batch))
		args := make([]interface{}, len(batch))
		for i, h := range batch {
			placeholders[i] = s.ph(i + 1)
			args[i] = h
		}

		query := fmt.Sprintf(
			"SELECT hash, track_id, %s FROM postings WHERE hash IN (%s)",
			s.offsetCol(), strings.Join(placeholders, ","),
		)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("index: lookup: %w", err)
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var hashVal, trackID, dbOffset int64
				if err := rows.Scan(&hashVal, &trackID, &dbOffset); err != nil {
					return fmt.Errorf("index: lookup scan: %w", err)
				}
				for _, qOffset := range queryOffsetsByHash[hashVal] {
					grouped[trackID] = append(grouped[trackID], OffsetPair{
						DBOffset:    uint32(dbOffset),
						QueryOffset: qOffset,
					})
				}
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	return grouped, nil
}

func (s *sqlStore) Get(ctx context.Context, trackID int64) (*Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(
		"SELECT id, title, artist, source_key, created_at FROM tracks WHERE id = %s",
		s.ph(1),
	)
	return s.scanTrack(s.db.QueryRowContext(ctx, query, trackID))
}

func (s *sqlStore) scanTrack(row *sql.Row) (*Track, error) {
	var t Track
	var createdAt sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Artist, &t.SourceKey, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: scan track: %w", err)
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	return &t, nil
}

func (s *sqlStore) ListAll(ctx context.Context) ([]Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, artist, source_key, created_at FROM tracks ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("index: list all: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		var createdAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.SourceKey, &createdAt); err != nil {
			return nil, fmt.Errorf("index: list all scan: %w", err)
		}
		if createdAt.Valid {
			t.CreatedAt = createdAt.Time
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *sqlStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM postings"); err != nil {
		return fmt.Errorf("index: clear postings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks"); err != nil {
		return fmt.Errorf("index: clear tracks: %w", err)
	}

	return tx.Commit()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
