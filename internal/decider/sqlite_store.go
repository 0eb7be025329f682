package decider

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// modernc.org/sqlite registers the "sqlite" driver; it's a pure-Go
	// implementation so the engine never needs cgo to get a crash-safe
	// decision store.
	_ "modernc.org/sqlite"

	"github.com/dissemia/disseminate/internal/confighash"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS decisions (
	key        TEXT PRIMARY KEY,
	digest_lo  INTEGER NOT NULL,
	digest_hi  INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore persists decision digests in cache_root/.decisions. A
// single-writer connection makes every Set an atomic upsert
// (INSERT ... ON CONFLICT DO UPDATE):
// a crash mid-write leaves either the old row or the new one, never a
// half-written record.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if absent) the decision store at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("decider: open store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("decider: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (confighash.Digest, bool, error) {
	var lo, hi int64
	err := s.db.QueryRowContext(ctx,
		`SELECT digest_lo, digest_hi FROM decisions WHERE key = ?`, key,
	).Scan(&lo, &hi)
	if err == sql.ErrNoRows {
		return confighash.Digest{}, false, nil
	}
	if err != nil {
		return confighash.Digest{}, false, fmt.Errorf("decider: get %q: %w", key, err)
	}
	return confighash.Digest{Lo: uint64(lo), Hi: uint64(hi)}, true, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, key string, digest confighash.Digest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (key, digest_lo, digest_hi, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET digest_lo = excluded.digest_lo, digest_hi = excluded.digest_hi, updated_at = excluded.updated_at`,
		key, int64(digest.Lo), int64(digest.Hi), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("decider: set %q: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
