// Package sqlite stores the record snapshot in a single SQLite row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"studentrecords/internal/infra/persistence/codec"
	"studentrecords/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when NewStore receives an empty path.
const DefaultPath = "students.db"

const bucket = "records"

var _ domain.SnapshotStore = (*Store)(nil)

// Store persists the snapshot as a JSON payload keyed by bucket in the
// `state` table, rewriting the row on every save.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the database at path and ensures the
// state table exists.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load returns the stored records, or an empty collection when nothing has
// been saved yet.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, domain.NewLoadError(fmt.Errorf("select state: %w", err))
	}
	records, err := codec.Decode(payload)
	if err != nil {
		return nil, domain.NewLoadError(err)
	}
	return records, nil
}

// Save upserts the full snapshot inside one SQL transaction.
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewSaveError(s.persist(ctx, records))
}

func (s *Store) persist(ctx context.Context, records []domain.Record) (retErr error) {
	data, err := codec.Encode(records)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
