// Package postgres stores the record snapshot as a JSONB row in Postgres.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"studentrecords/internal/infra/persistence/codec"
	"studentrecords/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when NewStore receives an empty DSN.
	DefaultDSN = "postgres://localhost/studentrecords?sslmode=disable"
	bucket     = "records"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists the snapshot in the `state` table, one row per bucket.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres connection using dsn and ensures the state table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

// Load returns the stored records, or an empty collection when the row is absent.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(payload) == 0) {
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

// Save upserts the full snapshot in one transaction.
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewSaveError(s.persist(ctx, records))
}

func (s *Store) persist(ctx context.Context, records []domain.Record) error {
	data, err := codec.Encode(records)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
