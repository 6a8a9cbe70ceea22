// Package file persists the record snapshot as a single JSON document on the
// local filesystem.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"studentrecords/internal/infra/persistence/codec"
	"studentrecords/pkg/domain"
)

// DefaultPath is used when New receives an empty path.
const DefaultPath = "students.json"

// Store reads and rewrites the whole snapshot file on every call.
type Store struct {
	path string
}

var _ domain.SnapshotStore = (*Store)(nil)

// New returns a Store backed by path. The file is not touched until Load or Save.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the snapshot location.
func (s *Store) Path() string { return s.path }

// Load returns the records in file order. A missing file yields an empty
// collection.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewLoadError(err)
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, domain.NewLoadError(err)
	}
	records, err := codec.Decode(data)
	if err != nil {
		return nil, domain.NewLoadError(err)
	}
	return records, nil
}

// Save encodes records and swaps them into place with a temp file rename so a
// reader never observes a truncated snapshot.
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return domain.NewSaveError(err)
	}
	data, err := codec.Encode(records)
	if err != nil {
		return domain.NewSaveError(err)
	}
	return domain.NewSaveError(writeAtomic(s.path, data))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".students-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
