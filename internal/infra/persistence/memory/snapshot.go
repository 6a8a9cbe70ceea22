package memory

import (
	"bytes"
	"context"
	"sync"

	"studentrecords/internal/infra/persistence/codec"
	"studentrecords/pkg/domain"
)

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the encoded snapshot in process memory. It backs the
// "memory" storage driver and tests that need a real round trip through the
// wire format without touching disk.
type SnapshotStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewSnapshotStore returns an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load decodes the last saved snapshot, or returns an empty collection.
func (s *SnapshotStore) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewLoadError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return []Record{}, nil
	}
	records, err := codec.Decode(s.data)
	if err != nil {
		return nil, domain.NewLoadError(err)
	}
	return records, nil
}

// Save replaces the held snapshot.
func (s *SnapshotStore) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return domain.NewSaveError(err)
	}
	data, err := codec.Encode(records)
	if err != nil {
		return domain.NewSaveError(err)
	}
	s.mu.Lock()
	s.data = data
	s.saves++
	s.mu.Unlock()
	return nil
}

// Saves reports how many snapshots have been written.
func (s *SnapshotStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Bytes returns a copy of the encoded snapshot.
func (s *SnapshotStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.data)
}
