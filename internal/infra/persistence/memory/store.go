// Package memory provides the in-memory, insertion-ordered record repository
// that every snapshot driver mirrors.
package memory

import (
	"context"
	"sync"

	"studentrecords/pkg/domain"
)

// Compile-time contract assertions.
var _ domain.Repository = (*Store)(nil)

type (
	// Record aliases domain.Record for repository operations.
	Record = domain.Record
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState is the ordered record list. Lookups are linear scans.
type memoryState struct {
	records []Record
}

func newMemoryState(records []Record) memoryState {
	state := memoryState{records: make([]Record, 0, len(records))}
	for _, r := range records {
		state.records = append(state.records, r.Clone())
	}
	return state
}

func (s memoryState) clone() memoryState {
	return newMemoryState(s.records)
}

func (s memoryState) index(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s memoryState) find(id string) (Record, bool) {
	if i := s.index(id); i >= 0 {
		return s.records[i].Clone(), true
	}
	return Record{}, false
}

func (s memoryState) list() []Record {
	return newMemoryState(s.records).records
}

// Store owns the canonical record collection. Transactions operate on a clone
// that replaces the live state only when the callback succeeds.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore returns an empty repository.
func NewStore() *Store {
	return &Store{state: newMemoryState(nil)}
}

// ExportState clones the current records for external persistence.
func (s *Store) ExportState() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.list()
}

// ImportState replaces the repository contents with records, keeping their order.
func (s *Store) ImportState(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newMemoryState(records)
}

// RunInTransaction applies fn to a private copy of the state. The copy is
// committed only when fn returns nil; the recorded changes are returned.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) ([]Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.Changes(), nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(transactionView{state: &snapshot})
}

// Find returns a copy of the first record with id.
func (s *Store) Find(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.find(id)
}

// All returns copies of every record in insertion order.
func (s *Store) All() []Record {
	return s.ExportState()
}

// Exists reports whether any record carries id.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.index(id) >= 0
}

// IDs lists record ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.state.records))
	for _, r := range s.state.records {
		ids = append(ids, r.ID)
	}
	return ids
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.records)
}

type transactionView struct {
	state *memoryState
}

func (v transactionView) Records() []Record            { return v.state.list() }
func (v transactionView) Find(id string) (Record, bool) { return v.state.find(id) }
func (v transactionView) Exists(id string) bool         { return v.state.index(id) >= 0 }

type transaction struct {
	state   memoryState
	changes []Change
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) Records() []Record            { return tx.state.list() }
func (tx *transaction) Find(id string) (Record, bool) { return tx.state.find(id) }
func (tx *transaction) Exists(id string) bool         { return tx.state.index(id) >= 0 }

// Insert appends r. A taken id is rejected.
func (tx *transaction) Insert(r Record) error {
	if tx.state.index(r.ID) >= 0 {
		return &domain.DuplicateIDError{ID: r.ID}
	}
	r = r.Clone()
	tx.state.records = append(tx.state.records, r)
	after := r.Clone()
	tx.recordChange(Change{Action: domain.ActionCreate, ID: r.ID, After: &after})
	return nil
}

// Replace overwrites the first record sharing r's id in place.
func (tx *transaction) Replace(r Record) bool {
	i := tx.state.index(r.ID)
	if i < 0 {
		return false
	}
	before := tx.state.records[i]
	tx.state.records[i] = r.Clone()
	after := r.Clone()
	tx.recordChange(Change{Action: domain.ActionUpdate, ID: r.ID, Before: &before, After: &after})
	return true
}

// Delete removes every record carrying id.
func (tx *transaction) Delete(id string) bool {
	kept := tx.state.records[:0:0]
	var removed []Record
	for _, r := range tx.state.records {
		if r.ID == id {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	if len(removed) == 0 {
		return false
	}
	tx.state.records = kept
	for i := range removed {
		before := removed[i]
		tx.recordChange(Change{Action: domain.ActionDelete, ID: id, Before: &before})
	}
	return true
}

// ReplaceAll swaps the whole collection. Duplicate ids in records are rejected.
func (tx *transaction) ReplaceAll(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			return &domain.DuplicateIDError{ID: r.ID}
		}
		seen[r.ID] = struct{}{}
	}
	tx.state = newMemoryState(records)
	tx.recordChange(Change{Action: domain.ActionImport})
	return nil
}

// Changes returns the mutations recorded so far.
func (tx *transaction) Changes() []Change {
	out := make([]Change, len(tx.changes))
	copy(out, tx.changes)
	return out
}
