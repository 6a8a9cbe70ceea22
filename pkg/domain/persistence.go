package domain

import "context"

// Action indicates the type of modification captured by a Change.
type Action string

// Change actions recorded by repository transactions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionImport Action = "import"
)

// Change describes one mutation applied inside a transaction. Before is nil for
// creates and After is nil for deletes.
type Change struct {
	Action Action
	ID     string
	Before *Record
	After  *Record
}

// TransactionView provides read-only access to the records visible inside a
// transaction, in insertion order.
type TransactionView interface {
	Records() []Record
	Find(id string) (Record, bool)
	Exists(id string) bool
}

// Transaction exposes the repository mutations applied within an atomic scope.
// Nothing becomes visible outside the transaction until it commits.
//
// Insert rejects a taken id with *DuplicateIDError. Replace overwrites the first
// record with the same id and Delete removes every record with the id; both
// report whether anything matched and are otherwise no-ops.
type Transaction interface {
	TransactionView
	Insert(Record) error
	Replace(Record) bool
	Delete(id string) bool
	ReplaceAll([]Record) error
	Changes() []Change
}

// Repository is the in-memory canonical owner of admitted records.
type Repository interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Change, error)
	Find(id string) (Record, bool)
	All() []Record
	Exists(id string) bool
	IDs() []string
	ImportState([]Record)
}

// SnapshotStore persists the entire ordered record collection in one unit.
// Load on a store that has never been written returns an empty slice.
// Implementations report failures as *StorageError.
type SnapshotStore interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}
