package core

import "studentrecords/pkg/domain"

type (
	// Record aliases domain.Record.
	Record = domain.Record
	// Kind aliases domain.Kind.
	Kind = domain.Kind
	// Change aliases domain.Change.
	Change = domain.Change
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// Repository aliases domain.Repository.
	Repository = domain.Repository
	// SnapshotStore aliases domain.SnapshotStore.
	SnapshotStore = domain.SnapshotStore
)
