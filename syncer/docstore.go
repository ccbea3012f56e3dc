package syncer

import (
	"context"

	"github.com/ATE168Forever/divtrack"
)

// Snapshot is one view of the remote transaction collection as delivered
// by a live subscription.
type Snapshot struct {
	Transactions []divtrack.Transaction
	// FromCache means the snapshot was served locally without server
	// confirmation (the connection is effectively offline).
	FromCache bool
	// HasPendingWrites means local writes are still in flight.
	HasPendingWrites bool
}

// DocumentStore is the authenticated remote collection: one document per
// transaction, keyed by transaction id, with server-assigned timestamps.
// All mutations are batched writes; a live subscription feeds snapshots
// back.
type DocumentStore interface {
	// BatchPut creates or overwrites the documents for these transactions.
	BatchPut(ctx context.Context, txs []divtrack.Transaction) error
	// BatchDelete removes the documents with these transaction ids.
	BatchDelete(ctx context.Context, ids []string) error
	// Replace swaps the whole collection for this list in one batch.
	Replace(ctx context.Context, txs []divtrack.Transaction) error
	// Subscribe starts a live subscription. The channel closes when ctx is
	// cancelled or the subscription fails; a failure after snapshots have
	// been delivered surfaces through the orchestrator's state.
	Subscribe(ctx context.Context) (<-chan Snapshot, error)
}
