// Package ledger defines the snapshot store port for the persisted ledger
// and its file-based and in-memory implementations.
package ledger

import (
	"context"

	"gastobot/internal/core"
)

// Store is the whole-snapshot persistence contract: the ledger is read
// wholesale at the start of a handling cycle and overwritten wholesale
// after each mutation. There are no partial writes and no transactions;
// callers serialize mutations behind a single process-wide lock.
type Store interface {
	// Load returns the current snapshot. A missing snapshot yields an
	// empty, normalized ledger, not an error.
	Load(ctx context.Context) (*core.Ledger, error)

	// Save replaces the persisted snapshot with the given ledger.
	Save(ctx context.Context, l *core.Ledger) error
}
