package ports

import (
	"context"

	"github.com/fusionlink/fusionlink/pkg/domain"
)

// JournalStore persists one record per committed transaction. The
// executor appends after the destroy phase; a failed append is logged
// and never surfaced to the caller of the transaction.
type JournalStore interface {
	// Append stores a record.
	Append(ctx context.Context, rec domain.TransactionRecord) error

	// List returns records newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.TransactionRecord, error)

	// Get retrieves a record by transaction id.
	// Returns domain.ErrTransactionNotFound if absent.
	Get(ctx context.Context, id string) (domain.TransactionRecord, error)
}
