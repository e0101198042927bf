// Package memory provides the in-memory transaction journal.
package memory

import (
	"context"
	"sync"

	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// Journal implements ports.JournalStore in memory.
// Safe for concurrent use.
type Journal struct {
	mu      sync.RWMutex
	records []domain.TransactionRecord
	byID    map[string]int
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{byID: make(map[string]int)}
}

var _ ports.JournalStore = (*Journal)(nil)

// Append stores a record.
func (j *Journal) Append(ctx context.Context, rec domain.TransactionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byID[rec.ID] = len(j.records)
	j.records = append(j.records, rec)
	return nil
}

// List returns records newest first. limit <= 0 means all.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.TransactionRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := len(j.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.TransactionRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}

// Get retrieves a record by transaction id.
func (j *Journal) Get(ctx context.Context, id string) (domain.TransactionRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	idx, ok := j.byID[id]
	if !ok {
		return domain.TransactionRecord{}, domain.ErrTransactionNotFound
	}
	return j.records[idx], nil
}
