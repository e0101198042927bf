// Package redis provides the redis-backed transaction journal.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

// Journal implements ports.JournalStore using Redis. Records live
// under prefix+id; a ZSET at prefix+"index" scored by start time
// keeps the newest-first ordering.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Journal.
type Option func(*Journal)

// WithTTL sets the expiration for journal records.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix for journal records.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// New creates a Redis journal with options.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		prefix: "fusionlink:tx:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ ports.JournalStore = (*Journal)(nil)

func (j *Journal) key(id string) string {
	return j.prefix + id
}

func (j *Journal) indexKey() string {
	return j.prefix + "index"
}

// Append persists the record and indexes it by start time.
func (j *Journal) Append(ctx context.Context, rec domain.TransactionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction record: %w", err)
	}

	pipe := j.client.Pipeline()
	pipe.Set(ctx, j.key(rec.ID), data, j.ttl)
	pipe.ZAdd(ctx, j.indexKey(), backend.Z{
		Score:  float64(rec.Started.UnixNano()),
		Member: rec.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// List returns records newest first. limit <= 0 means all.
// Index entries whose record has expired are pruned lazily.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.TransactionRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := j.client.ZRevRange(ctx, j.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	out := make([]domain.TransactionRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := j.Get(ctx, id)
		if err == domain.ErrTransactionNotFound {
			// Record expired; drop the stale index entry.
			j.client.ZRem(ctx, j.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get retrieves a record by transaction id.
func (j *Journal) Get(ctx context.Context, id string) (domain.TransactionRecord, error) {
	val, err := j.client.Get(ctx, j.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.TransactionRecord{}, domain.ErrTransactionNotFound
		}
		return domain.TransactionRecord{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec domain.TransactionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("failed to unmarshal transaction record: %w", err)
	}
	return rec, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
