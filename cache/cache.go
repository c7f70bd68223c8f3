// Package cache provides the TTL key-value store behind the idempotency
// records and the payment-order cache. The Redis implementation backs
// production; the in-memory implementation backs tests and single-node
// deployments without Redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is a TTL key-value store. SetNX must be a single atomic operation:
// two concurrent callers with the same key must never both observe "not
// found".
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key with the given ttl, overwriting any
	// existing entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX writes value only if key is absent. It reports whether the
	// write happened.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
