package models

import (
	"time"
)

// IdempotencyRecord is the deduplication record kept per idempotency key.
// It lives in the TTL key-value store, not in Postgres: the first observer
// writes a pending placeholder atomically, later callers replay the cached
// outcome once Complete fills it in, and the store expires it.
type IdempotencyRecord struct {
	Key        string    `json:"key"`
	Scope      string    `json:"scope"` // method+path for client keys, event type for webhooks
	StatusCode int       `json:"status_code,omitempty"`
	Response   string    `json:"response,omitempty"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
