// Package cache holds the response stores behind the Idempotency-Key
// middleware.
package cache

import (
	"context"
	"time"
)

// Entry is what is remembered for one idempotency key. A Pending entry
// marks a request that is still being processed.
type Entry struct {
	RequestHash string `json:"request_hash"`
	StatusCode  int    `json:"status_code,omitempty"`
	Body        []byte `json:"body,omitempty"`
	Pending     bool   `json:"pending,omitempty"`
}

// IdempotencyStore persists idempotent responses keyed by caller and key.
type IdempotencyStore interface {
	// Get returns the entry for key, or nil when there is none.
	Get(ctx context.Context, key string) (*Entry, error)
	// Reserve atomically claims key with a pending entry. It returns false
	// when key is already taken.
	Reserve(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error)
	// Save stores the final response for key, replacing the pending entry.
	Save(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	// Release drops key so the request can be retried.
	Release(ctx context.Context, key string) error
	Close() error
}
