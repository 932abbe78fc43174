// Package keystore provides a string key-value store with optional expiry
// and two interchangeable backends: a DynamoDB table with native TTL and a
// SQLite table with upsert semantics and no expiry.
package keystore

import (
	"context"
	"time"
)

// Store is the single point of cross-request coordination in the
// registration flow. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. It returns domain.ErrNotFound
	// when the key is absent, deleted, or past its TTL, never a stale value.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts key to value: create if absent, else overwrite. A zero ttl
	// stores without expiry. Backends without a TTL concept ignore ttl and
	// retain the value until an explicit Delete.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key succeeds; retries are safe.
	Delete(ctx context.Context, key string) error
}
