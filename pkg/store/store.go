// Package store keeps encoded diagram snapshots.
//
// A [Store] is a small byte-oriented key-value interface with optional
// expiry. Implementations:
//   - [MemoryStore]: process-local map, safe for concurrent use
//   - [FileStore]: one file per key under a directory, for CLI usage
//   - [NullStore]: stores nothing
//
// [Scoped] prefixes every key of an inner store, and [History] builds a
// content-addressed snapshot log on top of any store.
//
// Lookups report hits, misses and writes through the hooks registered with
// the observability package.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a byte-oriented key-value store. A ttl of zero means the entry
// never expires.
type Store interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
