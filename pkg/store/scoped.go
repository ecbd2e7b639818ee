package store

import (
	"context"
	"time"
)

// ScopedStore prefixes every key before handing it to an inner store, so
// several logs can share one backend without colliding.
//
//	snapshots := store.NewMemoryStore()
//	heads := store.Scoped(snapshots, "history:release:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// Scoped wraps inner with a key prefix. A nil inner store is replaced by a
// [NullStore].
func Scoped(inner Store, prefix string) *ScopedStore {
	if inner == nil {
		inner = NullStore{}
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix.
func (s *ScopedStore) Prefix() string { return s.prefix }

func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close does not close the inner store, which may be shared.
func (s *ScopedStore) Close() error { return nil }

var _ Store = (*ScopedStore)(nil)
