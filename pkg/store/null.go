package store

import (
	"context"
	"time"

	"github.com/matzehuels/diagrams/pkg/observability"
)

// NullStore never stores anything. Useful when snapshots are disabled.
type NullStore struct{}

// NewNullStore returns a null store.
func NewNullStore() NullStore { return NullStore{} }

// Get always misses.
func (NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	observability.Store().OnMiss(ctx, key)
	return nil, false, nil
}

func (NullStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullStore) Delete(context.Context, string) error                    { return nil }
func (NullStore) Close() error                                            { return nil }

var _ Store = NullStore{}
