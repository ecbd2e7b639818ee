package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/diagrams/pkg/hash"
	"github.com/matzehuels/diagrams/pkg/observability"
)

// FileStore keeps one JSON file per key under a directory. Values that are
// valid JSON are embedded as-is, so stored envelopes stay readable; other
// values are kept base64-encoded.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

type fileEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data,omitempty"`
	Blob      []byte          `json:"blob,omitempty"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

func (e fileEntry) value() []byte {
	if e.Data != nil {
		return []byte(e.Data)
	}
	if e.Blob == nil {
		return []byte{}
	}
	return e.Blob
}

// Get reads the entry for key. Unreadable or expired entries are removed
// and reported as misses.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		observability.Store().OnMiss(ctx, key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Key != key {
		_ = os.Remove(path)
		observability.Store().OnMiss(ctx, key)
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		_ = os.Remove(path)
		observability.Store().OnMiss(ctx, key)
		return nil, false, nil
	}

	observability.Store().OnHit(ctx, key)
	return e.value(), true, nil
}

// Set writes data for key.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key}
	if json.Valid(data) {
		e.Data = data
	} else {
		e.Blob = data
	}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return err
	}
	raw := buf.Bytes()

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return err
	}
	observability.Store().OnSet(ctx, key, len(data))
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing.
func (s *FileStore) Close() error { return nil }

// path spreads keys over subdirectories named by the first two digest
// characters.
func (s *FileStore) path(key string) string {
	sum := hash.Sum([]byte(key))
	return filepath.Join(s.dir, sum[:2], sum[2:]+".json")
}

var _ Store = (*FileStore)(nil)
