package store

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/diagrams/pkg/codec"
	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diff"
	errs "github.com/matzehuels/diagrams/pkg/errors"
	"github.com/matzehuels/diagrams/pkg/hash"
)

const (
	snapshotPrefix = "snapshot:"
	historyPrefix  = "history:"
	logKey         = "log"
)

// Snapshot describes one recorded envelope.
type Snapshot struct {
	// ID is the content identifier of the envelope bytes.
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Version  diagram.Version `json:"version"`
	Checksum string          `json:"checksum"`
}

// History is a named, append-only log of diagram snapshots. Envelopes are
// stored once under their content id, so several histories over the same
// store share identical snapshots.
type History struct {
	snapshots Store
	log       *ScopedStore
	name      string
	decoder   *codec.Decoder
}

// NewHistory returns the history called name inside s. Decoder options
// apply when snapshots are read back.
func NewHistory(s Store, name string, opts ...codec.Option) (*History, error) {
	if err := errs.ValidateName("history name", name); err != nil {
		return nil, err
	}
	return &History{
		snapshots: s,
		log:       Scoped(s, historyPrefix+name+":"),
		name:      name,
		decoder:   codec.NewDecoder(opts...),
	}, nil
}

// Name returns the history name.
func (h *History) Name() string { return h.name }

// Record stores d and appends it to the log. Recording content identical to
// the latest snapshot returns that snapshot without a new log entry.
func (h *History) Record(ctx context.Context, d diagram.Diagram) (Snapshot, error) {
	text, err := codec.Marshal(d)
	if err != nil {
		return Snapshot{}, err
	}
	id, err := hash.ContentID(text)
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrCodeInternal, err, "content id")
	}
	snap := Snapshot{
		ID:       id,
		Type:     diagram.TypeName(d.Kind()),
		Version:  d.Version(),
		Checksum: d.Checksum(),
	}

	entries, err := h.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if n := len(entries); n > 0 && entries[n-1].ID == id {
		return entries[n-1], nil
	}

	if err := h.snapshots.Set(ctx, snapshotPrefix+id, text, 0); err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrCodeInternal, err, "store snapshot %s", id)
	}
	raw, err := json.Marshal(append(entries, snap))
	if err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrCodeInternal, err, "encode history %s", h.name)
	}
	if err := h.log.Set(ctx, logKey, raw, 0); err != nil {
		return Snapshot{}, errs.Wrap(errs.ErrCodeInternal, err, "store history %s", h.name)
	}
	return snap, nil
}

// List returns the recorded snapshots, oldest first.
func (h *History) List(ctx context.Context) ([]Snapshot, error) {
	raw, ok, err := h.log.Get(ctx, logKey)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read history %s", h.name)
	}
	if !ok {
		return []Snapshot{}, nil
	}
	var entries []Snapshot
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode history %s", h.name)
	}
	return entries, nil
}

// Load decodes the snapshot with the given content id.
func (h *History) Load(ctx context.Context, id string) (diagram.Diagram, error) {
	text, ok, err := h.snapshots.Get(ctx, snapshotPrefix+id)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read snapshot %s", id)
	}
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "snapshot %s not found", id)
	}
	return h.decoder.DecodeContext(ctx, text)
}

// Latest decodes the most recent snapshot. An empty history is a NOT_FOUND
// error.
func (h *History) Latest(ctx context.Context) (diagram.Diagram, Snapshot, error) {
	entries, err := h.List(ctx)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if len(entries) == 0 {
		return nil, Snapshot{}, errs.New(errs.ErrCodeNotFound, "history %s is empty", h.name)
	}
	last := entries[len(entries)-1]
	d, err := h.Load(ctx, last.ID)
	if err != nil {
		return nil, Snapshot{}, err
	}
	return d, last, nil
}

// DiffLatest returns the structural delta from the latest snapshot to d.
// Diagrams of a different kind than the latest snapshot are a
// TYPE_MISMATCH error.
func (h *History) DiffLatest(ctx context.Context, d diagram.Diagram) (diff.Result, error) {
	prev, snap, err := h.Latest(ctx)
	if err != nil {
		return diff.Result{}, err
	}
	if prev.Kind() != d.Kind() {
		return diff.Result{}, errs.New(errs.ErrCodeTypeMismatch,
			"history %s holds %s, got %s", h.name, snap.Type, diagram.TypeName(d.Kind()))
	}
	return diagram.Diff(prev, d), nil
}
