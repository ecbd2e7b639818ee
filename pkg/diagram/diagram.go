package diagram

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrams/pkg/diff"
	errs "github.com/matzehuels/diagrams/pkg/errors"
	"github.com/matzehuels/diagrams/pkg/hash"
)

// Diagram is implemented by every concrete diagram type.
type Diagram interface {
	// Kind returns the concrete type identifier, e.g. "GitgraphDiagram".
	Kind() string
	// Version returns the caller-supplied version token.
	Version() Version
	// Checksum returns the hex digest of the current content.
	Checksum() string
	// Content returns the payload serialized as the envelope's data field.
	Content() any
	// IdentifiableElements returns element collections keyed by type tag.
	IdentifiableElements() diff.Elements
	// Warnings returns non-fatal conditions recorded so far.
	Warnings() []Warning
}

// Option configures a [Base].
type Option func(*Base)

// WithVersion sets the version token. A zero [Version] keeps the default.
func WithVersion(v Version) Option {
	return func(b *Base) { b.version = v }
}

// WithLogger sets the logger used to report warnings. Without one, warnings
// are only recorded.
func WithLogger(l *log.Logger) Option {
	return func(b *Base) { b.logger = l }
}

// Base holds the bookkeeping shared by all diagrams: version, checksum and
// warnings. Concrete diagrams keep one and call [Base.Rehash] after every
// content mutation.
//
// Base is not safe for concurrent use.
type Base struct {
	version  Version
	checksum string
	warnings []Warning
	logger   *log.Logger
}

// NewBase applies opts and substitutes [DefaultVersion] for an absent version.
func NewBase(opts ...Option) Base {
	var b Base
	for _, opt := range opts {
		opt(&b)
	}
	if b.version.IsZero() {
		b.version = DefaultVersion
	}
	return b
}

// Version returns the version token.
func (b *Base) Version() Version { return b.version }

// Checksum returns the digest computed by the last [Base.Rehash].
func (b *Base) Checksum() string { return b.checksum }

// Warnings returns a copy of the recorded warnings.
func (b *Base) Warnings() []Warning { return slices.Clone(b.warnings) }

// Logger returns the configured logger, or nil.
func (b *Base) Logger() *log.Logger { return b.logger }

// Rehash recomputes the checksum from payload. On failure the previous
// checksum is kept and the caller must undo its mutation.
func (b *Base) Rehash(payload any) error {
	sum, err := hash.Checksum(payload)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "compute checksum")
	}
	b.checksum = sum
	return nil
}

// Warn records a warning and logs it when a logger is configured.
func (b *Base) Warn(code WarningCode, format string, args ...any) {
	w := Warning{Code: code, Message: fmt.Sprintf(format, args...)}
	b.warnings = append(b.warnings, w)
	if b.logger != nil {
		b.logger.Warn(w.Message, "code", string(code))
	}
}

// VerifyChecksum compares expected against the current checksum. An empty
// expected value always passes. A mismatch records a [WarnChecksumMismatch]
// warning and returns false; the diagram itself is left untouched.
func (b *Base) VerifyChecksum(kind, expected string) bool {
	if expected == "" || expected == b.checksum {
		return true
	}
	b.Warn(WarnChecksumMismatch,
		"checksum mismatch for loaded %s (version: %s): expected %s, got %s",
		kind, b.version, expected, b.checksum)
	return false
}

// Equal reports whether a and b have the same kind and checksum.
// Versions are ignored. A nil diagram is equal to nothing.
func Equal(a, b Diagram) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.Checksum() == b.Checksum()
}

// Diff returns the structural delta from a to b. The result is empty when
// the kinds differ or the diagrams are [Equal].
func Diff(a, b Diagram) diff.Result {
	if a == nil || b == nil || a.Kind() != b.Kind() || Equal(a, b) {
		return diff.Result{}
	}
	return diff.Compute(a.IdentifiableElements(), b.IdentifiableElements())
}
