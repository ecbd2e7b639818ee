// Package cli implements the diagrams command-line interface.
//
// The commands read and write diagram envelopes, compare them structurally
// and keep snapshot histories on disk. The CLI is built using cobra and logs
// through charmbracelet/log.
//
// # Commands
//
//   - inspect: Decode an envelope and summarize it
//   - verify: Check envelope checksums strictly
//   - diff: Compare two envelopes element by element
//   - types: List the diagram types the decoder knows
//   - demo: Print a sample diagram envelope
//   - snapshot: Record envelopes and diff against the last recorded one
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context and handed to the decoder so diagram
// warnings reach the terminal.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrams/pkg/observability"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// LogHooks reports codec and store events to a logger at debug level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

// Register installs h as the process-wide codec and store hooks.
func (h *LogHooks) Register() {
	observability.SetCodecHooks(h)
	observability.SetStoreHooks(h)
}

func (h *LogHooks) OnDecode(_ context.Context, typeName string, took time.Duration, err error) {
	if err != nil {
		h.logger.Debug("decode failed", "type", typeName, "error", err)
		return
	}
	h.logger.Debug("decoded", "type", typeName, "took", took.Round(time.Microsecond))
}

func (h *LogHooks) OnChecksumMismatch(_ context.Context, typeName, expected, actual string) {
	h.logger.Debug("checksum mismatch", "type", typeName, "expected", shortDigest(expected), "actual", shortDigest(actual))
}

func (h *LogHooks) OnHit(_ context.Context, key string) {
	h.logger.Debug("store hit", "key", key)
}

func (h *LogHooks) OnMiss(_ context.Context, key string) {
	h.logger.Debug("store miss", "key", key)
}

func (h *LogHooks) OnSet(_ context.Context, key string, size int) {
	h.logger.Debug("store set", "key", key, "bytes", size)
}

var (
	_ observability.CodecHooks = (*LogHooks)(nil)
	_ observability.StoreHooks = (*LogHooks)(nil)
)

// shortDigest trims a hex digest for display.
func shortDigest(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
