package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrams/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestLogHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	var buf bytes.Buffer
	hooks := NewLogHooks(newLogger(&buf, log.DebugLevel))
	hooks.Register()

	ctx := context.Background()
	observability.Codec().OnDecode(ctx, "pie_diagram", time.Millisecond, nil)
	observability.Codec().OnDecode(ctx, "", 0, errors.New("boom"))
	observability.Codec().OnChecksumMismatch(ctx, "pie_diagram", strings.Repeat("a", 64), strings.Repeat("b", 64))
	observability.Store().OnHit(ctx, "snapshot:x")
	observability.Store().OnMiss(ctx, "snapshot:y")
	observability.Store().OnSet(ctx, "snapshot:z", 42)

	out := buf.String()
	for _, want := range []string{"decoded", "decode failed", "boom", "checksum mismatch", "aaaaaaaaaaaa", "store hit", "store miss", "store set"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("a", 13)) {
		t.Error("digests should be shortened")
	}
}
