package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrams/pkg/diagram"
	errs "github.com/matzehuels/diagrams/pkg/errors"
	"github.com/matzehuels/diagrams/pkg/observability"
)

// Option configures a [Decoder].
type Option func(*Decoder)

// WithRegistry decodes against r instead of [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(d *Decoder) { d.registry = r }
}

// WithLogger sets the logger handed to loaded diagrams for warning output.
func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// WithStrictChecksum makes a checksum mismatch a CHECKSUM_MISMATCH error
// instead of a warning on the returned diagram.
func WithStrictChecksum(strict bool) Option {
	return func(d *Decoder) { d.strict = strict }
}

// Decoder rebuilds diagrams from envelopes.
type Decoder struct {
	registry *Registry
	logger   *log.Logger
	strict   bool
}

// NewDecoder returns a decoder using [DefaultRegistry] unless overridden.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = DefaultRegistry()
	}
	return d
}

// Decode is [Decoder.DecodeContext] with a background context.
func (d *Decoder) Decode(input any) (diagram.Diagram, error) {
	return d.DecodeContext(context.Background(), input)
}

// DecodeContext accepts envelope text as []byte, string or io.Reader, a
// [diagram.Envelope] (value or pointer), or a map[string]any holding an
// envelope, and returns the concrete diagram named by its type.
func (d *Decoder) DecodeContext(ctx context.Context, input any) (diagram.Diagram, error) {
	var (
		env diagram.Envelope
		err error
	)
	switch in := input.(type) {
	case []byte:
		env, err = parseEnvelope(in)
	case string:
		env, err = parseEnvelope([]byte(in))
	case io.Reader:
		var data []byte
		data, err = io.ReadAll(in)
		if err != nil {
			err = errs.Wrap(errs.ErrCodeInvalidInput, err, "read envelope")
			break
		}
		env, err = parseEnvelope(data)
	case diagram.Envelope:
		env = in
	case *diagram.Envelope:
		if in == nil {
			err = errs.New(errs.ErrCodeInvalidInput, "nil envelope")
			break
		}
		env = *in
	case map[string]any:
		var data []byte
		data, err = json.Marshal(in)
		if err != nil {
			err = errs.Wrap(errs.ErrCodeInvalidInput, err, "encode envelope map")
			break
		}
		env, err = parseEnvelope(data)
	default:
		err = errs.New(errs.ErrCodeInvalidInput, "cannot decode a diagram from %T", input)
	}
	if err != nil {
		observability.Codec().OnDecode(ctx, "", 0, err)
		return nil, err
	}
	return d.DecodeEnvelope(ctx, env)
}

// DecodeEnvelope resolves env.Type and loads its data.
func (d *Decoder) DecodeEnvelope(ctx context.Context, env diagram.Envelope) (diagram.Diagram, error) {
	start := time.Now()
	dg, err := d.decodeEnvelope(ctx, env)
	observability.Codec().OnDecode(ctx, env.Type, time.Since(start), err)
	return dg, err
}

func (d *Decoder) decodeEnvelope(ctx context.Context, env diagram.Envelope) (diagram.Diagram, error) {
	load, err := d.registry.Resolve(env.Type)
	if err != nil {
		return nil, err
	}
	data, err := objectData(env.Data)
	if err != nil {
		return nil, err
	}

	var opts []diagram.Option
	if d.logger != nil {
		opts = append(opts, diagram.WithLogger(d.logger))
	}

	expected := env.Checksum
	if d.strict {
		expected = ""
	}
	dg, err := load(data, env.Version, expected, opts...)
	if err != nil {
		return nil, err
	}

	if env.Checksum != "" && env.Checksum != dg.Checksum() {
		observability.Codec().OnChecksumMismatch(ctx, env.Type, env.Checksum, dg.Checksum())
		if d.strict {
			return nil, errs.New(errs.ErrCodeChecksumMismatch,
				"checksum mismatch for %s: expected %s, got %s", env.Type, env.Checksum, dg.Checksum())
		}
	}
	return dg, nil
}

// parseEnvelope reads the four envelope fields from JSON text without
// committing to a concrete data type.
func parseEnvelope(text []byte) (diagram.Envelope, error) {
	if !json.Valid(text) {
		var v any
		err := json.Unmarshal(text, &v)
		return diagram.Envelope{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse envelope")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(text, &fields); err != nil || fields == nil {
		return diagram.Envelope{}, errs.New(errs.ErrCodeInvalidEnvelope, "envelope must be a JSON object")
	}

	var env diagram.Envelope
	if raw, ok := fields["type"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.Type); err != nil {
			return diagram.Envelope{}, errs.New(errs.ErrCodeInvalidEnvelope, "type must be a string, got %s", raw)
		}
	}

	version, err := diagram.ParseVersion(fields["version"])
	if err != nil {
		return diagram.Envelope{}, err
	}
	env.Version = version

	if raw, ok := fields["checksum"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.Checksum); err != nil {
			return diagram.Envelope{}, errs.New(errs.ErrCodeInvalidEnvelope, "checksum must be a string, got %s", raw)
		}
	}

	env.Data = fields["data"]
	return env, nil
}

// objectData returns data as a JSON object, treating a missing or null
// payload as empty.
func objectData(data json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || isNull(trimmed) {
		return []byte("{}"), nil
	}
	if trimmed[0] != '{' {
		return nil, errs.New(errs.ErrCodeInvalidEnvelope, "data must be an object")
	}
	return trimmed, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
