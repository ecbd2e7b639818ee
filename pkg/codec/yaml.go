package codec

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/diagrams/pkg/diagram"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

type yamlEnvelope struct {
	Type     string `yaml:"type"`
	Version  any    `yaml:"version"`
	Checksum string `yaml:"checksum"`
	Data     any    `yaml:"data"`
}

// MarshalYAML encodes d as a YAML envelope with the same fields as the JSON
// form.
func MarshalYAML(d diagram.Diagram) ([]byte, error) {
	env, err := diagram.ToEnvelope(d)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "decode %s content", d.Kind())
	}

	out := yamlEnvelope{
		Type:     env.Type,
		Checksum: env.Checksum,
		Data:     plainNumbers(data),
	}
	if n, ok := env.Version.Int(); ok {
		out.Version = n
	} else if !env.Version.IsZero() {
		out.Version = env.Version.String()
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode yaml envelope")
	}
	if err := enc.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode yaml envelope")
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML envelope.
func UnmarshalYAML(data []byte, opts ...Option) (diagram.Diagram, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse yaml envelope")
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidEnvelope, "envelope must be a mapping")
	}
	return NewDecoder(opts...).Decode(m)
}

// plainNumbers replaces json.Number values with int64 or float64 so the YAML
// encoder writes them as numbers.
func plainNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, x := range val {
			val[k] = plainNumbers(x)
		}
		return val
	case []any:
		for i, x := range val {
			val[i] = plainNumbers(x)
		}
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return v
	}
}
