package codec

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/diagrams/pkg/diagram"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Marshal encodes d as a compact JSON envelope.
func Marshal(d diagram.Diagram) ([]byte, error) {
	env, err := diagram.ToEnvelope(d)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode envelope")
	}
	return out, nil
}

// MarshalIndent encodes d as a JSON envelope indented by two spaces.
func MarshalIndent(d diagram.Diagram) ([]byte, error) {
	env, err := diagram.ToEnvelope(d)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode envelope")
	}
	return out, nil
}

// Unmarshal decodes a JSON envelope.
func Unmarshal(data []byte, opts ...Option) (diagram.Diagram, error) {
	return NewDecoder(opts...).Decode(data)
}

// WriteJSON writes d to w as an indented JSON envelope followed by a
// newline. The output can be read back with [ReadJSON].
func WriteJSON(d diagram.Diagram, w io.Writer) error {
	env, err := diagram.ToEnvelope(d)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode envelope")
	}
	return nil
}

// ReadJSON decodes one JSON envelope from r. It does not close r.
func ReadJSON(r io.Reader, opts ...Option) (diagram.Diagram, error) {
	return NewDecoder(opts...).Decode(r)
}

// ExportJSON writes d to a file at path, replacing any existing file.
func ExportJSON(d diagram.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "create %s", path)
	}
	if err := WriteJSON(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportJSON reads the envelope stored at path. A missing file is a
// FILE_NOT_FOUND error.
func ImportJSON(path string, opts ...Option) (diagram.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, opts...)
}
