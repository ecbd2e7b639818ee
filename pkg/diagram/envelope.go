package diagram

import (
	"encoding/json"

	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Envelope is the portable wire form of a diagram. Data holds exactly the
// JSON encoding of the diagram's Content.
type Envelope struct {
	Type     string          `json:"type"`
	Version  Version         `json:"version"`
	Checksum string          `json:"checksum"`
	Data     json.RawMessage `json:"data"`
}

// ToEnvelope wraps d for serialization.
func ToEnvelope(d Diagram) (Envelope, error) {
	data, err := json.Marshal(d.Content())
	if err != nil {
		return Envelope{}, errs.Wrap(errs.ErrCodeInternal, err, "encode %s content", d.Kind())
	}
	return Envelope{
		Type:     TypeName(d.Kind()),
		Version:  d.Version(),
		Checksum: d.Checksum(),
		Data:     data,
	}, nil
}
