// Package pie implements a pie chart diagram.
//
// Slices are identified by label. Each slice carries a percentage of the
// total value, rounded to two decimals and recomputed for every slice
// whenever a slice is added. Percentages found in loaded data are ignored.
package pie

import (
	"encoding/json"
	"errors"
	"math"
	"slices"

	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diff"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Kind is the diagram kind of a pie chart.
const Kind = "PieDiagram"

var (
	// ErrDuplicateSlice is returned when a slice label is already taken.
	ErrDuplicateSlice = errors.New("duplicate slice")

	// ErrNonFiniteValue is returned for infinite or NaN slice values.
	ErrNonFiniteValue = errors.New("non-finite slice value")
)

// Slice is one wedge of the chart. Percentage is derived.
type Slice struct {
	Label      string  `json:"label" validate:"ident"`
	Value      float64 `json:"value" validate:"gte=0"`
	Percentage float64 `json:"percentage"`
}

type content struct {
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
}

var _ diagram.Diagram = (*Diagram)(nil)

// Diagram is a pie chart.
type Diagram struct {
	base   diagram.Base
	title  string
	slices []Slice
}

// New returns a pie chart with the given title and slices.
func New(title string, slices []Slice, opts ...diagram.Option) (*Diagram, error) {
	d := &Diagram{base: diagram.NewBase(opts...), title: title}
	for _, s := range slices {
		if err := d.check(s); err != nil {
			return nil, err
		}
		s.Percentage = 0
		d.slices = append(d.slices, s)
	}
	d.recalculate()
	if err := d.rehash(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load rebuilds a pie chart from an envelope data payload.
func Load(data []byte, version diagram.Version, checksum string, opts ...diagram.Option) (*Diagram, error) {
	var c content
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidEnvelope, err, "decode %s data", Kind)
		}
	}
	d, err := New(c.Title, c.Slices, append([]diagram.Option{diagram.WithVersion(version)}, opts...)...)
	if err != nil {
		return nil, err
	}
	d.base.VerifyChecksum(Kind, checksum)
	return d, nil
}

func (d *Diagram) Kind() string                { return Kind }
func (d *Diagram) Version() diagram.Version    { return d.base.Version() }
func (d *Diagram) Checksum() string            { return d.base.Checksum() }
func (d *Diagram) Warnings() []diagram.Warning { return d.base.Warnings() }

// Content returns the title and slices.
func (d *Diagram) Content() any {
	return content{Title: d.title, Slices: d.Slices()}
}

// IdentifiableElements exposes slices for diffing.
func (d *Diagram) IdentifiableElements() diff.Elements {
	return diff.Elements{"slices": diff.Collect(d.slices)}
}

func (d *Diagram) rehash() error { return d.base.Rehash(d.Content()) }

// Title returns the chart title.
func (d *Diagram) Title() string { return d.title }

// Slices returns a copy of the slices in insertion order.
func (d *Diagram) Slices() []Slice {
	if d.slices == nil {
		return []Slice{}
	}
	return slices.Clone(d.slices)
}

// AddSlice appends s and recomputes every percentage. The returned slice
// carries its computed percentage.
func (d *Diagram) AddSlice(s Slice) (Slice, error) {
	if err := d.check(s); err != nil {
		return Slice{}, err
	}
	d.slices = append(d.slices, s)
	d.recalculate()
	if err := d.rehash(); err != nil {
		d.slices = d.slices[:len(d.slices)-1]
		d.recalculate()
		return Slice{}, err
	}
	return d.slices[len(d.slices)-1], nil
}

// FindSlice returns the slice with the given label.
func (d *Diagram) FindSlice(label string) (Slice, bool) {
	i := slices.IndexFunc(d.slices, func(s Slice) bool { return s.Label == label })
	if i < 0 {
		return Slice{}, false
	}
	return d.slices[i], true
}

// TotalValue returns the sum of all slice values.
func (d *Diagram) TotalValue() float64 {
	var total float64
	for _, s := range d.slices {
		total += s.Value
	}
	return total
}

// Equal reports whether other has the same content.
func (d *Diagram) Equal(other *Diagram) bool {
	return other != nil && diagram.Equal(d, other)
}

// Diff returns the structural delta from d to other.
func (d *Diagram) Diff(other *Diagram) diff.Result {
	if other == nil {
		return diff.Result{}
	}
	return diagram.Diff(d, other)
}

func (d *Diagram) check(s Slice) error {
	if err := diagram.Validate(s); err != nil {
		return err
	}
	if math.IsInf(s.Value, 0) || math.IsNaN(s.Value) {
		return errs.Wrap(errs.ErrCodeValidation, ErrNonFiniteValue, "slice %q value %v", s.Label, s.Value)
	}
	if _, ok := d.FindSlice(s.Label); ok {
		return errs.Wrap(errs.ErrCodeValidation, ErrDuplicateSlice, "slice %q", s.Label)
	}
	return nil
}

func (d *Diagram) recalculate() {
	total := d.TotalValue()
	for i := range d.slices {
		if total == 0 {
			d.slices[i].Percentage = 0
			continue
		}
		d.slices[i].Percentage = math.Round(d.slices[i].Value/total*10000) / 100
	}
}
