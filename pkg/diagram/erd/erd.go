// Package erd implements an entity-relationship diagram.
//
// Entities are identified by name and own a list of attributes.
// Relationships connect two existing entities with a cardinality on each
// end. Relationships have no identifier of their own, so a diff reports a
// changed relationship as one removal and one addition unless it carries a
// label.
package erd

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diff"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Kind is the diagram kind of an ER diagram. Its envelope type is
// "er_diagram".
const Kind = "ERDiagram"

var (
	// ErrDuplicateEntity is returned when an entity name is already taken.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrUnknownEntity is returned when a relationship references a
	// missing entity.
	ErrUnknownEntity = errors.New("unknown entity")
)

// KeyKind marks an attribute as part of a key.
type KeyKind string

const (
	KeyPrimary KeyKind = "PK"
	KeyForeign KeyKind = "FK"
	KeyUnique  KeyKind = "UK"
)

// Cardinality describes one end of a relationship.
type Cardinality string

const (
	ZeroOrOne  Cardinality = "ZERO_OR_ONE"
	OneOnly    Cardinality = "ONE_ONLY"
	ZeroOrMore Cardinality = "ZERO_OR_MORE"
	OneOrMore  Cardinality = "ONE_OR_MORE"
)

// Attribute is a typed column of an entity.
type Attribute struct {
	Type    string    `json:"type" validate:"ident"`
	Name    string    `json:"name" validate:"ident"`
	Keys    []KeyKind `json:"keys" validate:"dive,oneof=PK FK UK"`
	Comment string    `json:"comment,omitempty"`
}

// Entity is a table-like box.
type Entity struct {
	Name       string      `json:"name" validate:"ident"`
	Attributes []Attribute `json:"attributes" validate:"dive"`
}

// Relationship connects Entity1 and Entity2. Cardinality1 is the
// cardinality of Entity1 relative to Entity2. Identifying relationships are
// drawn with a solid line.
type Relationship struct {
	Entity1      string      `json:"entity1" validate:"ident"`
	Entity2      string      `json:"entity2" validate:"ident"`
	Cardinality1 Cardinality `json:"cardinality1" validate:"oneof=ZERO_OR_ONE ONE_ONLY ZERO_OR_MORE ONE_OR_MORE"`
	Cardinality2 Cardinality `json:"cardinality2" validate:"oneof=ZERO_OR_ONE ONE_ONLY ZERO_OR_MORE ONE_OR_MORE"`
	Identifying  bool        `json:"identifying"`
	Label        string      `json:"label,omitempty"`
}

type content struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

var _ diagram.Diagram = (*Diagram)(nil)

// Diagram is an entity-relationship diagram.
type Diagram struct {
	base          diagram.Base
	entities      []Entity
	relationships []Relationship
}

// New validates entities and relationships and returns a diagram holding
// them.
func New(entities []Entity, relationships []Relationship, opts ...diagram.Option) (*Diagram, error) {
	d := &Diagram{base: diagram.NewBase(opts...)}
	for _, e := range entities {
		ent, err := d.checkEntity(e)
		if err != nil {
			return nil, err
		}
		d.entities = append(d.entities, ent)
	}
	for _, r := range relationships {
		if err := d.checkRelationship(r); err != nil {
			return nil, err
		}
		d.relationships = append(d.relationships, r)
	}
	if err := d.rehash(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load rebuilds an ER diagram from an envelope data payload.
func Load(data []byte, version diagram.Version, checksum string, opts ...diagram.Option) (*Diagram, error) {
	var c content
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidEnvelope, err, "decode %s data", Kind)
		}
	}
	d, err := New(c.Entities, c.Relationships, append([]diagram.Option{diagram.WithVersion(version)}, opts...)...)
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

// Content returns entities and relationships.
func (d *Diagram) Content() any {
	return content{Entities: d.Entities(), Relationships: d.Relationships()}
}

// IdentifiableElements exposes entities and relationships for diffing.
func (d *Diagram) IdentifiableElements() diff.Elements {
	return diff.Elements{
		"entities":      diff.Collect(d.Entities()),
		"relationships": diff.Collect(d.relationships),
	}
}

func (d *Diagram) rehash() error { return d.base.Rehash(d.Content()) }

// Entities returns a copy of the entities in insertion order.
func (d *Diagram) Entities() []Entity {
	out := make([]Entity, len(d.entities))
	for i, e := range d.entities {
		out[i] = cloneEntity(e)
	}
	return out
}

// Relationships returns a copy of the relationships in insertion order.
func (d *Diagram) Relationships() []Relationship {
	if d.relationships == nil {
		return []Relationship{}
	}
	return slices.Clone(d.relationships)
}

// AddEntity adds an entity with the given attributes.
func (d *Diagram) AddEntity(name string, attributes []Attribute) (Entity, error) {
	e, err := d.checkEntity(Entity{Name: name, Attributes: attributes})
	if err != nil {
		return Entity{}, err
	}
	d.entities = append(d.entities, e)
	if err := d.rehash(); err != nil {
		d.entities = d.entities[:len(d.entities)-1]
		return Entity{}, err
	}
	return cloneEntity(e), nil
}

// AddRelationship adds a relationship between two existing entities.
func (d *Diagram) AddRelationship(r Relationship) (Relationship, error) {
	if err := d.checkRelationship(r); err != nil {
		return Relationship{}, err
	}
	d.relationships = append(d.relationships, r)
	if err := d.rehash(); err != nil {
		d.relationships = d.relationships[:len(d.relationships)-1]
		return Relationship{}, err
	}
	return r, nil
}

// FindEntity returns the entity with the given name.
func (d *Diagram) FindEntity(name string) (Entity, bool) {
	i := slices.IndexFunc(d.entities, func(e Entity) bool { return e.Name == name })
	if i < 0 {
		return Entity{}, false
	}
	return cloneEntity(d.entities[i]), true
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

// checkEntity validates e and returns a normalized copy with non-nil
// attribute and key lists.
func (d *Diagram) checkEntity(e Entity) (Entity, error) {
	if err := diagram.Validate(e); err != nil {
		return Entity{}, err
	}
	if _, ok := d.FindEntity(e.Name); ok {
		return Entity{}, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateEntity, "entity %q", e.Name)
	}
	return cloneEntity(e), nil
}

func (d *Diagram) checkRelationship(r Relationship) error {
	if err := diagram.Validate(r); err != nil {
		return err
	}
	_, ok1 := d.FindEntity(r.Entity1)
	_, ok2 := d.FindEntity(r.Entity2)
	if !ok1 || !ok2 {
		return errs.Wrap(errs.ErrCodeValidation, ErrUnknownEntity,
			"relationship refers to %q and %q", r.Entity1, r.Entity2)
	}
	return nil
}

func cloneEntity(e Entity) Entity {
	attrs := make([]Attribute, len(e.Attributes))
	for i, a := range e.Attributes {
		keys := slices.Clone(a.Keys)
		if keys == nil {
			keys = []KeyKind{}
		}
		a.Keys = keys
		attrs[i] = a
	}
	e.Attributes = attrs
	return e
}
