package erd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matzehuels/diagrams/pkg/diagram"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

func shop(t *testing.T) *Diagram {
	t.Helper()
	d, err := New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddEntity("CUSTOMER", []Attribute{
		{Type: "string", Name: "id", Keys: []KeyKind{KeyPrimary}},
		{Type: "string", Name: "email", Keys: []KeyKind{KeyUnique}, Comment: "login"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddEntity("ORDER", []Attribute{{Type: "int", Name: "number"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddRelationship(Relationship{
		Entity1: "CUSTOMER", Entity2: "ORDER",
		Cardinality1: OneOnly, Cardinality2: ZeroOrMore,
		Identifying: true, Label: "places",
	}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestKindMapsToAcronymType(t *testing.T) {
	d := shop(t)
	env, err := diagram.ToEnvelope(d)
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != "er_diagram" {
		t.Errorf("Type = %q, want er_diagram", env.Type)
	}
	if diagram.KindName(env.Type) != Kind {
		t.Errorf("KindName(%q) = %q", env.Type, diagram.KindName(env.Type))
	}
}

func TestValidation(t *testing.T) {
	d := shop(t)
	before := d.Checksum()

	tests := []struct {
		name     string
		run      func() error
		sentinel error
	}{
		{"duplicate entity", func() error { _, err := d.AddEntity("ORDER", nil); return err }, ErrDuplicateEntity},
		{"empty entity name", func() error { _, err := d.AddEntity(" ", nil); return err }, nil},
		{"bad key", func() error {
			_, err := d.AddEntity("ITEM", []Attribute{{Type: "int", Name: "sku", Keys: []KeyKind{"XK"}}})
			return err
		}, nil},
		{"unknown entity", func() error {
			_, err := d.AddRelationship(Relationship{Entity1: "CUSTOMER", Entity2: "INVOICE", Cardinality1: OneOnly, Cardinality2: OneOnly})
			return err
		}, ErrUnknownEntity},
		{"bad cardinality", func() error {
			_, err := d.AddRelationship(Relationship{Entity1: "CUSTOMER", Entity2: "ORDER", Cardinality1: "MANY", Cardinality2: OneOnly})
			return err
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errs.IsValidation(err) {
				t.Fatalf("error = %v, want validation error", err)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
		})
	}
	if d.Checksum() != before {
		t.Error("failed operations changed the checksum")
	}
}

func TestNewRejectsDanglingRelationship(t *testing.T) {
	_, err := New(
		[]Entity{{Name: "A"}},
		[]Relationship{{Entity1: "A", Entity2: "B", Cardinality1: OneOnly, Cardinality2: OneOnly}},
	)
	if !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("error = %v", err)
	}
}

func TestContentAndRoundTrip(t *testing.T) {
	d := shop(t)
	data, err := json.Marshal(d.Content())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"entities":[` +
		`{"name":"CUSTOMER","attributes":[{"type":"string","name":"id","keys":["PK"]},{"type":"string","name":"email","keys":["UK"],"comment":"login"}]},` +
		`{"name":"ORDER","attributes":[{"type":"int","name":"number","keys":[]}]}],` +
		`"relationships":[{"entity1":"CUSTOMER","entity2":"ORDER","cardinality1":"ONE_ONLY","cardinality2":"ZERO_OR_MORE","identifying":true,"label":"places"}]}`
	if string(data) != want {
		t.Errorf("content =\n%s\nwant\n%s", data, want)
	}

	loaded, err := Load(data, d.Version(), d.Checksum())
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Equal(d) || len(loaded.Warnings()) != 0 {
		t.Errorf("round trip mismatch, warnings %v", loaded.Warnings())
	}
}

func TestRelationshipDiffWithoutLabel(t *testing.T) {
	build := func(c Cardinality) *Diagram {
		d, err := New(
			[]Entity{{Name: "A"}, {Name: "B"}},
			[]Relationship{{Entity1: "A", Entity2: "B", Cardinality1: OneOnly, Cardinality2: c}},
		)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	got := build(OneOnly).Diff(build(OneOrMore))["relationships"]
	if len(got.Modified) != 0 || len(got.Added) != 1 || len(got.Removed) != 1 {
		t.Errorf("unlabelled relationship change = %+v, want remove+add", got)
	}
}
