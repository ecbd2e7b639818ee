package diff

import (
	"reflect"
	"testing"
)

type node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type section struct {
	Title string   `json:"title"`
	Tasks []string `json:"tasks"`
}

func TestComputeAddedRemoved(t *testing.T) {
	a := node{ID: "a", Label: "A"}
	b := node{ID: "b", Label: "B"}

	got := Compute(Elements{"nodes": {a}}, Elements{"nodes": {b}})

	want := Result{"nodes": {Added: []any{b}, Removed: []any{a}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Compute() = %#v, want %#v", got, want)
	}
}

func TestComputeModified(t *testing.T) {
	old := node{ID: "a", Label: "A"}
	updated := node{ID: "a", Label: "Renamed"}

	got := Compute(Elements{"nodes": {old}}, Elements{"nodes": {updated}})

	d, ok := got["nodes"]
	if !ok {
		t.Fatal("expected nodes delta")
	}
	if len(d.Added) != 0 || len(d.Removed) != 0 {
		t.Errorf("modified element leaked into added/removed: %#v", d)
	}
	if len(d.Modified) != 1 || d.Modified[0].Old != old || d.Modified[0].New != updated {
		t.Errorf("Modified = %#v", d.Modified)
	}
}

func TestComputeIdentical(t *testing.T) {
	els := Elements{"nodes": {node{ID: "a", Label: "A"}}, "edges": {edge{From: "a", To: "a"}}}
	if got := Compute(els, els); !got.Empty() {
		t.Errorf("Compute(x, x) = %#v, want empty", got)
	}
}

func TestComputeIgnoresOneSidedTags(t *testing.T) {
	self := Elements{"nodes": {node{ID: "a"}}}
	other := Elements{"nodes": {node{ID: "a"}}, "edges": {edge{From: "a", To: "b"}}}
	if got := Compute(self, other); !got.Empty() {
		t.Errorf("tags present on one side only should be ignored, got %#v", got)
	}
}

func TestComputeIdentifierPriority(t *testing.T) {
	tests := []struct {
		name string
		old  any
		new  any
		// wantModified is true when old and new pair up by identifier.
		wantModified bool
	}{
		{"id", node{ID: "x", Label: "1"}, node{ID: "x", Label: "2"}, true},
		{"title", section{Title: "s", Tasks: []string{"a"}}, section{Title: "s", Tasks: []string{"b"}}, true},
		{"label", slice{Label: "dogs", Value: 1}, slice{Label: "dogs", Value: 2}, true},
		{"value identity", edge{From: "a", To: "b"}, edge{From: "a", To: "c"}, false},
		{"empty label falls back to value", slice{Value: 1}, slice{Value: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(Elements{"x": {tt.old}}, Elements{"x": {tt.new}})
			d := got["x"]
			if tt.wantModified {
				if len(d.Modified) != 1 || len(d.Added) != 0 || len(d.Removed) != 0 {
					t.Errorf("expected one modification, got %#v", d)
				}
				return
			}
			if len(d.Modified) != 0 || len(d.Added) != 1 || len(d.Removed) != 1 {
				t.Errorf("expected remove+add, got %#v", d)
			}
		})
	}
}

func TestComputeSymmetryOfShape(t *testing.T) {
	a := node{ID: "a", Label: "A"}
	b := node{ID: "b", Label: "B"}

	forward := Compute(Elements{"nodes": {a}}, Elements{"nodes": {a, b}})
	backward := Compute(Elements{"nodes": {a, b}}, Elements{"nodes": {a}})

	if !reflect.DeepEqual(forward["nodes"].Added, []any{b}) {
		t.Errorf("forward added = %#v", forward["nodes"].Added)
	}
	if !reflect.DeepEqual(backward["nodes"].Removed, []any{b}) {
		t.Errorf("backward removed = %#v", backward["nodes"].Removed)
	}
}

func TestComputeNilVersusEmptySlices(t *testing.T) {
	old := section{Title: "s", Tasks: nil}
	updated := section{Title: "s", Tasks: []string{}}
	// nil encodes as null and [] as [], so these differ by encoded value.
	got := Compute(Elements{"sections": {old}}, Elements{"sections": {updated}})
	if len(got["sections"].Modified) != 1 {
		t.Errorf("expected modification, got %#v", got)
	}
}

func TestComputePreservesOrder(t *testing.T) {
	self := Elements{"nodes": {node{ID: "c"}, node{ID: "a"}}}
	other := Elements{"nodes": {node{ID: "z"}, node{ID: "y"}}}

	got := Compute(self, other)["nodes"]
	if got.Added[0].(node).ID != "z" || got.Added[1].(node).ID != "y" {
		t.Errorf("added order = %#v", got.Added)
	}
	if got.Removed[0].(node).ID != "c" || got.Removed[1].(node).ID != "a" {
		t.Errorf("removed order = %#v", got.Removed)
	}
}

func TestIdentifierPointers(t *testing.T) {
	n := &node{ID: "p"}
	if got := Identifier(n); got != "ID:p" {
		t.Errorf("Identifier(&node) = %q", got)
	}
	var nilNode *node
	if got := Identifier(nilNode); got != "value:null" {
		t.Errorf("Identifier(nil) = %q", got)
	}
	if got := Identifier("plain"); got != `value:"plain"` {
		t.Errorf("Identifier(string) = %q", got)
	}
}

func TestResultTags(t *testing.T) {
	r := Result{"nodes": {}, "edges": {}}
	if got := r.Tags(); !reflect.DeepEqual(got, []string{"edges", "nodes"}) {
		t.Errorf("Tags() = %v", got)
	}
}

func TestCollect(t *testing.T) {
	got := Collect([]node{{ID: "a"}, {ID: "b"}})
	if len(got) != 2 || got[1].(node).ID != "b" {
		t.Errorf("Collect() = %#v", got)
	}
}
