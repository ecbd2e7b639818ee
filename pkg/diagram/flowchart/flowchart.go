// Package flowchart implements a node-and-edge flowchart diagram.
//
// Nodes are identified by ID; edges reference nodes by ID and must point at
// nodes that already exist.
package flowchart

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diff"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Kind is the diagram kind of a flowchart.
const Kind = "FlowchartDiagram"

var (
	// ErrDuplicateNode is returned when a node id is already taken.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is returned when an edge references a missing node.
	ErrUnknownNode = errors.New("unknown node")
)

// Node is a flowchart box.
type Node struct {
	ID    string `json:"id" validate:"ident"`
	Label string `json:"label" validate:"ident"`
}

// Edge connects two nodes. Label is optional.
type Edge struct {
	SourceID string `json:"source_id" validate:"ident"`
	TargetID string `json:"target_id" validate:"ident"`
	Label    string `json:"label,omitempty"`
}

type content struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

var _ diagram.Diagram = (*Diagram)(nil)

// Diagram is a flowchart. Use [New] or [Load] to create one.
type Diagram struct {
	base  diagram.Base
	nodes []Node
	edges []Edge
}

// New validates nodes and edges and returns a flowchart holding them.
func New(nodes []Node, edges []Edge, opts ...diagram.Option) (*Diagram, error) {
	if err := validate(nodes, edges); err != nil {
		return nil, err
	}
	d := &Diagram{
		base:  diagram.NewBase(opts...),
		nodes: slices.Clone(nodes),
		edges: slices.Clone(edges),
	}
	if err := d.rehash(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load rebuilds a flowchart from an envelope data payload.
func Load(data []byte, version diagram.Version, checksum string, opts ...diagram.Option) (*Diagram, error) {
	var c content
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidEnvelope, err, "decode %s data", Kind)
		}
	}
	d, err := New(c.Nodes, c.Edges, append([]diagram.Option{diagram.WithVersion(version)}, opts...)...)
	if err != nil {
		return nil, err
	}
	d.base.VerifyChecksum(Kind, checksum)
	return d, nil
}

func validate(nodes []Node, edges []Edge) error {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if err := diagram.Validate(n); err != nil {
			return err
		}
		if ids[n.ID] {
			return errs.Wrap(errs.ErrCodeValidation, ErrDuplicateNode, "node %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range edges {
		if err := checkEdge(e, func(id string) bool { return ids[id] }); err != nil {
			return err
		}
	}
	return nil
}

func checkEdge(e Edge, exists func(string) bool) error {
	if err := diagram.Validate(e); err != nil {
		return err
	}
	if !exists(e.SourceID) || !exists(e.TargetID) {
		return errs.Wrap(errs.ErrCodeValidation, ErrUnknownNode,
			"edge refers to non-existent node ids (%q or %q)", e.SourceID, e.TargetID)
	}
	return nil
}

func (d *Diagram) Kind() string                { return Kind }
func (d *Diagram) Version() diagram.Version    { return d.base.Version() }
func (d *Diagram) Checksum() string            { return d.base.Checksum() }
func (d *Diagram) Warnings() []diagram.Warning { return d.base.Warnings() }

// Content returns the nodes and edges.
func (d *Diagram) Content() any {
	return content{Nodes: d.Nodes(), Edges: d.Edges()}
}

// IdentifiableElements exposes nodes and edges for diffing.
func (d *Diagram) IdentifiableElements() diff.Elements {
	return diff.Elements{
		"nodes": diff.Collect(d.nodes),
		"edges": diff.Collect(d.edges),
	}
}

func (d *Diagram) rehash() error { return d.base.Rehash(d.Content()) }

// Nodes returns a copy of the nodes in insertion order.
func (d *Diagram) Nodes() []Node {
	if d.nodes == nil {
		return []Node{}
	}
	return slices.Clone(d.nodes)
}

// Edges returns a copy of the edges in insertion order.
func (d *Diagram) Edges() []Edge {
	if d.edges == nil {
		return []Edge{}
	}
	return slices.Clone(d.edges)
}

// AddNode appends a node. Fails if the node is invalid or its id is taken.
func (d *Diagram) AddNode(n Node) (Node, error) {
	if err := diagram.Validate(n); err != nil {
		return Node{}, err
	}
	if _, ok := d.FindNode(n.ID); ok {
		return Node{}, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateNode, "node %q", n.ID)
	}
	d.nodes = append(d.nodes, n)
	if err := d.rehash(); err != nil {
		d.nodes = d.nodes[:len(d.nodes)-1]
		return Node{}, err
	}
	return n, nil
}

// AddEdge appends an edge between two existing nodes.
func (d *Diagram) AddEdge(e Edge) (Edge, error) {
	if err := checkEdge(e, func(id string) bool { _, ok := d.FindNode(id); return ok }); err != nil {
		return Edge{}, err
	}
	d.edges = append(d.edges, e)
	if err := d.rehash(); err != nil {
		d.edges = d.edges[:len(d.edges)-1]
		return Edge{}, err
	}
	return e, nil
}

// FindNode returns the node with the given id.
func (d *Diagram) FindNode(id string) (Node, bool) {
	i := slices.IndexFunc(d.nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return d.nodes[i], true
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
