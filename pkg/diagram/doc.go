// Package diagram defines the contract shared by every structured diagram.
//
// # Overview
//
// A diagram is a mutable value object built incrementally through its own
// operations (add a node, commit, merge, ...). Every mutation that changes
// content recomputes a SHA-256 checksum over the diagram's content payload
// before it returns, so [Diagram.Checksum] always describes the current state.
// Two diagrams are equal when they have the same [Diagram.Kind] and the same
// checksum; the version token plays no part in equality.
//
// Concrete diagrams live in sub-packages (gitgraph, flowchart, pie, erd). Each
// embeds a [Base] for version, checksum and warning bookkeeping and supplies:
//
//   - Content: the JSON-encodable payload placed in the envelope's data field
//   - IdentifiableElements: per-type element collections used by [Diff]
//   - a package-level Load function that rebuilds the diagram from data
//
// # Envelope
//
// [ToEnvelope] wraps a diagram for the wire:
//
//	{"type": "gitgraph_diagram", "version": 1, "checksum": "…", "data": {…}}
//
// The type field is [TypeName] applied to the diagram's kind. [KindName]
// inverts the mapping, hard-coding acronym kinds such as ERDiagram that plain
// case conversion cannot recover. Decoding envelopes back into diagrams is the
// job of the codec package.
//
// # Warnings
//
// Some conditions are worth reporting but not worth failing for: a checksum
// that no longer matches reloaded content, or a cherry-pick of a merge commit
// without a parent hint. These are recorded as [Warning] values on the
// diagram and, when a logger was supplied with [WithLogger], logged at warn
// level.
package diagram
