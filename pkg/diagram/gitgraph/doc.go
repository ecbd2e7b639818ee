// Package gitgraph models a git commit graph as a diagram.
//
// # Overview
//
// A [Diagram] owns commits, branches, the order in which commits were
// created, and a current-branch cursor. It behaves like a tiny version
// control system whose only job is to describe history:
//
//	g := gitgraph.New()
//	g.Commit(gitgraph.CommitOptions{ID: "C1"})
//	g.Branch("dev", "")
//	g.Commit(gitgraph.CommitOptions{ID: "D1"})
//	g.Checkout("master")
//	g.Merge("dev", gitgraph.MergeOptions{ID: "M1"})
//
// The cursor starts on "master", but the master branch only comes into
// existence with the first commit. Commits are append-only: every parent
// must exist when a commit is created, so the graph is a DAG by
// construction.
//
// # Checksums
//
// Every structural operation ([Diagram.Commit], [Diagram.Branch],
// [Diagram.Merge], [Diagram.CherryPick]) recomputes the checksum before it
// returns. [Diagram.Checkout] only moves the cursor and leaves the checksum
// untouched: the cursor is serialized with the content so it survives a round
// trip, but it is not part of the checksum payload.
//
// # Errors
//
// Every failure is a VALIDATION_FAILED error from the errors package wrapping
// one of the sentinel errors below, so callers can match either the code or
// the sentinel:
//
//	_, err := g.Merge("dev", gitgraph.MergeOptions{})
//	if errors.Is(err, gitgraph.ErrUnknownBranch) { ... }
//
// A failed operation leaves the diagram unchanged.
package gitgraph
