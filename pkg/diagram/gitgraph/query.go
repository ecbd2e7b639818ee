package gitgraph

import (
	"slices"

	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Commits returns all commits in creation order. The returned commits are
// copies.
func (d *Diagram) Commits() []Commit {
	out := make([]Commit, 0, len(d.commitOrder))
	for _, id := range d.commitOrder {
		out = append(out, d.commits[id].clone())
	}
	return out
}

// CommitByID returns the commit with the given id and true, or false if it
// does not exist.
func (d *Diagram) CommitByID(id string) (Commit, bool) {
	c, ok := d.commits[id]
	if !ok {
		return Commit{}, false
	}
	return c.clone(), true
}

// Branches returns all branches in creation order.
func (d *Diagram) Branches() []Branch {
	out := make([]Branch, 0, len(d.branchOrder))
	for _, name := range d.branchOrder {
		out = append(out, *d.branches[name])
	}
	return out
}

// BranchByName returns the named branch and true, or false if it does not
// exist.
func (d *Diagram) BranchByName(name string) (Branch, bool) {
	b, ok := d.branches[name]
	if !ok {
		return Branch{}, false
	}
	return *b, true
}

// CommitOrder returns commit ids in creation order.
func (d *Diagram) CommitOrder() []string {
	out := slices.Clone(d.commitOrder)
	if out == nil {
		out = []string{}
	}
	return out
}

// CurrentBranch returns the name the cursor points at. Before the first
// commit this is [DefaultBranch] even though no such branch exists yet.
func (d *Diagram) CurrentBranch() string { return d.current }

// Head returns the head commit id of the current branch, or "" when the
// branch does not exist yet.
func (d *Diagram) Head() string {
	if b, ok := d.branches[d.current]; ok {
		return b.HeadCommitID
	}
	return ""
}

// Parents returns the parent ids of a commit. Returns nil if the commit
// does not exist.
func (d *Diagram) Parents(id string) []string {
	c, ok := d.commits[id]
	if !ok {
		return nil
	}
	return slices.Clone(c.ParentIDs)
}

// Ancestors returns every commit reachable from id through parent links,
// excluding id itself, in breadth-first order.
func (d *Diagram) Ancestors(id string) []string {
	start, ok := d.commits[id]
	if !ok {
		return nil
	}
	seen := map[string]bool{id: true}
	queue := slices.Clone(start.ParentIDs)
	var out []string
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, d.commits[next].ParentIDs...)
	}
	return out
}

// IsAncestor reports whether ancestor is reachable from id through parent
// links. A commit is not its own ancestor.
func (d *Diagram) IsAncestor(ancestor, id string) bool {
	return slices.Contains(d.Ancestors(id), ancestor)
}

// Log walks first parents from the head of branch, newest first.
func (d *Diagram) Log(branch string) ([]Commit, error) {
	b, ok := d.branches[branch]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch, "log %q", branch)
	}
	var out []Commit
	for id := b.HeadCommitID; id != ""; {
		c := d.commits[id]
		out = append(out, c.clone())
		id = ""
		if len(c.ParentIDs) > 0 {
			id = c.ParentIDs[0]
		}
	}
	return out, nil
}
