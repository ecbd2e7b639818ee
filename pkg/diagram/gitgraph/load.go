package gitgraph

import (
	"encoding/json"

	"github.com/matzehuels/diagrams/pkg/diagram"
	errs "github.com/matzehuels/diagrams/pkg/errors"
)

// Load rebuilds a commit graph from an envelope data payload.
//
// The payload is validated as a whole before any state is kept: commit and
// branch fields, unique ids, commit_order being a permutation of the commits
// in which every parent precedes its children, branches pointing at existing
// commits, and the cursor naming an existing branch. A missing commit_order
// is derived from the commit list.
//
// The checksum is recomputed from the loaded content. When checksum is
// non-empty and differs, a [diagram.WarnChecksumMismatch] warning is recorded
// and the diagram is still returned.
func Load(data []byte, version diagram.Version, checksum string, opts ...diagram.Option) (*Diagram, error) {
	var c content
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidEnvelope, err, "decode %s data", Kind)
		}
	}

	commits, err := loadCommits(c.Commits)
	if err != nil {
		return nil, err
	}
	order := c.CommitOrder
	if order == nil {
		for _, cm := range c.Commits {
			order = append(order, cm.ID)
		}
	}
	if err := checkOrder(order, commits); err != nil {
		return nil, err
	}
	branches, branchOrder, err := loadBranches(c.Branches, commits)
	if err != nil {
		return nil, err
	}
	if err := checkCommitBranches(order, commits, branches); err != nil {
		return nil, err
	}
	current := c.CurrentBranchName
	if current == "" {
		current = DefaultBranch
	}
	if len(branches) > 0 && branches[current] == nil {
		return nil, errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch, "current branch %q", current)
	}

	d := newEmpty(append([]diagram.Option{diagram.WithVersion(version)}, opts...)...)
	d.commits = commits
	d.commitOrder = order
	d.branches = branches
	d.branchOrder = branchOrder
	d.current = current
	if err := d.rehash(); err != nil {
		return nil, err
	}
	d.base.VerifyChecksum(Kind, checksum)
	return d, nil
}

func loadCommits(list []Commit) (map[string]Commit, error) {
	commits := make(map[string]Commit, len(list))
	for _, cm := range list {
		if cm.Kind == "" {
			cm.Kind = KindNormal
		}
		if err := diagram.Validate(cm); err != nil {
			return nil, err
		}
		if _, dup := commits[cm.ID]; dup {
			return nil, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateCommit, "commit %q", cm.ID)
		}
		commits[cm.ID] = cm.clone()
	}
	return commits, nil
}

// checkOrder verifies order lists every commit exactly once and that each
// commit appears after all of its parents.
func checkOrder(order []string, commits map[string]Commit) error {
	if len(order) != len(commits) {
		return errs.New(errs.ErrCodeValidation,
			"commit_order lists %d commits, data has %d", len(order), len(commits))
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		cm, ok := commits[id]
		if !ok {
			return errs.Wrap(errs.ErrCodeValidation, ErrUnknownCommit, "commit_order entry %q", id)
		}
		if seen[id] {
			return errs.Wrap(errs.ErrCodeValidation, ErrDuplicateCommit, "commit_order entry %q", id)
		}
		for _, p := range cm.ParentIDs {
			if !seen[p] {
				return errs.Wrap(errs.ErrCodeValidation, ErrUnknownCommit,
					"parent %q of commit %q", p, id)
			}
		}
		seen[id] = true
	}
	return nil
}

func loadBranches(list []Branch, commits map[string]Commit) (map[string]*Branch, []string, error) {
	branches := make(map[string]*Branch, len(list))
	order := make([]string, 0, len(list))
	for _, b := range list {
		if err := diagram.Validate(b); err != nil {
			return nil, nil, err
		}
		if _, dup := branches[b.Name]; dup {
			return nil, nil, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateBranch, "branch %q", b.Name)
		}
		if _, ok := commits[b.StartCommitID]; !ok {
			return nil, nil, errs.Wrap(errs.ErrCodeValidation, ErrUnknownCommit,
				"start commit %q of branch %q", b.StartCommitID, b.Name)
		}
		if b.HeadCommitID != "" {
			if _, ok := commits[b.HeadCommitID]; !ok {
				return nil, nil, errs.Wrap(errs.ErrCodeValidation, ErrUnknownCommit,
					"head commit %q of branch %q", b.HeadCommitID, b.Name)
			}
		}
		branch := b
		branches[b.Name] = &branch
		order = append(order, b.Name)
	}
	return branches, order, nil
}

// checkCommitBranches verifies every commit names a loaded branch. Branches
// are never deleted, so an unknown name is a dangling reference. Data
// without any branch is not checked.
func checkCommitBranches(order []string, commits map[string]Commit, branches map[string]*Branch) error {
	if len(branches) == 0 {
		return nil
	}
	for _, id := range order {
		name := commits[id].BranchName
		if _, ok := branches[name]; !ok {
			return errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch,
				"branch %q of commit %q", name, id)
		}
	}
	return nil
}
