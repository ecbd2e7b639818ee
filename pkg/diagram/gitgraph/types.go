package gitgraph

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicateCommit is returned when a commit id is already taken.
	ErrDuplicateCommit = errors.New("duplicate commit")

	// ErrDuplicateBranch is returned by [Diagram.Branch] when the branch
	// name is already taken.
	ErrDuplicateBranch = errors.New("duplicate branch")

	// ErrUnknownBranch is returned when an operation names a branch that
	// does not exist, including committing while the cursor points at a
	// branch that was never created.
	ErrUnknownBranch = errors.New("unknown branch")

	// ErrUnknownCommit is returned when an operation names a commit that
	// does not exist.
	ErrUnknownCommit = errors.New("unknown commit")

	// ErrNoCommits is returned when an operation needs a head commit that
	// does not exist yet, e.g. branching before the first commit.
	ErrNoCommits = errors.New("no commits")

	// ErrSelfMerge is returned by [Diagram.Merge] when the source branch is
	// the current branch.
	ErrSelfMerge = errors.New("cannot merge a branch into itself")

	// ErrAlreadyOnBranch is returned by [Diagram.CherryPick] when the picked
	// commit was created on the current branch.
	ErrAlreadyOnBranch = errors.New("commit already on current branch")

	// ErrInvalidKind is returned when a commit kind is not one of the
	// defined [CommitKind] values.
	ErrInvalidKind = errors.New("invalid commit kind")
)

// DefaultBranch is the branch the cursor starts on. It is created by the
// first commit.
const DefaultBranch = "master"

// CommitKind is the display type of a commit.
type CommitKind string

const (
	KindNormal     CommitKind = "NORMAL"
	KindReverse    CommitKind = "REVERSE"
	KindHighlight  CommitKind = "HIGHLIGHT"
	KindMerge      CommitKind = "MERGE"
	KindCherryPick CommitKind = "CHERRY_PICK"
)

// Valid reports whether k is one of the defined kinds.
func (k CommitKind) Valid() bool {
	switch k {
	case KindNormal, KindReverse, KindHighlight, KindMerge, KindCherryPick:
		return true
	}
	return false
}

// Commit is a node of the commit graph. ParentIDs is empty only for the
// first commit and holds two ids for merges.
type Commit struct {
	ID                 string     `json:"id" validate:"ident"`
	ParentIDs          []string   `json:"parent_ids" validate:"dive,ident"`
	BranchName         string     `json:"branch_name" validate:"ident"`
	Message            string     `json:"message,omitempty"`
	Tag                string     `json:"tag,omitempty"`
	Kind               CommitKind `json:"type" validate:"oneof=NORMAL REVERSE HIGHLIGHT MERGE CHERRY_PICK"`
	CherryPickSourceID string     `json:"cherry_pick_source_id,omitempty"`
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool { return len(c.ParentIDs) > 1 }

// IsRoot reports whether the commit has no parents.
func (c Commit) IsRoot() bool { return len(c.ParentIDs) == 0 }

func (c Commit) clone() Commit {
	c.ParentIDs = slices.Clone(c.ParentIDs)
	if c.ParentIDs == nil {
		c.ParentIDs = []string{}
	}
	return c
}

// Branch is a named pointer into the commit graph. StartCommitID is the
// commit the branch forked from; HeadCommitID is the latest commit made
// while the branch was current.
type Branch struct {
	Name          string `json:"name" validate:"ident"`
	StartCommitID string `json:"start_commit_id" validate:"ident"`
	HeadCommitID  string `json:"head_commit_id,omitempty"`
}

// CommitOptions configures [Diagram.Commit]. All fields are optional.
// An empty ID is generated and an empty Kind means [KindNormal].
type CommitOptions struct {
	ID      string
	Message string
	Tag     string
	Kind    CommitKind
}

// MergeOptions configures [Diagram.Merge]. An empty ID is generated and an
// empty Kind means [KindMerge].
type MergeOptions struct {
	ID   string
	Tag  string
	Kind CommitKind
}

// content is the data payload of the envelope.
type content struct {
	Commits     []Commit `json:"commits"`
	Branches    []Branch `json:"branches"`
	CommitOrder []string `json:"commit_order"`
	// CurrentBranchName is left empty in the checksum payload.
	CurrentBranchName string `json:"current_branch_name,omitempty"`
}
