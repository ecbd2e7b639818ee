package gitgraph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/diagrams/pkg/diagram"
	"github.com/matzehuels/diagrams/pkg/diff"
	errs "github.com/matzehuels/diagrams/pkg/errors"
	"github.com/matzehuels/diagrams/pkg/hash"
)

// Kind is the diagram kind of a commit graph.
const Kind = "GitgraphDiagram"

// idPartLen is the number of characters of the parent id and the message
// digest that go into a generated commit id.
const idPartLen = 6

var _ diagram.Diagram = (*Diagram)(nil)

// Diagram is a commit graph. The zero value is not usable; use [New] or
// [Load].
//
// Diagram is not safe for concurrent use without external synchronization.
type Diagram struct {
	base diagram.Base

	commits     map[string]Commit
	commitOrder []string
	branches    map[string]*Branch
	branchOrder []string
	current     string
}

// New returns an empty commit graph with the cursor on [DefaultBranch].
func New(opts ...diagram.Option) *Diagram {
	d := newEmpty(opts...)
	// An empty graph always encodes.
	_ = d.rehash()
	return d
}

func newEmpty(opts ...diagram.Option) *Diagram {
	return &Diagram{
		base:     diagram.NewBase(opts...),
		commits:  make(map[string]Commit),
		branches: make(map[string]*Branch),
		current:  DefaultBranch,
	}
}

// Kind returns "GitgraphDiagram".
func (d *Diagram) Kind() string { return Kind }

// Version returns the version token.
func (d *Diagram) Version() diagram.Version { return d.base.Version() }

// Checksum returns the digest of the current content.
func (d *Diagram) Checksum() string { return d.base.Checksum() }

// Warnings returns the non-fatal conditions recorded so far.
func (d *Diagram) Warnings() []diagram.Warning { return d.base.Warnings() }

// Content returns commits, branches, commit order and the current branch.
func (d *Diagram) Content() any {
	c := d.checksumPayload()
	c.CurrentBranchName = d.current
	return c
}

func (d *Diagram) checksumPayload() content {
	return content{
		Commits:     d.Commits(),
		Branches:    d.Branches(),
		CommitOrder: d.CommitOrder(),
	}
}

func (d *Diagram) rehash() error { return d.base.Rehash(d.checksumPayload()) }

// IdentifiableElements exposes commits and branches for diffing.
func (d *Diagram) IdentifiableElements() diff.Elements {
	return diff.Elements{
		"commits":  diff.Collect(d.Commits()),
		"branches": diff.Collect(d.Branches()),
	}
}

// Equal reports whether other has the same content.
func (d *Diagram) Equal(other *Diagram) bool {
	if other == nil {
		return false
	}
	return diagram.Equal(d, other)
}

// Diff returns the structural delta from d to other.
func (d *Diagram) Diff(other *Diagram) diff.Result {
	if other == nil {
		return diff.Result{}
	}
	return diagram.Diff(d, other)
}

// Commit adds a commit on the current branch and advances its head.
//
// The parent is the current branch head. The very first commit has no parent
// and creates [DefaultBranch] rooted at itself. Fails with [ErrUnknownBranch]
// if the cursor names a branch that does not exist, [ErrDuplicateCommit] if
// the id is taken, or [ErrInvalidKind].
func (d *Diagram) Commit(opts CommitOptions) (Commit, error) {
	kind, err := resolveKind(opts.Kind, KindNormal)
	if err != nil {
		return Commit{}, err
	}
	if opts.ID != "" {
		if err := errs.ValidateName("commit id", opts.ID); err != nil {
			return Commit{}, err
		}
	}

	first := len(d.commits) == 0 && d.current == DefaultBranch && d.branches[DefaultBranch] == nil
	if !first && d.branches[d.current] == nil {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch,
			"cannot commit: branch %q does not exist", d.current)
	}

	parents := d.headParents()
	id := opts.ID
	if id == "" {
		id = d.generateID(parents, opts.Message)
	}
	if _, exists := d.commits[id]; exists {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateCommit, "commit %q", id)
	}

	c := Commit{
		ID:         id,
		ParentIDs:  parents,
		BranchName: d.current,
		Message:    opts.Message,
		Tag:        opts.Tag,
		Kind:       kind,
	}
	undoBranch := func() {}
	if first {
		undoBranch = d.addBranch(&Branch{Name: DefaultBranch, StartCommitID: id, HeadCommitID: id})
	}
	undo := d.record(c)
	if err := d.rehash(); err != nil {
		undo()
		undoBranch()
		return Commit{}, err
	}
	return c.clone(), nil
}

// Branch creates a branch at startCommitID, or at the current head when
// startCommitID is empty, and moves the cursor to it.
//
// Fails with [ErrDuplicateBranch], [ErrNoCommits] when there is nothing to
// branch from, or [ErrUnknownCommit] when startCommitID does not exist.
func (d *Diagram) Branch(name, startCommitID string) (Branch, error) {
	if err := errs.ValidateName("branch name", name); err != nil {
		return Branch{}, err
	}
	if _, exists := d.branches[name]; exists {
		return Branch{}, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateBranch, "branch %q", name)
	}

	start := startCommitID
	if start == "" {
		start = d.Head()
	}
	if start == "" {
		return Branch{}, errs.Wrap(errs.ErrCodeValidation, ErrNoCommits,
			"cannot create branch %q before the first commit", name)
	}
	if _, ok := d.commits[start]; !ok {
		return Branch{}, errs.Wrap(errs.ErrCodeValidation, ErrUnknownCommit, "start commit %q", start)
	}

	b := &Branch{Name: name, StartCommitID: start, HeadCommitID: start}
	undo := d.addBranch(b)
	if err := d.rehash(); err != nil {
		undo()
		return Branch{}, err
	}
	d.current = name
	return *b, nil
}

// Checkout moves the cursor to an existing branch. The checksum does not
// change.
func (d *Diagram) Checkout(name string) error {
	if _, ok := d.branches[name]; !ok {
		return errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch, "cannot checkout %q", name)
	}
	d.current = name
	return nil
}

// Merge records a merge commit of fromBranch into the current branch and
// advances the current head to it. The source branch is not modified.
//
// The parents are the two branch heads in sorted order. The message is
// "Merge branch '<from>' into <current>".
func (d *Diagram) Merge(fromBranch string, opts MergeOptions) (Commit, error) {
	if fromBranch == d.current {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrSelfMerge, "merge %q", fromBranch)
	}
	source, ok := d.branches[fromBranch]
	if !ok {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch, "cannot merge from %q", fromBranch)
	}
	target, ok := d.branches[d.current]
	if !ok {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrUnknownBranch, "cannot merge into %q", d.current)
	}
	if target.HeadCommitID == "" {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrNoCommits,
			"current branch %q has no commits to merge into", d.current)
	}
	if source.HeadCommitID == "" {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrNoCommits,
			"source branch %q has no commits to merge from", fromBranch)
	}

	kind, err := resolveKind(opts.Kind, KindMerge)
	if err != nil {
		return Commit{}, err
	}
	if opts.ID != "" {
		if err := errs.ValidateName("commit id", opts.ID); err != nil {
			return Commit{}, err
		}
	}

	parents := []string{target.HeadCommitID, source.HeadCommitID}
	slices.Sort(parents)
	message := fmt.Sprintf("Merge branch '%s' into %s", fromBranch, d.current)

	id := opts.ID
	if id == "" {
		id = d.generateID(parents, message)
	}
	if _, exists := d.commits[id]; exists {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateCommit, "commit %q", id)
	}

	c := Commit{
		ID:         id,
		ParentIDs:  parents,
		BranchName: d.current,
		Message:    message,
		Tag:        opts.Tag,
		Kind:       kind,
	}
	undo := d.record(c)
	if err := d.rehash(); err != nil {
		undo()
		return Commit{}, err
	}
	return c.clone(), nil
}

// CherryPick copies commitID onto the current branch as a new commit whose
// only parent is the current head.
//
// The copy keeps the source message (or "Cherry-pick of <id>" when it has
// none), drops the tag, and links back through CherryPickSourceID.
// parentOverrideID marks the lineage of a merge commit as chosen by the
// caller; its value is not interpreted. Picking a merge commit without it is
// allowed but records a [diagram.WarnAmbiguousCherryPick] warning.
func (d *Diagram) CherryPick(commitID, parentOverrideID string) (Commit, error) {
	source, ok := d.commits[commitID]
	if !ok {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrUnknownCommit, "cannot cherry-pick %q", commitID)
	}
	head := d.Head()
	if head == "" {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrNoCommits,
			"current branch %q has no commits to cherry-pick onto", d.current)
	}
	if source.BranchName == d.current {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrAlreadyOnBranch,
			"commit %q is on %q", commitID, d.current)
	}

	seed := source.Message
	if seed == "" {
		seed = source.ID
	}
	parents := []string{head}
	id := d.generateID(parents, "Cherry-pick: "+seed)
	if _, exists := d.commits[id]; exists {
		return Commit{}, errs.Wrap(errs.ErrCodeValidation, ErrDuplicateCommit,
			"generated commit id %q", id)
	}

	message := source.Message
	if message == "" {
		message = "Cherry-pick of " + source.ID
	}

	c := Commit{
		ID:                 id,
		ParentIDs:          parents,
		BranchName:         d.current,
		Message:            message,
		Kind:               KindCherryPick,
		CherryPickSourceID: source.ID,
	}
	undo := d.record(c)
	if err := d.rehash(); err != nil {
		undo()
		return Commit{}, err
	}
	if source.IsMerge() && parentOverrideID == "" {
		d.base.Warn(diagram.WarnAmbiguousCherryPick,
			"cherry-picking merge commit %q without a parent override is ambiguous; following the first parent", commitID)
	}
	return c.clone(), nil
}

// record stores c and advances the head of its branch. The returned func
// reverts both.
func (d *Diagram) record(c Commit) (undo func()) {
	b := d.branches[c.BranchName]
	prevHead := b.HeadCommitID
	d.commits[c.ID] = c
	d.commitOrder = append(d.commitOrder, c.ID)
	b.HeadCommitID = c.ID
	return func() {
		delete(d.commits, c.ID)
		d.commitOrder = d.commitOrder[:len(d.commitOrder)-1]
		b.HeadCommitID = prevHead
	}
}

func (d *Diagram) addBranch(b *Branch) (undo func()) {
	d.branches[b.Name] = b
	d.branchOrder = append(d.branchOrder, b.Name)
	return func() {
		delete(d.branches, b.Name)
		d.branchOrder = d.branchOrder[:len(d.branchOrder)-1]
	}
}

// headParents returns the parent list for a commit on the current branch.
func (d *Diagram) headParents() []string {
	if head := d.Head(); head != "" {
		return []string{head}
	}
	return []string{}
}

// generateID derives "commit-<n>-<parent>-<digest>" where n is the number of
// existing commits, parent is a prefix of the first parent id (or "root")
// and digest is a prefix of the SHA-256 of message. Commits without a
// message use a random seed instead.
func (d *Diagram) generateID(parents []string, message string) string {
	parentPart := "root"
	if len(parents) > 0 {
		parentPart = prefix(parents[0], idPartLen)
	}
	seed := message
	if seed == "" {
		seed = uuid.NewString()
	}
	return fmt.Sprintf("commit-%d-%s-%s", len(d.commitOrder), parentPart, hash.Sum([]byte(seed))[:idPartLen])
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func resolveKind(k, fallback CommitKind) (CommitKind, error) {
	if k == "" {
		return fallback, nil
	}
	if !k.Valid() {
		return "", errs.Wrap(errs.ErrCodeValidation, ErrInvalidKind, "kind %q", string(k))
	}
	return k, nil
}
