// Package lineage reconstructs the linear history of a feature branch from its
// merge into the trunk.
//
// Given the commits reachable from a trunk ref and from a branch ref, the
// Resolver finds the first merge commit on the branch whose first parent is a
// trunk commit, then walks first-parent links from the merge's second parent
// back to the trunk base. The resulting chain is ordered root-to-tip.
package lineage

import (
	"time"
)

// Commit is a read-only snapshot of a commit. Author and When are carried
// through for display only; the resolver reads SHA and Parents.
type Commit struct {
	SHA     string
	Parents []string // 0..2 parent identifiers, first parent first
	Author  string
	When    time.Time
}

// FirstParent returns the first parent identifier, or "" for a root commit.
func (c Commit) FirstParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// IsMerge reports whether c has exactly two parents.
func (c Commit) IsMerge() bool {
	return len(c.Parents) == 2
}

// CommitSet is the accumulator for one ref's history: a lookup keyed by
// identifier plus the order in which the source returned the commits
// (newest first). It is built once by NewCommitSet and never mutated after,
// so it can be read from several goroutines.
type CommitSet struct {
	Ref string

	bySHA map[string]Commit
	order []string
}

// NewCommitSet indexes commits, which must be newest first. A duplicate
// identifier keeps its first occurrence.
func NewCommitSet(ref string, commits []Commit) *CommitSet {
	s := &CommitSet{
		Ref:   ref,
		bySHA: make(map[string]Commit, len(commits)),
		order: make([]string, 0, len(commits)),
	}
	for _, c := range commits {
		if _, dup := s.bySHA[c.SHA]; dup {
			continue
		}
		s.bySHA[c.SHA] = c
		s.order = append(s.order, c.SHA)
	}
	return s
}

// Get returns the commit with the given identifier.
func (s *CommitSet) Get(sha string) (Commit, bool) {
	c, ok := s.bySHA[sha]
	return c, ok
}

// Contains reports whether sha is in the set.
func (s *CommitSet) Contains(sha string) bool {
	_, ok := s.bySHA[sha]
	return ok
}

// Len returns the number of distinct commits.
func (s *CommitSet) Len() int {
	return len(s.order)
}

// OldestFirst returns the commits in reverse source order.
func (s *CommitSet) OldestFirst() []Commit {
	out := make([]Commit, len(s.order))
	for i, sha := range s.order {
		out[len(s.order)-1-i] = s.bySHA[sha]
	}
	return out
}
