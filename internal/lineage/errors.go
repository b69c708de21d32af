package lineage

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two fatal resolution failures.
var (
	// ErrNoMergeCommit indicates the branch history holds no two-parent commit
	// whose first parent is a trunk commit.
	ErrNoMergeCommit = errors.New("no merge commit found")
	// ErrBrokenAncestryChain indicates the first-parent walk could not reach
	// the trunk base through the branch history.
	ErrBrokenAncestryChain = errors.New("broken ancestry chain")
)

// NoMergeCommitError reports which refs were compared.
type NoMergeCommitError struct {
	Branch string
	Trunk  string
}

func (e *NoMergeCommitError) Error() string {
	return fmt.Sprintf("no merge commit found for branch %s into %s", e.Branch, e.Trunk)
}

func (e *NoMergeCommitError) Is(target error) bool { return target == ErrNoMergeCommit }

// BrokenChainError identifies the commit at which the walk stopped.
type BrokenChainError struct {
	Branch string
	SHA    string
	Base   string
	Reason string
}

func (e *BrokenChainError) Error() string {
	return fmt.Sprintf("broken ancestry chain for branch %s at %s (base %s): %s", e.Branch, e.SHA, e.Base, e.Reason)
}

func (e *BrokenChainError) Is(target error) bool { return target == ErrBrokenAncestryChain }

// Reasons reported by BrokenChainError.
const (
	reasonMissing = "commit not found in branch history"
	reasonRoot    = "reached a root commit before the base"
	reasonCycle   = "commit visited twice"
)
