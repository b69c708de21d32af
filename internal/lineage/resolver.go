// This file (resolver.go) implements branch history resolution: merge commit
// detection and the first-parent walk back to the trunk base.
package lineage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// CommitSource lists the commits reachable from a ref, newest first.
type CommitSource interface {
	Commits(ctx context.Context, ref string) ([]Commit, error)
}

// Result is a resolved branch history.
type Result struct {
	Trunk  string
	Branch string

	Merge Commit
	Base  string   // Merge.Parents[0], the trunk commit the branch was merged onto
	Chain []Commit // Branch-only commits, root-to-tip, ending at Merge.Parents[1]

	// Candidates counts every commit that qualified as a merge commit. Only
	// the oldest is used.
	Candidates int
}

// Resolver resolves branch histories against a CommitSource.
type Resolver struct {
	source CommitSource
	logger *pterm.Logger
}

// NewResolver returns a Resolver reading from src. A nil logger disables logging.
func NewResolver(src CommitSource, logger *pterm.Logger) *Resolver {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Resolver{source: src, logger: logger}
}

// Resolve fetches both histories, finds the merge commit of branch into trunk
// and walks the branch-only chain. The two fetches run concurrently.
func (r *Resolver) Resolve(ctx context.Context, trunk, branch string) (*Result, error) {
	if trunk == "" || branch == "" {
		return nil, errors.New("trunk and branch refs are required")
	}
	if trunk == branch {
		return nil, fmt.Errorf("branch %q must differ from trunk", branch)
	}

	var trunkSet, branchSet *CommitSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trunkSet, err = r.fetch(gctx, trunk)
		return err
	})
	g.Go(func() error {
		var err error
		branchSet, err = r.fetch(gctx, branch)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merge, candidates, ok := FindMergeCommit(trunkSet, branchSet.OldestFirst())
	if !ok {
		return nil, &NoMergeCommitError{Branch: branch, Trunk: trunk}
	}
	if candidates > 1 {
		r.logger.Debug("Several merge commits qualify, using the oldest", r.logger.Args(
			"branch", branch,
			"candidates", candidates,
			"sha", merge.SHA,
		))
	}
	r.logger.Info(fmt.Sprintf("Merge commit found: %s for branch %s", merge.SHA, branch))

	chain, err := WalkBranchChain(branchSet, merge)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Branch chain resolved", r.logger.Args("branch", branch, "commits", len(chain)))

	return &Result{
		Trunk:      trunk,
		Branch:     branch,
		Merge:      merge,
		Base:       merge.Parents[0],
		Chain:      chain,
		Candidates: candidates,
	}, nil
}

func (r *Resolver) fetch(ctx context.Context, ref string) (*CommitSet, error) {
	r.logger.Debug("Fetching commits", r.logger.Args("ref", ref))
	commits, err := r.source.Commits(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching commits of %s: %w", ref, err)
	}
	set := NewCommitSet(ref, commits)
	r.logger.Debug("Fetched commits", r.logger.Args("ref", ref, "count", set.Len()))
	return set, nil
}

// FindMergeCommit scans branch (oldest first) for the first commit with
// exactly two parents whose first parent is in trunk. It also returns how
// many commits qualified in total.
func FindMergeCommit(trunk *CommitSet, branch []Commit) (Commit, int, bool) {
	var (
		merge      Commit
		candidates int
	)
	for _, c := range branch {
		if !c.IsMerge() || !trunk.Contains(c.Parents[0]) {
			continue
		}
		if candidates == 0 {
			merge = c
		}
		candidates++
	}
	return merge, candidates, candidates > 0
}

// WalkBranchChain follows first parents from merge's second parent until it
// reaches a commit whose first parent is merge's first parent (the base).
// Every visited identifier must be in branch. The chain is returned
// root-to-tip and never contains the base or the merge commit.
func WalkBranchChain(branch *CommitSet, merge Commit) ([]Commit, error) {
	if !merge.IsMerge() {
		return nil, fmt.Errorf("commit %s is not a merge commit", merge.SHA)
	}
	base, current := merge.Parents[0], merge.Parents[1]

	broken := func(sha, reason string) error {
		return &BrokenChainError{Branch: branch.Ref, SHA: sha, Base: base, Reason: reason}
	}

	var tipFirst []Commit
	visited := make(map[string]struct{})
	for current != base {
		if _, seen := visited[current]; seen {
			return nil, broken(current, reasonCycle)
		}
		visited[current] = struct{}{}

		c, ok := branch.Get(current)
		if !ok {
			return nil, broken(current, reasonMissing)
		}
		tipFirst = append(tipFirst, c)

		if len(c.Parents) == 0 {
			return nil, broken(current, reasonRoot)
		}
		current = c.FirstParent()
	}

	chain := make([]Commit, len(tipFirst))
	for i, c := range tipFirst {
		chain[len(tipFirst)-1-i] = c
	}
	return chain, nil
}
