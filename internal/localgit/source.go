// Package localgit reads commit histories from a local clone, as an
// alternative to the GitHub commits endpoint. It spends no API budget, which
// matters for large trunks.
package localgit

import (
	"context"
	"fmt"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/lineage"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Source lists commits of a local repository.
type Source struct {
	repo *git.Repository
}

// Open opens the repository at path. The path may be a worktree or a bare
// repository.
func Open(path string) (*Source, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", path, err)
	}
	return &Source{repo: repo}, nil
}

// Commits returns every commit reachable from ref, newest first by committer
// time. ref may be a branch, tag, remote branch (origin/x) or hash.
func (s *Source) Commits(ctx context.Context, ref string) ([]lineage.Commit, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}

	iter, err := s.repo.Log(&git.LogOptions{From: *hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("reading log of %s: %w", ref, err)
	}
	defer iter.Close()

	var out []lineage.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		parents := make([]string, len(c.ParentHashes))
		for i, h := range c.ParentHashes {
			parents[i] = h.String()
		}
		out = append(out, lineage.Commit{
			SHA:     c.Hash.String(),
			Parents: parents,
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ lineage.CommitSource = (*Source)(nil)
