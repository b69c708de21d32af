package lineage

import (
	"context"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/ghapi"
)

// RemoteSource reads commit histories from the GitHub commits endpoint.
type RemoteSource struct {
	Client *ghapi.Client
	Owner  string
	Repo   string
}

// Commits pages through every commit reachable from ref. No limit applies:
// the trunk lookup must be complete for merge detection to be correct.
func (s *RemoteSource) Commits(ctx context.Context, ref string) ([]Commit, error) {
	var out []Commit
	err := ghapi.ForEach(ctx, s.Client.Commits(s.Owner, s.Repo, ref), func(c ghapi.Commit) error {
		out = append(out, Commit{
			SHA:     c.SHA,
			Parents: c.ParentSHAs(),
			Author:  c.Commit.Author.Name,
			When:    c.Commit.Author.Date,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ CommitSource = (*RemoteSource)(nil)
