// This file (repos_metadata.go) contains the repository endpoints used by the
// report and the branch lineage: repository object, commits, contributors,
// pull requests and releases.
package ghapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RepoURL returns the API URL of the repository object.
func (c *Client) RepoURL(owner, repo string) string {
	return c.endpoint(fmt.Sprintf("/repos/%s/%s", owner, repo), nil)
}

// GetRepository fetches the repository object.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	var r Repository
	if err := c.GetJSON(ctx, c.RepoURL(owner, repo), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CommitsURL returns the commits collection URL for the history reachable from ref.
func (c *Client) CommitsURL(owner, repo, ref string) string {
	q := url.Values{}
	q.Set("sha", ref)
	q.Set("per_page", strconv.Itoa(defaultPerPage))
	return c.endpoint(fmt.Sprintf("/repos/%s/%s/commits", owner, repo), q)
}

// Commits returns a Pager over every commit reachable from ref, newest first.
func (c *Client) Commits(owner, repo, ref string) *Pager[Commit] {
	return NewPager[Commit](c, c.CommitsURL(owner, repo, ref), Unlimited)
}

// Contributors returns a Pager over the collection at contributorsURL, as
// found in the repository object.
func (c *Client) Contributors(contributorsURL string) (*Pager[Contributor], error) {
	u, err := withQuery(contributorsURL, "per_page", strconv.Itoa(defaultPerPage))
	if err != nil {
		return nil, err
	}
	return NewPager[Contributor](c, u, Unlimited), nil
}

// PullRequests returns a Pager over the repository's pull requests. The API
// default state filter (open) applies.
func (c *Client) PullRequests(owner, repo string) *Pager[PullRequest] {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(defaultPerPage))
	return NewPager[PullRequest](c, c.endpoint(fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), q), Unlimited)
}

// Releases returns a Pager over the latest limit releases. The page size is
// the limit itself so a single request usually suffices.
func (c *Client) Releases(owner, repo string, limit int) *Pager[Release] {
	q := url.Values{}
	if limit > 0 {
		q.Set("per_page", strconv.Itoa(min(limit, defaultPerPage)))
	}
	return NewPager[Release](c, c.endpoint(fmt.Sprintf("/repos/%s/%s/releases", owner, repo), q), limit)
}
