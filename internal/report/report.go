// Package report builds the repository summary: stars, forks, contributors,
// pull requests, per-contributor pull request tallies and the latest
// releases.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/ghapi"
	"github.com/pterm/pterm"
)

// Tally is the number of pull requests opened by one contributor.
type Tally struct {
	Login string `json:"login"`
	Count int    `json:"count"`
}

// Release is a published release.
type Release struct {
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	PublishedAt string `json:"published_at"`
}

// Report is the aggregated repository summary.
type Report struct {
	Owner        string    `json:"owner"`
	Repo         string    `json:"repo"`
	Stars        int       `json:"stars"`
	Forks        int       `json:"forks"`
	Contributors []string  `json:"contributors"`
	PullRequests int       `json:"pull_requests"`
	PRsByAuthor  []Tally   `json:"contributors_prs_count"`
	Releases     []Release `json:"releases"`
}

// Summary formats the report as a single log message.
func (r *Report) Summary() string {
	tallies := make([]string, len(r.PRsByAuthor))
	for i, t := range r.PRsByAuthor {
		tallies[i] = fmt.Sprintf("%s: %d", t.Login, t.Count)
	}
	return fmt.Sprintf("Repo %s/%s has %d stars, %d forks, %d contributors, %d pull requests,\n contributors_prs_count: [%s].",
		r.Owner, r.Repo, r.Stars, r.Forks, len(r.Contributors), r.PullRequests, strings.Join(tallies, ", "))
}

// Aggregator collects a Report through the GitHub API.
type Aggregator struct {
	client        *ghapi.Client
	owner, repo   string
	releasesLimit int
	logger        *pterm.Logger
}

// NewAggregator returns an Aggregator for owner/repo that fetches at most
// releasesLimit releases. A nil logger disables logging.
func NewAggregator(client *ghapi.Client, owner, repo string, releasesLimit int, logger *pterm.Logger) *Aggregator {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Aggregator{client: client, owner: owner, repo: repo, releasesLimit: releasesLimit, logger: logger}
}

// Build fetches every section in turn. A failing section fails the whole
// report; nothing is defaulted to zero.
func (a *Aggregator) Build(ctx context.Context) (*Report, error) {
	rep := &Report{Owner: a.owner, Repo: a.repo}

	releases, err := a.latestReleases(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching releases: %w", err)
	}
	rep.Releases = releases

	a.logger.Debug("Getting the repository data from: " + a.client.RepoURL(a.owner, a.repo))
	repository, err := a.client.GetRepository(ctx, a.owner, a.repo)
	if err != nil {
		return nil, fmt.Errorf("fetching repository: %w", err)
	}
	rep.Stars = repository.StargazersCount
	rep.Forks = repository.ForksCount

	contributors, err := a.contributors(ctx, repository.ContributorsURL)
	if err != nil {
		return nil, fmt.Errorf("fetching contributors: %w", err)
	}
	rep.Contributors = contributors

	pulls, tallies, err := a.pullRequests(ctx, contributors)
	if err != nil {
		return nil, fmt.Errorf("fetching pull requests: %w", err)
	}
	rep.PullRequests = pulls
	rep.PRsByAuthor = tallies

	a.logger.Info(rep.Summary())
	return rep, nil
}

func (a *Aggregator) latestReleases(ctx context.Context) ([]Release, error) {
	a.logger.Info(fmt.Sprintf("Logging %d latest releases for %s/%s", a.releasesLimit, a.owner, a.repo))

	var out []Release
	err := ghapi.ForEach(ctx, a.client.Releases(a.owner, a.repo, a.releasesLimit), func(r ghapi.Release) error {
		a.logger.Info(fmt.Sprintf("Release: %s, Published at: %s", r.Name, r.PublishedAt))
		out = append(out, Release{Name: r.Name, Tag: r.TagName, PublishedAt: r.PublishedAt})
		return nil
	})
	return out, err
}

func (a *Aggregator) contributors(ctx context.Context, contributorsURL string) ([]string, error) {
	if contributorsURL == "" {
		return nil, fmt.Errorf("repository %s/%s has no contributors_url", a.owner, a.repo)
	}
	pager, err := a.client.Contributors(contributorsURL)
	if err != nil {
		return nil, err
	}

	var logins []string
	err = ghapi.ForEach(ctx, pager, func(c ghapi.Contributor) error {
		logins = append(logins, c.Login)
		return nil
	})
	return logins, err
}

// pullRequests counts every pull request and tallies those whose author is a
// contributor.
func (a *Aggregator) pullRequests(ctx context.Context, contributors []string) (int, []Tally, error) {
	isContributor := make(map[string]bool, len(contributors))
	for _, login := range contributors {
		isContributor[login] = true
	}

	total := 0
	counts := make(map[string]int)
	err := ghapi.ForEach(ctx, a.client.PullRequests(a.owner, a.repo), func(pr ghapi.PullRequest) error {
		total++
		if isContributor[pr.User.Login] {
			counts[pr.User.Login]++
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return total, SortTallies(counts), nil
}

// SortTallies orders counts by count descending, then login ascending.
func SortTallies(counts map[string]int) []Tally {
	out := make([]Tally, 0, len(counts))
	for login, n := range counts {
		out = append(out, Tally{Login: login, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Login < out[j].Login
	})
	return out
}
