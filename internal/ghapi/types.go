// This file (types.go) defines the REST response shapes consumed by the tool.
// Only the fields the tool reads are declared.
package ghapi

import "time"

// Repository is the single-object response of GET /repos/{owner}/{repo}.
type Repository struct {
	FullName        string `json:"full_name"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	ContributorsURL string `json:"contributors_url"`
	DefaultBranch   string `json:"default_branch"`
}

// Commit is one element of GET /repos/{owner}/{repo}/commits.
type Commit struct {
	SHA     string       `json:"sha"`
	Parents []CommitRef  `json:"parents"`
	Commit  CommitDetail `json:"commit"`
}

// CommitRef points at a parent commit.
type CommitRef struct {
	SHA string `json:"sha"`
}

// CommitDetail is the git-level part of a commit response.
type CommitDetail struct {
	Message string    `json:"message"`
	Author  Signature `json:"author"`
}

// Signature identifies who authored a commit and when.
type Signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// ParentSHAs returns the parent identifiers in order.
func (c Commit) ParentSHAs() []string {
	shas := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		shas[i] = p.SHA
	}
	return shas
}

// Contributor is one element of the contributors collection.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// PullRequest is one element of GET /repos/{owner}/{repo}/pulls.
type PullRequest struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
}

// Release is one element of GET /repos/{owner}/{repo}/releases.
type Release struct {
	Name        string `json:"name"`
	TagName     string `json:"tag_name"`
	PublishedAt string `json:"published_at"`
}

// RateLimitResponse represents the GitHub API rate limit response.
type RateLimitResponse struct {
	Resources struct {
		Core struct {
			Limit     int64 `json:"limit"`     // Total API calls allowed per hour
			Remaining int64 `json:"remaining"` // API calls remaining in current hour
			Reset     int64 `json:"reset"`     // Unix timestamp when rate limit resets
		} `json:"core"`
	} `json:"resources"`
}
