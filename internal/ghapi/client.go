// Package ghapi provides a client for the GitHub REST API.
//
// The client issues authenticated GET requests, retries transient failures,
// keeps the shared rate-limit state current and exposes paged collections as
// typed iterators (see Pager).
package ghapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/metrics"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/state"
	"github.com/pterm/pterm"
	"golang.org/x/time/rate"
)

// API request configuration constants.
const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// defaultPerPage is the largest page size GitHub accepts for list endpoints.
	defaultPerPage = 100

	defaultUserAgent  = "gh-repo-insights"
	defaultAPIVersion = "2022-11-28"
	defaultTimeout    = 30 * time.Second
)

// Options configures a Client. The zero value talks to api.github.com without
// a token, paced at no limit, with the default retry policy.
type Options struct {
	BaseURL    string       // API root, e.g. https://ghe.example.com/api/v3
	Token      string       // Sent as "Authorization: token <Token>" when set
	HTTPClient *http.Client // Defaults to a client with Timeout
	Timeout    time.Duration
	UserAgent  string

	// RequestsPerSecond paces outgoing requests. Zero or negative disables pacing.
	RequestsPerSecond float64

	// MaxRetries is the number of attempts per request, including the first.
	MaxRetries int
	// RetryBaseDelay is the first backoff interval; it doubles per attempt.
	RetryBaseDelay time.Duration
	// MaxRetryWait caps how long a Retry-After or rate-limit reset may make us wait.
	MaxRetryWait time.Duration

	Logger  *pterm.Logger
	Metrics *metrics.Recorder
	Status  *state.Status
}

// Client is a GitHub REST client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	token      string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retryPolicy

	logger  *pterm.Logger
	metrics *metrics.Recorder
	status  *state.Status
}

// NewClient validates opts and returns a ready Client.
func NewClient(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", raw)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}

	status := opts.Status
	if status == nil {
		status = state.Get()
	}

	return &Client{
		baseURL:    base,
		token:      opts.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		limiter:    limiter,
		retry:      newRetryPolicy(opts.MaxRetries, opts.RetryBaseDelay, opts.MaxRetryWait),
		logger:     logger,
		metrics:    opts.Metrics,
		status:     status,
	}, nil
}

// endpoint joins an API path onto the base URL and attaches query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// setHeaders adds the headers every GitHub request carries.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", defaultAPIVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
}

// withQuery returns rawURL with key=value set in its query string. Used for
// URLs handed to us by the API (e.g. contributors_url).
func withQuery(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
