// This file (core_rest.go) implements the core REST request path. Every GET
// goes through get, which paces the request, applies the retry policy,
// records metrics and keeps the shared rate-limit state current.
package ghapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/state"
	"github.com/cenkalti/backoff/v5"
)

// maxBodyBytes bounds how much of a response we read. A page of 100 commits
// is well under a megabyte.
const maxBodyBytes = 32 << 20

// response is a successfully received 2xx response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// get performs a GET against rawURL with retries for transient failures.
// All returned errors are *FetchError.
func (c *Client) get(ctx context.Context, rawURL string) (*response, error) {
	hint := &waitHint{}
	attempt := 0

	operation := func() (*response, error) {
		attempt++
		return c.attempt(ctx, rawURL, hint)
	}

	notify := func(err error, wait time.Duration) {
		c.metrics.IncRetries()
		c.logger.Warn("Retrying GitHub API request", c.logger.Args(
			"url", rawURL,
			"attempt", attempt,
			"max_attempts", c.retry.maxTries,
			"wait", wait.String(),
			"error", err.Error(),
		))
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.retry.newBackOff(hint)),
		backoff.WithMaxTries(c.retry.maxTries),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			return nil, fetchErr
		}
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return resp, nil
}

// attempt performs a single round trip. Transient failures are returned as
// plain errors so backoff retries them; everything else is wrapped with
// backoff.Permanent.
func (c *Client) attempt(ctx context.Context, rawURL string, hint *waitHint) (*response, error) {
	if err := c.status.CheckRateLimit(ctx, 1); err != nil && !errors.Is(err, state.ErrClockSkewDetected) {
		return nil, backoff.Permanent(&FetchError{URL: rawURL, Err: fmt.Errorf("rate limit check failed: %w", err)})
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(&FetchError{URL: rawURL, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(&FetchError{URL: rawURL, Err: err})
	}
	c.setHeaders(req)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(0, time.Since(start))
		fetchErr := &FetchError{URL: rawURL, Err: err}
		if ctx.Err() != nil || !isTransientNetworkError(err) {
			return nil, backoff.Permanent(fetchErr)
		}
		return nil, fetchErr
	}
	defer httpResp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	c.metrics.ObserveRequest(httpResp.StatusCode, time.Since(start))
	c.status.IncrementAPICalls()
	c.status.UpdateFromHeaders(httpResp.Header)

	if readErr != nil {
		fetchErr := &FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: readErr}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fetchErr)
		}
		return nil, fetchErr
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &response{status: httpResp.StatusCode, header: httpResp.Header, body: body}, nil
	}

	fetchErr := &FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Body: truncateBody(body)}

	if wait, limited := rateLimitWait(httpResp, body); limited {
		if wait > c.retry.maxWait {
			fetchErr.Err = fmt.Errorf("rate limited for %v, longer than the %v retry budget", wait.Round(time.Second), c.retry.maxWait)
			return nil, backoff.Permanent(fetchErr)
		}
		hint.next = wait
		if hint.next == 0 {
			hint.next = time.Millisecond
		}
		return nil, fetchErr
	}

	if isTransientStatus(httpResp.StatusCode) {
		return nil, fetchErr
	}

	return nil, backoff.Permanent(fetchErr)
}

// GetJSON fetches a single JSON object from rawURL and decodes it into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	c.logger.Debug("Getting the object from: " + rawURL)

	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.body, v); err != nil {
		return &FetchError{
			URL:        rawURL,
			StatusCode: resp.status,
			Body:       truncateBody(resp.body),
			Err:        fmt.Errorf("%w: %v", ErrMalformedBody, err),
		}
	}
	return nil
}
