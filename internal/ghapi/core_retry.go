// This file (core_retry.go) implements the retry policy for GitHub API calls.
// It classifies failures as transient or permanent, honors Retry-After and
// rate-limit reset headers, and drives exponential backoff.
package ghapi

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry configuration constants
const (
	defaultMaxRetries        = 3
	retryBackoffBaseDuration = 1 * time.Second
	maxBackoffDuration       = 30 * time.Second
	minRetryWait             = 60 * time.Second
	maxRetryWait             = 15 * time.Minute
)

type retryPolicy struct {
	maxTries  uint
	baseDelay time.Duration
	maxWait   time.Duration
}

func newRetryPolicy(maxTries int, baseDelay, maxWait time.Duration) retryPolicy {
	if maxTries <= 0 {
		maxTries = defaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = retryBackoffBaseDuration
	}
	if maxWait <= 0 {
		maxWait = maxRetryWait
	}
	return retryPolicy{maxTries: uint(maxTries), baseDelay: baseDelay, maxWait: maxWait}
}

// waitHint lets an attempt tell the backoff how long the server asked us to
// wait. It is consumed by the next NextBackOff call.
type waitHint struct {
	next time.Duration
}

// hintedBackOff prefers a server-provided wait over the exponential schedule.
type hintedBackOff struct {
	backoff.BackOff
	hint *waitHint
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	if d := b.hint.next; d > 0 {
		b.hint.next = 0
		return d
	}
	return b.BackOff.NextBackOff()
}

func (p retryPolicy) newBackOff(hint *waitHint) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.baseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.2
	exp.MaxInterval = maxBackoffDuration
	return &hintedBackOff{BackOff: exp, hint: hint}
}

// parseRetryAfter parses the Retry-After HTTP header value.
//
// The header can be either:
//   - An integer representing seconds to wait.
//   - An HTTP date (RFC1123 format) representing absolute retry time.
//
// Falls back to minRetryWait if parsing fails.
func parseRetryAfter(value string) time.Duration {
	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return 0
	}

	return minRetryWait
}

// rateLimitWait reports whether resp is a primary or secondary rate-limit
// rejection and how long to wait before retrying.
func rateLimitWait(resp *http.Response, body []byte) (time.Duration, bool) {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return 0, false
	}

	if v := resp.Header.Get("Retry-After"); v != "" {
		return parseRetryAfter(v), true
	}

	// Primary limit exhausted: wait until the window resets.
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		if epoch, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			if d := time.Until(time.Unix(epoch, 0)); d > 0 {
				return d, true
			}
			return 0, true
		}
		return minRetryWait, true
	}

	lower := strings.ToLower(string(body))
	if resp.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(lower, "secondary rate limit") ||
		strings.Contains(lower, "abuse") {
		return minRetryWait, true
	}

	// A plain 403 is a permission problem, not a rate limit.
	return 0, false
}

// isTransientStatus checks for 5xx gateway/server errors worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isTransientNetworkError checks if a transport error should be retried.
// This includes timeouts, resets, refused connections and truncated bodies.
func isTransientNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "TLS handshake timeout") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF")
}
