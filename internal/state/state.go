// Package state provides process-wide bookkeeping for GitHub API usage.
//
// It tracks the REST rate limit reported by response headers and counts the
// requests and pages issued during the run. All operations are safe for
// concurrent use; the trunk and branch commit fetches update it from two
// goroutines.
package state

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// Sentinel errors for rate limit handling
var (
	// ErrRateLimitExhausted indicates the remaining budget is below the safety
	// buffer and the reset is too far away to wait for.
	ErrRateLimitExhausted = errors.New("rate limit exhausted")
	// ErrClockSkewDetected indicates a clock skew between client and GitHub servers
	ErrClockSkewDetected = errors.New("clock skew detected - rate limit reset time is in the past")
)

// Rate limit configuration constants.
const (
	rateLimitSafetyBuffer int64 = 50              // Keep a few calls in reserve for retries
	maxSleepUntilReset          = 2 * time.Hour   // Maximum time to wait for rate limit reset
	resetBufferTime             = 5 * time.Second // Buffer after reset to ensure limit has actually reset
)

// RateLimitInfo holds GitHub REST API rate limit information.
//
// Zero value: A zero Limit indicates uninitialized or unavailable rate limit data.
type RateLimitInfo struct {
	Limit     int64     // Maximum requests allowed per hour
	Remaining int64     // Requests remaining in current window
	Reset     time.Time // When the rate limit window resets
}

// Status tracks the API call counts and the last seen rate limit.
//
// Counters use atomic operations; rate limit info is guarded by an RWMutex
// because it is a multi-field struct that must be read consistently.
type Status struct {
	apiCalls int64
	pages    int64

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
	startLimit  RateLimitInfo

	sleep func(ctx context.Context, d time.Duration) error
}

var global = New()

// Get returns the global Status instance.
func Get() *Status {
	return global
}

// New returns an empty Status. Tests use it instead of the global instance.
func New() *Status {
	return &Status{sleep: sleepContext}
}

// IncrementAPICalls increments the API call count.
func (s *Status) IncrementAPICalls() {
	atomic.AddInt64(&s.apiCalls, 1)
}

// GetAPICalls returns the current API call count.
func (s *Status) GetAPICalls() int64 {
	return atomic.LoadInt64(&s.apiCalls)
}

// IncrementPages increments the decoded page count.
func (s *Status) IncrementPages() {
	atomic.AddInt64(&s.pages, 1)
}

// GetPages returns the decoded page count.
func (s *Status) GetPages() int64 {
	return atomic.LoadInt64(&s.pages)
}

// UpdateRateLimit updates the rate limit information. The first update is
// remembered so MarkDone can report consumption over the whole run.
func (s *Status) UpdateRateLimit(limit, remaining int64, reset time.Time) {
	s.rateLimitMu.Lock()
	defer s.rateLimitMu.Unlock()
	s.rateLimit = RateLimitInfo{
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}
	if s.startLimit.Limit == 0 {
		s.startLimit = s.rateLimit
	}
}

// UpdateFromHeaders reads the X-RateLimit-* headers of a response. Responses
// without them (e.g. from GitHub Enterprise with rate limiting disabled) are
// ignored.
func (s *Status) UpdateFromHeaders(h http.Header) {
	limit, err := strconv.ParseInt(h.Get("X-RateLimit-Limit"), 10, 64)
	if err != nil {
		return
	}
	remaining, err := strconv.ParseInt(h.Get("X-RateLimit-Remaining"), 10, 64)
	if err != nil {
		return
	}
	var reset time.Time
	if epoch, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		reset = time.Unix(epoch, 0)
	}
	s.UpdateRateLimit(limit, remaining, reset)
}

// GetRateLimit returns the current rate limit information.
func (s *Status) GetRateLimit() RateLimitInfo {
	s.rateLimitMu.RLock()
	defer s.rateLimitMu.RUnlock()
	return s.rateLimit
}

// PrintRateLimit prints the current rate limit status.
func (s *Status) PrintRateLimit() {
	rateLimit := s.GetRateLimit()
	if rateLimit.Limit == 0 {
		return
	}

	restReset := "unknown"
	if !rateLimit.Reset.IsZero() {
		restReset = rateLimit.Reset.Format("15:04:05")
	}

	pterm.Info.Printf("%d/%d calls used | %d remaining | resets at: %s\n",
		rateLimit.Limit-rateLimit.Remaining, rateLimit.Limit, rateLimit.Remaining, restReset)
}

// Summary returns a one-line summary of the run's API usage.
func (s *Status) Summary() string {
	s.rateLimitMu.RLock()
	start, current := s.startLimit, s.rateLimit
	s.rateLimitMu.RUnlock()

	summary := fmt.Sprintf("REST API: %d calls | %d pages", s.GetAPICalls(), s.GetPages())
	// Remaining goes DOWN as calls are used; only meaningful inside one window.
	if start.Limit > 0 && start.Reset.Equal(current.Reset) {
		summary += fmt.Sprintf(" | rate limit consumed: %d", start.Remaining-current.Remaining)
	}
	return summary
}

// MarkDone prints a final summary of the run.
func (s *Status) MarkDone() {
	pterm.Success.Printf("✓ Complete! %s\n", s.Summary())
}

// CheckRateLimit checks if we're approaching the rate limit and waits for the
// reset if necessary. Returns an error if the run cannot proceed.
func (s *Status) CheckRateLimit(ctx context.Context, minRequired int64) error {
	rateLimit := s.GetRateLimit()

	// If we don't have rate limit info yet, skip check
	if rateLimit.Limit == 0 {
		return nil
	}

	buffer := safetyBuffer(rateLimit.Limit)
	available := rateLimit.Remaining - buffer
	if available >= minRequired {
		return nil
	}

	timeUntilReset := time.Until(rateLimit.Reset)

	if timeUntilReset < 0 {
		// Reset time is in the past - clock skew between GitHub's servers and
		// this machine, or stale data. The next response refreshes it.
		return ErrClockSkewDetected
	}

	if timeUntilReset >= maxSleepUntilReset {
		return fmt.Errorf("%w (%d remaining) and reset is too far away (%v)",
			ErrRateLimitExhausted, rateLimit.Remaining, timeUntilReset.Round(time.Minute))
	}

	pterm.Warning.Printf("⚠ REST rate limit low (%d remaining, %d required + %d buffer). Sleeping until reset at %s (%v)\n",
		rateLimit.Remaining, minRequired, buffer,
		rateLimit.Reset.Format("15:04:05"), timeUntilReset.Round(time.Second))

	if err := s.sleep(ctx, timeUntilReset+resetBufferTime); err != nil {
		return err
	}

	pterm.Info.Println("✓ REST rate limit should be reset, resuming...")
	return nil
}

// safetyBuffer scales the reserve to the window so an unauthenticated
// 60-call window is not mostly held back.
func safetyBuffer(limit int64) int64 {
	return min(rateLimitSafetyBuffer, limit/10)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
