// This file (core_ratelimit.go) fetches the rate limit endpoint so the run can
// report its starting budget before the first counted request.
package ghapi

import (
	"context"
	"time"
)

// GetRateLimit fetches the current GitHub API rate limit information.
// Calls to this endpoint do not count against the limit.
func (c *Client) GetRateLimit(ctx context.Context) (*RateLimitResponse, error) {
	var response RateLimitResponse
	if err := c.GetJSON(ctx, c.endpoint("/rate_limit", nil), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateRateLimitInfo fetches and records the current rate limit. Failures
// are logged and otherwise ignored: rate limiting may be disabled on GitHub
// Enterprise Server.
func (c *Client) UpdateRateLimitInfo(ctx context.Context) {
	rateLimit, err := c.GetRateLimit(ctx)
	if err != nil {
		c.logger.Debug("Rate limit information unavailable", c.logger.Args("error", err.Error()))
		return
	}

	core := rateLimit.Resources.Core
	c.status.UpdateRateLimit(core.Limit, core.Remaining, time.Unix(core.Reset, 0))
}
