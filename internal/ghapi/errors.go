package ghapi

import (
	"errors"
	"fmt"
)

// ErrFetch is matched by every error returned from a failed request or page
// decode: errors.Is(err, ErrFetch).
var ErrFetch = errors.New("fetch failed")

// ErrMalformedBody marks a response body that could not be decoded.
var ErrMalformedBody = errors.New("malformed response body")

// FetchError describes a failed GET. StatusCode is zero when no response was
// received (network failure, cancellation).
type FetchError struct {
	URL        string
	StatusCode int
	Body       string // Truncated response body, for diagnostics
	Err        error  // Underlying cause, may be nil for plain status failures
}

func (e *FetchError) Error() string {
	var msg string
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		msg = fmt.Sprintf("GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		msg = fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	default:
		msg = fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	}
	if e.Body != "" {
		msg += " (body: " + e.Body + ")"
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports ErrFetch as matching any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

const maxErrorBody = 512

func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "..."
}
