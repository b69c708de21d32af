// This file (core_pagination.go) implements cursor-based pagination for
// GitHub's REST list endpoints. Pages are followed through the rel="next" URL
// of the Link response header and exposed as a typed, finite iterator.
package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Unlimited disables the item limit of a Pager.
const Unlimited = -1

// Pager streams the items of a paged collection, fetching the next page only
// when the current one is exhausted. It is not restartable: once Next returns
// false the cursor is spent.
//
// Usage:
//
//	p := ghapi.NewPager[ghapi.Commit](client, url, ghapi.Unlimited)
//	for p.Next(ctx) {
//	    use(p.Item())
//	}
//	if err := p.Err(); err != nil { ... }
//
// A Pager must not be used from multiple goroutines.
type Pager[T any] struct {
	client *Client
	next   string // URL of the next page; empty when exhausted
	limit  int    // Maximum items to yield; negative means unbounded

	buf   []T
	pos   int
	item  T
	seen  int
	pages int
	err   error
}

// NewPager returns a Pager starting at rawURL. A negative limit means no
// limit. With limit == 0 no request is made at all.
func NewPager[T any](c *Client, rawURL string, limit int) *Pager[T] {
	return &Pager[T]{client: c, next: rawURL, limit: limit}
}

// Next advances to the next item, fetching pages as needed. It returns false
// when the collection is exhausted, the limit is reached, or a fetch failed;
// check Err to tell these apart.
func (p *Pager[T]) Next(ctx context.Context) bool {
	if p.err != nil || p.limitReached() {
		return false
	}

	// Loop because a page may legitimately be empty while still linking onward.
	for p.pos >= len(p.buf) {
		if p.next == "" {
			return false
		}
		if err := p.fetch(ctx); err != nil {
			p.err = err
			return false
		}
	}

	p.item = p.buf[p.pos]
	p.pos++
	p.seen++
	p.client.metrics.IncItems()
	return true
}

// Item returns the item produced by the last successful call to Next.
func (p *Pager[T]) Item() T { return p.item }

// Err returns the first fetch error, if any.
func (p *Pager[T]) Err() error { return p.err }

// Seen returns how many items Next has produced.
func (p *Pager[T]) Seen() int { return p.seen }

// Pages returns how many pages were fetched.
func (p *Pager[T]) Pages() int { return p.pages }

func (p *Pager[T]) limitReached() bool {
	return p.limit >= 0 && p.seen >= p.limit
}

func (p *Pager[T]) fetch(ctx context.Context) error {
	current := p.next
	p.client.logger.Debug("Getting the page from: " + current)

	resp, err := p.client.get(ctx, current)
	if err != nil {
		return err
	}

	var items []T
	if err := decodeList(resp.body, &items); err != nil {
		return &FetchError{
			URL:        current,
			StatusCode: resp.status,
			Body:       truncateBody(resp.body),
			Err:        fmt.Errorf("%w: %v", ErrMalformedBody, err),
		}
	}

	next, err := nextPageURL(current, resp.header.Get("Link"))
	if err != nil {
		return &FetchError{URL: current, StatusCode: resp.status, Err: err}
	}

	p.buf = items
	p.pos = 0
	p.next = next
	p.pages++
	p.client.metrics.IncPages()
	p.client.status.IncrementPages()
	return nil
}

// decodeList decodes a list page. A null or non-array body is malformed.
func decodeList[T any](body []byte, items *[]T) error {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return errors.New("expected a JSON array")
	}
	return json.Unmarshal(body, items)
}

// ForEach drains p, calling fn for every item in server order. It stops at the
// first error returned by fn or by the pager.
func ForEach[T any](ctx context.Context, p *Pager[T], fn func(T) error) error {
	for p.Next(ctx) {
		if err := fn(p.Item()); err != nil {
			return err
		}
	}
	return p.Err()
}

// Collect drains p into a slice.
func Collect[T any](ctx context.Context, p *Pager[T]) ([]T, error) {
	var out []T
	err := ForEach(ctx, p, func(item T) error {
		out = append(out, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadPagesUntilLimit walks the paged collection at rawURL and passes each raw
// item to handler, in server order, at most limit times (negative: no limit).
// Once the limit is reached no further page is requested.
func (c *Client) ReadPagesUntilLimit(ctx context.Context, rawURL string, handler func(json.RawMessage) error, limit int) error {
	return ForEach(ctx, NewPager[json.RawMessage](c, rawURL, limit), handler)
}

// nextPageURL returns the rel="next" target of linkHeader resolved against
// the URL of the page that carried it, or "" on the last page.
func nextPageURL(current, linkHeader string) (string, error) {
	target, ok := parseLinkHeader(linkHeader, "next")
	if !ok {
		return "", nil
	}

	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", current, err)
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q: %w", target, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// parseLinkHeader extracts the URL for the specified rel type from a GitHub
// Link header such as:
//
//	<https://api.github.com/repos/o/r/commits?page=2>; rel="next", <...?page=9>; rel="last"
//
// A link may carry several space separated relation types (rel="next last").
func parseLinkHeader(linkHeader string, rel string) (string, bool) {
	for _, link := range strings.Split(linkHeader, ",") {
		urlPart, params, ok := strings.Cut(link, ";")
		if !ok {
			continue
		}

		target, ok := strings.CutPrefix(strings.TrimSpace(urlPart), "<")
		if !ok {
			continue
		}
		target, ok = strings.CutSuffix(target, ">")
		if !ok {
			continue
		}

		for _, param := range strings.Split(params, ";") {
			key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			for _, r := range strings.Fields(strings.Trim(strings.TrimSpace(val), `"`)) {
				if strings.EqualFold(r, rel) {
					return target, true
				}
			}
		}
	}

	return "", false
}
