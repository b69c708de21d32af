package ghapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseLinkHeader(t *testing.T) {
	header := `<https://api.github.com/repositories/1/commits?page=2>; rel="next", ` +
		`<https://api.github.com/repositories/1/commits?page=9>; rel="last"`

	next, ok := parseLinkHeader(header, "next")
	require.True(t, ok)
	assert.Equal(t, "https://api.github.com/repositories/1/commits?page=2", next)

	last, ok := parseLinkHeader(header, "last")
	require.True(t, ok)
	assert.Equal(t, "https://api.github.com/repositories/1/commits?page=9", last)

	_, ok = parseLinkHeader(header, "prev")
	assert.False(t, ok)

	_, ok = parseLinkHeader("", "next")
	assert.False(t, ok)

	multi, ok := parseLinkHeader(`<https://x.test/a?page=3>; rel="next last"`, "last")
	require.True(t, ok)
	assert.Equal(t, "https://x.test/a?page=3", multi)

	_, ok = parseLinkHeader(`https://x.test/a?page=3; rel="next"`, "next")
	assert.False(t, ok, "URL without angle brackets is not a valid link")
}

func TestNextPageURL_ResolvesRelative(t *testing.T) {
	next, err := nextPageURL("https://api.github.com/repos/o/r/commits?page=1", `</repos/o/r/commits?page=2>; rel="next"`)
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/repos/o/r/commits?page=2", next)

	next, err = nextPageURL("https://api.github.com/x", "")
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestPager_AllPagesInOrder(t *testing.T) {
	srv := newPagedServer(t)
	c := newTestClient(t, srv.Server)

	p := NewPager[int](c, srv.url(3, 4), Unlimited)
	items, err := Collect(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, items)
	assert.Equal(t, 3, p.Pages())
	assert.Equal(t, 12, p.Seen())
	assert.Equal(t, int64(3), srv.requests.Load())
}

func TestPager_LimitBoundary(t *testing.T) {
	tests := []struct {
		name         string
		limit        int
		wantItems    []int
		wantRequests int64
	}{
		{name: "zero limit issues no request", limit: 0, wantItems: nil, wantRequests: 0},
		{name: "limit inside first page", limit: 2, wantItems: []int{0, 1}, wantRequests: 1},
		{name: "limit equal to page size stops before next page", limit: 3, wantItems: []int{0, 1, 2}, wantRequests: 1},
		{name: "limit spanning pages includes the limit-th item", limit: 4, wantItems: []int{0, 1, 2, 3}, wantRequests: 2},
		{name: "limit above total", limit: 100, wantItems: []int{0, 1, 2, 3, 4, 5}, wantRequests: 2},
		{name: "negative limit is unbounded", limit: -1, wantItems: []int{0, 1, 2, 3, 4, 5}, wantRequests: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newPagedServer(t)
			c := newTestClient(t, srv.Server)

			items, err := Collect(context.Background(), NewPager[int](c, srv.url(2, 3), tt.limit))
			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, items)
			assert.Equal(t, tt.wantRequests, srv.requests.Load())
		})
	}
}

func TestPager_SkipsEmptyPages(t *testing.T) {
	srv := newPagedServer(t)
	c := newTestClient(t, srv.Server)

	items, err := Collect(context.Background(), NewPager[int](c, srv.url(3, 0), Unlimited))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(3), srv.requests.Load())
}

func TestPager_NotRestartable(t *testing.T) {
	srv := newPagedServer(t)
	c := newTestClient(t, srv.Server)
	ctx := context.Background()

	p := NewPager[int](c, srv.url(1, 2), Unlimited)
	_, err := Collect(ctx, p)
	require.NoError(t, err)

	assert.False(t, p.Next(ctx))
	assert.Equal(t, int64(1), srv.requests.Load())
}

func TestPager_MalformedBody(t *testing.T) {
	for _, body := range []string{`{"message":"not a list"}`, `null`, ` null `, ``, `"text"`} {
		t.Run(body, func(t *testing.T) {
			srv, _ := scriptedServer(t, respond(http.StatusOK, body))
			c := newTestClient(t, srv)

			items, err := Collect(context.Background(), NewPager[int](c, srv.URL+"/items", Unlimited))
			require.Error(t, err)
			assert.Empty(t, items)
			assert.ErrorIs(t, err, ErrFetch)
			assert.ErrorIs(t, err, ErrMalformedBody)
		})
	}
}

func TestPager_ErrorMidStream(t *testing.T) {
	srv, calls := scriptedServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Link", `</items?page=2>; rel="next"`)
			_, _ = w.Write([]byte(`[1,2]`))
		},
		respond(http.StatusNotFound, `{"message":"Not Found"}`),
	)
	c := newTestClient(t, srv)

	var got []int
	err := ForEach(context.Background(), NewPager[int](c, srv.URL+"/items", Unlimited), func(i int) error {
		got = append(got, i)
		return nil
	})

	assert.Equal(t, []int{1, 2}, got)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, int64(2), calls.Load(), "404 is not retried")
}

func TestForEach_StopsOnHandlerError(t *testing.T) {
	srv := newPagedServer(t)
	c := newTestClient(t, srv.Server)
	stop := errors.New("stop")

	var got []int
	err := ForEach(context.Background(), NewPager[int](c, srv.url(3, 2), Unlimited), func(i int) error {
		got = append(got, i)
		if i == 2 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, int64(2), srv.requests.Load())
}

func TestReadPagesUntilLimit(t *testing.T) {
	srv := newPagedServer(t)
	c := newTestClient(t, srv.Server)

	var got []int
	err := c.ReadPagesUntilLimit(context.Background(), srv.url(3, 2), func(raw json.RawMessage) error {
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		got = append(got, v)
		return nil
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

// For N pages of k items and limit L the handler runs min(N*k, L) times
// (N*k when L < 0), in server order.
func TestRapidPagination_TerminationAndOrder(t *testing.T) {
	srv := newPagedServer(t)
	c := newTestClient(t, srv.Server)

	rapid.Check(t, func(rt *rapid.T) {
		pages := rapid.IntRange(1, 5).Draw(rt, "pages")
		per := rapid.IntRange(0, 6).Draw(rt, "per")
		limit := rapid.IntRange(-1, 40).Draw(rt, "limit")

		var got []int
		err := c.ReadPagesUntilLimit(context.Background(), srv.url(pages, per), func(raw json.RawMessage) error {
			var v int
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			got = append(got, v)
			return nil
		}, limit)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		want := pages * per
		if limit >= 0 && limit < want {
			want = limit
		}
		if len(got) != want {
			rt.Fatalf("handler ran %d times, want %d", len(got), want)
		}
		for i, v := range got {
			if v != i {
				rt.Fatalf("item %d = %d, items out of order: %v", i, v, got)
			}
		}
	})
}
