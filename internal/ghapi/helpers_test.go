package ghapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/metrics"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/state"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a Client pointed at srv with fast retries.
func newTestClient(t *testing.T, srv *httptest.Server, mods ...func(*Options)) *Client {
	t.Helper()
	opts := Options{
		BaseURL:        srv.URL,
		Token:          "test-token",
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
		MaxRetryWait:   time.Second,
		Status:         state.New(),
		Metrics:        metrics.NewRecorder(),
	}
	for _, mod := range mods {
		mod(&opts)
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

// pagedServer serves /items?pages=N&per=K&page=P as a collection of N pages
// holding K consecutive integers each, linked through rel="next".
type pagedServer struct {
	*httptest.Server
	requests atomic.Int64
}

func newPagedServer(t *testing.T) *pagedServer {
	t.Helper()
	ps := &pagedServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.requests.Add(1)
		q := r.URL.Query()
		pages, _ := strconv.Atoi(q.Get("pages"))
		per, _ := strconv.Atoi(q.Get("per"))
		page, _ := strconv.Atoi(q.Get("page"))
		if page == 0 {
			page = 1
		}

		items := make([]int, per)
		for i := range items {
			items[i] = (page-1)*per + i
		}

		if page < pages {
			next := fmt.Sprintf("%s/items?pages=%d&per=%d&page=%d", ps.URL, pages, per, page+1)
			last := fmt.Sprintf("%s/items?pages=%d&per=%d&page=%d", ps.URL, pages, per, pages)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`, next, last))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pagedServer) url(pages, per int) string {
	return fmt.Sprintf("%s/items?pages=%d&per=%d", ps.URL, pages, per)
}

// scriptedServer answers successive requests with the given handlers, then
// repeats the last one.
func scriptedServer(t *testing.T, steps ...http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(steps) {
			n = len(steps) - 1
		}
		steps[n](w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
