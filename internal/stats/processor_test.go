package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/config"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/ghapi"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/lineage"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/report"
	"github.com/OzBlumenfeld/GitHub-repo-insights/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves a small repository: master m1 <- m2, feature b1 <- b2
// merged as "merge" with parents [m2, b2].
func fakeAPI(t *testing.T, featureHistory string) *httptest.Server {
	t.Helper()
	commits := map[string]string{
		"master": `[{"sha":"m2","parents":[{"sha":"m1"}]},{"sha":"m1","parents":[]}]`,
		"feature": featureHistory,
	}

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resources":{"core":{"limit":5000,"remaining":4999,"reset":4102444800}}}`))
	})
	mux.HandleFunc("/repos/octo/demo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"stargazers_count":3,"forks_count":1,"contributors_url":"%s/repos/octo/demo/contributors"}`, srv.URL)
	})
	mux.HandleFunc("/repos/octo/demo/contributors", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"login":"ann"},{"login":"bob"}]`))
	})
	mux.HandleFunc("/repos/octo/demo/pulls", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"user":{"login":"bob"}},{"user":{"login":"eve"}}]`))
	})
	mux.HandleFunc("/repos/octo/demo/releases", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"v1","published_at":"2024-01-01T00:00:00Z"}]`))
	})
	mux.HandleFunc("/repos/octo/demo/commits", func(w http.ResponseWriter, r *http.Request) {
		body, ok := commits[r.URL.Query().Get("sha")]
		if !ok {
			http.Error(w, `{"message":"No commit found for SHA"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const mergedFeature = `[
	{"sha":"merge","parents":[{"sha":"m2"},{"sha":"b2"}]},
	{"sha":"b2","parents":[{"sha":"b1"}]},
	{"sha":"b1","parents":[{"sha":"m2"}]},
	{"sha":"m2","parents":[{"sha":"m1"}]},
	{"sha":"m1","parents":[]}
]`

func testConfig(t *testing.T, srv *httptest.Server) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Token = "test-token"
	cfg.Owner = "octo"
	cfg.Repo = "demo"
	cfg.Branch = "feature"
	cfg.BaseURL = srv.URL
	cfg.LogDir = filepath.Join(dir, "logs")
	cfg.OutputFile = filepath.Join(dir, "graph.dot")
	cfg.RequestsPerSecond = 0
	cfg.MaxRetries = 1

	return Config{Config: cfg, Report: true, Graph: true, Version: "test", Status: state.New()}
}

func TestRunWithContext_ReportAndGraph(t *testing.T) {
	srv := fakeAPI(t, mergedFeature)
	cfg := testConfig(t, srv)
	dir := filepath.Dir(cfg.OutputFile)
	cfg.ReportFile = filepath.Join(dir, "report.json")
	cfg.MetricsFile = filepath.Join(dir, "metrics.prom")

	require.NoError(t, RunWithContext(context.Background(), cfg))

	dot, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	for _, sha := range []string{"m2", "b1", "b2", "merge"} {
		assert.Contains(t, string(dot), sha)
	}
	assert.Equal(t, 3, strings.Count(string(dot), "->"))

	data, err := os.ReadFile(cfg.ReportFile)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 3, rep.Stars)
	assert.Equal(t, 2, rep.PullRequests)
	assert.Equal(t, []report.Tally{{Login: "bob", Count: 1}}, rep.PRsByAuthor)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "gh_insights_api_requests_total")

	logs, err := os.ReadDir(cfg.LogDir)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, strings.HasPrefix(logs[0].Name(), "gh_data_extraction_"))

	logData, err := os.ReadFile(filepath.Join(cfg.LogDir, logs[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Merge commit found: merge for branch feature")
	assert.Contains(t, string(logData), "Release: v1, Published at: 2024-01-01T00:00:00Z")
}

func TestRunWithContext_ReportOnly(t *testing.T) {
	srv := fakeAPI(t, mergedFeature)
	cfg := testConfig(t, srv)
	cfg.Graph = false
	cfg.Branch = ""

	require.NoError(t, RunWithContext(context.Background(), cfg))

	_, err := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(err), "graph not written in report-only mode")
}

func TestRunWithContext_NoMergeCommit(t *testing.T) {
	srv := fakeAPI(t, `[{"sha":"b1","parents":[{"sha":"m2"}]},{"sha":"m2","parents":[{"sha":"m1"}]},{"sha":"m1","parents":[]}]`)
	cfg := testConfig(t, srv)
	cfg.Report = false

	err := RunWithContext(context.Background(), cfg)
	require.ErrorIs(t, err, lineage.ErrNoMergeCommit)
	assert.Contains(t, err.Error(), "feature")

	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunWithContext_UnknownBranch(t *testing.T) {
	srv := fakeAPI(t, mergedFeature)
	cfg := testConfig(t, srv)
	cfg.Report = false
	cfg.Branch = "missing"

	err := RunWithContext(context.Background(), cfg)
	require.ErrorIs(t, err, ghapi.ErrFetch)
}

func TestRunWithContext_Cancelled(t *testing.T) {
	srv := fakeAPI(t, mergedFeature)
	cfg := testConfig(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunWithContext(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "cancelled by user")
}

func TestRunWithContext_Validation(t *testing.T) {
	srv := fakeAPI(t, mergedFeature)

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"nothing to do", func(c *Config) { c.Report, c.Graph = false, false }},
		{"bad owner", func(c *Config) { c.Owner = "-bad-" }},
		{"branch equals trunk", func(c *Config) { c.Branch = c.Trunk }},
		{"bad graph extension", func(c *Config) { c.OutputFile = "graph.png" }},
		{"bad report extension", func(c *Config) { c.ReportFile = "report.yaml" }},
		{"report into .git", func(c *Config) { c.ReportFile = ".git/report.json" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, srv)
			tt.mod(&cfg)
			require.Error(t, RunWithContext(context.Background(), cfg))
			assert.Zero(t, cfg.Status.GetAPICalls(), "no request before validation passes")
		})
	}
}

func TestRunTasks(t *testing.T) {
	boom := errors.New("boom")

	err := runTasks(context.Background(),
		task{name: "ok", run: func(context.Context) error { return nil }},
		task{name: "fails", run: func(context.Context) error { return boom }},
	)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")

	err = runTasks(context.Background(), task{name: "panics", run: func(context.Context) error {
		panic("kaboom")
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panics: panic recovered: kaboom")

	require.NoError(t, runTasks(context.Background()))
}

func TestValidateOutputPath(t *testing.T) {
	got, err := validateOutputPath("out/../graph.dot", graphExtensions)
	require.NoError(t, err)
	assert.Equal(t, "graph.dot", got)

	_, err = validateOutputPath("graph.svg", graphExtensions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".dot, .gv")

	_, err = validateOutputPath("home/.ssh/graph.dot", graphExtensions)
	require.Error(t, err)

	_, err = validateOutputPath("  ", reportExtensions)
	require.Error(t, err)

	_, err = validateOutputPath("metrics.PROM", metricsExtensions)
	require.NoError(t, err)
}
