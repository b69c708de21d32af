package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	in := map[string]int{"stars": 10, "forks": 4}

	require.NoError(t, WriteJSON(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]int
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	assert.Contains(t, string(data), "\n  \"forks\": 4", "pretty printed")
}

func TestWriteFileAtomic_FailureKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dot")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-5000:    "-5,000",
		100000:   "100,000",
		12345678: "12,345,678",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in), in)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "5m30s", FormatDuration(5*time.Minute+30*time.Second))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "2h15m", FormatDuration(2*time.Hour+15*time.Minute))
}

func TestFormatTimeUntil(t *testing.T) {
	assert.Equal(t, "now", FormatTimeUntil(time.Now().Add(-time.Minute)))
	assert.Equal(t, "2h", FormatTimeUntil(time.Now().Add(2*time.Hour+30*time.Second)))
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "0123456", ShortSHA("0123456789abcdef"))
	assert.Equal(t, "abc", ShortSHA("abc"))
}

func TestPrintSections(t *testing.T) {
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)

	assert.NotPanics(t, func() {
		PrintReport(ReportDisplay{Stars: 3, Forks: 1, Contributors: 2, PullRequests: 2,
			TopAuthors: []ContributorPRs{{Login: "bob", Count: 1}}, Releases: []string{"v1"}})
		PrintReport(ReportDisplay{})
		PrintLineage(LineageDisplay{Trunk: "master", Branch: "feature", Merge: "merge", Base: "m2",
			Commits: 2, Candidates: 2, OutputFile: "graph.dot"})
	})
}
