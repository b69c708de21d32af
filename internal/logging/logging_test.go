package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePath_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	fixed := time.Unix(1700000000, 0)

	path, err := FilePath(Options{Dir: dir, Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "gh_data_extraction_1700000000.log"), path)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Unix(1700000001, 0)

	logger, closeFn, err := Setup(Options{Dir: dir, Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	logger.Info("hello", logger.Args("branch", "update-core-beta"))
	logger.Debug("hidden at info level")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, "gh_data_extraction_1700000001.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "update-core-beta")
	assert.NotContains(t, string(data), "hidden at info level")
}

func TestSetup_Stdout(t *testing.T) {
	logger, closeFn, err := Setup(Options{ToStdout: true})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closeFn())
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, pterm.LogLevelDebug)
	logger.Debug("Getting the page from: https://example.test/x")
	assert.Contains(t, buf.String(), "Getting the page from")
}
