// Package logging builds the process logger.
//
// Logs go either to the console (stderr) or to a timestamped file inside a
// log directory, one file per run. The level is Info unless debug output is
// requested.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
)

// FilePrefix is the prefix of the per-run log file name.
const FilePrefix = "gh_data_extraction_"

// Options controls where and how verbosely the logger writes.
type Options struct {
	ToStdout bool   // Write to the console instead of a file
	Debug    bool   // Enable debug level
	Dir      string // Directory for the log file (created if missing)

	Now func() time.Time // Clock used for the file name; defaults to time.Now
}

// Setup returns a logger for opts together with a close function that must be
// called once logging is finished. The close function is never nil.
func Setup(opts Options) (*pterm.Logger, func() error, error) {
	level := pterm.LogLevelInfo
	if opts.Debug {
		level = pterm.LogLevelDebug
		pterm.EnableDebugMessages()
	}

	if opts.ToStdout {
		logger := pterm.DefaultLogger.
			WithLevel(level).
			WithWriter(os.Stderr).
			WithTime(true)
		return logger, func() error { return nil }, nil
	}

	path, err := FilePath(opts)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return New(file, level), file.Close, nil
}

// New returns a logger writing JSON lines to w. Used for file destinations
// and in tests.
func New(w io.Writer, level pterm.LogLevel) *pterm.Logger {
	return pterm.DefaultLogger.
		WithLevel(level).
		WithWriter(w).
		WithFormatter(pterm.LogFormatterJSON).
		WithTime(true)
}

// Discard returns a logger that drops everything.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}

// FilePath creates the log directory if needed and returns the path of the log
// file for this run.
func FilePath(opts Options) (string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return filepath.Join(dir, fmt.Sprintf("%s%d.log", FilePrefix, now().Unix())), nil
}
