// Package output provides file and terminal output for the insights tool.
//
// This file (json.go) handles file writes. Every artifact the tool produces
// (the graph description, the JSON report) is written in one shot through
// WriteFileAtomic so a crash never leaves a half-written file behind.
//
// Basic Usage:
//
//	err := output.WriteJSON("report.json", rep)
//
//	err := output.WriteFileAtomic("graph.dot", func(w io.Writer) error {
//	    _, err := io.WriteString(w, g.DOT())
//	    return err
//	})
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// fileMu serializes file writes; the report and the graph may be written
// from different goroutines.
var fileMu sync.Mutex

// WriteFileAtomic writes the output of write to filePath atomically:
// temp file in the same directory, fsync, then rename over the target.
// Missing parent directories are created.
func WriteFileAtomic(filePath string, write func(io.Writer) error) (err error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	if dir := filepath.Dir(filePath); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// 1. Write to temporary file first
	tmpFile := filePath + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file %s: %w", tmpFile, err)
	}

	// Ensure cleanup on error
	defer func() {
		if err != nil {
			_ = file.Close()       // Error not critical during error cleanup
			_ = os.Remove(tmpFile) // Error not critical during error cleanup
		}
	}()

	// 2. Write content
	if err = write(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	// 3. Flush and sync to disk
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file %s: %w", tmpFile, err)
	}

	// 4. Close the file
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpFile, err)
	}

	// 5. Atomic rename (POSIX guarantees atomicity)
	if err = os.Rename(tmpFile, filePath); err != nil {
		_ = os.Remove(tmpFile) // Error not critical during error cleanup
		return fmt.Errorf("failed to rename temp file to %s: %w", filePath, err)
	}

	return nil
}

// WriteJSON writes v to filePath as pretty-printed JSON, atomically.
func WriteJSON(filePath string, v any) error {
	return WriteFileAtomic(filePath, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ") // Pretty print with 2-space indentation
		return encoder.Encode(v)
	})
}
