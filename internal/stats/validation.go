// This file (validation.go) validates the output paths of a run before any
// API call is made, so a bad path fails fast instead of after a long fetch.
package stats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Allowed extensions per artifact.
var (
	graphExtensions   = map[string]bool{".dot": true, ".gv": true}
	reportExtensions  = map[string]bool{".json": true}
	metricsExtensions = map[string]bool{".prom": true, ".txt": true}
)

// validateOutputPath checks that file is safe to write and carries one of
// the allowed extensions. Returns the cleaned path.
func validateOutputPath(file string, allowed map[string]bool) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}
	cleanPath := filepath.Clean(file)

	// Security: Block writes into sensitive directories
	dangerousPaths := []string{
		".git", ".ssh", ".aws", ".kube", ".docker", ".gnupg", ".config",
	}

	// Normalize path for comparison
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		for _, danger := range dangerousPaths {
			if part == danger {
				return "", fmt.Errorf("access denied: cannot write into %s directory for security reasons", danger)
			}
		}
	}

	// Validate file extension
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if !allowed[ext] {
		return "", fmt.Errorf("invalid file extension %q for %s: allowed %s", ext, file, joinExtensions(allowed))
	}

	return cleanPath, nil
}

func joinExtensions(allowed map[string]bool) string {
	exts := make([]string, 0, len(allowed))
	for ext := range allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
