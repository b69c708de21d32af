// This file (validation.go) contains input validation for owner, repository
// and ref names. Names are checked against GitHub's naming rules before any
// API call is made so that typos fail fast with a readable message.
package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ownerNamePattern validates GitHub user and organization names:
// - Must start and end with alphanumeric character
// - Can contain alphanumeric characters and hyphens in the middle
// - Maximum 39 characters (enforced separately)
var ownerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// repoNamePattern validates repository names: ASCII letters, digits, '.', '-' and '_'.
var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

const (
	maxOwnerLength = 39
	maxRepoLength  = 100
)

// ValidateOwner checks if the owner name is valid according to GitHub's rules.
func ValidateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner name cannot be empty")
	}
	if len(owner) > maxOwnerLength {
		return fmt.Errorf("owner name too long (max %d characters): %s", maxOwnerLength, owner)
	}
	if !ownerNamePattern.MatchString(owner) {
		return fmt.Errorf("invalid owner name format: %s (must contain only alphanumeric characters and hyphens, cannot start/end with hyphen)", owner)
	}
	return nil
}

// ValidateRepo checks if the repository name is valid according to GitHub's rules.
func ValidateRepo(repo string) error {
	if repo == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if len(repo) > maxRepoLength {
		return fmt.Errorf("repository name too long (max %d characters): %s", maxRepoLength, repo)
	}
	if repo == "." || repo == ".." || !repoNamePattern.MatchString(repo) {
		return fmt.Errorf("invalid repository name format: %s", repo)
	}
	return nil
}

// ValidateRef rejects ref names git itself would refuse. It is not a full
// implementation of git-check-ref-format, only the cases that show up as typos.
func ValidateRef(ref string) error {
	switch {
	case ref == "":
		return fmt.Errorf("ref name cannot be empty")
	case strings.ContainsAny(ref, " \t\n~^:?*[\\"):
		return fmt.Errorf("invalid ref name %q: contains a forbidden character", ref)
	case strings.Contains(ref, ".."):
		return fmt.Errorf("invalid ref name %q: contains '..'", ref)
	case strings.HasPrefix(ref, "/") || strings.HasSuffix(ref, "/"):
		return fmt.Errorf("invalid ref name %q: cannot start or end with '/'", ref)
	case strings.HasSuffix(ref, ".lock"):
		return fmt.Errorf("invalid ref name %q: cannot end with .lock", ref)
	}
	return nil
}
