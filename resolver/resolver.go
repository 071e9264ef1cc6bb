// Package resolver reconciles document keys across the path-naming
// conventions that accumulated in the advising workspace (absolute vs.
// relative paths, spaces vs. underscores, mixed case). It implements the
// cache's KeyResolver boundary; the cache works without it, it just misses
// more often.
package resolver

import (
	"path/filepath"
	"strings"
)

// PathResolver maps a requested key onto one of the available keys using an
// ordered list of progressively looser comparisons. First match wins; a key
// that matches several candidates at the same level resolves to whichever
// the scan reaches first.
type PathResolver struct{}

// New returns a PathResolver.
func New() *PathResolver {
	return &PathResolver{}
}

// FindByAnyKey tries, in order: exact match, case-insensitive match,
// separator-normalized match (spaces, hyphens and underscores collapsed),
// then the same three against basenames only. Returns false when nothing
// matches.
func (r *PathResolver) FindByAnyKey(requested string, available []string) (string, bool) {
	for _, match := range []func(a, b string) bool{
		func(a, b string) bool { return a == b },
		strings.EqualFold,
		func(a, b string) bool { return normalize(a) == normalize(b) },
	} {
		for _, key := range available {
			if match(requested, key) {
				return key, true
			}
		}
	}

	base := filepath.Base(requested)
	for _, match := range []func(a, b string) bool{
		func(a, b string) bool { return a == b },
		strings.EqualFold,
		func(a, b string) bool { return normalize(a) == normalize(b) },
	} {
		for _, key := range available {
			if match(base, filepath.Base(key)) {
				return key, true
			}
		}
	}
	return "", false
}

// normalize lowercases and collapses the separator characters that vary
// between naming conventions.
func normalize(s string) string {
	s = strings.ToLower(filepath.ToSlash(s))
	replacer := strings.NewReplacer(" ", "_", "-", "_")
	return replacer.Replace(s)
}
