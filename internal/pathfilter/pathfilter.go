// Package pathfilter decides which entries a directory walk skips.
package pathfilter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter matches walk-relative paths against ignore patterns.
// A nil *PathFilter ignores nothing.
type PathFilter struct {
	ignoredPatterns []string
}

// New creates a PathFilter from doublestar patterns such as
// "node_modules", "**/*.bak" or ".git/**".
func New(patterns []string) (*PathFilter, error) {
	pf := &PathFilter{}
	for _, pattern := range patterns {
		// Normalize pattern path separators (Windows compatibility)
		pattern = strings.TrimSpace(strings.ReplaceAll(pattern, "\\", "/"))
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern '%s'", pattern)
		}
		pf.ignoredPatterns = append(pf.ignoredPatterns, pattern)
	}
	return pf, nil
}

// Patterns returns the active patterns.
func (pf *PathFilter) Patterns() []string {
	if pf == nil {
		return nil
	}
	return append([]string(nil), pf.ignoredPatterns...)
}

// IsIgnored reports whether path, relative to the walk root, matches any
// ignore pattern.
func (pf *PathFilter) IsIgnored(path string) bool {
	if pf == nil || len(pf.ignoredPatterns) == 0 {
		return false
	}

	normalizedPath := strings.TrimPrefix(filepath.ToSlash(path), "./")
	for _, pattern := range pf.ignoredPatterns {
		if matched, _ := doublestar.Match(pattern, normalizedPath); matched {
			return true
		}
	}
	return false
}
