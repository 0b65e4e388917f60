// Package rules decides which directories participate in a library sync based
// on the user's blocked and allowed directory lists.
package rules

import (
	"path/filepath"
	"strings"
)

// Ruleset is an immutable snapshot of the directory allow/block configuration
// for one sync pass. The zero value allows everything.
type Ruleset struct {
	blocked []string
	allowed []string
}

// New builds a Ruleset from blocked and allowed directory prefixes. Paths are
// cleaned and normalized to forward slashes so rules match records regardless
// of how the catalog spelled them.
func New(blocked, allowed []string) Ruleset {
	return Ruleset{
		blocked: normalize(blocked),
		allowed: normalize(allowed),
	}
}

// Allows reports whether files under parentPath may be synced.
//
// A path under any blocked prefix is rejected. When the allow-list is
// non-empty the path must additionally sit under one of its prefixes;
// with an empty allow-list everything not blocked is permitted.
func (r Ruleset) Allows(parentPath string) bool {
	path := normalizePath(parentPath)

	for _, prefix := range r.blocked {
		if underPrefix(path, prefix) {
			return false
		}
	}

	if len(r.allowed) == 0 {
		return true
	}

	for _, prefix := range r.allowed {
		if underPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// underPrefix reports whether path equals prefix or sits below it. Matching is
// segment-aware: "/music/rock" does not cover "/music/rocket".
func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func normalize(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if cleaned := normalizePath(p); cleaned != "" && cleaned != "." {
			out = append(out, cleaned)
		}
	}
	return out
}

func normalizePath(p string) string {
	cleaned := filepath.ToSlash(filepath.Clean(strings.TrimSpace(p)))
	return strings.TrimSuffix(cleaned, "/")
}
