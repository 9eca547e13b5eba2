package manifest

import (
	"path"
	"strings"
)

// MatchAny reports whether relPath matches one of patterns.
//
// Patterns use path.Match syntax per segment plus "**", which matches any
// number of segments. A pattern without a slash matches the base name, so
// "*.json" governs JSON files at any depth. "dir/**" also matches dir itself.
func MatchAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if Match(p, relPath) {
			return true
		}
	}
	return false
}

// Match reports whether relPath matches a single pattern
func Match(pattern, relPath string) bool {
	pattern = strings.Trim(pattern, "/")
	relPath = strings.Trim(relPath, "/")
	if pattern == "" {
		return false
	}

	if !strings.Contains(pattern, "/") && pattern != "**" {
		matched, _ := path.Match(pattern, baseName(relPath))
		return matched
	}

	return matchSegments(strings.Split(pattern, "/"), strings.Split(relPath, "/"))
}

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if matched, _ := path.Match(pattern[0], segs[0]); !matched {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}

// ValidPattern reports whether every segment of pattern is well formed
func ValidPattern(pattern string) bool {
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, ""); err != nil {
			return false
		}
	}
	return true
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
