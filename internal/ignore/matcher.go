// Package ignore decides which paths the crawl skips.
package ignore

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultRules are always applied before user rules, so a user "!" rule can
// re-include something they exclude.
var DefaultRules = []string{
	".git/",
	".hg/",
	".reach/",
	"node_modules/",
}

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher applies gitignore-like rules with "last rule wins" behavior.
// Patterns are evaluated with doublestar, so "**" spans directories.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from the default rules followed by userRules.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(DefaultRules)+len(userRules))
	all = append(all, DefaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// Rules returns the normalized rule lines, defaults included, in evaluation order.
func (m *Matcher) Rules() []string {
	out := make([]string, 0, len(m.rules))
	for _, r := range m.rules {
		line := r.pattern
		if r.anchored {
			line = "/" + line
		}
		if r.dirOnly {
			line += "/"
		}
		if r.negated {
			line = "!" + line
		}
		out = append(out, line)
	}
	return out
}

// ShouldIgnore reports whether relPath (relative to a crawl root) is excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" || !doublestar.ValidatePattern(line) {
		return rule{}, false
	}
	parsed.pattern = line
	return parsed, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	if r.dirOnly {
		// A directory rule also covers everything below a matching directory.
		parts := strings.Split(relPath, "/")
		limit := len(parts)
		if !isDir {
			limit--
		}
		for i := 1; i <= limit; i++ {
			if r.matchPrefix(strings.Join(parts[:i], "/")) {
				return true
			}
		}
		return false
	}
	return r.matchPrefix(relPath)
}

// matchPrefix matches one candidate path. Unanchored patterns without a slash
// match any single segment; unanchored patterns with a slash match any suffix.
func (r rule) matchPrefix(candidate string) bool {
	if r.anchored {
		return globMatch(r.pattern, candidate)
	}
	if !strings.Contains(r.pattern, "/") {
		for _, segment := range strings.Split(candidate, "/") {
			if globMatch(r.pattern, segment) {
				return true
			}
		}
		return false
	}
	parts := strings.Split(candidate, "/")
	for i := range parts {
		if globMatch(r.pattern, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func globMatch(pattern, value string) bool {
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}

func normalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
