package importsort

import (
	"sort"
	"strings"
)

// Config holds the user controlled sorting rules
type Config struct {
	Roots  []string // path prefixes of internal namespaces, in priority order
	Groups []string // path prefixes sub-bucketing rooted imports, in output order
}

// Normalize returns a copy with separators trimmed from every prefix and
// empty or repeated prefixes dropped. Empty prefixes never match anything.
func (c Config) Normalize() Config {
	return Config{
		Roots:  normalizePrefixes(c.Roots),
		Groups: normalizePrefixes(c.Groups),
	}
}

func normalizePrefixes(prefixes []string) []string {
	var out []string
	seen := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// classifier assigns statements to buckets. It expects a normalized Config.
type classifier struct {
	roots  []string
	groups []string // longest first
}

func newClassifier(cfg Config) *classifier {
	groups := append([]string(nil), cfg.Groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i]) > len(groups[j])
	})
	return &classifier{roots: cfg.Roots, groups: groups}
}

// classify sets the bucket of stmt and, for rooted imports, its namespace
// and group label
func (c *classifier) classify(stmt *Statement) {
	switch {
	case stmt.Anonymous:
		stmt.bucket = anonymousBucket
		return
	case isRelative(stmt.Path):
		stmt.bucket = relativeBucket
		return
	}

	root, ok := c.matchRoot(stmt.Path)
	if !ok {
		stmt.bucket = externalBucket
		return
	}

	stmt.bucket = rootedBucket
	stmt.Namespace = root
	stmt.label = c.matchGroup(stmt.Path)
}

func (c *classifier) matchRoot(path string) (string, bool) {
	for _, root := range c.roots {
		if strings.HasPrefix(path, root+"/") {
			return root, true
		}
	}
	return "", false
}

func (c *classifier) matchGroup(path string) string {
	for _, group := range c.groups {
		if path == group || strings.HasPrefix(path, group+"/") {
			return group
		}
	}
	return ""
}
