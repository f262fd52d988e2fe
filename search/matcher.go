package search

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// statFunc reports metadata for a full path, following symlinks
type statFunc func(name string) (fs.FileInfo, error)

// Matcher decides whether a single enumerated path belongs in the results
type Matcher struct {
	query  Query
	folded string
	stat   statFunc
	// Casers are stateful, so each goroutine borrows its own
	casers *sync.Pool
}

// NewMatcher creates a matcher for a parsed query
func NewMatcher(q Query) *Matcher {
	return newMatcher(q, os.Stat)
}

func newMatcher(q Query, stat statFunc) *Matcher {
	m := &Matcher{
		query: q,
		stat:  stat,
		casers: &sync.Pool{
			New: func() interface{} {
				c := cases.Fold()
				return &c
			},
		},
	}
	m.folded = m.fold(q.Substring)
	return m
}

// Query returns the query this matcher was built from
func (m *Matcher) Query() Query {
	return m.query
}

// Match reports whether fullPath is a non-directory entry whose relative path
// satisfies the query. Entries that cannot be stat'ed are excluded.
func (m *Matcher) Match(fullPath, relPath string) bool {
	info, err := m.stat(fullPath)
	if err != nil || info.IsDir() {
		return false
	}

	if m.query.HasExtension && Extension(relPath) != m.query.Extension {
		return false
	}

	return m.MatchName(relPath)
}

// MatchName applies only the substring test, without touching the filesystem
func (m *Matcher) MatchName(relPath string) bool {
	if m.folded == "" {
		return true
	}
	return strings.Contains(m.fold(relPath), m.folded)
}

func (m *Matcher) fold(s string) string {
	c := m.casers.Get().(*cases.Caser)
	defer m.casers.Put(c)
	return c.String(s)
}

// Extension returns the lower-cased text after the last dot of the final path
// component, or "" when there is none
func Extension(path string) string {
	name := filepath.Base(path)
	lastDot := strings.LastIndex(name, ".")
	if lastDot == -1 {
		return ""
	}
	return strings.ToLower(name[lastDot+1:])
}
