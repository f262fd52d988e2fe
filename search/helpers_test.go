package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeTree creates the given entries under a fresh temp dir. Entries ending
// in "/" are directories, everything else is a small file.
func makeTree(t *testing.T, entries ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(e, "/")))
		if strings.HasSuffix(e, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return root
}

// resultPaths returns results as slash-separated paths relative to root
func resultPaths(t *testing.T, root string, results []Result) []string {
	t.Helper()

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)

	out := make([]string, 0, len(results))
	for _, r := range results {
		rel, err := filepath.Rel(absRoot, r.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func toSlash(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}
