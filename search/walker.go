package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// DefaultCadence is how many entries are counted between enumeration progress events
const DefaultCadence = 1000

var errNotDirectory = errors.New("not a directory")

// FileWalker enumerates every entry beneath a root directory
type FileWalker struct {
	ignore []glob.Glob
	logger *log.Logger
}

// NewFileWalker creates a walker that prunes entries matching any ignore glob.
// A nil logger discards diagnostics.
func NewFileWalker(ignore []glob.Glob, logger *log.Logger) *FileWalker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &FileWalker{
		ignore: ignore,
		logger: logger,
	}
}

// CompileIgnore compiles ignore patterns. Patterns are matched against the
// slash-separated relative path and against the entry name.
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// isIgnored checks a relative path against the ignore globs
func (fw *FileWalker) isIgnored(rel, name string) bool {
	if len(fw.ignore) == 0 {
		return false
	}
	slashRel := filepath.ToSlash(rel)
	for _, g := range fw.ignore {
		if g.Match(slashRel) || g.Match(name) {
			return true
		}
	}
	return false
}

// Enumerate lazily yields the relative path of every entry under root,
// directories included. The sequence ends with a non-nil error when root
// cannot be listed (ErrDirectoryUnavailable) or ctx is cancelled (ErrCancelled).
func (fw *FileWalker) Enumerate(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		walkRoot, err := resolveRoot(root)
		if err != nil {
			yield("", err)
			return
		}

		stopped := false
		err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			// Check for cancellation
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if path == walkRoot {
				if err != nil {
					return unavailable(root, err)
				}
				return nil
			}

			if err != nil {
				fw.logger.Printf("skipping %s: %v", path, err)
				return nil // Skip entries we can't access
			}

			rel, relErr := filepath.Rel(walkRoot, path)
			if relErr != nil {
				return nil
			}

			if fw.isIgnored(rel, d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(rel, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})

		if stopped || err == nil {
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			yield("", ErrCancelled)
			return
		}
		yield("", err)
	}
}

// CollectPaths materializes Enumerate into an ordered slice, calling onCount
// every cadence entries with the running total.
func (fw *FileWalker) CollectPaths(ctx context.Context, root string, cadence int, onCount func(counted int)) ([]string, error) {
	if cadence <= 0 {
		cadence = DefaultCadence
	}

	var paths []string
	for rel, err := range fw.Enumerate(ctx, root) {
		if err != nil {
			return nil, err
		}
		paths = append(paths, rel)
		if onCount != nil && len(paths)%cadence == 0 {
			onCount(len(paths))
		}
	}
	return paths, nil
}

// resolveRoot checks that root is a listable directory and returns the path to
// walk. A symlinked root is resolved so that WalkDir descends into it.
func resolveRoot(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", unavailable(root, err)
	}
	if !info.IsDir() {
		return "", unavailable(root, errNotDirectory)
	}

	linfo, err := os.Lstat(root)
	if err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			return "", unavailable(root, err)
		}
		return resolved, nil
	}
	return root, nil
}

func unavailable(root string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDirectoryUnavailable, root, err)
}
