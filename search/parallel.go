package search

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ChunkCount returns how many chunks a scan is split into for the given
// parallelism, leaving one core for the coordinating goroutine. A
// non-positive value uses GOMAXPROCS.
func ChunkCount(workers int) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return max(1, workers-1)
}

// Partition splits paths into n contiguous chunks of len(paths)/n entries,
// the last chunk absorbing the remainder. Chunks may be empty when there are
// fewer paths than chunks.
func Partition(paths []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	size := len(paths) / n
	chunks := make([][]string, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if i == n-1 {
			end = len(paths)
		}
		chunks[i] = paths[start:end:end]
	}
	return chunks
}

// ChunkDoneFunc is called after each chunk finishes with the number of paths
// examined so far and the total
type ChunkDoneFunc func(processed, total int)

// RunScan matches paths concurrently, one goroutine per chunk. Batches are
// appended in chunk-completion order; order inside a chunk is preserved.
// Any cancellation discards all batches and returns ErrCancelled.
func RunScan(ctx context.Context, paths []string, root string, matcher *Matcher, chunks int, onChunkDone ChunkDoneFunc) ([]Result, error) {
	total := len(paths)
	if total == 0 {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return []Result{}, nil
	}

	var (
		mu        sync.Mutex
		results   []Result
		processed int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range Partition(paths, chunks) {
		if len(chunk) == 0 {
			continue
		}
		g.Go(func() error {
			batch, err := scanChunk(gctx, chunk, root, matcher)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			results = append(results, batch...)
			processed += len(chunk)
			if onChunkDone != nil {
				onChunkDone(processed, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, ErrCancelled
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

// scanChunk applies the matcher to one chunk, polling ctx between items
func scanChunk(ctx context.Context, chunk []string, root string, matcher *Matcher) ([]Result, error) {
	var batch []Result
	for _, rel := range chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fullPath := filepath.Join(root, rel)
		if matcher.Match(fullPath, rel) {
			batch = append(batch, Result{Path: fullPath})
		}
	}
	return batch, nil
}
