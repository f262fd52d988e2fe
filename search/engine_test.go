package search

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// progressLog records progress events from any goroutine
type progressLog struct {
	mu     sync.Mutex
	events []Progress
}

func (l *progressLog) record(p Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, p)
}

func (l *progressLog) snapshot() []Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Progress(nil), l.events...)
}

// blockingStat blocks the first stat call until release is closed
type blockingStat struct {
	entered chan struct{}
	release chan struct{}
	first   atomic.Bool
}

func newBlockingStat() *blockingStat {
	return &blockingStat{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockingStat) stat(name string) (fs.FileInfo, error) {
	if b.first.CompareAndSwap(false, true) {
		close(b.entered)
		<-b.release
	}
	return os.Stat(name)
}

func TestSearchExtensionScenario(t *testing.T) {
	root := makeTree(t, "a.txt", "b.log", "sub/a.log")

	e := NewEngine(Options{})
	results, err := e.Search(context.Background(), "a extension:log", root, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"sub/a.log"}, resultPaths(t, root, results))
	assert.Equal(t, StateComplete, e.State())
	assert.False(t, e.Active())
}

func TestSearchEmptyQueryReturnsEveryFile(t *testing.T) {
	root := makeTree(t,
		"one.txt",
		"two/three.md",
		"two/four/",
		"two/four/five",
		"six/",
	)

	e := NewEngine(Options{Workers: 4})
	results, err := e.Search(context.Background(), "", root, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"one.txt", "two/three.md", "two/four/five"}, resultPaths(t, root, results))
}

func TestSearchResultsAreAbsolute(t *testing.T) {
	root := makeTree(t, "x.txt")
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, root)
	if err != nil {
		t.Skip("temp dir not reachable relative to working directory")
	}

	results, err := NewEngine(Options{}).Search(context.Background(), "x", rel, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, filepath.IsAbs(results[0].Path))
}

func TestSearchPropertiesHold(t *testing.T) {
	var entries []string
	for i := 0; i < 60; i++ {
		entries = append(entries, fmt.Sprintf("d%d/File%02d.%s", i%4, i, []string{"txt", "LOG", "md"}[i%3]))
	}
	root := makeTree(t, entries...)

	e := NewEngine(Options{Workers: 4, Cadence: 10})
	var progress progressLog
	results, err := e.Search(context.Background(), "file1 extension:log", root, progress.record)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range resultPaths(t, root, results) {
		assert.Contains(t, filepath.Base(r), "File1")
		assert.Equal(t, "log", Extension(r))
	}

	events := progress.snapshot()
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Fraction, events[i-1].Fraction)
	}
	assert.Equal(t, Progress{Fraction: 1, Status: StatusComplete}, events[len(events)-1])
	assert.Equal(t, StatusEnumerating, events[0].Status)
}

func TestSearchUnreadableRoot(t *testing.T) {
	var progress progressLog
	e := NewEngine(Options{})
	results, err := e.Search(context.Background(), "a", filepath.Join(t.TempDir(), "missing"), progress.record)

	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.Nil(t, results)
	assert.Empty(t, progress.snapshot())
	assert.Equal(t, StateFailed, e.State())
}

func TestSearchEmptyRoot(t *testing.T) {
	var progress progressLog
	results, err := NewEngine(Options{}).Search(context.Background(), "anything", t.TempDir(), progress.record)
	require.NoError(t, err)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, []Progress{{Fraction: 1, Status: StatusComplete}}, progress.snapshot())
}

func TestSearchSupersedesPrevious(t *testing.T) {
	firstRoot := makeTree(t, "first-a.txt", "first-b.txt")
	secondRoot := makeTree(t, "second.txt")

	bs := newBlockingStat()
	e := NewEngine(Options{Workers: 2, Stat: bs.stat})

	var superseded atomic.Bool
	var lateEvents atomic.Int32
	first := e.Start(context.Background(), "", firstRoot, func(Progress) {
		if superseded.Load() {
			lateEvents.Add(1)
		}
	})
	<-bs.entered

	second := e.Start(context.Background(), "second", secondRoot, nil)
	superseded.Store(true)

	results, err := second.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"second.txt"}, resultPaths(t, secondRoot, results))

	close(bs.release)
	results, err = first.Wait()
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, results)
	assert.Zero(t, lateEvents.Load())
}

func TestCancelStopsProgress(t *testing.T) {
	root := makeTree(t, "a", "b", "c", "d")

	bs := newBlockingStat()
	e := NewEngine(Options{Workers: 3, Stat: bs.stat})

	var cancelled atomic.Bool
	var lateEvents atomic.Int32
	pending := e.Start(context.Background(), "", root, func(Progress) {
		if cancelled.Load() {
			lateEvents.Add(1)
		}
	})
	<-bs.entered

	e.Cancel()
	cancelled.Store(true)
	assert.False(t, e.Active())

	close(bs.release)
	<-pending.Done()
	results, err := pending.Wait()

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, results)
	assert.Zero(t, lateEvents.Load())
	assert.Equal(t, StateCancelled, e.State())
}

func TestCancelIsIdempotent(t *testing.T) {
	e := NewEngine(Options{})
	assert.Equal(t, StateIdle, e.State())

	e.Cancel()
	e.Cancel()
	assert.Equal(t, StateIdle, e.State())

	_, err := e.Search(context.Background(), "", makeTree(t, "f"), nil)
	require.NoError(t, err)
	e.Cancel()
	assert.Equal(t, StateComplete, e.State())
}

func TestSearchParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(Options{}).Search(ctx, "", makeTree(t, "f"), nil)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestSearchWithIgnore(t *testing.T) {
	root := makeTree(t, "src/app.go", "build/app.go")
	ignore, err := CompileIgnore([]string{"build"})
	require.NoError(t, err)

	results, err := NewEngine(Options{Ignore: ignore}).Search(context.Background(), "app", root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.go"}, resultPaths(t, root, results))
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "matching", StateMatching.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
}

func TestStopAfterSucceedKeepsComplete(t *testing.T) {
	e := NewEngine(Options{})
	s := e.begin(context.Background(), nil)

	require.True(t, s.succeed())
	s.stop()
	assert.Equal(t, StateComplete, s.getState())
}

func TestSucceedAfterStopFails(t *testing.T) {
	e := NewEngine(Options{})
	var events atomic.Int32
	s := e.begin(context.Background(), func(Progress) { events.Add(1) })

	s.stop()
	assert.False(t, s.succeed())
	assert.Equal(t, StateCancelled, s.getState())
	assert.Zero(t, events.Load())
}

func TestPendingCancelStopsOnlyItsSearch(t *testing.T) {
	root := makeTree(t, "a", "b")

	bs := newBlockingStat()
	e := NewEngine(Options{Workers: 2, Stat: bs.stat})

	var cancelled atomic.Bool
	var lateEvents atomic.Int32
	pending := e.Start(context.Background(), "", root, func(Progress) {
		if cancelled.Load() {
			lateEvents.Add(1)
		}
	})
	<-bs.entered

	pending.Cancel()
	cancelled.Store(true)
	assert.False(t, e.Active())

	close(bs.release)
	_, err := pending.Wait()
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, lateEvents.Load())

	// a stale handle must not cancel the search that replaced it
	next := e.Start(context.Background(), "", root, nil)
	pending.Cancel()
	results, err := next.Wait()
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
