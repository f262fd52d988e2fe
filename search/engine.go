package search

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// Result is a single matching file
type Result struct {
	Path string
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Workers is the available parallelism; 0 uses GOMAXPROCS
	Workers int
	// Cadence is how many entries are counted between enumeration progress events
	Cadence int
	// Ignore prunes matching entries (and subtrees) from enumeration
	Ignore []glob.Glob
	// Logger receives session diagnostics; nil discards them
	Logger *log.Logger
	// Stat replaces os.Stat when classifying candidates
	Stat func(name string) (fs.FileInfo, error)
}

// SessionState is the lifecycle state of a search session
type SessionState int

const (
	StateIdle SessionState = iota
	StateEnumerating
	StateMatching
	StateComplete
	StateCancelled
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnumerating:
		return "enumerating"
	case StateMatching:
		return "matching"
	case StateComplete:
		return "complete"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// terminal reports whether no further transition can happen
func (s SessionState) terminal() bool {
	return s == StateComplete || s == StateCancelled || s == StateFailed
}

// session is one invocation of Search and its in-flight state
type session struct {
	id       string
	ctx      context.Context
	cancel   context.CancelFunc
	reporter *progressReporter
	started  time.Time

	mu    sync.Mutex
	state SessionState
}

func (s *session) setState(state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.terminal() {
		s.state = state
	}
}

func (s *session) getState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// stop requests cancellation. Once it returns no progress callback of the
// session is running or will run.
func (s *session) stop() {
	s.cancel()
	s.reporter.close()
	s.setState(StateCancelled)
}

// succeed emits the final progress event and marks the session complete in
// one step, so a concurrent stop either wins entirely or not at all
func (s *session) succeed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() || !s.reporter.complete() {
		return false
	}
	s.state = StateComplete
	return true
}

// fail records a terminal error and silences progress
func (s *session) fail(err error) error {
	s.reporter.close()
	if errors.Is(err, ErrCancelled) {
		s.setState(StateCancelled)
	} else {
		s.setState(StateFailed)
	}
	return err
}

// Engine runs at most one search session at a time. Starting a new search
// cancels the one in flight.
type Engine struct {
	opts   Options
	walker *FileWalker
	logger *log.Logger

	mu      sync.Mutex
	current *session
	last    *session
}

// NewEngine creates a search engine
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Cadence <= 0 {
		opts.Cadence = DefaultCadence
	}
	if opts.Stat == nil {
		opts.Stat = os.Stat
	}
	return &Engine{
		opts:   opts,
		walker: NewFileWalker(opts.Ignore, opts.Logger),
		logger: opts.Logger,
	}
}

// Search runs a search to completion on the calling goroutine. It returns
// ErrDirectoryUnavailable when root cannot be listed and ErrCancelled when the
// session was cancelled, superseded, or ctx ended first. onProgress may be nil
// and must not call back into the Engine.
func (e *Engine) Search(ctx context.Context, rawQuery, root string, onProgress ProgressFunc) ([]Result, error) {
	s := e.begin(ctx, onProgress)
	return e.run(s, rawQuery, root)
}

// Pending is a search running in the background
type Pending struct {
	cancel  func()
	done    chan struct{}
	results []Result
	err     error
}

// Done is closed once the search has finished
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the search finishes and returns its outcome
func (p *Pending) Wait() ([]Result, error) {
	<-p.done
	return p.results, p.err
}

// Cancel stops this search if it is still running. Once it returns no
// progress callback of the search is running or will run. Unlike
// Engine.Cancel it never touches a newer search.
func (p *Pending) Cancel() {
	p.cancel()
}

// Start begins a search in the background. The session is registered before
// Start returns, so a following Cancel always reaches it.
func (e *Engine) Start(ctx context.Context, rawQuery, root string, onProgress ProgressFunc) *Pending {
	s := e.begin(ctx, onProgress)
	p := &Pending{
		cancel: func() { e.stopSession(s) },
		done:   make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.results, p.err = e.run(s, rawQuery, root)
	}()
	return p
}

// Cancel cancels the active session, if any. It is safe to call repeatedly.
func (e *Engine) Cancel() {
	e.mu.Lock()
	s := e.current
	e.current = nil
	e.mu.Unlock()

	if s != nil {
		e.logger.Printf("[%s] cancel requested", shortID(s.id))
		s.stop()
	}
}

// stopSession stops s and clears it if it is still the current session
func (e *Engine) stopSession(s *session) {
	e.mu.Lock()
	if e.current == s {
		e.current = nil
	}
	e.mu.Unlock()
	s.stop()
}

// State returns the state of the most recent session
func (e *Engine) State() SessionState {
	e.mu.Lock()
	s := e.last
	e.mu.Unlock()

	if s == nil {
		return StateIdle
	}
	return s.getState()
}

// Active reports whether a session is in flight
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

func (e *Engine) begin(parent context.Context, onProgress ProgressFunc) *session {
	ctx, cancel := context.WithCancel(parent)
	s := &session{
		id:       uuid.NewString(),
		ctx:      ctx,
		cancel:   cancel,
		reporter: newProgressReporter(ctx, onProgress),
		started:  time.Now(),
	}

	e.mu.Lock()
	prev := e.current
	e.current = s
	e.last = s
	e.mu.Unlock()

	if prev != nil {
		e.logger.Printf("[%s] superseded by %s", shortID(prev.id), shortID(s.id))
		prev.stop()
	}
	return s
}

func (e *Engine) finish(s *session) {
	e.mu.Lock()
	if e.current == s {
		e.current = nil
	}
	e.mu.Unlock()
	s.cancel()
}

func (e *Engine) run(s *session, rawQuery, root string) ([]Result, error) {
	defer e.finish(s)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, s.fail(unavailable(root, err))
	}

	query := ParseQuery(rawQuery)
	e.logger.Printf("[%s] search %q in %s", shortID(s.id), query.String(), absRoot)

	s.setState(StateEnumerating)
	cadence := e.opts.Cadence
	paths, err := e.walker.CollectPaths(s.ctx, absRoot, cadence, func(counted int) {
		s.reporter.enumerated(counted, cadence)
	})
	if err != nil {
		e.logger.Printf("[%s] enumeration stopped: %v", shortID(s.id), err)
		return nil, s.fail(err)
	}

	s.setState(StateMatching)
	chunks := ChunkCount(e.opts.Workers)
	matcher := newMatcher(query, e.opts.Stat)
	results, err := RunScan(s.ctx, paths, absRoot, matcher, chunks, s.reporter.matched)
	if err != nil {
		e.logger.Printf("[%s] scan stopped: %v", shortID(s.id), err)
		return nil, s.fail(err)
	}

	if !s.succeed() {
		return nil, s.fail(ErrCancelled)
	}

	e.logger.Printf("[%s] %d matches in %d entries (%d chunks) in %s",
		shortID(s.id), len(results), len(paths), chunks, time.Since(s.started).Round(time.Millisecond))
	return results, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
