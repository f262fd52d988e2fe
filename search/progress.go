package search

import (
	"context"
	"sync"
)

// Status labels the phase a progress event belongs to
type Status int

const (
	StatusEnumerating Status = iota
	StatusMatching
	StatusComplete
)

// String returns the label shown next to the progress bar
func (s Status) String() string {
	switch s {
	case StatusEnumerating:
		return "Parsing files..."
	case StatusMatching:
		return "Searching files..."
	case StatusComplete:
		return "Search complete"
	default:
		return "Unknown"
	}
}

// Progress is a single progress event of one session
type Progress struct {
	Fraction float64
	Status   Status
}

// ProgressFunc receives progress events. Calls are serialized by the engine
// but may come from any goroutine.
type ProgressFunc func(Progress)

// EnumerationFraction maps an entry count onto the first half of the range.
// The total is unknown while walking, so the curve only approaches 0.5.
func EnumerationFraction(counted, cadence int) float64 {
	if counted <= 0 {
		return 0
	}
	if cadence <= 0 {
		cadence = DefaultCadence
	}
	return 0.5 * (float64(counted) / float64(counted+cadence))
}

// MatchingFraction maps processed paths onto the second half of the range
func MatchingFraction(processed, total int) float64 {
	if total <= 0 {
		return 1
	}
	if processed > total {
		processed = total
	}
	return 0.5 + 0.5*(float64(processed)/float64(total))
}

// progressReporter serializes sink calls for one session, keeps fractions
// non-decreasing and drops everything once the session is closed.
type progressReporter struct {
	mu     sync.Mutex
	ctx    context.Context
	sink   ProgressFunc
	last   float64
	closed bool
}

func newProgressReporter(ctx context.Context, sink ProgressFunc) *progressReporter {
	return &progressReporter{ctx: ctx, sink: sink}
}

// report delivers one event and reports whether the session is still live
func (r *progressReporter) report(fraction float64, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.ctx.Err() != nil {
		return false
	}
	if r.sink == nil {
		return true
	}

	if fraction > 1 {
		fraction = 1
	}
	if fraction < r.last {
		fraction = r.last
	}
	r.last = fraction
	r.sink(Progress{Fraction: fraction, Status: status})
	return true
}

func (r *progressReporter) enumerated(counted, cadence int) {
	r.report(EnumerationFraction(counted, cadence), StatusEnumerating)
}

func (r *progressReporter) matched(processed, total int) {
	r.report(MatchingFraction(processed, total), StatusMatching)
}

// complete emits the terminal event and closes the reporter. It returns
// false when the session was cancelled first.
func (r *progressReporter) complete() bool {
	ok := r.report(1, StatusComplete)
	r.close()
	return ok
}

// close waits for any in-flight sink call and silences the reporter
func (r *progressReporter) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
