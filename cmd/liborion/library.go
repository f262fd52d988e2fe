package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"

	"orion/config"
	"orion/reveal"
	"orion/search"
)

// searchCeiling bounds how long a foreign caller can be blocked by one search
const searchCeiling = 30 * time.Second

type library struct {
	engine   *search.Engine
	revealer reveal.Revealer
	logger   *log.Logger
}

var shared = sync.OnceValue(func() *library {
	return newLibrary(config.NewViper(""))
})

// newLibrary builds the shared engine from the user's configuration, falling
// back to defaults when it cannot be loaded
func newLibrary(v *viper.Viper) *library {
	stderr := log.New(os.Stderr, "liborion ", log.LstdFlags)

	cfg, err := config.Load(v)
	if err != nil {
		stderr.Printf("using default configuration: %v", err)
		cfg = config.Default()
	}

	logger, _, err := cfg.OpenLog()
	if err != nil {
		stderr.Printf("logging disabled: %v", err)
		logger = log.New(io.Discard, "", 0)
	}

	opts, err := cfg.EngineOptions(logger)
	if err != nil {
		stderr.Printf("ignoring configured options: %v", err)
		opts = search.Options{Logger: logger}
	}

	return &library{
		engine:   search.NewEngine(opts),
		revealer: reveal.System(),
		logger:   stderr,
	}
}

// logOutcome records why a search produced no results; cancellation is not
// a failure
func logOutcome(logger *log.Logger, err error) {
	switch {
	case err == nil:
	case errors.Is(err, search.ErrCancelled):
		logger.Printf("search cancelled")
	default:
		logger.Printf("search failed: %v", err)
	}
}

// searchBounded runs one search and gives up after ceiling even if a worker
// never yields. No progress callback runs once it has returned.
func searchBounded(ctx context.Context, engine *search.Engine, query, root string, onProgress search.ProgressFunc, ceiling time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	pending := engine.Start(ctx, query, root, onProgress)
	select {
	case <-pending.Done():
	case <-ctx.Done():
		// silence the session before handing control back to the caller
		pending.Cancel()
		return nil, search.ErrCancelled
	}

	results, err := pending.Wait()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	return paths, nil
}
