package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orion/config"
	"orion/search"
)

func TestSearchBounded(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"Report.PDF", "report.txt", "notes.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	var mu sync.Mutex
	var fractions []float64
	engine := search.NewEngine(search.Options{})
	paths, err := searchBounded(context.Background(), engine, "report extension:pdf", root, func(p search.Progress) {
		mu.Lock()
		fractions = append(fractions, p.Fraction)
		mu.Unlock()
	}, time.Minute)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "Report.PDF")}, paths)
	require.NotEmpty(t, fractions)
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestSearchBoundedUnavailableRoot(t *testing.T) {
	engine := search.NewEngine(search.Options{})
	paths, err := searchBounded(context.Background(), engine, "x", filepath.Join(t.TempDir(), "missing"), nil, time.Minute)
	assert.ErrorIs(t, err, search.ErrDirectoryUnavailable)
	assert.Empty(t, paths)
}

func TestSearchBoundedCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := search.NewEngine(search.Options{})
	_, err := searchBounded(ctx, engine, "x", t.TempDir(), nil, time.Minute)
	assert.ErrorIs(t, err, search.ErrCancelled)
}

func TestNewLibraryFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("cadence = 0\n"), 0o644))

	lib := newLibrary(config.NewViper(path))
	require.NotNil(t, lib.engine)
	require.NotNil(t, lib.revealer)
	assert.False(t, lib.engine.Active())
}

func TestNewLibraryWithoutConfig(t *testing.T) {
	lib := newLibrary(viper.New())
	require.NotNil(t, lib.engine)
}

func TestSearchBoundedCeilingSilencesProgress(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	engine := search.NewEngine(search.Options{
		Workers: 2,
		Stat: func(name string) (fs.FileInfo, error) {
			once.Do(func() {
				close(entered)
				<-release
			})
			return os.Stat(name)
		},
	})

	var returned atomic.Bool
	var lateEvents atomic.Int32
	paths, err := searchBounded(context.Background(), engine, "", root, func(search.Progress) {
		if returned.Load() {
			lateEvents.Add(1)
		}
	}, 50*time.Millisecond)
	returned.Store(true)

	assert.ErrorIs(t, err, search.ErrCancelled)
	assert.Nil(t, paths)
	assert.False(t, engine.Active())
	assert.Equal(t, search.StateCancelled, engine.State())

	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, lateEvents.Load())
}

func TestLogOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, ""},
		{"cancelled", search.ErrCancelled, "search cancelled\n"},
		{"failed", fmt.Errorf("%w: /nope", search.ErrDirectoryUnavailable), "search failed: directory unavailable: /nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logOutcome(log.New(&buf, "", 0), tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
