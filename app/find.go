package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"orion/search"
)

// progressScale is the number of bar steps for the unit interval
const progressScale = 1000

func (a *app) runFind(ctx context.Context, rawQuery string, noProgress bool) error {
	opts, err := a.cfg.EngineOptions(a.logger())
	if err != nil {
		return err
	}
	engine := search.NewEngine(opts)

	var bar *progressbar.ProgressBar
	if !noProgress && a.isTerminal() {
		bar = newFindBar(a.stderr)
	}

	start := time.Now()
	results, err := engine.Search(ctx, rawQuery, a.cfg.Root, func(p search.Progress) {
		if bar == nil {
			return
		}
		bar.Describe(p.Status.String())
		_ = bar.Set(int(p.Fraction * progressScale))
	})
	if bar != nil && err != nil {
		_ = bar.Exit()
		fmt.Fprintln(a.stderr)
	}
	if err != nil {
		return err
	}

	printResults(a.stdout, search.ParseQuery(rawQuery), results, time.Since(start))
	return nil
}

func newFindBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(progressScale,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(search.StatusEnumerating.String()),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func printResults(w io.Writer, q search.Query, results []search.Result, elapsed time.Duration) {
	paths := sortedPaths(results)

	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	header.Fprintf(w, "🔍 Query: %s\n", describeQuery(q))
	dim.Fprintln(w, separator())
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	dim.Fprintln(w, separator())
	green.Fprintf(w, "📋 Matched %d files in %s\n", len(paths), elapsed.Round(time.Millisecond))
}

func describeQuery(q search.Query) string {
	var parts []string
	if q.Substring != "" {
		parts = append(parts, fmt.Sprintf("%q", q.Substring))
	} else {
		parts = append(parts, "all files")
	}
	if q.HasExtension {
		if q.Extension == "" {
			parts = append(parts, "without extension")
		} else {
			parts = append(parts, "with extension ."+q.Extension)
		}
	}
	return strings.Join(parts, " ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func separator() string {
	return strings.Repeat("━", min(terminalWidth(), 120))
}
