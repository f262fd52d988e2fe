package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"orion/reveal"
	"orion/search"
)

// progressMsg carries one engine progress update for a search generation
type progressMsg struct {
	generation int
	progress   search.Progress
}

type searchDoneMsg struct {
	generation int
	results    []search.Result
	err        error
	elapsed    time.Duration
}

type revealDoneMsg struct {
	path string
	err  error
}

type usageMsg struct {
	text string
}

type progressTick struct{}

// progressFeed hands the newest engine progress to the UI loop
type progressFeed struct {
	ch chan progressMsg
}

func newProgressFeed() *progressFeed {
	return &progressFeed{ch: make(chan progressMsg, 64)}
}

// push never blocks; when the buffer is full the oldest update is dropped
func (f *progressFeed) push(msg progressMsg) {
	select {
	case f.ch <- msg:
		return
	default:
	}
	select {
	case <-f.ch:
	default:
	}
	select {
	case f.ch <- msg:
	default:
	}
}

// latest drains the buffer and returns the most recent update
func (f *progressFeed) latest() (progressMsg, bool) {
	var last progressMsg
	ok := false
	for {
		select {
		case msg := <-f.ch:
			last, ok = msg, true
		default:
			return last, ok
		}
	}
}

type model struct {
	ctx      context.Context
	engine   *search.Engine
	revealer reveal.Revealer
	root     string
	workers  int

	feed  *progressFeed
	usage *usageSampler

	input textinput.Model
	bar   progress.Model

	// Session
	generation int
	searching  bool
	started    time.Time
	query      search.Query
	progress   search.Progress
	elapsed    time.Duration

	// Results and scrolling
	results []string
	cursor  int
	offset  int

	status    string
	statusErr bool
	usageText string

	width    int
	height   int
	quitting bool
}

func newModel(ctx context.Context, engine *search.Engine, revealer reveal.Revealer, root string, workers int) model {
	input := textinput.New()
	input.Placeholder = "name fragment, optionally followed by extension:<ext>"
	input.Prompt = "🔍 "
	input.CharLimit = 256
	input.Focus()

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return model{
		ctx:      ctx,
		engine:   engine,
		revealer: revealer,
		root:     root,
		workers:  workers,
		feed:     newProgressFeed(),
		usage:    &usageSampler{},
		input:    input,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, pollProgress(), m.usageTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width-32)
		m.input.Width = max(10, msg.Width-8)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.engine.Cancel()
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.searching {
				m.engine.Cancel()
				m.searching = false
				m.setStatus("Search cancelled", false)
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.startSearch()
		case "up", "ctrl+p":
			m.moveCursor(-1)
			return m, nil
		case "down", "ctrl+n":
			m.moveCursor(1)
			return m, nil
		case "pgup":
			m.moveCursor(-m.listHeight())
			return m, nil
		case "pgdown":
			m.moveCursor(m.listHeight())
			return m, nil
		case "ctrl+o":
			return m, m.revealSelected()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case progressTick:
		if p, ok := m.feed.latest(); ok && m.searching && p.generation == m.generation {
			m.progress = p.progress
		}
		return m, pollProgress()

	case searchDoneMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.searching = false
		m.elapsed = msg.elapsed
		switch {
		case errors.Is(msg.err, search.ErrCancelled):
			m.setStatus("Search cancelled", false)
		case msg.err != nil:
			m.setStatus(msg.err.Error(), true)
		default:
			m.results = sortedPaths(msg.results)
			m.cursor, m.offset = 0, 0
			m.progress = search.Progress{Fraction: 1, Status: search.StatusComplete}
			m.setStatus(fmt.Sprintf("📋 Matched %d files", len(m.results)), false)
		}
		return m, nil

	case revealDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus("Revealed "+msg.path, false)
		}
		return m, nil

	case usageMsg:
		m.usageText = msg.text
		return m, m.usageTick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startSearch supersedes any running search with the current input
func (m model) startSearch() (tea.Model, tea.Cmd) {
	m.generation++
	gen := m.generation
	feed := m.feed
	raw := m.input.Value()

	m.query = search.ParseQuery(raw)
	m.searching = true
	m.started = time.Now()
	m.progress = search.Progress{Status: search.StatusEnumerating}
	m.status = ""

	pending := m.engine.Start(m.ctx, raw, m.root, func(p search.Progress) {
		feed.push(progressMsg{generation: gen, progress: p})
	})
	return m, waitForSearch(pending, gen, m.started)
}

func waitForSearch(p *search.Pending, generation int, started time.Time) tea.Cmd {
	return func() tea.Msg {
		results, err := p.Wait()
		return searchDoneMsg{
			generation: generation,
			results:    results,
			err:        err,
			elapsed:    time.Since(started),
		}
	}
}

func (m model) revealSelected() tea.Cmd {
	if len(m.results) == 0 {
		return nil
	}
	path := m.results[m.cursor]
	r := m.revealer
	return func() tea.Msg {
		return revealDoneMsg{path: path, err: r.Reveal(path)}
	}
}

func (m *model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *model) moveCursor(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.results)-1)
	m.clampOffset()
}

// clampOffset keeps the cursor inside the visible window
func (m *model) clampOffset() {
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(m.offset, 0)
}

func (m model) listHeight() int {
	height := m.height
	if height <= 0 {
		height = 30
	}
	return max(3, height-14)
}

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	width := m.width
	if width <= 0 {
		width = 100
	}

	var parts []string
	parts = append(parts, "", logo(), "")
	parts = append(parts, infoStyle.Render(wrapTextWithIndent("📁 Root: ", m.root, width-4)))
	parts = append(parts, engineStyle.Render(fmt.Sprintf("⚙️ Engine: Workers %d%s", m.workers, m.usageText)))
	parts = append(parts, m.input.View())
	parts = append(parts, m.progressLine())

	rows := m.listHeight()
	var lines []string
	switch {
	case m.searching && len(m.results) == 0:
		lines = append(lines, infoStyle.Render("Searching..."))
	case len(m.results) == 0 && m.generation > 0:
		lines = append(lines, infoStyle.Render("No results found."))
	case len(m.results) == 0:
		lines = append(lines, infoStyle.Render("Type a query and press Enter."))
	default:
		end := min(m.offset+rows, len(m.results))
		for i := m.offset; i < end; i++ {
			line := m.results[i]
			if i == m.cursor {
				line = selectedStyle.Render(line)
			}
			lines = append(lines, line)
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	parts = append(parts, appStyle.Width(max(20, width-2)).Render(strings.Join(lines, "\n")))

	switch {
	case m.status == "":
		parts = append(parts, "")
	case m.statusErr:
		parts = append(parts, errorStyle.Render("❌ "+m.status))
	default:
		parts = append(parts, successStyle.Render(m.status))
	}
	parts = append(parts, footerStyle.Render("'enter' search • 'esc' cancel/quit • ↑/↓ select • 'ctrl+o' reveal • 'ctrl+c' quit"))
	return strings.Join(parts, "\n")
}

func (m model) progressLine() string {
	if m.generation == 0 {
		return ""
	}
	line := m.bar.ViewAs(m.progress.Fraction) + fmt.Sprintf(" %3.0f%% %s", m.progress.Fraction*100, m.progress.Status)
	if m.searching {
		return subHeaderStyle.Render("⏳ ") + line + warningStyle.Render(fmt.Sprintf(" %.1fs", time.Since(m.started).Seconds()))
	}
	return subHeaderStyle.Render("✔ ") + line + warningStyle.Render(fmt.Sprintf(" %.1fs", m.elapsed.Seconds()))
}

func (m model) usageTick() tea.Cmd {
	sampler := m.usage
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return usageMsg{text: sampler.sample().String()}
	})
}

func pollProgress() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return progressTick{}
	})
}

func sortedPaths(results []search.Result) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	slices.Sort(paths)
	return paths
}

func (a *app) runTUI(ctx context.Context) error {
	logger, closer, err := a.cfg.OpenLog()
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := a.cfg.EngineOptions(logger)
	if err != nil {
		return err
	}
	engine := search.NewEngine(opts)
	defer engine.Cancel()

	m := newModel(ctx, engine, a.revealer, a.cfg.Root, a.cfg.Workers)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run interactive search: %w", err)
	}
	return nil
}
