// Package tui renders the interactive scan/select/clean loop on top of
// the app.Session state machine.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devsweep/devsweep/internal/app"
	"github.com/devsweep/devsweep/internal/catalog"
	"github.com/devsweep/devsweep/internal/clean"
	"github.com/devsweep/devsweep/internal/scan"
)

const (
	// keyDebounce suppresses repeated identical key events so a held
	// key cannot, say, fire two cleans back to back.
	keyDebounce = 150 * time.Millisecond

	// tickInterval keeps the elapsed timer moving while scanning.
	tickInterval = 250 * time.Millisecond
)

// Model is the bubbletea model. It owns the session; background
// goroutines only ever reach it through the updates channel.
type Model struct {
	session   *app.Session
	cat       *catalog.Catalog
	postClean []string

	updates chan tea.Msg

	spinner  spinner.Model
	progress progress.Model
	help     viewport.Model

	hookResults []clean.HookResult
	warnings    int
	width       int
	height      int
	lastKey     string
	lastKeyAt   time.Time
	quitting    bool
}

// Run starts the interactive session and blocks until it exits.
func Run(session *app.Session, cat *catalog.Catalog, postClean []string) error {
	m := NewModel(session, cat, postClean)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interactive: %w", err)
	}
	return nil
}

// NewModel builds the initial model around an existing session.
func NewModel(session *app.Session, cat *catalog.Catalog, postClean []string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		session:   session,
		cat:       cat,
		postClean: postClean,
		updates:   make(chan tea.Msg, 64),
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient()),
		help:      viewport.New(80, 20),
		width:     80,
		height:    24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startScan(), m.waitForUpdate(), m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForUpdate delivers the next background message; the handler
// re-arms it after every delivery so the channel is drained without
// ever blocking a redraw.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// startScan runs the walk on a background goroutine, queues the size
// resolver, and pumps its stream into the update channel.
func (m Model) startScan() tea.Cmd {
	session := m.session
	cat := m.cat
	updates := m.updates
	return func() tea.Msg {
		start := time.Now()
		items, warnings := scan.Walk(session.Root, cat, scan.Options{
			Mode:     session.Mode,
			MaxDepth: session.MaxDepth,
		})
		updates <- itemsFoundMsg{items: items, warnings: len(warnings)}

		sizeCh := make(chan scan.SizeUpdate, 32)
		total := scan.ResolveSizes(items, sizeCh)
		updates <- sizeJobsMsg{total: total}

		go func() {
			for i := 0; i < total; i++ {
				updates <- sizeUpdateMsg(<-sizeCh)
			}
		}()

		return scanFinishedMsg{elapsed: time.Since(start)}
	}
}

// startClean launches the cleaner and relays its progress stream.
func (m Model) startClean(items []scan.Item) tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		progressCh := make(chan clean.Progress, 32)
		done := clean.Clean(items, progressCh)
		for {
			select {
			case p := <-progressCh:
				updates <- cleanProgressMsg(p)
			case results := <-done:
				for {
					select {
					case p := <-progressCh:
						updates <- cleanProgressMsg(p)
					default:
						return cleanFinishedMsg{results: results}
					}
				}
			}
		}
	}
}

func (m Model) runHooks() tea.Cmd {
	commands := m.postClean
	return func() tea.Msg {
		return hooksFinishedMsg{results: clean.RunHooks(context.Background(), commands)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		progressWidth := msg.Width - 10
		if progressWidth < 1 {
			progressWidth = 1
		}
		m.progress.Width = progressWidth
		m.help.Width = msg.Width - 8
		m.help.Height = msg.Height - 8
		return m, nil

	case itemsFoundMsg:
		m.session.ItemsDiscovered(msg.items)
		m.warnings = msg.warnings
		return m, m.waitForUpdate()

	case sizeJobsMsg:
		m.session.SizeJobsQueued(msg.total)
		return m, m.waitForUpdate()

	case sizeUpdateMsg:
		m.session.SizeResolved(msg.Path, msg.Size)
		return m, m.waitForUpdate()

	case scanFinishedMsg:
		m.session.ScanFinished(msg.elapsed)
		return m, nil

	case cleanProgressMsg:
		m.session.CleanProgress(clean.Progress(msg))
		return m, m.waitForUpdate()

	case cleanFinishedMsg:
		// Arrives as the startClean command's return value, not over
		// the updates channel, so the listener stays armed as-is.
		m.session.CleanFinished(msg.results)
		if len(m.postClean) > 0 {
			return m, m.runHooks()
		}
		return m, nil

	case hooksFinishedMsg:
		m.hookResults = msg.results
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// debounced reports whether an identical key arrived within the
// debounce window. Distinct keys always pass.
func (m *Model) debounced(key string) bool {
	now := time.Now()
	if key == m.lastKey && now.Sub(m.lastKeyAt) < keyDebounce {
		return true
	}
	m.lastKey = key
	m.lastKeyAt = now
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.debounced(key) {
		return m, nil
	}

	if m.session.State == app.StateHelp {
		return m.handleHelpKey(key)
	}

	switch key {
	case "q", "esc":
		// Workers already in flight are abandoned, not interrupted:
		// a deletion mid-syscall should finish rather than leave
		// half-removed trees behind.
		m.quitting = true
		return m, tea.Quit

	case "h":
		m.session.ToggleHelp()
		m.help.SetContent(m.helpContent())
		m.help.GotoTop()
		return m, nil
	}

	switch m.session.State {
	case app.StateSelecting:
		return m.handleSelectingKey(key)
	case app.StateComplete:
		m.session.DismissComplete()
		return m, nil
	}

	// Scanning and cleaning accept no other controls.
	return m, nil
}

func (m Model) handleSelectingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		m.session.NavigateNext()

	case "k", "up":
		m.session.NavigatePrevious()

	case " ":
		m.session.ToggleSelection()

	case "c":
		if items, ok := m.session.StartClean(); ok {
			return m, m.startClean(items)
		}

	case "r":
		if m.session.Rescan() {
			m.warnings = 0
			m.hookResults = nil
			return m, m.startScan()
		}
	}

	return m, nil
}

func (m Model) handleHelpKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "esc", "h":
		m.session.ToggleHelp()

	case "k", "up":
		m.scrollHelp(-1)

	case "j", "down":
		m.scrollHelp(1)

	case "pgup":
		m.scrollHelp(-5)

	case "pgdown":
		m.scrollHelp(5)
	}

	return m, nil
}

func (m *Model) scrollHelp(delta int) {
	m.session.ScrollHelp(delta)
	m.help.SetYOffset(m.session.HelpScroll)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	switch m.session.State {
	case app.StateSelecting:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.session.NavigateNext()
		case tea.MouseButtonWheelUp:
			m.session.NavigatePrevious()
		}

	case app.StateHelp:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.scrollHelp(1)
		case tea.MouseButtonWheelUp:
			m.scrollHelp(-1)
		}
	}

	return m, nil
}
