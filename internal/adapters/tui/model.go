// Package tui provides the terminal dashboard for focus sessions: a Bubble
// Tea program that acts as the persistent display host and turns key
// presses into focus commands.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/xvierd/flow-focus/internal/domain"
	"github.com/xvierd/flow-focus/internal/ports"
)

// commandTimeout bounds a single key-triggered command.
const commandTimeout = 5 * time.Second

const (
	colorRunning       = "#7C6FE0"
	colorPaused        = "#6B7280"
	colorHelp          = "#95A5A6"
	colorError         = "#E06C75"
	gradientStart      = "#7C6FE0"
	gradientEnd        = "#A78BFA"
	pausedGradientEnd  = "#4B5563"
	defaultTermWidth   = 80
	progressBarPadding = 16
)

// Messages pushed into the program by Display. seq orders them in the
// order the display calls were made, since each is sent on its own goroutine.
type (
	beginMsg struct {
		seq     uint64
		content domain.Content
	}
	updateMsg struct {
		seq     uint64
		content domain.Content
	}
	endMsg struct {
		seq uint64
	}
	commandMsg struct {
		name string
		err  error
	}
)

// Model renders the current display content. It starts a session on Init
// when an initial duration is configured.
type Model struct {
	commander   ports.FocusCommander
	autoStart   bool
	sessionType domain.SessionType
	duration    time.Duration

	content   domain.Content
	seq       uint64
	active    bool
	width     int
	lastError error
}

// NewModel creates a dashboard model dispatching keys to commander.
func NewModel(commander ports.FocusCommander) Model {
	return Model{
		commander: commander,
		width:     getTerminalWidth(),
	}
}

// WithAutoStart makes the model start a session of type t and duration as
// soon as the program runs. A non-positive duration selects the configured
// default for the type.
func (m Model) WithAutoStart(t domain.SessionType, duration time.Duration) Model {
	m.autoStart = true
	m.sessionType = t
	m.duration = duration
	return m
}

// getTerminalWidth returns the current terminal width, defaulting to 80.
func getTerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < 20 {
		return defaultTermWidth
	}
	return w
}

func (m Model) Init() tea.Cmd {
	if !m.autoStart {
		return nil
	}
	return m.start(m.sessionType, m.duration)
}

func (m Model) start(t domain.SessionType, duration time.Duration) tea.Cmd {
	if t == "" {
		t = domain.TypeFocus
	}
	return m.dispatch("start", func(ctx context.Context) error {
		return m.commander.StartSession(ctx, t, duration)
	})
}

// dispatch runs a command off the program's event loop so a busy focus
// service never freezes the UI.
func (m Model) dispatch(name string, fn func(ctx context.Context) error) tea.Cmd {
	if m.commander == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return commandMsg{name: name, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case beginMsg:
		if !m.accept(msg.seq) {
			break
		}
		m.active = true
		m.content = msg.content
		m.lastError = nil

	case updateMsg:
		if !m.accept(msg.seq) {
			break
		}
		m.active = true
		m.content = msg.content

	case endMsg:
		if !m.accept(msg.seq) {
			break
		}
		m.active = false
		m.content = domain.Content{}

	case commandMsg:
		if msg.err != nil {
			m.lastError = fmt.Errorf("%s: %w", msg.name, msg.err)
		}
	}

	return m, nil
}

// accept reports whether a display message is newer than the last one
// applied, and records it if so.
func (m *Model) accept(seq uint64) bool {
	if seq < m.seq {
		return false
	}
	m.seq = seq
	return true
}

// startKeys maps the idle start keys to the session they begin.
var startKeys = map[string]domain.SessionType{
	"s": domain.TypeFocus,
	"b": domain.TypeShortBreak,
	"l": domain.TypeLongBreak,
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}

	if m.commander == nil {
		return m, nil
	}
	switch msg.String() {
	case "p", " ":
		if !m.active {
			return m, nil
		}
		if m.content.State == domain.StateRunning {
			return m, m.dispatch("pause", m.commander.Pause)
		}
		return m, m.dispatch("resume", m.commander.Resume)

	case "e":
		if !m.active {
			return m, nil
		}
		return m, m.dispatch("stop", m.commander.Stop)

	case "s", "b", "l":
		if m.active {
			return m, nil
		}
		return m, m.start(startKeys[msg.String()], 0)
	}
	return m, nil
}

func (m Model) View() string {
	help := lipgloss.NewStyle().Foreground(lipgloss.Color(colorHelp))

	var b strings.Builder
	if !m.active {
		b.WriteString(help.Render("  No active session") + "\n")
		b.WriteString(help.Render("  [s]tart [b]reak [l]ong break [q]uit") + "\n")
		m.writeError(&b)
		return b.String()
	}

	paused := m.content.State == domain.StatePaused
	accentColor, barEnd := colorRunning, gradientEnd
	if paused {
		accentColor, barEnd = colorPaused, pausedGradientEnd
	}
	accent := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentColor))

	title := m.content.Title
	if m.content.Type.IsBreak() {
		title += " · " + domain.GetSessionTypeLabel(m.content.Type)
	}
	if paused {
		title += "  ⏸ PAUSED"
	}
	b.WriteString(accent.Render("  "+title) + "\n\n")

	for _, line := range strings.Split(renderClock(m.content.Clock, accent, m.width), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	barWidth := m.width - progressBarPadding
	if barWidth < 20 {
		barWidth = 20
	}
	bar := progress.New(progress.WithGradient(gradientStart, barEnd), progress.WithoutPercentage())
	bar.Width = barWidth
	b.WriteString("  " + bar.ViewAs(float64(m.content.ProgressPercent)/100))
	b.WriteString(help.Render(fmt.Sprintf("  %d%%", m.content.ProgressPercent)) + "\n")

	b.WriteString(help.Render("  "+m.content.Body) + "\n")
	b.WriteString(help.Render(fmt.Sprintf("  [p] %s  [e] %s  [q] Quit",
		m.content.PrimaryAction, m.content.SecondaryAction)) + "\n")

	m.writeError(&b)
	return b.String()
}

func (m Model) writeError(b *strings.Builder) {
	if m.lastError == nil {
		return
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))
	b.WriteString(style.Render("  "+m.lastError.Error()) + "\n")
}
