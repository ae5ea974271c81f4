// Package tui is the interactive terminal front end: a track list above the
// transport menu, driven from the keyboard.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tracklist/internal/app/playback"
	"github.com/osa030/tracklist/internal/app/transport"
	"github.com/osa030/tracklist/internal/infra/eventloop"
)

const (
	refreshRate = 500 * time.Millisecond
	errorTTL    = 5 * time.Second
)

// ender is implemented by media that can be driven to their end on demand.
type ender interface {
	End()
}

type timed interface {
	CurrentTime() time.Duration
	Duration() time.Duration
}

// Model is the TUI model. The bubbletea goroutine is the only one draining
// the event loop, so the controller and the view are only touched from
// Update and View.
type Model struct {
	title      string
	loop       *eventloop.Loop
	controller *playback.Controller
	view       *transport.View

	width  int
	height int

	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a model over a started controller bound to view.
func NewModel(title string, loop *eventloop.Loop, controller *playback.Controller, view *transport.View) Model {
	return Model{
		title:      title,
		loop:       loop,
		controller: controller,
		view:       view,
		width:      80,
	}
}

// Run starts the program and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Messages
type tickMsg time.Time
type tasksMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForTasks resolves once media notifications or timers post to the loop.
func (m Model) waitForTasks() tea.Cmd {
	ready := m.loop.Ready()
	return func() tea.Msg {
		<-ready
		return tasksMsg{}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForTasks())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd := m.handleKeyPress(msg)
		next.loop.Drain()
		return next, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.lastError != nil && time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		return m, tick()

	case tasksMsg:
		m.loop.Drain()
		return m, m.waitForTasks()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case " ", "k":
		m.view.Press(transport.ActionPlay)

	case "n", "right":
		m.view.Press(transport.ActionNext)

	case "p", "left":
		m.view.Press(transport.ActionPrevious)

	case "e":
		m.endCurrent()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(key)
		if err := m.controller.SetCurrentIndex(n - 1); err != nil {
			m.setError(err)
		}
	}
	return m, nil
}

func (m *Model) endCurrent() {
	cur := m.controller.CurrentTrack()
	if cur == nil || !cur.HasMedia() {
		return
	}
	e, ok := cur.Media.(ender)
	if !ok {
		m.setError(errors.Newf("media of %q cannot be ended", cur.DisplayName()))
		return
	}
	zlog.Debug().Msgf("tui: ending %q", cur.DisplayName())
	e.End()
}

func (m *Model) setError(err error) {
	zlog.Warn().Err(err).Msg("tui: command failed")
	m.lastError = err
	m.errorExpiry = time.Now().Add(errorTTL)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := max(m.width-4, 20)
	sections := []string{
		headerStyle.Render(m.title),
		panelStyle.Width(width).Render(m.renderTracks()),
		m.view.Render(width),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTracks() string {
	tracks := m.controller.Tracks()
	if len(tracks) == 0 {
		return dimStyle.Render("Playlist is empty")
	}

	current := m.controller.CurrentIndex()
	playing := m.controller.Playing()

	lines := make([]string, 0, len(tracks))
	for i, t := range tracks {
		marker := "  "
		if i == current {
			marker = "› "
			if playing {
				marker = "♪ "
			}
		}

		line := fmt.Sprintf("%s%2d. %s", marker, i+1, t.DisplayName())
		switch {
		case !t.HasMedia():
			line = missingStyle.Render(line)
		case i == current:
			line = currentStyle.Render(line) + " " + dimStyle.Render(position(t.Media))
		default:
			line = itemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	if m.lastError != nil {
		return errorStyle.Render("Error: " + m.lastError.Error())
	}
	return dimStyle.Render("q:quit  space:play/pause  n:next  p:prev  1-9:select  e:end track")
}

func position(media any) string {
	t, ok := media.(timed)
	if !ok {
		return ""
	}
	return formatDuration(t.CurrentTime()) + " / " + formatDuration(t.Duration())
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
