package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tracklist/internal/app/playback"
	"github.com/osa030/tracklist/internal/app/transport"
	"github.com/osa030/tracklist/internal/domain/track"
	"github.com/osa030/tracklist/internal/infra/eventloop"
	"github.com/osa030/tracklist/internal/infra/media"
)

type fixture struct {
	model      Model
	loop       *eventloop.Loop
	controller *playback.Controller
	tracks     []*track.Track
}

func newFixture(t *testing.T, titles ...string) *fixture {
	t.Helper()
	loop := eventloop.New()
	backend, err := media.NewSimBackend(loop, map[string]any{"clock": media.ClockManual})
	require.NoError(t, err)

	tracks := make([]*track.Track, 0, len(titles))
	for i, title := range titles {
		el, err := backend.NewElement(media.ElementOptions{Src: title + ".mp3", Duration: time.Minute})
		require.NoError(t, err)
		tracks = append(tracks, &track.Track{Index: i, Title: title, Media: el})
	}

	view := transport.NewView(transport.DefaultConfig())
	c := playback.NewController(tracks, playback.Config{SkipMissingMedia: true, View: view})
	c.Start()
	loop.Drain()

	return &fixture{
		model:      NewModel("Test Set", loop, c, view),
		loop:       loop,
		controller: c,
		tracks:     tracks,
	}
}

func (f *fixture) press(t *testing.T, msg tea.KeyMsg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok)
	f.model = m
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TransportKeys(t *testing.T) {
	f := newFixture(t, "A", "B", "C")

	f.press(t, tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, f.controller.Playing())
	assert.Equal(t, 0, f.controller.CurrentIndex())

	f.press(t, runes("n"))
	assert.Equal(t, 1, f.controller.CurrentIndex())
	assert.True(t, f.controller.Playing(), "next while playing keeps playing")

	f.press(t, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, f.controller.CurrentIndex())

	f.press(t, runes("k"))
	assert.False(t, f.controller.Playing())

	// Previous is disabled on the first track.
	f.press(t, runes("p"))
	assert.Equal(t, 0, f.controller.CurrentIndex())
}

func TestModel_SelectByNumber(t *testing.T) {
	f := newFixture(t, "A", "B", "C")

	f.press(t, runes("3"))
	assert.Equal(t, 2, f.controller.CurrentIndex())
	assert.Nil(t, f.model.lastError)

	f.press(t, runes("9"))
	assert.Equal(t, 2, f.controller.CurrentIndex())
	assert.ErrorIs(t, f.model.lastError, playback.ErrTrackNotFound)
	assert.Contains(t, f.model.View(), "Error:")
}

func TestModel_EndAdvances(t *testing.T) {
	f := newFixture(t, "A", "B")

	f.press(t, tea.KeyMsg{Type: tea.KeySpace})
	f.press(t, runes("e"))

	assert.Equal(t, 1, f.controller.CurrentIndex())
	assert.True(t, f.controller.Playing())

	f.press(t, runes("e"))
	assert.Equal(t, 1, f.controller.CurrentIndex())
	assert.False(t, f.controller.Playing(), "halts after the last track")
}

func TestModel_TasksMsgDrainsLoop(t *testing.T) {
	f := newFixture(t, "A", "B")

	f.tracks[1].Media.Play()
	require.Equal(t, 1, f.loop.Pending())

	next, cmd := f.model.Update(tasksMsg{})
	f.model = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 0, f.loop.Pending())
	assert.Equal(t, 1, f.controller.CurrentIndex(), "externally started track becomes current")
}

func TestModel_ViewAndQuit(t *testing.T) {
	f := newFixture(t, "Opening", "Closer")

	out := f.model.View()
	assert.Contains(t, out, "Test Set")
	assert.Contains(t, out, "Opening")
	assert.Contains(t, out, "Closer")
	assert.Contains(t, out, "0:00 / 1:00")

	cmd := f.press(t, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, f.model.View())
}

func TestModel_EmptyPlaylist(t *testing.T) {
	f := newFixture(t)

	f.press(t, tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, f.controller.Playing())
	assert.Contains(t, f.model.View(), "Playlist is empty")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "1:05", formatDuration(65*time.Second))
	assert.Equal(t, "12:00", formatDuration(12*time.Minute))
}
