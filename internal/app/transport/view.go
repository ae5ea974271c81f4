// Package transport renders the shared play/pause, previous and next
// affordances from controller snapshots and forwards presses to the
// controller.
package transport

import (
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tracklist/internal/app/playback"
)

// Action identifies a transport affordance.
type Action int

const (
	ActionPlay Action = iota
	ActionPrevious
	ActionNext
)

// String returns the part name used for the action in markup.
func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionPrevious:
		return "prev"
	case ActionNext:
		return "next"
	default:
		return "unknown"
	}
}

// Icons are the glyphs shown on the affordances.
type Icons struct {
	Play     string
	Pause    string
	Previous string
	Next     string
}

// Labels are the texts shown on the affordances.
type Labels struct {
	Play     string
	Pause    string
	Previous string
	Next     string
}

// Config holds view configuration.
type Config struct {
	Icons  Icons
	Labels Labels
}

// DefaultConfig returns the stock glyphs and labels.
func DefaultConfig() Config {
	return Config{
		Icons:  Icons{Play: "▶", Pause: "⏸", Previous: "⟪", Next: "⟫"},
		Labels: Labels{Play: "play", Pause: "pause", Previous: "previous", Next: "next"},
	}
}

// Button is the presentation of one affordance.
type Button struct {
	Icon     string
	Label    string
	Disabled bool
	Part     string // Space separated part names
}

// Rendering is the full presentation computed by the last reconciliation.
type Rendering struct {
	Play     Button
	Previous Button
	Next     Button
	Snapshot playback.Snapshot
}

// View is the transport presentation. It keeps no state besides its last
// rendering and the commands it is bound to.
type View struct {
	config    Config
	rendering Rendering
	cmds      playback.Commands
}

// NewView creates a view rendering an empty playlist.
func NewView(config Config) *View {
	v := &View{config: config}
	v.Reconcile(playback.Snapshot{State: playback.StateEmpty, Index: -1})
	return v
}

// Reconcile recomputes the rendering from s.
func (v *View) Reconcile(s playback.Snapshot) {
	r := Rendering{Snapshot: s}

	if s.Playing() {
		r.Play = Button{
			Icon:  v.config.Icons.Pause,
			Label: v.config.Labels.Pause,
			Part:  TogglePart("button play", "paused", false),
		}
	} else {
		r.Play = Button{
			Icon:  v.config.Icons.Play,
			Label: v.config.Labels.Play,
			Part:  TogglePart("button play", "paused", true),
		}
	}
	r.Play.Disabled = s.State == playback.StateEmpty

	r.Previous = Button{
		Icon:     v.config.Icons.Previous,
		Label:    v.config.Labels.Previous,
		Disabled: !s.HasPrevious,
		Part:     TogglePart("button prev", "disabled", !s.HasPrevious),
	}
	r.Next = Button{
		Icon:     v.config.Icons.Next,
		Label:    v.config.Labels.Next,
		Disabled: !s.HasNext,
		Part:     TogglePart("button next", "disabled", !s.HasNext),
	}

	v.rendering = r
}

// Bind wires the affordances to cmds.
func (v *View) Bind(cmds playback.Commands) {
	v.cmds = cmds
}

// Unbind drops the command binding.
func (v *View) Unbind() {
	v.cmds = nil
}

// Bound reports whether the view forwards presses.
func (v *View) Bound() bool {
	return v.cmds != nil
}

// Rendering returns the last computed presentation.
func (v *View) Rendering() Rendering {
	return v.rendering
}

// Button returns the presentation of one affordance.
func (v *View) Button(a Action) Button {
	switch a {
	case ActionPrevious:
		return v.rendering.Previous
	case ActionNext:
		return v.rendering.Next
	default:
		return v.rendering.Play
	}
}

// Press forwards a press on a to the bound commands. Presses on an unbound
// view or a disabled affordance are ignored and return false.
func (v *View) Press(a Action) bool {
	if v.cmds == nil {
		zlog.Debug().Msgf("transport: %s pressed while unbound", a)
		return false
	}
	if v.Button(a).Disabled {
		zlog.Debug().Msgf("transport: %s pressed while disabled", a)
		return false
	}

	switch a {
	case ActionPlay:
		v.cmds.TogglePlayback()
	case ActionPrevious:
		v.cmds.ToPrevious()
	case ActionNext:
		v.cmds.ToNext()
	default:
		return false
	}
	return true
}

// TogglePart removes name from the space separated part list and appends it
// again when show is set.
func TogglePart(part, name string, show bool) string {
	fields := strings.Fields(part)
	names := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if f != name {
			names = append(names, f)
		}
	}
	if show {
		names = append(names, name)
	}
	return strings.Join(names, " ")
}
