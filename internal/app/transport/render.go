package transport

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/osa030/tracklist/internal/app/playback"
)

// Render draws the transport menu and the current track on one block of
// width columns.
func (v *View) Render(width int) string {
	r := v.rendering

	prev := renderButton(r.Previous, r.Previous.Icon+" "+r.Previous.Label)
	next := renderButton(r.Next, r.Next.Label+" "+r.Next.Icon)

	playStyle := pausedStyle
	if r.Snapshot.Playing() {
		playStyle = playingStyle
	}
	if r.Play.Disabled {
		playStyle = disabledStyle
	}
	play := playStyle.Render(r.Play.Icon + " " + r.Play.Label)

	menu := lipgloss.JoinHorizontal(lipgloss.Center,
		play,
		lipgloss.NewStyle().Width(max(width-lipgloss.Width(play)-lipgloss.Width(prev)-lipgloss.Width(next), 1)).Render(""),
		prev,
		next,
	)

	return lipgloss.JoinVertical(lipgloss.Left, menu, nowPlaying(r.Snapshot))
}

// Line renders the transport as a single unstyled line.
func (v *View) Line() string {
	r := v.rendering
	return fmt.Sprintf("%s %s | %s%s | %s%s | %s",
		r.Play.Icon, r.Play.Label,
		disabledMark(r.Previous), r.Previous.Label,
		disabledMark(r.Next), r.Next.Label,
		plainNowPlaying(r.Snapshot))
}

func renderButton(b Button, text string) string {
	if b.Disabled {
		return disabledStyle.Render(text)
	}
	return buttonStyle.Render(text)
}

func disabledMark(b Button) string {
	if b.Disabled {
		return "-"
	}
	return "+"
}

func nowPlaying(s playback.Snapshot) string {
	if s.Current == nil {
		return mutedStyle.Render("No tracks")
	}
	return titleStyle.Render(s.Current.DisplayName()) + " " +
		mutedStyle.Render(fmt.Sprintf("(%d/%d, %s)", s.Index+1, s.Count, s.State))
}

func plainNowPlaying(s playback.Snapshot) string {
	if s.Current == nil {
		return "no tracks"
	}
	return fmt.Sprintf("%s (%d/%d, %s)", s.Current.DisplayName(), s.Index+1, s.Count, s.State)
}
