// Package playlist provides the Playlist domain entity.
package playlist

import (
	"github.com/osa030/tracklist/internal/domain/track"
)

// Playlist is an ordered, fixed list of tracks loaded from a document.
type Playlist struct {
	Name     string         // Document title
	Path     string         // Source document path (empty if not from a file)
	Tracks   []*track.Track // Playback order
	Current  int            // Preselected track, -1 if none
	Autoplay int            // Track requesting autoplay, -1 if none
}

// Titles returns the display names of all tracks.
func (p *Playlist) Titles() []string {
	titles := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		titles[i] = t.DisplayName()
	}
	return titles
}

// Playable returns the number of tracks with media.
func (p *Playlist) Playable() int {
	n := 0
	for _, t := range p.Tracks {
		if t.HasMedia() {
			n++
		}
	}
	return n
}

// Empty reports whether the playlist has no tracks.
func (p *Playlist) Empty() bool {
	return len(p.Tracks) == 0
}
