package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/tracklist/internal/domain/media"
	"github.com/osa030/tracklist/internal/domain/track"
)

type stubElement struct{}

func (stubElement) Play()                                 {}
func (stubElement) Pause()                                {}
func (stubElement) Paused() bool                          { return true }
func (stubElement) CurrentTime() time.Duration            { return 0 }
func (stubElement) SetCurrentTime(time.Duration)          {}
func (stubElement) On(media.Event, media.Listener) func() { return func() {} }

func TestPlaylist_Titles(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []*track.Track
		expected []string
	}{
		{
			name:     "empty playlist",
			tracks:   nil,
			expected: []string{},
		},
		{
			name: "mixed titles",
			tracks: []*track.Track{
				{Index: 0, Title: "One"},
				{Index: 1, Source: "two.mp3"},
				{Index: 2},
			},
			expected: []string{"One", "two.mp3", "track 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Playlist{Tracks: tt.tracks}
			assert.Equal(t, tt.expected, p.Titles())
			assert.Equal(t, len(tt.tracks) == 0, p.Empty())
		})
	}
}

func TestPlaylist_Playable(t *testing.T) {
	p := &Playlist{Tracks: []*track.Track{
		{Index: 0, Media: stubElement{}},
		{Index: 1},
		{Index: 2, Media: stubElement{}},
	}}
	assert.Equal(t, 2, p.Playable())
}
