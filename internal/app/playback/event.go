package playback

import "github.com/osa030/tracklist/internal/domain/track"

// Snapshot is the controller state published on every reconciliation.
type Snapshot struct {
	State       State
	Current     *track.Track // nil when the list is empty
	Index       int          // Index of Current, -1 when the list is empty
	Count       int          // Number of tracks
	HasPrevious bool
	HasNext     bool
}

// Playing reports whether the snapshot was taken while playing.
func (s Snapshot) Playing() bool {
	return s.State == StatePlaying
}

// Commands are the transport actions a view can trigger.
type Commands interface {
	TogglePlayback()
	ToPrevious()
	ToNext()
}

// View reflects the controller state and forwards user actions to it.
type View interface {
	Reconcile(s Snapshot)
	Bind(cmds Commands)
	Unbind()
}
