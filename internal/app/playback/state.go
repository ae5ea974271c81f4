// Package playback provides the playlist controller: the current-track state
// machine and its reconciliation with media notifications.
package playback

// State represents the playback state.
type State int

const (
	StateEmpty   State = iota // The list has no tracks
	StatePaused               // Current track is paused
	StatePlaying              // Current track is playing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
