// Package media defines the contract of a playable media element.
package media

import "time"

// Event is a notification emitted by a media element.
type Event int

const (
	EventPlay  Event = iota // Element left the paused state
	EventPause              // Element entered the paused state
	EventEnded              // Playback reached the end of the media
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Listener receives notifications from an element.
type Listener func(Event)

// Element is a single playable media handle.
//
// Play and Pause are requests: their outcome is only observable through the
// notifications delivered to listeners, never synchronously. Requests that do
// not change the paused flag emit nothing.
type Element interface {
	Play()
	Pause()
	Paused() bool
	CurrentTime() time.Duration
	SetCurrentTime(d time.Duration)
	// On registers a listener for one event and returns its cancel function.
	On(e Event, l Listener) (cancel func())
}

// Dispatcher queues work on the host event loop. Elements deliver their
// notifications through it, never synchronously from Play or Pause.
type Dispatcher interface {
	Post(fn func())
}
