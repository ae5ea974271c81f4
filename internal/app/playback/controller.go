package playback

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tracklist/internal/app/notification"
	"github.com/osa030/tracklist/internal/domain/media"
	"github.com/osa030/tracklist/internal/domain/track"
)

// Errors
var (
	ErrNoCurrentTrack = errors.New("no current track")
	ErrTrackNotFound  = errors.New("track not in playlist")
)

// Config holds controller configuration.
type Config struct {
	SkipMissingMedia bool // Skip tracks without media in previous/next traversal
	View             View // Transport view, may be nil
}

// Controller owns the track list and the notion of the current track.
//
// The controller is not safe for concurrent use. All methods, and the media
// notifications it subscribes to, must run on the same event loop.
type Controller struct {
	tracks  []*track.Track
	current int // Flagged track, -1 when none is flagged

	config    Config
	observers *notification.Manager[Snapshot]

	// Attach state
	started bool
	cancels []func()
	missing []*track.MissingMediaError
}

// NewController creates a controller over tracks. The slice order is the
// playback order and must not change afterwards.
func NewController(tracks []*track.Track, config Config) *Controller {
	list := make([]*track.Track, len(tracks))
	copy(list, tracks)
	return &Controller{
		tracks:    list,
		current:   -1,
		config:    config,
		observers: notification.NewManager[Snapshot](),
	}
}

// Tracks returns a copy of the track list.
func (c *Controller) Tracks() []*track.Track {
	result := make([]*track.Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Observe registers fn to receive a snapshot on every reconciliation.
func (c *Controller) Observe(fn func(Snapshot)) string {
	return c.observers.Subscribe(fn)
}

// Unobserve removes an observer registered with Observe.
func (c *Controller) Unobserve(id string) {
	c.observers.Unsubscribe(id)
}

// Start subscribes to every track's media notifications and binds the view.
// Tracks without media are reported and left unwired. Calling Start on a
// started controller does nothing.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.missing = nil

	for i, t := range c.tracks {
		if !t.HasMedia() {
			err := &track.MissingMediaError{Index: i, Title: t.Title}
			zlog.Error().Err(err).Msg("playback: track is missing media, not wired")
			c.missing = append(c.missing, err)
			continue
		}

		t := t
		c.cancels = append(c.cancels,
			t.Media.On(media.EventPlay, func(media.Event) { c.onPlay(t) }),
			t.Media.On(media.EventPause, func(media.Event) { c.onPause(t) }),
			t.Media.On(media.EventEnded, func(media.Event) { c.onEnded(t) }),
		)
	}

	if c.config.View != nil {
		c.config.View.Bind(c)
	}

	zlog.Debug().Msgf("playback: started: tracks=%d wired=%d", len(c.tracks), len(c.cancels)/3)

	if len(c.tracks) == 0 {
		c.reconcile()
		return
	}
	c.flag(c.CurrentIndex())
}

// Stop removes every subscription made by Start and unbinds the view.
func (c *Controller) Stop() {
	if !c.started {
		return
	}

	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil

	if c.config.View != nil {
		c.config.View.Unbind()
	}
	c.started = false

	zlog.Debug().Msg("playback: stopped")
}

// Close stops the controller and drops all observers.
func (c *Controller) Close() {
	c.Stop()
	c.observers.Close()
}

// Started reports whether the controller is attached.
func (c *Controller) Started() bool {
	return c.started
}

// MissingMedia returns the tracks reported as missing media by the last Start.
func (c *Controller) MissingMedia() []*track.MissingMediaError {
	result := make([]*track.MissingMediaError, len(c.missing))
	copy(result, c.missing)
	return result
}

// CurrentTrack returns the flagged track, or the first track if none is
// flagged. It returns nil only when the list is empty.
func (c *Controller) CurrentTrack() *track.Track {
	idx := c.CurrentIndex()
	if idx < 0 {
		return nil
	}
	return c.tracks[idx]
}

// CurrentIndex returns the index of CurrentTrack, or -1 when the list is empty.
func (c *Controller) CurrentIndex() int {
	if len(c.tracks) == 0 {
		return -1
	}
	if c.current < 0 {
		return 0
	}
	return c.current
}

// SetCurrentTrack flags t as current and pauses every other track. It does
// not start or stop t itself.
func (c *Controller) SetCurrentTrack(t *track.Track) error {
	if len(c.tracks) == 0 {
		return ErrNoCurrentTrack
	}
	idx := c.indexOf(t)
	if idx < 0 {
		if t == nil {
			return errors.Wrap(ErrTrackNotFound, "nil track")
		}
		return errors.Wrapf(ErrTrackNotFound, "track %q", t.DisplayName())
	}
	c.flag(idx)
	return nil
}

// SetCurrentIndex is SetCurrentTrack by position. Negative positions count
// from the end of the list.
func (c *Controller) SetCurrentIndex(i int) error {
	if len(c.tracks) == 0 {
		return ErrNoCurrentTrack
	}
	idx := i
	if idx < 0 {
		idx += len(c.tracks)
	}
	if idx < 0 || idx >= len(c.tracks) {
		return errors.Wrapf(ErrTrackNotFound, "index %d out of range [0,%d)", i, len(c.tracks))
	}
	c.flag(idx)
	return nil
}

// PlaybackState returns true iff the current track's media is not paused.
func (c *Controller) PlaybackState() (bool, error) {
	cur := c.CurrentTrack()
	if cur == nil {
		return false, ErrNoCurrentTrack
	}
	if !cur.HasMedia() {
		return false, nil
	}
	return !cur.Media.Paused(), nil
}

// Playing is PlaybackState without the error; an empty list is not playing.
func (c *Controller) Playing() bool {
	playing, _ := c.PlaybackState()
	return playing
}

// State returns the state machine's current state.
func (c *Controller) State() State {
	if len(c.tracks) == 0 {
		return StateEmpty
	}
	if c.Playing() {
		return StatePlaying
	}
	return StatePaused
}

// SetPlaybackState requests play or pause on the current track. Requests for
// the state the track is already in are not forwarded to the media.
func (c *Controller) SetPlaybackState(playing bool) {
	cur := c.CurrentTrack()
	if cur == nil {
		zlog.Debug().Msg("playback: set playback state ignored, playlist is empty")
		return
	}

	if !cur.HasMedia() {
		zlog.Warn().Msgf("playback: cannot change playback of %q, track has no media", cur.DisplayName())
		c.reconcile()
		return
	}

	if playing {
		if cur.Media.Paused() {
			// A track still waiting for its play notification must not
			// overlap with the current one.
			c.pausePlayingExcept(cur)
			cur.Media.Play()
		}
	} else {
		if !cur.Media.Paused() {
			cur.Media.Pause()
		}
	}

	c.reconcile()
}

// TogglePlayback flips the playback state.
func (c *Controller) TogglePlayback() {
	c.SetPlaybackState(!c.Playing())
}

// PreviousTrack returns the track before the current one, or nil.
func (c *Controller) PreviousTrack() *track.Track {
	_, t := c.adjacent(c.CurrentIndex(), -1)
	return t
}

// NextTrack returns the track after the current one, or nil.
func (c *Controller) NextTrack() *track.Track {
	_, t := c.adjacent(c.CurrentIndex(), 1)
	return t
}

// ToPrevious moves to the previous track. See step.
func (c *Controller) ToPrevious() {
	c.step(-1)
}

// ToNext moves to the next track. See step.
func (c *Controller) ToNext() {
	c.step(1)
}

// Snapshot returns the current controller state.
func (c *Controller) Snapshot() Snapshot {
	idx := c.CurrentIndex()
	s := Snapshot{
		State: c.State(),
		Index: idx,
		Count: len(c.tracks),
	}
	if idx >= 0 {
		s.Current = c.tracks[idx]
		s.HasPrevious = c.PreviousTrack() != nil
		s.HasNext = c.NextTrack() != nil
	}
	return s
}

// step resets the adjacent track to the start. While playing, it pauses the
// current track and plays the adjacent one, whose play notification makes it
// current. While paused, it only flags the adjacent track.
func (c *Controller) step(dir int) {
	idx, adj := c.adjacent(c.CurrentIndex(), dir)
	if adj == nil {
		zlog.Debug().Msgf("playback: no track in direction %d, ignored", dir)
		return
	}

	if adj.HasMedia() {
		adj.Media.SetCurrentTime(0)
	}

	if c.Playing() {
		c.SetPlaybackState(false)
		if adj.HasMedia() {
			zlog.Debug().Msgf("playback: switching to %q", adj.DisplayName())
			adj.Media.Play()
			return
		}
	}

	c.flag(idx)
}

// flag marks idx as current, pausing every other track, and reconciles.
func (c *Controller) flag(idx int) {
	for i, t := range c.tracks {
		if i == idx || !t.HasMedia() {
			continue
		}
		t.Media.Pause()
	}

	if c.current != idx {
		zlog.Debug().Msgf("playback: current track: index=%d track=%s", idx, c.tracks[idx].DisplayName())
	}
	c.current = idx

	c.reconcile()
}

func (c *Controller) pausePlayingExcept(keep *track.Track) {
	for _, t := range c.tracks {
		if t == keep || !t.HasMedia() || t.Media.Paused() {
			continue
		}
		t.Media.Pause()
	}
}

// adjacent walks from index in direction dir and returns the first eligible
// track, or (-1, nil) at the boundary.
func (c *Controller) adjacent(from, dir int) (int, *track.Track) {
	if from < 0 {
		return -1, nil
	}
	for i := from + dir; i >= 0 && i < len(c.tracks); i += dir {
		t := c.tracks[i]
		if c.config.SkipMissingMedia && !t.HasMedia() {
			continue
		}
		return i, t
	}
	return -1, nil
}

func (c *Controller) indexOf(t *track.Track) int {
	if t == nil {
		return -1
	}
	for i, candidate := range c.tracks {
		if candidate == t {
			return i
		}
	}
	return -1
}

func (c *Controller) reconcile() {
	s := c.Snapshot()
	if c.config.View != nil {
		c.config.View.Reconcile(s)
	}
	c.observers.Broadcast(s)
}

// onPlay makes a track that started playing on its own the current one.
func (c *Controller) onPlay(t *track.Track) {
	if c.CurrentTrack() != t {
		zlog.Debug().Msgf("playback: %q started playing, making it current", t.DisplayName())
		c.flag(c.indexOf(t))
		return
	}
	c.reconcile()
}

func (c *Controller) onPause(t *track.Track) {
	if c.CurrentTrack() == t && c.Playing() {
		c.SetPlaybackState(false)
		return
	}
	c.reconcile()
}

// onEnded advances to the track after t, or halts at the end of the list.
func (c *Controller) onEnded(t *track.Track) {
	idx, next := c.adjacent(c.indexOf(t), 1)
	if next == nil {
		zlog.Debug().Msgf("playback: %q ended, end of playlist", t.DisplayName())
		c.SetPlaybackState(false)
		return
	}

	zlog.Debug().Msgf("playback: %q ended, advancing to %q", t.DisplayName(), next.DisplayName())
	c.flag(idx)
	c.SetPlaybackState(true)
}
