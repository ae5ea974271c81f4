package media

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tracklist/internal/domain/media"
)

// Clock modes of the simulated backend.
const (
	ClockWall   = "wall"   // Media ends when its duration has elapsed
	ClockManual = "manual" // Media only ends through SimElement.End
)

// SimConfig holds the simulated backend settings.
type SimConfig struct {
	Clock           string        `yaml:"clock" mapstructure:"clock" default:"wall" validate:"oneof=wall manual"`
	DefaultDuration time.Duration `yaml:"default_duration" mapstructure:"default_duration" default:"3m" validate:"gt=0"`
	TickInterval    time.Duration `yaml:"tick_interval" mapstructure:"tick_interval" default:"100ms" validate:"gt=0"`
}

// SimBackend creates simulated elements that keep time but produce no sound.
type SimBackend struct {
	dispatcher media.Dispatcher
	config     SimConfig
}

// NewSimBackend creates a new simulated backend.
func NewSimBackend(d media.Dispatcher, settings map[string]any) (*SimBackend, error) {
	if d == nil {
		return nil, errors.New("dispatcher is required")
	}

	var config SimConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("sim backend config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &SimBackend{dispatcher: d, config: config}, nil
}

// Name returns the backend name.
func (b *SimBackend) Name() string {
	return "sim"
}

// Config returns the effective settings.
func (b *SimBackend) Config() SimConfig {
	return b.config
}

// NewElement creates a simulated element.
func (b *SimBackend) NewElement(opts ElementOptions) (media.Element, error) {
	el, err := b.NewSimElement(opts)
	if err != nil {
		return nil, err
	}
	return el, nil
}

// NewSimElement is NewElement returning the concrete type.
func (b *SimBackend) NewSimElement(opts ElementOptions) (*SimElement, error) {
	duration := opts.Duration
	if duration == 0 {
		duration = b.config.DefaultDuration
	}
	if opts.Start > duration {
		return nil, errors.Newf("start %v is past duration %v", opts.Start, duration)
	}

	return &SimElement{
		dispatcher: b.dispatcher,
		src:        opts.Src,
		duration:   duration,
		position:   opts.Start,
		paused:     true,
		wallClock:  b.config.Clock == ClockWall,
		tick:       b.config.TickInterval,
	}, nil
}

type listenerEntry struct {
	id uint64
	fn media.Listener
}

// SimElement is a media element driven by the wall clock.
//
// Commands take effect on the paused flag immediately; notifications are
// posted to the dispatcher and reach the listeners registered at delivery
// time.
type SimElement struct {
	mu sync.Mutex

	dispatcher media.Dispatcher
	src        string
	duration   time.Duration
	wallClock  bool
	tick       time.Duration

	paused   bool
	position time.Duration // Position at anchor
	anchor   time.Time     // When playback last (re)started
	gen      uint64        // Bumped on every transition, invalidates timers

	timerCancel func()

	listeners map[media.Event][]listenerEntry
	nextID    uint64
}

// Src returns the media source.
func (e *SimElement) Src() string {
	return e.src
}

// Duration returns the media length.
func (e *SimElement) Duration() time.Duration {
	return e.duration
}

// Play starts playback. Media at its end restarts from the beginning.
func (e *SimElement) Play() {
	e.mu.Lock()
	if !e.paused {
		e.mu.Unlock()
		return
	}
	if e.position >= e.duration {
		e.position = 0
	}
	e.paused = false
	e.anchor = toWallTime(time.Now())
	e.gen++
	e.scheduleEndLocked()
	e.mu.Unlock()

	e.emit(media.EventPlay)
}

// Pause stops playback at the current position.
func (e *SimElement) Pause() {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return
	}
	e.position = e.currentTimeLocked()
	e.paused = true
	e.gen++
	e.cancelTimerLocked()
	e.mu.Unlock()

	e.emit(media.EventPause)
}

// Paused reports whether the element is paused.
func (e *SimElement) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// CurrentTime returns the playback position.
func (e *SimElement) CurrentTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTimeLocked()
}

// SetCurrentTime seeks to d, clamped to the media length.
func (e *SimElement) SetCurrentTime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if d < 0 {
		d = 0
	}
	if d > e.duration {
		d = e.duration
	}
	e.position = d
	e.anchor = toWallTime(time.Now())

	if !e.paused {
		e.gen++
		e.scheduleEndLocked()
	}
}

// On registers a listener for ev.
func (e *SimElement) On(ev media.Event, l media.Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[media.Event][]listenerEntry)
	}
	e.nextID++
	id := e.nextID
	e.listeners[ev] = append(e.listeners[ev], listenerEntry{id: id, fn: l})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		entries := e.listeners[ev]
		for i, entry := range entries {
			if entry.id == id {
				e.listeners[ev] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// End makes the media reach its end now: a playing element is paused
// (emitting pause) and ended is emitted. Must run on the dispatcher's loop.
func (e *SimElement) End() {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	e.end(gen)
}

// Close stops the element's timer.
func (e *SimElement) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.cancelTimerLocked()
}

func (e *SimElement) end(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	wasPlaying := !e.paused
	e.position = e.duration
	e.paused = true
	e.gen++
	e.cancelTimerLocked()
	e.mu.Unlock()

	zlog.Debug().Msgf("sim: media ended: src=%s duration=%v", e.src, e.duration)

	if wasPlaying {
		e.emit(media.EventPause)
	}
	e.emit(media.EventEnded)
}

func (e *SimElement) currentTimeLocked() time.Duration {
	if e.paused {
		return e.position
	}
	pos := e.position + toWallTime(time.Now()).Sub(e.anchor)
	if pos > e.duration {
		return e.duration
	}
	return pos
}

func (e *SimElement) emit(ev media.Event) {
	e.dispatcher.Post(func() {
		e.mu.Lock()
		entries := make([]listenerEntry, len(e.listeners[ev]))
		copy(entries, e.listeners[ev])
		e.mu.Unlock()

		sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
		for _, entry := range entries {
			entry.fn(ev)
		}
	})
}

// scheduleEndLocked starts the end-of-media timer for the current generation.
func (e *SimElement) scheduleEndLocked() {
	e.cancelTimerLocked()
	if !e.wallClock {
		return
	}

	gen := e.gen
	remaining := e.duration - e.position
	e.timerCancel = startWallClockTimer(remaining, e.tick, func() {
		e.dispatcher.Post(func() { e.end(gen) })
	})
}

func (e *SimElement) cancelTimerLocked() {
	if e.timerCancel != nil {
		e.timerCancel()
		e.timerCancel = nil
	}
}

// startWallClockTimer calls callback once duration has elapsed on the wall
// clock, polling every tick. Returns a cancel function.
func startWallClockTimer(duration, tick time.Duration, callback func()) func() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		endTime := toWallTime(time.Now()).Add(duration)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !toWallTime(time.Now()).Before(endTime) {
					callback()
					return
				}
			}
		}
	}()

	return cancel
}

// toWallTime returns the time with monotonic clock stripped.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
