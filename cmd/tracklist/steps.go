package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Step kinds accepted by the run command.
const (
	stepToggle = "toggle"
	stepNext   = "next"
	stepPrev   = "prev"
	stepSelect = "select"
	stepEnd    = "end"
	stepWait   = "wait"
)

// step is one scripted action.
type step struct {
	Kind  string
	Index int           // select, 1-based as typed
	Wait  time.Duration // wait
}

func (s step) String() string {
	switch s.Kind {
	case stepSelect:
		return fmt.Sprintf("%s:%d", s.Kind, s.Index)
	case stepWait:
		return fmt.Sprintf("%s:%v", s.Kind, s.Wait)
	default:
		return s.Kind
	}
}

// parseSteps parses step arguments. Comma separated lists are accepted too.
func parseSteps(args []string) ([]step, error) {
	var steps []step
	for _, arg := range args {
		for _, raw := range strings.Split(arg, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			s, err := parseStep(raw)
			if err != nil {
				return nil, err
			}
			steps = append(steps, s)
		}
	}
	return steps, nil
}

func parseStep(raw string) (step, error) {
	kind, value, hasValue := strings.Cut(strings.ToLower(raw), ":")

	switch kind {
	case stepToggle, stepNext, stepPrev, stepEnd:
		if hasValue {
			return step{}, errors.Newf("step %q takes no value", raw)
		}
		return step{Kind: kind}, nil

	case stepSelect:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return step{}, errors.Newf("step %q: want select:N with N >= 1", raw)
		}
		return step{Kind: kind, Index: n}, nil

	case stepWait:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return step{}, errors.Newf("step %q: want wait:DURATION", raw)
		}
		return step{Kind: kind, Wait: d}, nil

	default:
		return step{}, errors.Newf("unknown step %q", raw)
	}
}

// run applies steps in order, settling notifications after each one, and
// writes the transport line after every step.
func (s *session) run(ctx context.Context, w io.Writer, steps []step) error {
	fmt.Fprintf(w, "%-12s %s\n", "start", s.view.Line())

	for _, st := range steps {
		if err := s.apply(ctx, st); err != nil {
			return errors.Wrapf(err, "step %s", st)
		}
		s.loop.Drain()
		fmt.Fprintf(w, "%-12s %s\n", st, s.view.Line())
	}
	return nil
}

func (s *session) apply(ctx context.Context, st step) error {
	zlog.Debug().Msgf("run: %s", st)

	switch st.Kind {
	case stepToggle:
		s.controller.TogglePlayback()
	case stepNext:
		s.controller.ToNext()
	case stepPrev:
		s.controller.ToPrevious()
	case stepSelect:
		return s.controller.SetCurrentIndex(st.Index - 1)
	case stepEnd:
		cur := s.controller.CurrentTrack()
		if cur == nil || !cur.HasMedia() {
			return errors.New("current track has no media to end")
		}
		e, ok := cur.Media.(interface{ End() })
		if !ok {
			return errors.Newf("media of %q cannot be ended", cur.DisplayName())
		}
		e.End()
	case stepWait:
		return s.wait(ctx, st.Wait)
	}
	return nil
}

// wait lets wall-clock media progress for d, settling notifications as they
// are posted.
func (s *session) wait(ctx context.Context, d time.Duration) error {
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-s.loop.Ready():
			s.loop.Drain()
		}
	}
}
