// Package main provides the tracklist entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tracklist/internal/app/playback"
	"github.com/osa030/tracklist/internal/app/transport"
	"github.com/osa030/tracklist/internal/domain/playlist"
	"github.com/osa030/tracklist/internal/infra/config"
	"github.com/osa030/tracklist/internal/infra/eventloop"
	"github.com/osa030/tracklist/internal/infra/logger"
	"github.com/osa030/tracklist/internal/infra/markup"
	"github.com/osa030/tracklist/internal/infra/media"
	"github.com/osa030/tracklist/internal/tui"
)

var (
	app        = kingpin.New("tracklist", "Play a track-list document from the terminal")
	configPath = app.Flag("config", "Path to config file").Default("config/tracklist.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").String()

	playCmd  = app.Command("play", "Play the document interactively (default)").Default()
	playFile = playCmd.Arg("file", "Track-list markup file").String()

	inspectCmd  = app.Command("inspect", "Print the tracks and problems of a document")
	inspectFile = inspectCmd.Arg("file", "Track-list markup file").String()

	runCmd   = app.Command("run", "Run a scripted session and print the transport after each step")
	runFile  = runCmd.Arg("file", "Track-list markup file").String()
	runSteps = runCmd.Flag("step", "Step to run: toggle, next, prev, select:N, end, wait:DUR").Short('s').Strings()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Init(loggerConfig(cfg, command == playCmd.FullCommand()))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	switch command {
	case inspectCmd.FullCommand():
		err = inspect(os.Stdout, markupPath(cfg, *inspectFile))
	case runCmd.FullCommand():
		err = runScript(cfg, markupPath(cfg, *runFile), *runSteps)
	default:
		err = play(cfg, markupPath(cfg, *playFile))
	}
	if err != nil {
		zlog.Error().Msgf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

// loggerConfig merges the config file with the command-line flags. The
// interactive screen owns the terminal, so console output is discarded there.
func loggerConfig(cfg *config.Config, interactive bool) logger.Config {
	lc := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	}
	if *verbose {
		lc.Level = "debug"
	}
	if *logfile != "" {
		lc.Output = "file"
		lc.File = *logfile
	}
	if interactive && (lc.Output == "stdout" || lc.Output == "stderr" || lc.Output == "") {
		lc.Output = "discard"
	}
	return lc
}

func markupPath(cfg *config.Config, arg string) string {
	if arg != "" {
		return arg
	}
	return cfg.Playlist.Markup
}

// session is a controller wired to a document, a media backend and the
// transport view, all driven by one event loop.
type session struct {
	doc        *markup.Document
	playlist   *playlist.Playlist
	loop       *eventloop.Loop
	view       *transport.View
	controller *playback.Controller
}

func newSession(cfg *config.Config, path string) (*session, error) {
	if path == "" {
		return nil, errors.New("no markup file given and playlist.markup is not configured")
	}

	zlog.Info().Msgf("Loading playlist from %s", path)
	doc, err := markup.ParseFile(path)
	if err != nil {
		return nil, err
	}

	loop := eventloop.New()
	backend, err := media.NewBackend(cfg.Media.Backend, cfg.Media.Settings, loop)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create media backend")
	}

	p, err := doc.Playlist(backend)
	if err != nil {
		return nil, err
	}

	view := transport.NewView(transport.Config{
		Icons: transport.Icons{
			Play:     cfg.Transport.Icons.Play,
			Pause:    cfg.Transport.Icons.Pause,
			Previous: cfg.Transport.Icons.Previous,
			Next:     cfg.Transport.Icons.Next,
		},
		Labels: transport.Labels{
			Play:     cfg.Transport.Labels.Play,
			Pause:    cfg.Transport.Labels.Pause,
			Previous: cfg.Transport.Labels.Previous,
			Next:     cfg.Transport.Labels.Next,
		},
	})

	controller := playback.NewController(p.Tracks, playback.Config{
		SkipMissingMedia: cfg.SkipsMissingMedia(),
		View:             view,
	})

	s := &session{
		doc:        doc,
		playlist:   p,
		loop:       loop,
		view:       view,
		controller: controller,
	}
	s.start(cfg.Playlist.Autoplay)
	return s, nil
}

// start attaches the controller, applies the document's current track and
// autoplay request, and settles the resulting notifications.
func (s *session) start(autoplay bool) {
	c := s.controller
	c.Start()

	if s.playlist.Current >= 0 {
		if err := c.SetCurrentIndex(s.playlist.Current); err != nil {
			zlog.Warn().Err(err).Msg("Ignoring current track from markup")
		}
	}
	if s.playlist.Autoplay >= 0 {
		if err := c.SetCurrentIndex(s.playlist.Autoplay); err != nil {
			zlog.Warn().Err(err).Msg("Ignoring autoplay track from markup")
		}
		autoplay = true
	}
	if autoplay {
		c.SetPlaybackState(true)
	}

	s.loop.Drain()
	zlog.Info().Msgf("Playlist %q ready: tracks=%d playable=%d", s.playlist.Name, len(s.playlist.Tracks), s.playlist.Playable())
}

func (s *session) close() {
	s.controller.Close()
	s.loop.Close()
}

func play(cfg *config.Config, path string) error {
	s, err := newSession(cfg, path)
	if err != nil {
		return err
	}
	defer s.close()

	return tui.Run(tui.NewModel(s.playlist.Name, s.loop, s.controller, s.view))
}

func inspect(w io.Writer, path string) error {
	if path == "" {
		return errors.New("no markup file given and playlist.markup is not configured")
	}
	doc, err := markup.ParseFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d tracks)\n", doc.Title, len(doc.Items))
	for _, item := range doc.Items {
		mark := " "
		if item.Current {
			mark = "*"
		}
		src := item.Attrs["src"]
		if !item.HasMedia {
			src = "(no audio)"
		}
		fmt.Fprintf(w, "%s %2d. %-30s %s\n", mark, item.Index+1, item.Title, src)
	}
	if doc.Menu.Slotted {
		fmt.Fprintln(w, "Menu: slotted")
	}
	if len(doc.Errors) > 0 {
		fmt.Fprintln(w, "Problems:")
		for _, e := range doc.Errors {
			fmt.Fprintf(w, "  - %v\n", e)
		}
	}
	return nil
}

func runScript(cfg *config.Config, path string, args []string) error {
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}

	s, err := newSession(cfg, path)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.run(ctx, os.Stdout, steps)
}
