// Package markup reads a track-list document: a tracks container holding
// list items with one audio element each, and an optional transport menu.
package markup

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/osa030/tracklist/internal/domain/playlist"
	"github.com/osa030/tracklist/internal/domain/track"
	"github.com/osa030/tracklist/internal/infra/media"
)

// Errors
var (
	ErrNoTrackContainer = errors.New(`no element with slot="tracks"`)
	ErrMissingControl   = errors.New("menu control missing")
)

// Control part names expected in the menu.
var controlParts = []string{"play", "prev", "next"}

// Item is one list item of the tracks container.
type Item struct {
	Index    int
	Title    string
	Current  bool              // aria-current="true"
	HasMedia bool              // Item contains an audio element
	Attrs    map[string]string // Attributes of the audio element
}

// Menu describes the transport menu found in the document.
type Menu struct {
	Slotted  bool            // Document provides its own menu
	Controls map[string]bool // Part name -> present
}

// Document is a parsed track-list document.
type Document struct {
	Title  string
	Items  []Item
	Menu   Menu
	Errors []error // Non-fatal problems, reported and skipped
}

// ParseFile parses the document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open markup file")
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse parses a track-list document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html")
	}

	container := findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "slot") == "tracks"
	})
	if container == nil {
		return nil, ErrNoTrackContainer
	}

	doc := &Document{Title: documentTitle(root)}

	for i, li := range findAll(container, isElement(atom.Li)) {
		item := Item{
			Index:   i,
			Title:   itemTitle(li),
			Current: attr(li, "aria-current") == "true",
		}

		audio := findFirst(li, isElement(atom.Audio))
		if audio == nil {
			err := &track.MissingMediaError{Index: i, Title: item.Title}
			zlog.Error().Err(err).Msg("Track is missing audio")
			doc.Errors = append(doc.Errors, err)
		} else {
			item.HasMedia = true
			item.Attrs = audioAttrs(audio)
		}

		doc.Items = append(doc.Items, item)
	}

	doc.Menu = parseMenu(root)
	for _, part := range controlParts {
		if !doc.Menu.Controls[part] {
			err := errors.Wrapf(ErrMissingControl, "button[track-part=%s]", part)
			zlog.Warn().Err(err).Msg("Menu is incomplete")
			doc.Errors = append(doc.Errors, err)
		}
	}

	return doc, nil
}

// Playlist builds the playlist, creating one element per audio item with b.
// Items whose element cannot be created are kept without media and reported.
func (d *Document) Playlist(b media.Backend) (*playlist.Playlist, error) {
	if b == nil {
		return nil, errors.New("media backend is required")
	}

	p := &playlist.Playlist{
		Name:     d.Title,
		Tracks:   make([]*track.Track, 0, len(d.Items)),
		Current:  -1,
		Autoplay: -1,
	}

	for _, item := range d.Items {
		t := &track.Track{
			Index: item.Index,
			Title: item.Title,
			Attrs: item.Attrs,
		}

		if item.HasMedia {
			if err := attachMedia(t, b); err != nil {
				zlog.Error().Err(err).Msgf("failed to create media for track %d", item.Index)
				d.Errors = append(d.Errors, errors.Wrapf(err, "track %d", item.Index))
			} else if item.Attrs["autoplay"] == "true" && p.Autoplay < 0 {
				p.Autoplay = item.Index
			}
		}

		if item.Current && p.Current < 0 {
			p.Current = item.Index
		}
		p.Tracks = append(p.Tracks, t)
	}

	return p, nil
}

func attachMedia(t *track.Track, b media.Backend) error {
	opts, err := media.DecodeElementOptions(t.Attrs)
	if err != nil {
		return err
	}
	el, err := b.NewElement(opts)
	if err != nil {
		return err
	}
	t.Source = opts.Src
	t.Media = el
	return nil
}

func parseMenu(root *html.Node) Menu {
	menu := Menu{Controls: make(map[string]bool)}

	slotted := findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "slot") == "menu"
	})
	if slotted == nil {
		// The default menu provides every control.
		for _, part := range controlParts {
			menu.Controls[part] = true
		}
		return menu
	}

	menu.Slotted = true
	for _, btn := range findAll(slotted, isElement(atom.Button)) {
		if part := attr(btn, "track-part"); part != "" {
			menu.Controls[part] = true
		}
	}
	return menu
}

func audioAttrs(audio *html.Node) map[string]string {
	attrs := make(map[string]string, len(audio.Attr))
	for _, a := range audio.Attr {
		attrs[a.Key] = a.Val
	}
	// Boolean attributes are true by presence.
	if v, ok := attrs["autoplay"]; ok && v != "false" {
		attrs["autoplay"] = "true"
	}
	if attrs["src"] == "" {
		delete(attrs, "src")
		if source := findFirst(audio, isElement(atom.Source)); source != nil {
			if src := attr(source, "src"); src != "" {
				attrs["src"] = src
			}
		}
	}
	return attrs
}

func itemTitle(li *html.Node) string {
	if t := attr(li, "data-title"); t != "" {
		return t
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Audio || n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(li)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func documentTitle(root *html.Node) string {
	if title := findFirst(root, isElement(atom.Title)); title != nil && title.FirstChild != nil {
		return strings.TrimSpace(title.FirstChild.Data)
	}
	return ""
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirst returns the first descendant of n (excluding n) in document order
// that matches.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns all descendants of n in document order that match.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			result = append(result, c)
		}
		result = append(result, findAll(c, match)...)
	}
	return result
}
