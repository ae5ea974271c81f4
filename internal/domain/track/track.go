// Package track provides the Track domain entity.
package track

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/osa030/tracklist/internal/domain/media"
)

// ErrMissingMedia is reported for list items without a media element.
var ErrMissingMedia = errors.New("track is missing media")

// MissingMediaError identifies the list item that lacks a media element.
type MissingMediaError struct {
	Index int
	Title string
}

func (e *MissingMediaError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("track %d: %v", e.Index, ErrMissingMedia)
	}
	return fmt.Sprintf("track %d (%s): %v", e.Index, e.Title, ErrMissingMedia)
}

// Unwrap makes errors.Is(err, ErrMissingMedia) hold.
func (e *MissingMediaError) Unwrap() error {
	return ErrMissingMedia
}

// Track is one entry of the playlist.
type Track struct {
	Index  int               // Position in the list
	Title  string            // Display title
	Source string            // Media source URL (empty if unknown)
	Attrs  map[string]string // Raw attributes of the media element
	Media  media.Element     // nil when the list item had no media element
}

// HasMedia reports whether the track can be played.
func (t *Track) HasMedia() bool {
	return t != nil && t.Media != nil
}

// DisplayName returns the title, falling back to the source or the position.
func (t *Track) DisplayName() string {
	switch {
	case t.Title != "":
		return t.Title
	case t.Source != "":
		return t.Source
	default:
		return fmt.Sprintf("track %d", t.Index+1)
	}
}
