package markup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/tracklist/internal/domain/track"
	"github.com/osa030/tracklist/internal/infra/eventloop"
	"github.com/osa030/tracklist/internal/infra/media"
)

const sampleDoc = `<!doctype html>
<html>
<head><title>Evening Set</title></head>
<body>
<track-list>
  <ol slot="tracks">
    <li data-title="Opening">
      <audio src="opening.mp3" data-duration="2m" controls></audio>
    </li>
    <li aria-current="true">
      Second <em>Song</em>
      <audio data-duration="90s" autoplay><source src="second.ogg" type="audio/ogg"></audio>
    </li>
    <li>Spoken word, no audio</li>
    <li>Closer<audio src="closer.mp3" data-start="5s"></audio></li>
  </ol>
</track-list>
</body>
</html>`

func TestParse_Items(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "Evening Set", doc.Title)
	require.Len(t, doc.Items, 4)

	assert.Equal(t, "Opening", doc.Items[0].Title)
	assert.Equal(t, "opening.mp3", doc.Items[0].Attrs["src"])
	assert.Equal(t, "2m", doc.Items[0].Attrs["data-duration"])

	assert.Equal(t, "Second Song", doc.Items[1].Title)
	assert.True(t, doc.Items[1].Current)
	assert.Equal(t, "second.ogg", doc.Items[1].Attrs["src"])
	assert.Equal(t, "true", doc.Items[1].Attrs["autoplay"])

	assert.Equal(t, "Spoken word, no audio", doc.Items[2].Title)
	assert.False(t, doc.Items[2].HasMedia)

	assert.Equal(t, 3, doc.Items[3].Index)
	assert.Equal(t, "Closer", doc.Items[3].Title)

	// Only the missing audio is reported; the default menu is complete.
	require.Len(t, doc.Errors, 1)
	var mm *track.MissingMediaError
	require.True(t, errors.As(doc.Errors[0], &mm))
	assert.Equal(t, 2, mm.Index)
	assert.False(t, doc.Menu.Slotted)
}

func TestParse_SlottedMenu(t *testing.T) {
	src := `<track-list>
  <menu slot="menu">
    <li><button track-part="play">play</button></li>
    <li><button track-part="next">next</button></li>
  </menu>
  <ul slot="tracks"><li><audio src="a.mp3"></audio></li></ul>
</track-list>`

	doc, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.True(t, doc.Menu.Slotted)
	assert.True(t, doc.Menu.Controls["play"])
	assert.False(t, doc.Menu.Controls["prev"])
	require.Len(t, doc.Errors, 1)
	assert.True(t, errors.Is(doc.Errors[0], ErrMissingControl))
	assert.Contains(t, doc.Errors[0].Error(), "prev")
}

func TestParse_NoContainer(t *testing.T) {
	_, err := Parse(strings.NewReader(`<ul><li><audio src="a.mp3"></audio></li></ul>`))
	assert.ErrorIs(t, err, ErrNoTrackContainer)
}

func TestParse_EmptyContainer(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<ol slot="tracks"></ol>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
	assert.Empty(t, doc.Errors)
}

func TestDocument_Playlist(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	backend, err := media.NewSimBackend(eventloop.New(), map[string]any{"clock": "manual"})
	require.NoError(t, err)

	p, err := doc.Playlist(backend)
	require.NoError(t, err)

	assert.Equal(t, "Evening Set", p.Name)
	require.Len(t, p.Tracks, 4)
	assert.Equal(t, 3, p.Playable())
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 1, p.Autoplay)

	assert.Equal(t, "opening.mp3", p.Tracks[0].Source)
	assert.False(t, p.Tracks[2].HasMedia())

	closer, ok := p.Tracks[3].Media.(*media.SimElement)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, closer.CurrentTime())
	assert.Equal(t, 3*time.Minute, closer.Duration())

	_, err = doc.Playlist(nil)
	assert.Error(t, err)
}

func TestDocument_PlaylistBadAttributes(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<ol slot="tracks">
  <li>Bad<audio src="a.mp3" data-duration="forever"></audio></li>
  <li>Good<audio src="b.mp3"></audio></li>
</ol>`))
	require.NoError(t, err)

	backend, err := media.NewSimBackend(eventloop.New(), nil)
	require.NoError(t, err)

	p, err := doc.Playlist(backend)
	require.NoError(t, err)

	assert.False(t, p.Tracks[0].HasMedia(), "track is kept without media")
	assert.True(t, p.Tracks[1].HasMedia())
	assert.Len(t, doc.Errors, 1)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "road-trip.html")
	require.NoError(t, os.WriteFile(path, []byte(`<ol slot="tracks"><li><audio src="a.mp3"></audio></li></ol>`), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "road-trip", doc.Title)

	_, err = ParseFile(filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}
