package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracklist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "playlist:\n  markup: set.html\n"))
	require.NoError(t, err)

	assert.Equal(t, "set.html", cfg.Playlist.Markup)
	assert.True(t, cfg.SkipsMissingMedia())
	assert.False(t, cfg.Playlist.Autoplay)
	assert.Equal(t, "sim", cfg.Media.Backend)
	assert.Equal(t, "▶", cfg.Transport.Icons.Play)
	assert.Equal(t, "⏸", cfg.Transport.Icons.Pause)
	assert.Equal(t, "previous", cfg.Transport.Labels.Previous)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoad_ExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
playlist:
  skip_missing_media: false
  autoplay: true
media:
  backend: sim
  settings:
    clock: manual
    default_duration: 90s
transport:
  icons:
    play: ">"
  labels:
    next: skip
log:
  level: debug
`))
	require.NoError(t, err)

	assert.False(t, cfg.SkipsMissingMedia(), "explicit false is not overwritten by the default")
	assert.True(t, cfg.Playlist.Autoplay)
	assert.Equal(t, "manual", cfg.Media.Settings["clock"])
	assert.Equal(t, "90s", cfg.Media.Settings["default_duration"])
	assert.Equal(t, ">", cfg.Transport.Icons.Play)
	assert.Equal(t, "⏸", cfg.Transport.Icons.Pause)
	assert.Equal(t, "skip", cfg.Transport.Labels.Next)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown backend",
			content: "media:\n  backend: vlc\n",
			errMsg:  "Backend",
		},
		{
			name:    "bad log level",
			content: "log:\n  level: loud\n",
			errMsg:  "Level",
		},
		{
			name:    "malformed yaml",
			content: "playlist: [\n",
			errMsg:  "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sim", cfg.Media.Backend)

	cfg, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.True(t, cfg.SkipsMissingMedia())

	cfg, err = LoadOrDefault(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRACKLIST_MARKUP", "from-env.html")
	t.Setenv("TRACKLIST_LOG_LEVEL", "error")

	cfg, err := Load(writeConfig(t, "playlist:\n  markup: from-file.html\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env.html", cfg.Playlist.Markup)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestConfig_Validate_RequiredFields(t *testing.T) {
	valid := func() Config {
		return Config{
			Media: MediaConfig{Backend: "sim"},
			Log:   LogConfig{Level: "info"},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Media.Backend = ""
	assert.ErrorContains(t, cfg.Validate(), "Backend")

}
