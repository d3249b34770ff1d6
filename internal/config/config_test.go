package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and cwd at empty temp dirs so no real config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Poll.Snapshot)
	assert.Equal(t, 10*time.Second, cfg.Poll.History)
	assert.Zero(t, cfg.Poll.Nodes)
	assert.False(t, cfg.Poll.DiscardStale)
	assert.Equal(t, Clock12h, cfg.Display.Clock)
	assert.Equal(t, 80.0, cfg.Display.HighLoad)
	assert.Equal(t, 70, cfg.Display.Thresholds.Warning)
	assert.Equal(t, 90, cfg.Display.Thresholds.Critical)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
api:
  url: https://monitor.example.com/view/
  timeout: 3s
session:
  file: ~/ferro-session.yaml
poll:
  snapshot: 2s
  history: 30s
  nodes: 1m
  discard_stale: true
display:
  clock: 24h
  timezone: UTC
  high_load: 75
  thresholds:
    warning: 60
    critical: 85
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://monitor.example.com/view", cfg.API.URL, "trailing slash is trimmed")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), "ferro-session.yaml"), cfg.Session.File)
	assert.Equal(t, 2*time.Second, cfg.Poll.Snapshot)
	assert.Equal(t, 30*time.Second, cfg.Poll.History)
	assert.Equal(t, time.Minute, cfg.Poll.Nodes)
	assert.True(t, cfg.Poll.DiscardStale)
	assert.Equal(t, Clock24h, cfg.Display.Clock)
	assert.Equal(t, "UTC", cfg.Display.Timezone)
	assert.Equal(t, 75.0, cfg.Display.HighLoad)
	assert.Equal(t, 60, cfg.Display.Thresholds.Warning)
	assert.Equal(t, 85, cfg.Display.Thresholds.Critical)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("api:\n  url: http://10.0.0.5:9000/view\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000/view", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.Poll.Snapshot)
	assert.Equal(t, Clock12h, cfg.Display.Clock)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(p, []byte("api: [unclosed"), 0644))
		_, err := Load(p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("bad duration", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(p, []byte("poll:\n  snapshot: often\n"), 0644))
		_, err := Load(p)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		isolate(t)
		p := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(p, []byte("version: 1\n"), 0644))

		found, err := Find(p)
		require.NoError(t, err)
		assert.Equal(t, p, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		isolate(t)
		_, err := Find("/does/not/exist.yaml")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("current directory", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile(ConfigFileName, []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, ConfigFileName, filepath.Base(found))
	})

	t.Run("global config", func(t *testing.T) {
		home := isolate(t)
		globalDir := filepath.Join(home, GlobalConfigDir)
		require.NoError(t, os.MkdirAll(globalDir, 0755))
		global := filepath.Join(globalDir, GlobalConfigFile)
		require.NoError(t, os.WriteFile(global, []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, found)
	})

	t.Run("nothing found", func(t *testing.T) {
		isolate(t)
		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		home := isolate(t)
		cfg, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIURL, cfg.API.URL)
		assert.Equal(t, filepath.Join(home, ".config/ferro/session.yaml"), cfg.Session.File)
	})

	t.Run("environment overrides", func(t *testing.T) {
		isolate(t)
		t.Setenv("FERRO_API_URL", "http://env.example:9000/view")
		t.Setenv("FERRO_POLL_SNAPSHOT", "7s")
		t.Setenv("FERRO_DISPLAY_CLOCK", "24h")

		cfg, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, "http://env.example:9000/view", cfg.API.URL)
		assert.Equal(t, 7*time.Second, cfg.Poll.Snapshot)
		assert.Equal(t, Clock24h, cfg.Display.Clock)
	})

	t.Run("invalid file fails validation", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile(ConfigFileName, []byte("display:\n  clock: 36h\n"), 0644))

		_, err := LoadOrDefault("")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "display.clock")
	})
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, "", ExpandTilde(""))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "a/b"), ExpandTilde("~/a/b"))
	assert.Equal(t, "/abs/path", ExpandTilde("/abs/path"))
	assert.Equal(t, "~other/x", ExpandTilde("~other/x"))
}
