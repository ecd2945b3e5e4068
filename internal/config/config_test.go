package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("initializes with defaults when no config exists", func(t *testing.T) {
		viper.Reset()
		SetConfigPath("")
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		require.NoError(t, Init())

		c := Get()
		require.NotNil(t, c)
		assert.Equal(t, "cascade-wallpaper", c.Session.WallpaperApp)
		assert.Equal(t, "ulauncher", c.Session.LauncherApp)
		assert.Equal(t, []string{"ulauncher-toggle"}, c.Launcher.Command)
		assert.Equal(t, []string{"ulauncher", "--hide-window"}, c.Launcher.Startup)
		assert.Equal(t, "a", c.Shortcuts.LauncherKey)
		assert.Equal(t, "backspace", c.Shortcuts.StopKey)
	})

	t.Run("reads an explicit config file", func(t *testing.T) {
		viper.Reset()
		path := filepath.Join(t.TempDir(), "cascade.toml")
		content := `[session]
wallpaper_app = "swaybg"

[shortcuts]
stop_key = "q"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		SetConfigPath(path)
		defer SetConfigPath("")

		require.NoError(t, Init())

		c := Get()
		assert.Equal(t, "swaybg", c.Session.WallpaperApp)
		assert.Equal(t, "ulauncher", c.Session.LauncherApp)
		assert.Equal(t, "q", c.Shortcuts.StopKey)
		assert.Equal(t, "a", c.Shortcuts.LauncherKey)
	})

	t.Run("rejects invalid TOML", func(t *testing.T) {
		viper.Reset()
		path := filepath.Join(t.TempDir(), "cascade.toml")
		require.NoError(t, os.WriteFile(path, []byte("[session\nwallpaper_app = 1"), 0644))
		SetConfigPath(path)
		defer SetConfigPath("")

		assert.Error(t, Init())
	})
}

func TestGetConfigPath(t *testing.T) {
	viper.Reset()

	t.Run("override wins", func(t *testing.T) {
		SetConfigPath("/tmp/custom.toml")
		defer SetConfigPath("")
		assert.Equal(t, "/tmp/custom.toml", GetConfigPath())
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/home/test/.xdg")
		assert.Equal(t, "/home/test/.xdg/cascade/cascade.toml", GetConfigPath())
	})
}

func TestSocketPath(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		c := &Config{IPC: IPCConfig{SocketPath: "/run/cascade/ctl.sock"}}
		assert.Equal(t, "/run/cascade/ctl.sock", c.SocketPath())
	})

	t.Run("runtime dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		c := &Config{}
		assert.Equal(t, "/run/user/1000/cascade.sock", c.SocketPath())
	})

	t.Run("temp dir fallback", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		c := &Config{}
		assert.Contains(t, c.SocketPath(), "cascade-")
	})
}

func TestGetReturnsCopyOfDefaults(t *testing.T) {
	Set(nil)
	c := Get()
	c.Session.WallpaperApp = "mutated"
	assert.Equal(t, "cascade-wallpaper", DefaultConfig.Session.WallpaperApp)
}
