// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Session   SessionConfig   `mapstructure:"session"`
	Launcher  LauncherConfig  `mapstructure:"launcher"`
	Shortcuts ShortcutsConfig `mapstructure:"shortcuts"`
	IPC       IPCConfig       `mapstructure:"ipc"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SessionConfig names the applications whose windows get special placement
type SessionConfig struct {
	WallpaperApp string `mapstructure:"wallpaper_app"`
	LauncherApp  string `mapstructure:"launcher_app"`
}

// LauncherConfig contains the launcher commands
type LauncherConfig struct {
	Command []string `mapstructure:"command"` // Run on the show-launcher chord
	Startup []string `mapstructure:"startup"` // Run hidden when the session starts; empty disables
}

// ShortcutsConfig contains the keys of the ALT+CTRL chords
type ShortcutsConfig struct {
	LauncherKey string `mapstructure:"launcher_key"`
	StopKey     string `mapstructure:"stop_key"`
}

// IPCConfig contains control socket settings
type IPCConfig struct {
	SocketPath string `mapstructure:"socket_path"` // Empty means derive from XDG_RUNTIME_DIR
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Session: SessionConfig{
			WallpaperApp: "cascade-wallpaper",
			LauncherApp:  "ulauncher",
		},
		Launcher: LauncherConfig{
			Command: []string{"ulauncher-toggle"},
			Startup: []string{"ulauncher", "--hide-window"},
		},
		Shortcuts: ShortcutsConfig{
			LauncherKey: "a",
			StopKey:     "backspace",
		},
		IPC: IPCConfig{
			SocketPath: "",
		},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	mu  sync.RWMutex
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("cascade")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "cascade"))
		}
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "cascade"))
		}
		viper.AddConfigPath("/etc/cascade")
		viper.AddConfigPath(".")
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path that does not exist yet is fine too
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return reload()
}

func setDefaults() {
	viper.SetDefault("session.wallpaper_app", DefaultConfig.Session.WallpaperApp)
	viper.SetDefault("session.launcher_app", DefaultConfig.Session.LauncherApp)

	viper.SetDefault("launcher.command", DefaultConfig.Launcher.Command)
	viper.SetDefault("launcher.startup", DefaultConfig.Launcher.Startup)

	viper.SetDefault("shortcuts.launcher_key", DefaultConfig.Shortcuts.LauncherKey)
	viper.SetDefault("shortcuts.stop_key", DefaultConfig.Shortcuts.StopKey)

	viper.SetDefault("ipc.socket_path", DefaultConfig.IPC.SocketPath)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
}

func reload() error {
	next := &Config{}
	if err := viper.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	mu.Lock()
	cfg = next
	mu.Unlock()
	return nil
}

// Watch re-reads the config file whenever it changes and hands the new value
// to onChange. Unmarshal failures keep the previous configuration.
func Watch(onChange func(*Config, error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := reload(); err != nil {
			onChange(nil, err)
			return
		}
		onChange(Get(), nil)
	})
	viper.WatchConfig()
}

// Get returns the current configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if cfg == nil {
		// Return defaults if not initialized
		c := DefaultConfig
		return &c
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// Save writes the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cascade", "cascade.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/cascade/cascade.toml"
	}

	return filepath.Join(home, ".config", "cascade", "cascade.toml")
}

// SocketPath resolves the control socket location
func (c *Config) SocketPath() string {
	if c.IPC.SocketPath != "" {
		return c.IPC.SocketPath
	}
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "cascade.sock")
	}

	name := "unknown"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("cascade-%s.sock", name))
}
