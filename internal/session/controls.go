package session

import (
	"context"
	"strings"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/shortcuts"
)

// ShowLauncher runs the launcher command. It is the action behind the
// launcher chord and runs on the loop.
func (s *Session) ShowLauncher() {
	if err := s.launcher.Show(); err != nil {
		s.log.Error("failed to show launcher", "error", err)
	}
}

// RequestLauncher shows the launcher on behalf of a control client. Like
// the chord, it is refused while an input inhibitor is active.
func (s *Session) RequestLauncher(ctx context.Context) error {
	var err error
	if derr := s.Do(ctx, func() {
		if s.inhibition.IsInhibited() {
			err = ErrInhibited
			return
		}
		err = s.launcher.Show()
	}); derr != nil {
		return derr
	}
	return err
}

// ApplyConfig updates the session from a reloaded configuration. Invalid
// shortcut keys are rejected and the previous keys stay active.
func (s *Session) ApplyConfig(cfg *config.Config) error {
	return s.Post(func() {
		s.sessions.Update(cfg.Session.WallpaperApp, cfg.Session.LauncherApp)
		s.launcher.SetCommands(cfg.Launcher.Command, cfg.Launcher.Startup)

		if err := s.gate.SetKeys(shortcuts.Keys{
			Launcher: cfg.Shortcuts.LauncherKey,
			Stop:     cfg.Shortcuts.StopKey,
		}); err != nil {
			s.log.Error("ignoring shortcut change", "error", err)
		}

		if !strings.EqualFold(cfg.Logging.LogLevel, s.logLevel) {
			s.log.Warn("log level changes take effect on restart", "current", s.logLevel, "configured", cfg.Logging.LogLevel)
		}
		s.log.Info("configuration reloaded")
	})
}
