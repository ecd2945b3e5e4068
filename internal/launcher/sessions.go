// Package launcher identifies the wallpaper and launcher sessions and runs
// the external launcher commands.
package launcher

import (
	"sync"

	"github.com/bnema/cascade/internal/policy"
)

// Sessions classifies applications. A role bound to a running process
// matches that process only. Otherwise the configured application name is
// used, and empty names never match.
type Sessions struct {
	mu        sync.RWMutex
	wallpaper string
	launcher  string
	pids      map[policy.SessionRole]int
}

var _ policy.SessionClassifier = (*Sessions)(nil)

func NewSessions(wallpaperApp, launcherApp string) *Sessions {
	return &Sessions{
		wallpaper: wallpaperApp,
		launcher:  launcherApp,
		pids:      make(map[policy.SessionRole]int),
	}
}

// Track binds role to the process pid
func (s *Sessions) Track(role policy.SessionRole, pid int) {
	s.mu.Lock()
	s.pids[role] = pid
	s.mu.Unlock()
}

// Untrack releases role if it is still bound to pid
func (s *Sessions) Untrack(role policy.SessionRole, pid int) {
	s.mu.Lock()
	if s.pids[role] == pid {
		delete(s.pids, role)
	}
	s.mu.Unlock()
}

// Update replaces the application names
func (s *Sessions) Update(wallpaperApp, launcherApp string) {
	s.mu.Lock()
	s.wallpaper, s.launcher = wallpaperApp, launcherApp
	s.mu.Unlock()
}

func (s *Sessions) Classify(app policy.ApplicationInfo) policy.SessionRole {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range []policy.SessionRole{policy.RoleWallpaper, policy.RoleLauncher} {
		pid, tracked := s.pids[role]
		if tracked && app.PID == pid {
			return role
		}
		if !tracked && app.Name != "" && app.Name == s.nameOf(role) {
			return role
		}
	}
	return policy.RoleNone
}

func (s *Sessions) nameOf(role policy.SessionRole) string {
	if role == policy.RoleWallpaper {
		return s.wallpaper
	}
	return s.launcher
}
