package session

import (
	"time"

	"github.com/bnema/cascade/internal/inhibitor"
	"github.com/bnema/cascade/internal/policy"
)

// Status is a point-in-time view of a session
type Status struct {
	Running      bool
	Started      time.Time
	Engine       string
	Inhibition   inhibitor.Status
	Clients      int
	Resources    int
	Windows      int
	ActiveWindow policy.WindowID
	LauncherKey  string
	StopKey      string
}

// Uptime is how long the session has been running, zero when stopped
func (s Status) Uptime(now time.Time) time.Duration {
	if !s.Running || s.Started.IsZero() {
		return 0
	}
	return now.Sub(s.Started)
}
