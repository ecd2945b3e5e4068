// Package shortcuts implements the session's global keyboard chords. A chord
// is a key pressed while both ALT and CTRL are held.
package shortcuts

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/logger"
)

const chordModifiers = input.ModAlt | input.ModCtrl

// Inhibition reports whether an input inhibitor is active
type Inhibition interface {
	IsInhibited() bool
}

// Actions are the session operations the chords trigger
type Actions interface {
	ShowLauncher()
	Stop()
}

// Keys selects the key of each chord by name
type Keys struct {
	Launcher string
	Stop     string
}

// Gate filters input before it reaches the window management policy
type Gate struct {
	inhibition Inhibition
	actions    Actions
	log        *log.Logger

	mu          sync.RWMutex
	launcherKey uint16
	stopKey     uint16
}

// NewGate creates a gate for the given chord keys
func NewGate(inhibition Inhibition, actions Actions, keys Keys) (*Gate, error) {
	g := &Gate{
		inhibition: inhibition,
		actions:    actions,
		log:        logger.With("shortcuts"),
	}
	if err := g.SetKeys(keys); err != nil {
		return nil, err
	}
	return g, nil
}

// SetKeys replaces the chord keys. On error the previous keys stay active.
func (g *Gate) SetKeys(keys Keys) error {
	launcher, err := ParseKey(keys.Launcher)
	if err != nil {
		return fmt.Errorf("launcher shortcut: %w", err)
	}
	stop, err := ParseKey(keys.Stop)
	if err != nil {
		return fmt.Errorf("stop shortcut: %w", err)
	}
	if launcher == stop {
		return fmt.Errorf("launcher and stop shortcuts both use %q", KeyName(launcher))
	}

	g.mu.Lock()
	g.launcherKey, g.stopKey = launcher, stop
	g.mu.Unlock()
	return nil
}

// Keys returns the active chord keys
func (g *Gate) Keys() Keys {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Keys{Launcher: KeyName(g.launcherKey), Stop: KeyName(g.stopKey)}
}

// HandleEvent runs the chord action matching ev and reports whether the
// event was consumed. Unmatched events, including every chord while an
// inhibitor is active, fall through to normal dispatch.
func (g *Gate) HandleEvent(ev input.Event) bool {
	kev, ok := ev.(*input.KeyboardEvent)
	if !ok || kev.Action != input.KeyDown {
		return false
	}
	if !kev.Modifiers.Has(chordModifiers) {
		return false
	}
	if g.inhibition.IsInhibited() {
		g.log.Debug("chord ignored while inhibited", "key", KeyName(kev.ScanCode))
		return false
	}

	g.mu.RLock()
	launcherKey, stopKey := g.launcherKey, g.stopKey
	g.mu.RUnlock()

	switch kev.ScanCode {
	case launcherKey:
		g.log.Info("showing launcher")
		g.actions.ShowLauncher()
		return true
	case stopKey:
		g.log.Info("stopping session")
		g.actions.Stop()
		return true
	default:
		return false
	}
}
