package policy

import (
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/logger"
	"github.com/bnema/cascade/internal/protocol"
	"github.com/charmbracelet/log"
)

// Tools are the compositor mutations available to the baseline policy
type Tools interface {
	// Windows lists live windows bottom to top
	Windows() []WindowInfo
	ActiveWindow() (WindowID, bool)
	SelectActiveWindow(id WindowID)
	RaiseTree(id WindowID)
	ModifyWindow(id WindowID, mods *WindowSpecification)
	AskClientToClose(id WindowID)
}

// Inhibition restricts focus to a single client while an input inhibitor
// is held
type Inhibition interface {
	IsInhibited() bool
	IsAllowed(client protocol.ClientID) bool
}

type noInhibition struct{}

func (noInhibition) IsInhibited() bool                { return false }
func (noInhibition) IsAllowed(protocol.ClientID) bool { return true }

// MinimalPolicy is the built-in baseline: focus follows new windows, Alt+F4
// closes and Alt+Tab cycles applications. While inhibited, focus is pinned
// to the exclusive client's windows.
type MinimalPolicy struct {
	tools      Tools
	inhibition Inhibition
	log        *log.Logger
}

var _ BaselinePolicy = (*MinimalPolicy)(nil)

// NewMinimalPolicy creates the baseline policy. A nil inhibition never
// restricts focus.
func NewMinimalPolicy(tools Tools, inhibition Inhibition) *MinimalPolicy {
	if inhibition == nil {
		inhibition = noInhibition{}
	}
	return &MinimalPolicy{
		tools:      tools,
		inhibition: inhibition,
		log:        logger.With("minimal"),
	}
}

// PlaceNewWindow accepts the client's request and fills in a window type
func (p *MinimalPolicy) PlaceNewWindow(app ApplicationInfo, requested WindowSpecification) WindowSpecification {
	spec := requested
	if !spec.Type.IsSet() {
		spec.Type.Set(WindowTypeNormal)
	}
	return spec
}

func (p *MinimalPolicy) HandleWindowReady(info *WindowInfo) {
	if !info.CanBeActive() || info.HasParent() {
		return
	}
	p.activate(info)
}

func (p *MinimalPolicy) HandleModifyWindow(info *WindowInfo, mods *WindowSpecification) {
	p.tools.ModifyWindow(info.ID, mods)
}

// HandleKeyboardEvent consumes Alt+F4 and Alt+Tab
func (p *MinimalPolicy) HandleKeyboardEvent(ev *input.KeyboardEvent) bool {
	if ev.Action != input.KeyDown || ev.Modifiers&^input.ModShift != input.ModAlt {
		return false
	}

	switch ev.ScanCode {
	case evdev.KEY_F4:
		if id, ok := p.tools.ActiveWindow(); ok {
			p.log.Debug("closing active window", "window", id)
			p.tools.AskClientToClose(id)
		}
		return true
	case evdev.KEY_TAB:
		p.focusNextApplication()
		return true
	default:
		return false
	}
}

func (p *MinimalPolicy) AdviseFocusGained(info *WindowInfo) {
	if !p.inhibition.IsAllowed(info.App.Client) {
		p.focusExclusiveClient()
		return
	}
	p.tools.RaiseTree(info.ID)
}

func (p *MinimalPolicy) activate(info *WindowInfo) {
	if p.inhibition.IsAllowed(info.App.Client) {
		p.tools.SelectActiveWindow(info.ID)
		return
	}
	p.focusExclusiveClient()
}

// focusExclusiveClient hands focus to the topmost window that may hold it
func (p *MinimalPolicy) focusExclusiveClient() {
	windows := p.tools.Windows()
	for i := len(windows) - 1; i >= 0; i-- {
		w := &windows[i]
		if w.CanBeActive() && p.inhibition.IsAllowed(w.App.Client) {
			p.tools.SelectActiveWindow(w.ID)
			return
		}
	}
	p.log.Debug("no window of the exclusive client can take focus")
}

// focusNextApplication activates the topmost window of the next client
// below the active one, wrapping around the stack
func (p *MinimalPolicy) focusNextApplication() {
	windows := p.tools.Windows()
	if len(windows) == 0 {
		return
	}

	start := len(windows) - 1
	var current protocol.ClientID
	if id, ok := p.tools.ActiveWindow(); ok {
		for i := range windows {
			if windows[i].ID == id {
				start = i
				current = windows[i].App.Client
				break
			}
		}
	}

	for n := 1; n <= len(windows); n++ {
		w := &windows[(start-n+len(windows))%len(windows)]
		if w.App.Client == current || !w.CanBeActive() || w.HasParent() {
			continue
		}
		if !p.inhibition.IsAllowed(w.App.Client) {
			continue
		}
		p.tools.SelectActiveWindow(w.ID)
		return
	}
}
