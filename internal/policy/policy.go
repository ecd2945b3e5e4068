// Package policy routes compositor window management callbacks through a
// baseline policy and a pluggable policy engine.
//
// Each callback has a fixed order and combine rule:
//
//	place_new_window         baseline, engine, then session type override
//	handle_window_ready      baseline, engine
//	handle_modify_window     clamp, engine pre-hook, baseline, engine post-hook
//	advise_delete_window     engine
//	handle_keyboard_event    engine; baseline only when the engine declines
//	handle_pointer_event     engine
//	handle_request_move      engine
//	handle_request_resize    engine
//	handle_raise_window      engine
//	advise_focus_gained      baseline, engine
//	advise_output_*          engine
//	advise_application_zone_* engine
package policy

import (
	"github.com/bnema/cascade/internal/input"
)

// Engine is the external window management policy. The engine value itself
// is the policy context: it keeps whatever state it needs to correlate calls
// for the whole session. Calls are made from the session loop only and must
// not block.
type Engine interface {
	// PlaceNewWindow may override fields of the baseline placement in place
	PlaceNewWindow(app ApplicationInfo, spec *WindowSpecification)
	HandleWindowReady(info *WindowInfo)
	// PreHandleModifyWindow may alter the proposed modification
	PreHandleModifyWindow(info *WindowInfo, mods *WindowSpecification)
	// PostHandleModifyWindow observes the modification after it was applied
	PostHandleModifyWindow(info *WindowInfo, mods *WindowSpecification)
	AdviseDeleteWindow(info *WindowInfo)

	HandleKeyboardEvent(ev *input.KeyboardEvent) bool
	HandlePointerEvent(ev *input.PointerEvent) bool
	HandleRequestMove(info *WindowInfo, ev input.Event)
	HandleRequestResize(info *WindowInfo, ev input.Event, edge ResizeEdge)
	HandleRaiseWindow(info *WindowInfo)
	AdviseFocusGained(info *WindowInfo)

	AdviseOutputCreate(output *Output)
	AdviseOutputUpdate(updated, original *Output)
	AdviseOutputDelete(output *Output)

	AdviseApplicationZoneCreate(zone *Zone)
	AdviseApplicationZoneUpdate(updated, original *Zone)
	AdviseApplicationZoneDelete(zone *Zone)
}

// BaselinePolicy is the built-in fallback policy. It only takes part in the
// callbacks listed here.
type BaselinePolicy interface {
	PlaceNewWindow(app ApplicationInfo, requested WindowSpecification) WindowSpecification
	HandleWindowReady(info *WindowInfo)
	HandleModifyWindow(info *WindowInfo, mods *WindowSpecification)
	HandleKeyboardEvent(ev *input.KeyboardEvent) bool
	AdviseFocusGained(info *WindowInfo)
}

// SessionRole marks applications whose windows are placed specially
type SessionRole int

const (
	RoleNone SessionRole = iota
	RoleWallpaper
	RoleLauncher
)

func (r SessionRole) String() string {
	switch r {
	case RoleWallpaper:
		return "wallpaper"
	case RoleLauncher:
		return "launcher"
	default:
		return "none"
	}
}

// SessionClassifier tells the dispatcher which role an application plays
type SessionClassifier interface {
	Classify(app ApplicationInfo) SessionRole
}

// NopEngine declines every event. Embed it to implement only part of Engine.
type NopEngine struct{}

var _ Engine = NopEngine{}

func (NopEngine) PlaceNewWindow(ApplicationInfo, *WindowSpecification)     {}
func (NopEngine) HandleWindowReady(*WindowInfo)                            {}
func (NopEngine) PreHandleModifyWindow(*WindowInfo, *WindowSpecification)  {}
func (NopEngine) PostHandleModifyWindow(*WindowInfo, *WindowSpecification) {}
func (NopEngine) AdviseDeleteWindow(*WindowInfo)                           {}
func (NopEngine) HandleKeyboardEvent(*input.KeyboardEvent) bool            { return false }
func (NopEngine) HandlePointerEvent(*input.PointerEvent) bool              { return false }
func (NopEngine) HandleRequestMove(*WindowInfo, input.Event)               {}
func (NopEngine) HandleRequestResize(*WindowInfo, input.Event, ResizeEdge) {}
func (NopEngine) HandleRaiseWindow(*WindowInfo)                            {}
func (NopEngine) AdviseFocusGained(*WindowInfo)                            {}
func (NopEngine) AdviseOutputCreate(*Output)                               {}
func (NopEngine) AdviseOutputUpdate(*Output, *Output)                      {}
func (NopEngine) AdviseOutputDelete(*Output)                               {}
func (NopEngine) AdviseApplicationZoneCreate(*Zone)                        {}
func (NopEngine) AdviseApplicationZoneUpdate(*Zone, *Zone)                 {}
func (NopEngine) AdviseApplicationZoneDelete(*Zone)                        {}

// ToolsUser is implemented by engines that mutate compositor state. The
// session hands them its tools before the first event.
type ToolsUser interface {
	UseTools(tools Tools)
}
