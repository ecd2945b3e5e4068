package policy

import (
	"github.com/bnema/cascade/internal/geometry"
	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/logger"
	"github.com/charmbracelet/log"
)

// Dispatcher combines the baseline policy and the engine per callback. It
// never retains the window, output or zone values it is handed.
type Dispatcher struct {
	baseline BaselinePolicy
	engine   Engine
	sessions SessionClassifier
	log      *log.Logger
}

// NewDispatcher creates a dispatcher. A nil engine declines everything and a
// nil classifier never matches.
func NewDispatcher(baseline BaselinePolicy, engine Engine, sessions SessionClassifier) *Dispatcher {
	if engine == nil {
		engine = NopEngine{}
	}
	return &Dispatcher{
		baseline: baseline,
		engine:   engine,
		sessions: sessions,
		log:      logger.With("policy"),
	}
}

// Engine returns the engine events are forwarded to
func (d *Dispatcher) Engine() Engine { return d.engine }

// PlaceNewWindow computes the placement of a new window. The wallpaper and
// launcher overrides are applied last and always win.
func (d *Dispatcher) PlaceNewWindow(app ApplicationInfo, requested WindowSpecification) WindowSpecification {
	result := d.baseline.PlaceNewWindow(app, requested)
	d.engine.PlaceNewWindow(app, &result)

	if d.sessions != nil {
		switch role := d.sessions.Classify(app); role {
		case RoleWallpaper:
			result.Type.Set(WindowTypeDecoration)
			d.log.Debug("placing wallpaper window", "app", app.Name)
		case RoleLauncher:
			result.Type.Set(WindowTypeDialog)
			d.log.Debug("placing launcher window", "app", app.Name)
		}
	}
	return result
}

func (d *Dispatcher) HandleWindowReady(info *WindowInfo) {
	d.baseline.HandleWindowReady(info)
	d.engine.HandleWindowReady(info)
}

// HandleModifyWindow clamps any size change, then runs the engine pre-hook,
// the baseline and the engine post-hook on a private copy of mods.
func (d *Dispatcher) HandleModifyWindow(info *WindowInfo, mods WindowSpecification) {
	d.clampModification(info, &mods)

	d.engine.PreHandleModifyWindow(info, &mods)
	d.baseline.HandleModifyWindow(info, &mods)
	d.engine.PostHandleModifyWindow(info, &mods)
}

func (d *Dispatcher) AdviseDeleteWindow(info *WindowInfo) {
	d.engine.AdviseDeleteWindow(info)
}

// HandleKeyboardEvent offers the event to the engine first; the baseline
// only sees events the engine declined.
func (d *Dispatcher) HandleKeyboardEvent(ev *input.KeyboardEvent) bool {
	if d.engine.HandleKeyboardEvent(ev) {
		return true
	}
	return d.baseline.HandleKeyboardEvent(ev)
}

func (d *Dispatcher) HandlePointerEvent(ev *input.PointerEvent) bool {
	return d.engine.HandlePointerEvent(ev)
}

func (d *Dispatcher) HandleRequestMove(info *WindowInfo, ev input.Event) {
	d.engine.HandleRequestMove(info, ev)
}

func (d *Dispatcher) HandleRequestResize(info *WindowInfo, ev input.Event, edge ResizeEdge) {
	d.engine.HandleRequestResize(info, ev, edge)
}

func (d *Dispatcher) HandleRaiseWindow(info *WindowInfo) {
	d.engine.HandleRaiseWindow(info)
}

func (d *Dispatcher) AdviseFocusGained(info *WindowInfo) {
	d.baseline.AdviseFocusGained(info)
	d.engine.AdviseFocusGained(info)
}

func (d *Dispatcher) AdviseOutputCreate(output *Output) {
	d.engine.AdviseOutputCreate(output)
}

func (d *Dispatcher) AdviseOutputUpdate(updated, original *Output) {
	d.engine.AdviseOutputUpdate(updated, original)
}

func (d *Dispatcher) AdviseOutputDelete(output *Output) {
	d.engine.AdviseOutputDelete(output)
}

func (d *Dispatcher) AdviseApplicationZoneCreate(zone *Zone) {
	d.engine.AdviseApplicationZoneCreate(zone)
}

func (d *Dispatcher) AdviseApplicationZoneUpdate(updated, original *Zone) {
	d.engine.AdviseApplicationZoneUpdate(updated, original)
}

func (d *Dispatcher) AdviseApplicationZoneDelete(zone *Zone) {
	d.engine.AdviseApplicationZoneDelete(zone)
}

// KeepSizeWithinLimits is the geometry query the compositor's resize
// machinery calls before committing a new size
func (d *Dispatcher) KeepSizeWithinLimits(info *WindowInfo, delta *geometry.Displacement, newWidth, newHeight *int32) {
	KeepSizeWithinLimits(info, delta, newWidth, newHeight)
}

// clampModification applies the size limits to a modification that resizes
// the window. A move that accompanies the resize is treated as the delta.
func (d *Dispatcher) clampModification(info *WindowInfo, mods *WindowSpecification) {
	size, ok := mods.Size.Get()
	if !ok {
		return
	}

	var delta geometry.Displacement
	topLeft, moving := mods.TopLeft.Get()
	if moving {
		delta = topLeft.Sub(info.TopLeft)
	}

	width, height := size.Width, size.Height
	KeepSizeWithinLimits(info, &delta, &width, &height)

	if width != size.Width || height != size.Height {
		d.log.Debug("clamped window size", "window", info.ID, "requested", size, "width", width, "height", height)
	}
	mods.Size.Set(geometry.Size{Width: width, Height: height})
	if moving {
		mods.TopLeft.Set(info.TopLeft.Add(delta))
	}
}
