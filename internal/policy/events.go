package policy

import (
	"fmt"

	"github.com/bnema/cascade/internal/input"
)

// EventKind names a compositor callback
type EventKind int

const (
	KindPlaceNewWindow EventKind = iota
	KindWindowReady
	KindModifyWindow
	KindDeleteWindow
	KindKeyboard
	KindPointer
	KindRequestMove
	KindRequestResize
	KindRaiseWindow
	KindFocusGained
	KindOutputCreated
	KindOutputUpdated
	KindOutputDeleted
	KindZoneCreated
	KindZoneUpdated
	KindZoneDeleted
)

var kindNames = [...]string{
	KindPlaceNewWindow: "place_new_window",
	KindWindowReady:    "handle_window_ready",
	KindModifyWindow:   "handle_modify_window",
	KindDeleteWindow:   "advise_delete_window",
	KindKeyboard:       "handle_keyboard_event",
	KindPointer:        "handle_pointer_event",
	KindRequestMove:    "handle_request_move",
	KindRequestResize:  "handle_request_resize",
	KindRaiseWindow:    "handle_raise_window",
	KindFocusGained:    "advise_focus_gained",
	KindOutputCreated:  "advise_output_create",
	KindOutputUpdated:  "advise_output_update",
	KindOutputDeleted:  "advise_output_delete",
	KindZoneCreated:    "advise_application_zone_create",
	KindZoneUpdated:    "advise_application_zone_update",
	KindZoneDeleted:    "advise_application_zone_delete",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one compositor callback. The objects it carries are borrowed.
type Event interface {
	Kind() EventKind
}

type PlaceNewWindowEvent struct {
	App     ApplicationInfo
	Request WindowSpecification
}

type WindowReadyEvent struct{ Info *WindowInfo }

type ModifyWindowEvent struct {
	Info          *WindowInfo
	Modifications WindowSpecification
}

type DeleteWindowEvent struct{ Info *WindowInfo }

type KeyboardInputEvent struct{ Event *input.KeyboardEvent }

type PointerInputEvent struct{ Event *input.PointerEvent }

type RequestMoveEvent struct {
	Info  *WindowInfo
	Input input.Event
}

type RequestResizeEvent struct {
	Info  *WindowInfo
	Input input.Event
	Edge  ResizeEdge
}

type RaiseWindowEvent struct{ Info *WindowInfo }

type FocusGainedEvent struct{ Info *WindowInfo }

type OutputCreatedEvent struct{ Output *Output }

type OutputUpdatedEvent struct{ Updated, Original *Output }

type OutputDeletedEvent struct{ Output *Output }

type ZoneCreatedEvent struct{ Zone *Zone }

type ZoneUpdatedEvent struct{ Updated, Original *Zone }

type ZoneDeletedEvent struct{ Zone *Zone }

func (PlaceNewWindowEvent) Kind() EventKind { return KindPlaceNewWindow }
func (WindowReadyEvent) Kind() EventKind    { return KindWindowReady }
func (ModifyWindowEvent) Kind() EventKind   { return KindModifyWindow }
func (DeleteWindowEvent) Kind() EventKind   { return KindDeleteWindow }
func (KeyboardInputEvent) Kind() EventKind  { return KindKeyboard }
func (PointerInputEvent) Kind() EventKind   { return KindPointer }
func (RequestMoveEvent) Kind() EventKind    { return KindRequestMove }
func (RequestResizeEvent) Kind() EventKind  { return KindRequestResize }
func (RaiseWindowEvent) Kind() EventKind    { return KindRaiseWindow }
func (FocusGainedEvent) Kind() EventKind    { return KindFocusGained }
func (OutputCreatedEvent) Kind() EventKind  { return KindOutputCreated }
func (OutputUpdatedEvent) Kind() EventKind  { return KindOutputUpdated }
func (OutputDeletedEvent) Kind() EventKind  { return KindOutputDeleted }
func (ZoneCreatedEvent) Kind() EventKind    { return KindZoneCreated }
func (ZoneUpdatedEvent) Kind() EventKind    { return KindZoneUpdated }
func (ZoneDeletedEvent) Kind() EventKind    { return KindZoneDeleted }

// Result is what a callback hands back to the compositor
type Result struct {
	// Handled is meaningful for keyboard and pointer events
	Handled bool
	// Placement is set for place_new_window
	Placement *WindowSpecification
}

// Dispatch routes a tagged event to the matching callback
func (d *Dispatcher) Dispatch(ev Event) Result {
	switch e := ev.(type) {
	case PlaceNewWindowEvent:
		spec := d.PlaceNewWindow(e.App, e.Request)
		return Result{Placement: &spec}
	case WindowReadyEvent:
		d.HandleWindowReady(e.Info)
	case ModifyWindowEvent:
		d.HandleModifyWindow(e.Info, e.Modifications)
	case DeleteWindowEvent:
		d.AdviseDeleteWindow(e.Info)
	case KeyboardInputEvent:
		return Result{Handled: d.HandleKeyboardEvent(e.Event)}
	case PointerInputEvent:
		return Result{Handled: d.HandlePointerEvent(e.Event)}
	case RequestMoveEvent:
		d.HandleRequestMove(e.Info, e.Input)
	case RequestResizeEvent:
		d.HandleRequestResize(e.Info, e.Input, e.Edge)
	case RaiseWindowEvent:
		d.HandleRaiseWindow(e.Info)
	case FocusGainedEvent:
		d.AdviseFocusGained(e.Info)
	case OutputCreatedEvent:
		d.AdviseOutputCreate(e.Output)
	case OutputUpdatedEvent:
		d.AdviseOutputUpdate(e.Updated, e.Original)
	case OutputDeletedEvent:
		d.AdviseOutputDelete(e.Output)
	case ZoneCreatedEvent:
		d.AdviseApplicationZoneCreate(e.Zone)
	case ZoneUpdatedEvent:
		d.AdviseApplicationZoneUpdate(e.Updated, e.Original)
	case ZoneDeletedEvent:
		d.AdviseApplicationZoneDelete(e.Zone)
	default:
		d.log.Warn("ignoring unknown event", "type", fmt.Sprintf("%T", ev))
	}
	return Result{}
}
