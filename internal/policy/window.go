package policy

import (
	"fmt"

	"github.com/bnema/cascade/internal/geometry"
	"github.com/bnema/cascade/internal/protocol"
)

// WindowID identifies a compositor window. Zero means no window.
type WindowID uint64

// WindowType classifies a surface for placement
type WindowType int

const (
	WindowTypeNormal WindowType = iota
	WindowTypeUtility
	WindowTypeDialog
	WindowTypeGloss
	WindowTypeFreestyle
	WindowTypeMenu
	WindowTypeInputMethod
	WindowTypeSatellite
	WindowTypeTip
	WindowTypeDecoration
)

var windowTypeNames = map[WindowType]string{
	WindowTypeNormal:      "normal",
	WindowTypeUtility:     "utility",
	WindowTypeDialog:      "dialog",
	WindowTypeGloss:       "gloss",
	WindowTypeFreestyle:   "freestyle",
	WindowTypeMenu:        "menu",
	WindowTypeInputMethod: "inputmethod",
	WindowTypeSatellite:   "satellite",
	WindowTypeTip:         "tip",
	WindowTypeDecoration:  "decoration",
}

func (t WindowType) String() string {
	if name, ok := windowTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// WindowState is the presentation state of a window
type WindowState int

const (
	WindowStateUnknown WindowState = iota
	WindowStateRestored
	WindowStateMinimized
	WindowStateMaximized
	WindowStateVertMaximized
	WindowStateFullscreen
	WindowStateHorizMaximized
	WindowStateHidden
	WindowStateAttached
)

// ResizeEdge is a bitmask of the edges a resize gesture drags
type ResizeEdge uint32

const (
	ResizeEdgeNone  ResizeEdge = 0
	ResizeEdgeNorth ResizeEdge = 1 << 0
	ResizeEdgeSouth ResizeEdge = 1 << 1
	ResizeEdgeEast  ResizeEdge = 1 << 2
	ResizeEdgeWest  ResizeEdge = 1 << 3
)

// ApplicationInfo describes the client application owning a window
type ApplicationInfo struct {
	Name   string
	PID    int
	Client protocol.ClientID
}

// Optional holds a value that may be unset
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Set stores v
func (o *Optional[T]) Set(v T) {
	o.value = v
	o.set = true
}

// Clear unsets the value
func (o *Optional[T]) Clear() {
	var zero T
	o.value = zero
	o.set = false
}

// IsSet reports whether a value is present
func (o Optional[T]) IsSet() bool { return o.set }

// Get returns the value and whether it is set
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// Or returns the value, or def when unset
func (o Optional[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// WindowSpecification is a partial description of a window used both for
// placement requests and for modifications. Unset fields are left alone.
type WindowSpecification struct {
	Name     Optional[string]
	Type     Optional[WindowType]
	State    Optional[WindowState]
	TopLeft  Optional[geometry.Point]
	Size     Optional[geometry.Size]
	MinSize  Optional[geometry.Size]
	MaxSize  Optional[geometry.Size]
	Parent   Optional[WindowID]
	OutputID Optional[int]
}

// HasParent reports whether the specification names a parent window
func (s *WindowSpecification) HasParent() bool {
	p, ok := s.Parent.Get()
	return ok && p != 0
}

// WindowInfo is the compositor's view of a live window. The dispatcher
// borrows it for the duration of a callback only.
type WindowInfo struct {
	ID      WindowID
	App     ApplicationInfo
	Name    string
	Type    WindowType
	State   WindowState
	TopLeft geometry.Point
	Size    geometry.Size
	MinSize geometry.Size
	MaxSize geometry.Size
	Parent  WindowID
}

// HasParent reports whether the window is a child of another window
func (w *WindowInfo) HasParent() bool { return w.Parent != 0 }

// CanBeActive reports whether the window may take keyboard focus
func (w *WindowInfo) CanBeActive() bool {
	switch w.Type {
	case WindowTypeNormal, WindowTypeUtility, WindowTypeDialog, WindowTypeFreestyle, WindowTypeSatellite:
		return w.State != WindowStateHidden && w.State != WindowStateMinimized
	default:
		return false
	}
}

// Apply copies every set field of spec onto the window
func (w *WindowInfo) Apply(spec *WindowSpecification) {
	if v, ok := spec.Name.Get(); ok {
		w.Name = v
	}
	if v, ok := spec.Type.Get(); ok {
		w.Type = v
	}
	if v, ok := spec.State.Get(); ok {
		w.State = v
	}
	if v, ok := spec.TopLeft.Get(); ok {
		w.TopLeft = v
	}
	if v, ok := spec.Size.Get(); ok {
		w.Size = v
	}
	if v, ok := spec.MinSize.Get(); ok {
		w.MinSize = v
	}
	if v, ok := spec.MaxSize.Get(); ok {
		w.MaxSize = v
	}
	if v, ok := spec.Parent.Get(); ok {
		w.Parent = v
	}
}

// Output is a physical display
type Output struct {
	ID      int
	Name    string
	Extents geometry.Rectangle
	Scale   float64
}

// Zone is the part of the desktop available to application windows
type Zone struct {
	ID      int
	Extents geometry.Rectangle
}
