// Package input defines the compositor input events delivered to the
// shortcut gate and the window management policy.
package input

import (
	"strings"
	"time"

	"github.com/bnema/cascade/internal/geometry"
)

// Modifiers is a bitmask of held modifier keys
type Modifiers uint32

// Modifier masks
const (
	ModCtrl  Modifiers = 1 << 0
	ModAlt   Modifiers = 1 << 1
	ModShift Modifiers = 1 << 2
	ModSuper Modifiers = 1 << 3
)

// Has reports whether every modifier in m is held
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

func (mods Modifiers) String() string {
	var parts []string
	if mods.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if mods.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if mods.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if mods.Has(ModSuper) {
		parts = append(parts, "super")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// KeyAction is the phase of a key event
type KeyAction int

const (
	KeyUp KeyAction = iota
	KeyDown
	KeyRepeat
)

// PointerAction is the kind of a pointer event
type PointerAction int

const (
	PointerMotion PointerAction = iota
	PointerButtonDown
	PointerButtonUp
	PointerEnter
	PointerLeave
)

// Event is either a *KeyboardEvent or a *PointerEvent
type Event interface {
	EventTime() time.Time
	EventModifiers() Modifiers
}

// KeyboardEvent is a key press, release or repeat. ScanCode uses Linux
// input event codes.
type KeyboardEvent struct {
	Time      time.Time
	Action    KeyAction
	ScanCode  uint16
	Modifiers Modifiers
}

func (e *KeyboardEvent) EventTime() time.Time      { return e.Time }
func (e *KeyboardEvent) EventModifiers() Modifiers { return e.Modifiers }

// PointerEvent is a pointer motion or button change
type PointerEvent struct {
	Time      time.Time
	Action    PointerAction
	Position  geometry.Point
	Buttons   uint32
	Modifiers Modifiers
}

func (e *PointerEvent) EventTime() time.Time      { return e.Time }
func (e *PointerEvent) EventModifiers() Modifiers { return e.Modifiers }
