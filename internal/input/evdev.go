package input

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/cascade/internal/logger"
	evdev "github.com/gvalkov/golang-evdev"
)

// DefaultDeviceGlob matches every evdev node
const DefaultDeviceGlob = "/dev/input/event*"

// ErrNoKeyboards is returned when no readable keyboard matches the glob
var ErrNoKeyboards = errors.New("no keyboard devices found")

var modifierKeys = map[uint16]Modifiers{
	evdev.KEY_LEFTCTRL:   ModCtrl,
	evdev.KEY_RIGHTCTRL:  ModCtrl,
	evdev.KEY_LEFTALT:    ModAlt,
	evdev.KEY_RIGHTALT:   ModAlt,
	evdev.KEY_LEFTSHIFT:  ModShift,
	evdev.KEY_RIGHTSHIFT: ModShift,
	evdev.KEY_LEFTMETA:   ModSuper,
	evdev.KEY_RIGHTMETA:  ModSuper,
}

// KeyTracker turns raw evdev key events into KeyboardEvents carrying the
// modifiers held at that moment. It is not safe for concurrent use.
type KeyTracker struct {
	held map[uint16]bool
}

// NewKeyTracker creates a tracker with no keys held
func NewKeyTracker() *KeyTracker {
	return &KeyTracker{held: make(map[uint16]bool)}
}

// Modifiers returns the modifiers currently held
func (k *KeyTracker) Modifiers() Modifiers {
	var mods Modifiers
	for code := range k.held {
		mods |= modifierKeys[code]
	}
	return mods
}

// Translate converts ev. Non-key events and pointer buttons are dropped.
func (k *KeyTracker) Translate(ev evdev.InputEvent) (*KeyboardEvent, bool) {
	if ev.Type != evdev.EV_KEY || ev.Code >= evdev.BTN_MISC {
		return nil, false
	}

	var action KeyAction
	switch ev.Value {
	case 0:
		action = KeyUp
		delete(k.held, ev.Code)
	case 1:
		action = KeyDown
		if _, ok := modifierKeys[ev.Code]; ok {
			k.held[ev.Code] = true
		}
	case 2:
		action = KeyRepeat
	default:
		return nil, false
	}

	return &KeyboardEvent{
		Time:      time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
		Action:    action,
		ScanCode:  ev.Code,
		Modifiers: k.Modifiers(),
	}, true
}

// isLetter reports whether code is a letter key. Evdev numbers letters by
// keyboard row, not alphabetically.
func isLetter(code int) bool {
	switch {
	case code >= evdev.KEY_Q && code <= evdev.KEY_P:
		return true
	case code >= evdev.KEY_A && code <= evdev.KEY_L:
		return true
	case code >= evdev.KEY_Z && code <= evdev.KEY_M:
		return true
	}
	return false
}

// isKeyboard reports whether device exposes letter keys
func isKeyboard(device *evdev.InputDevice) bool {
	for capType, codes := range device.Capabilities {
		if capType.Type != evdev.EV_KEY {
			continue
		}
		for _, c := range codes {
			if isLetter(c.Code) {
				return true
			}
		}
	}
	return false
}

// EvdevSource reads keyboard devices and delivers their key events, in
// arrival order, to a single handler goroutine.
type EvdevSource struct {
	glob string
}

// NewEvdevSource creates a source over the devices matching glob
func NewEvdevSource(glob string) *EvdevSource {
	if glob == "" {
		glob = DefaultDeviceGlob
	}
	return &EvdevSource{glob: glob}
}

// Run opens the keyboards and calls handle for each key event until ctx is
// cancelled. Devices failing later are dropped from the set.
func (s *EvdevSource) Run(ctx context.Context, handle func(Event)) error {
	log := logger.With("evdev")

	devices, err := evdev.ListInputDevices(s.glob)
	if err != nil {
		return fmt.Errorf("failed to list input devices: %w", err)
	}

	var keyboards []*evdev.InputDevice
	for _, device := range devices {
		if isKeyboard(device) {
			keyboards = append(keyboards, device)
			log.Info("Using keyboard", "name", device.Name, "path", device.Fn)
			continue
		}
		if err := device.File.Close(); err != nil {
			log.Debug("Failed to close device", "path", device.Fn, "error", err)
		}
	}
	if len(keyboards) == 0 {
		return ErrNoKeyboards
	}

	raw := make(chan evdev.InputEvent, 256)
	var wg sync.WaitGroup
	for _, device := range keyboards {
		wg.Add(1)
		go func(device *evdev.InputDevice) {
			defer wg.Done()
			for {
				events, err := device.Read()
				if err != nil {
					if ctx.Err() == nil {
						log.Warn("Dropping keyboard", "path", device.Fn, "error", err)
					}
					return
				}
				for _, ev := range events {
					select {
					case raw <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}(device)
	}

	// Closing the files unblocks the pending reads
	stop := context.AfterFunc(ctx, func() {
		for _, device := range keyboards {
			_ = device.File.Close()
		}
	})
	defer stop()

	readersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(readersDone)
	}()

	tracker := NewKeyTracker()
	for {
		select {
		case <-ctx.Done():
			<-readersDone
			return nil
		case <-readersDone:
			return ErrNoKeyboards
		case ev := <-raw:
			if key, ok := tracker.Translate(ev); ok {
				handle(key)
			}
		}
	}
}
