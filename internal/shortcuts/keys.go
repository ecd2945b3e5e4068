package shortcuts

import (
	"fmt"
	"strings"

	evdev "github.com/gvalkov/golang-evdev"
)

var keyNames = map[string]uint16{
	"a": evdev.KEY_A, "b": evdev.KEY_B, "c": evdev.KEY_C, "d": evdev.KEY_D,
	"e": evdev.KEY_E, "f": evdev.KEY_F, "g": evdev.KEY_G, "h": evdev.KEY_H,
	"i": evdev.KEY_I, "j": evdev.KEY_J, "k": evdev.KEY_K, "l": evdev.KEY_L,
	"m": evdev.KEY_M, "n": evdev.KEY_N, "o": evdev.KEY_O, "p": evdev.KEY_P,
	"q": evdev.KEY_Q, "r": evdev.KEY_R, "s": evdev.KEY_S, "t": evdev.KEY_T,
	"u": evdev.KEY_U, "v": evdev.KEY_V, "w": evdev.KEY_W, "x": evdev.KEY_X,
	"y": evdev.KEY_Y, "z": evdev.KEY_Z,

	"0": evdev.KEY_0, "1": evdev.KEY_1, "2": evdev.KEY_2, "3": evdev.KEY_3,
	"4": evdev.KEY_4, "5": evdev.KEY_5, "6": evdev.KEY_6, "7": evdev.KEY_7,
	"8": evdev.KEY_8, "9": evdev.KEY_9,

	"f1": evdev.KEY_F1, "f2": evdev.KEY_F2, "f3": evdev.KEY_F3, "f4": evdev.KEY_F4,
	"f5": evdev.KEY_F5, "f6": evdev.KEY_F6, "f7": evdev.KEY_F7, "f8": evdev.KEY_F8,
	"f9": evdev.KEY_F9, "f10": evdev.KEY_F10, "f11": evdev.KEY_F11, "f12": evdev.KEY_F12,

	"backspace": evdev.KEY_BACKSPACE,
	"delete":    evdev.KEY_DELETE,
	"enter":     evdev.KEY_ENTER,
	"escape":    evdev.KEY_ESC,
	"esc":       evdev.KEY_ESC,
	"space":     evdev.KEY_SPACE,
	"tab":       evdev.KEY_TAB,
	"home":      evdev.KEY_HOME,
	"end":       evdev.KEY_END,
	"insert":    evdev.KEY_INSERT,
}

// ParseKey maps a key name such as "a", "f4" or "backspace" to its Linux
// input event code. Names are case-insensitive and may carry a KEY_ prefix.
func ParseKey(name string) (uint16, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "key_")
	if code, ok := keyNames[n]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// KeyName returns the canonical name of code, or its number when unnamed
func KeyName(code uint16) string {
	best := ""
	for name, c := range keyNames {
		// "esc" and "escape" share a code; prefer the longer name
		if c == code && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return fmt.Sprintf("key(%d)", code)
	}
	return best
}
