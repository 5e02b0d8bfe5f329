package sink

import (
	"fmt"
	"strings"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
)

// macOS virtual key codes for keys System Events cannot type by name
var macKeyCodes = map[string]int{
	"return": 36, "enter": 76, "tab": 48, "space": 49, "delete": 51, "backspace": 51,
	"escape": 53, "esc": 53, "forward_delete": 117,
	"left": 123, "right": 124, "down": 125, "up": 126,
	"home": 115, "end": 119, "page_up": 116, "page_down": 121,
	"f1": 122, "f2": 120, "f3": 99, "f4": 118, "f5": 96, "f6": 97,
	"f7": 98, "f8": 100, "f9": 101, "f10": 109, "f11": 103, "f12": 111,
}

// X11 keysym names understood by xdotool
var xKeyNames = map[string]string{
	"return": "Return", "enter": "KP_Enter", "tab": "Tab", "space": "space",
	"delete": "BackSpace", "backspace": "BackSpace", "forward_delete": "Delete",
	"escape": "Escape", "esc": "Escape",
	"left": "Left", "right": "Right", "down": "Down", "up": "Up",
	"home": "Home", "end": "End", "page_up": "Prior", "page_down": "Next",
	"f1": "F1", "f2": "F2", "f3": "F3", "f4": "F4", "f5": "F5", "f6": "F6",
	"f7": "F7", "f8": "F8", "f9": "F9", "f10": "F10", "f11": "F11", "f12": "F12",
}

var macModifiers = map[string]string{
	"cmd": "command down", "command": "command down", "super": "command down", "meta": "command down", "win": "command down",
	"ctrl": "control down", "control": "control down",
	"alt": "option down", "option": "option down",
	"shift": "shift down",
}

var xModifiers = map[string]string{
	"cmd": "super", "command": "super", "super": "super", "meta": "super", "win": "super",
	"ctrl": "ctrl", "control": "ctrl",
	"alt": "alt", "option": "alt",
	"shift": "shift",
}

func invalidKey(format string, args ...any) error {
	return fmt.Errorf("%w: %s", actions.ErrInvalidKey, fmt.Sprintf(format, args...))
}

// macKeystrokeScript builds the System Events statement for a key chord
func macKeystrokeScript(key string, modifiers []string) (string, error) {
	var stmt string
	lower := strings.ToLower(key)
	switch {
	case len([]rune(key)) == 1:
		stmt = fmt.Sprintf("keystroke %s", appleScriptString(key))
	case macKeyCodes[lower] != 0:
		stmt = fmt.Sprintf("key code %d", macKeyCodes[lower])
	default:
		return "", invalidKey("unknown key %q", key)
	}

	if len(modifiers) > 0 {
		mods := make([]string, 0, len(modifiers))
		for _, m := range modifiers {
			mod, ok := macModifiers[strings.ToLower(m)]
			if !ok {
				return "", invalidKey("modifier %q not supported on macOS", m)
			}
			mods = append(mods, mod)
		}
		stmt += " using {" + strings.Join(mods, ", ") + "}"
	}
	return `tell application "System Events" to ` + stmt, nil
}

// xdotoolChord builds the xdotool key argument, e.g. "ctrl+shift+t"
func xdotoolChord(key string, modifiers []string) (string, error) {
	parts := make([]string, 0, len(modifiers)+1)
	for _, m := range modifiers {
		mod, ok := xModifiers[strings.ToLower(m)]
		if !ok {
			return "", invalidKey("modifier %q not supported on Linux", m)
		}
		parts = append(parts, mod)
	}

	switch name, ok := xKeyNames[strings.ToLower(key)]; {
	case ok:
		parts = append(parts, name)
	case len([]rune(key)) == 1:
		parts = append(parts, key)
	default:
		return "", invalidKey("unknown key %q", key)
	}
	return strings.Join(parts, "+"), nil
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
