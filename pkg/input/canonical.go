// pkg/input/canonical.go
// Copyright(c) 2024-2026 apollo64 contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package input

import (
	"sort"
	"strings"
)

// canonicalizeDevice resolves loose device aliases to the closed
// Device set; unrecognized values default to keyboard.
func canonicalizeDevice(raw string) Device {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(DeviceGamepad), "controller", "pad":
		return DeviceGamepad
	case string(DeviceN64):
		return DeviceN64
	case string(DeviceKeyboard), "":
		return DeviceKeyboard
	default:
		return DeviceKeyboard
	}
}

var keyboardCharAliases = map[string]string{
	" ":  "SPACE",
	"+":  "PLUS",
	"-":  "MINUS",
	".":  "PERIOD",
	",":  "COMMA",
	"/":  "SLASH",
	"\\": "BACKSLASH",
	"`":  "BACKQUOTE",
	";":  "SEMICOLON",
	":":  "COLON",
}

var numpadAliases = map[string]string{
	"ADD":      "PLUS",
	"SUBTRACT": "MINUS",
	"ENTER":    "ENTER",
	"DECIMAL":  "DECIMAL",
}

var keyNameAliases = map[string]string{
	"ARROWUP":    "UP",
	"ARROWDOWN":  "DOWN",
	"ARROWLEFT":  "LEFT",
	"ARROWRIGHT": "RIGHT",
	"ESC":        "ESCAPE",
	"SPACEBAR":   "SPACE",
	"RETURN":     "ENTER",
	"DEL":        "DELETE",
}

// canonicalKey resolves a single keyboard key/code pair (without
// modifiers) to its canonical token (spec §4.1).
func canonicalKey(key, code string, shift bool) string {
	if code != "" {
		upperCode := strings.ToUpper(code)
		switch {
		case strings.HasPrefix(upperCode, "KEY"):
			return strings.ToUpper(strings.TrimPrefix(upperCode, "KEY"))
		case strings.HasPrefix(upperCode, "DIGIT"):
			return strings.ToUpper(strings.TrimPrefix(upperCode, "DIGIT"))
		case strings.HasPrefix(upperCode, "NUMPAD"):
			suffix := strings.TrimPrefix(upperCode, "NUMPAD")
			if alias, ok := numpadAliases[suffix]; ok {
				return alias
			}
			if len(suffix) == 1 && suffix[0] >= '0' && suffix[0] <= '9' {
				return suffix
			}
			return "NUMPAD" + suffix
		}
	}

	if key == "" {
		return ""
	}
	if len(key) == 1 {
		if alias, ok := keyboardCharAliases[key]; ok {
			return alias
		}
		if key == "=" {
			if shift {
				return "PLUS"
			}
			return "EQUAL"
		}
		return strings.ToUpper(key)
	}

	upperKey := strings.ToUpper(key)
	if alias, ok := keyNameAliases[upperKey]; ok {
		return alias
	}
	return upperKey
}

// canonicalizeKeyboardIdentifier builds the full modifier+key
// identifier for a keyboard event. Modifier order is fixed (CTRL,
// META, ALT, SHIFT) regardless of input order, so the identifier is
// invariant under modifier permutation (spec §8 round-trip property).
func canonicalizeKeyboardIdentifier(ev RawEvent) string {
	key := canonicalKey(ev.Key, ev.Code, ev.Shift)
	if key == "" {
		return ""
	}

	var tokens []string
	if ev.Ctrl {
		tokens = append(tokens, "CTRL")
	}
	if ev.Meta {
		tokens = append(tokens, "META")
	}
	if ev.Alt {
		tokens = append(tokens, "ALT")
	}
	if ev.Shift {
		tokens = append(tokens, "SHIFT")
	}
	tokens = append(tokens, key)
	return strings.Join(tokens, "+")
}

var gamepadButtonAliases = map[string]string{
	"DPADUP":    "UP",
	"DPADDOWN":  "DOWN",
	"DPADLEFT":  "LEFT",
	"DPADRIGHT": "RIGHT",
	"START":     "MENU",
	"LBUMPER":   "LB",
	"RBUMPER":   "RB",
	"LB":        "LB",
	"RB":        "RB",
}

var n64ButtonAliases = map[string]string{
	"CLEFT":  "C-LEFT",
	"CRIGHT": "C-RIGHT",
	"CUP":    "C-UP",
	"CDOWN":  "C-DOWN",
}

// canonicalizeButtons collects the event's buttons (from Buttons, or
// the singleton Button), canonicalizes each via the device's alias
// table, dedups, and sorts lexicographically before joining with '+'
// to form the binding identifier (spec §4.1).
func canonicalizeButtons(device Device, ev RawEvent) string {
	raw := ev.Buttons
	if len(raw) == 0 && ev.Button != "" {
		raw = []string{ev.Button}
	}

	aliases := gamepadButtonAliases
	if device == DeviceN64 {
		aliases = n64ButtonAliases
	}

	seen := make(map[string]bool, len(raw))
	var tokens []string
	for _, b := range raw {
		upper := strings.ToUpper(strings.TrimSpace(b))
		if upper == "" {
			continue
		}
		if alias, ok := aliases[upper]; ok {
			upper = alias
		}
		if !seen[upper] {
			seen[upper] = true
			tokens = append(tokens, upper)
		}
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "+")
}

// Identifier returns the canonical binding identifier for ev given
// its already-resolved device.
func Identifier(device Device, ev RawEvent) string {
	switch device {
	case DeviceKeyboard:
		return canonicalizeKeyboardIdentifier(ev)
	default:
		return canonicalizeButtons(device, ev)
	}
}
