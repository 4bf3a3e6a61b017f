// Package platform implements the InputTranslator described in
// SPEC_FULL.md §4.9/§6: pure-function translation tables from
// platform-specific codes to the canonical Key/Button enumerations, plus
// the Context that folds raw platform events into canonical events on an
// eventqueue.Queue. No teacher file implements this; it is authored
// directly from the spec's table and payload descriptions, since platform
// window backends are named out of scope except for this contract.
package platform

// Key is the canonical, backend-independent key enumeration.
type Key uint16

const (
	KeyUnknown Key = iota
	KeySpace
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyLShift
	KeyRShift
	KeyLCtrl
	KeyRCtrl
	KeyLAlt
	KeyRAlt
	KeyLSuper
	KeyRSuper
	keyCount
)

// Button is the canonical pointer button enumeration.
type Button uint8

const (
	ButtonNone   Button = 0
	ButtonLeft   Button = 1
	ButtonRight  Button = 2
	ButtonMiddle Button = 3
	buttonCount  Button = 4
)

// Mods is a shift/ctrl/alt/super bitmask, matching the wire payload layout
// in SPEC_FULL.md §6.
type Mods uint8

const (
	ModShift Mods = 1 << 0
	ModCtrl  Mods = 1 << 1
	ModAlt   Mods = 1 << 2
	ModSuper Mods = 1 << 3
)

// keyNames maps the lowercase script-facing spelling of each key to its
// canonical Key value, for the "input" script namespace (SPEC_FULL.md §6).
var keyNames = map[string]Key{
	"space": KeySpace, "a": KeyA, "b": KeyB, "c": KeyC, "d": KeyD, "e": KeyE,
	"f": KeyF, "g": KeyG, "h": KeyH, "i": KeyI, "j": KeyJ, "k": KeyK, "l": KeyL,
	"m": KeyM, "n": KeyN, "o": KeyO, "p": KeyP, "q": KeyQ, "r": KeyR, "s": KeyS,
	"t": KeyT, "u": KeyU, "v": KeyV, "w": KeyW, "x": KeyX, "y": KeyY, "z": KeyZ,
	"0": Key0, "1": Key1, "2": Key2, "3": Key3, "4": Key4, "5": Key5, "6": Key6,
	"7": Key7, "8": Key8, "9": Key9, "escape": KeyEscape, "enter": KeyEnter,
	"tab": KeyTab, "backspace": KeyBackspace, "up": KeyUp, "down": KeyDown,
	"left": KeyLeft, "right": KeyRight, "lshift": KeyLShift, "rshift": KeyRShift,
	"lctrl": KeyLCtrl, "rctrl": KeyRCtrl, "lalt": KeyLAlt, "ralt": KeyRAlt,
	"lsuper": KeyLSuper, "rsuper": KeyRSuper,
}

// ButtonNames maps the lowercase script-facing spelling of each pointer
// button to its canonical Button value.
var buttonNames = map[string]Button{
	"left": ButtonLeft, "right": ButtonRight, "middle": ButtonMiddle,
}

// KeyByName returns the Key named by s, or (KeyUnknown, false) if s is not
// a recognized key name.
func KeyByName(s string) (Key, bool) {
	k, ok := keyNames[s]
	return k, ok
}

// ButtonByName returns the Button named by s, or (ButtonNone, false) if s
// is not a recognized button name.
func ButtonByName(s string) (Button, bool) {
	b, ok := buttonNames[s]
	return b, ok
}
