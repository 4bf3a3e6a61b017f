package platform

import (
	"encoding/binary"

	"github.com/l1jgo/enginecore/internal/core/eventkind"
	"github.com/l1jgo/enginecore/internal/core/eventqueue"
)

// Backend identifies which translation table a RawEvent's Code should be
// run through.
type Backend uint8

const (
	BackendWin32 Backend = iota
	BackendX11
	BackendEvdev
)

// RawKind identifies what kind of platform event a RawEvent carries, prior
// to translation.
type RawKind uint8

const (
	RawKeyPress RawKind = iota
	RawKeyRelease
	RawButtonPress
	RawButtonRelease
	RawMouseMove
	RawQuit
)

// RawEvent is what a window backend hands the translator: an untranslated,
// backend-specific code plus whatever coordinate/mask fields apply.
type RawEvent struct {
	Kind    RawKind
	Backend Backend
	Code    uint32 // vk / keysym / evdev code, or button code for button events
	ModMask uint32
	X, Y    int16
}

// Context tracks current key/button/mouse state and emits canonical events
// onto an eventqueue.Queue as raw platform events are handled.
type Context struct {
	keys    [keyCount]bool
	buttons [buttonCount]bool
	lastX   int16
	lastY   int16
}

func NewContext() *Context {
	return &Context{}
}

func (c *Context) KeyDown(k Key) bool { return c.keys[k] }
func (c *Context) ButtonDown(b Button) bool {
	return c.buttons[b]
}
func (c *Context) LastMouse() (x, y int16) { return c.lastX, c.lastY }

func (c *Context) translateKey(ev RawEvent) Key {
	switch ev.Backend {
	case BackendWin32:
		return VKToKey(uint16(ev.Code))
	case BackendEvdev:
		return EvdevToKey(uint16(ev.Code))
	default:
		return KeysymToKey(ev.Code)
	}
}

// HandleEvent updates internal state and pushes the corresponding canonical
// eventqueue.Event onto q.
func (c *Context) HandleEvent(ev RawEvent, q *eventqueue.Queue) {
	switch ev.Kind {
	case RawKeyPress, RawKeyRelease:
		key := c.translateKey(ev)
		mods := ModsFromMask(ev.ModMask)
		down := ev.Kind == RawKeyPress
		c.keys[key] = down

		kind := eventkind.KeyUp
		state := uint8(0)
		if down {
			kind = eventkind.KeyDown
			state = 1
		}
		q.Push(keyEvent(kind, key, mods, state))

	case RawButtonPress, RawButtonRelease:
		btn := ButtonCodeToButton(uint8(ev.Code))
		mods := ModsFromMask(ev.ModMask)
		down := ev.Kind == RawButtonPress
		c.buttons[btn] = down
		c.lastX, c.lastY = ev.X, ev.Y

		kind := eventkind.ButtonUp
		state := uint8(0)
		if down {
			kind = eventkind.ButtonDown
			state = 1
		}
		q.Push(buttonEvent(kind, btn, mods, state, ev.X, ev.Y))

	case RawMouseMove:
		c.lastX, c.lastY = ev.X, ev.Y
		q.Push(moveEvent(ev.X, ev.Y))

	case RawQuit:
		q.Push(eventqueue.Event{ID: uint16(eventkind.Quit)})
	}
}

// KeyPayload is the 4-byte key event payload: key, mods, state.
type KeyPayload struct {
	Key   uint16
	Mods  uint8
	State uint8
}

// ButtonPayload names the button event payload fields: button, mods, state,
// x, y. buttonEvent packs them with no padding (x at byte 3, y at byte 5),
// so this struct's in-memory layout is not the payload's byte layout.
type ButtonPayload struct {
	Button uint8
	Mods   uint8
	State  uint8
	_      uint8
	X, Y   int16
}

// MovePayload is the mouse-move event payload.
type MovePayload struct {
	X, Y int16
}

func keyEvent(kind eventkind.Kind, key Key, mods Mods, state uint8) eventqueue.Event {
	var ev eventqueue.Event
	ev.ID = uint16(kind)
	ev.Size = 4
	binary.LittleEndian.PutUint16(ev.Payload[0:2], uint16(key))
	ev.Payload[2] = byte(mods)
	ev.Payload[3] = state
	return ev
}

func buttonEvent(kind eventkind.Kind, btn Button, mods Mods, state uint8, x, y int16) eventqueue.Event {
	var ev eventqueue.Event
	ev.ID = uint16(kind)
	ev.Size = 7
	ev.Payload[0] = byte(btn)
	ev.Payload[1] = byte(mods)
	ev.Payload[2] = state
	binary.LittleEndian.PutUint16(ev.Payload[3:5], uint16(x))
	binary.LittleEndian.PutUint16(ev.Payload[5:7], uint16(y))
	return ev
}

func moveEvent(x, y int16) eventqueue.Event {
	var ev eventqueue.Event
	ev.ID = uint16(eventkind.MouseMove)
	ev.Size = 4
	binary.LittleEndian.PutUint16(ev.Payload[0:2], uint16(x))
	binary.LittleEndian.PutUint16(ev.Payload[2:4], uint16(y))
	return ev
}

// DecodeKeyPayload reads back a KeyPayload from an event pushed by
// keyEvent, used by listeners and tests.
func DecodeKeyPayload(ev eventqueue.Event) KeyPayload {
	return KeyPayload{
		Key:   binary.LittleEndian.Uint16(ev.Payload[0:2]),
		Mods:  ev.Payload[2],
		State: ev.Payload[3],
	}
}
