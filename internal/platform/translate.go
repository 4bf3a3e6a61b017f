package platform

// VKToKey translates a Win32 virtual-key code to a canonical Key.
func VKToKey(vk uint16) Key {
	switch {
	case vk >= 0x41 && vk <= 0x5A: // 'A'..'Z'
		return KeyA + Key(vk-0x41)
	case vk >= 0x30 && vk <= 0x39: // '0'..'9'
		return Key0 + Key(vk-0x30)
	}
	switch vk {
	case 0x20:
		return KeySpace
	case 0x1B:
		return KeyEscape
	case 0x0D:
		return KeyEnter
	case 0x09:
		return KeyTab
	case 0x08:
		return KeyBackspace
	case 0x26:
		return KeyUp
	case 0x28:
		return KeyDown
	case 0x25:
		return KeyLeft
	case 0x27:
		return KeyRight
	default:
		return KeyUnknown
	}
}

// KeysymToKey translates an X11 KeySym to a canonical Key.
func KeysymToKey(sym uint32) Key {
	switch {
	case sym >= 'a' && sym <= 'z':
		return KeyA + Key(sym-'a')
	case sym >= 'A' && sym <= 'Z':
		return KeyA + Key(sym-'A')
	case sym >= '0' && sym <= '9':
		return Key0 + Key(sym-'0')
	}
	switch sym {
	case 0x20:
		return KeySpace
	case 0xFF1B:
		return KeyEscape
	case 0xFF0D:
		return KeyEnter
	case 0xFF51:
		return KeyLeft
	case 0xFF52:
		return KeyUp
	case 0xFF53:
		return KeyRight
	case 0xFF54:
		return KeyDown
	default:
		return KeyUnknown
	}
}

// EvdevToKey translates a Linux evdev key code to a canonical Key.
func EvdevToKey(code uint16) Key {
	switch code {
	case 30:
		return KeyA
	case 48:
		return KeyB
	case 46:
		return KeyC
	case 32:
		return KeyD
	case 18:
		return KeyE
	case 33:
		return KeyF
	case 34:
		return KeyG
	case 35:
		return KeyH
	case 23:
		return KeyI
	case 36:
		return KeyJ
	case 37:
		return KeyK
	case 38:
		return KeyL
	case 50:
		return KeyM
	case 49:
		return KeyN
	case 24:
		return KeyO
	case 25:
		return KeyP
	case 16:
		return KeyQ
	case 19:
		return KeyR
	case 31:
		return KeyS
	case 20:
		return KeyT
	case 22:
		return KeyU
	case 47:
		return KeyV
	case 17:
		return KeyW
	case 45:
		return KeyX
	case 21:
		return KeyY
	case 44:
		return KeyZ
	case 11:
		return Key0
	case 2:
		return Key1
	case 3:
		return Key2
	case 4:
		return Key3
	case 5:
		return Key4
	case 6:
		return Key5
	case 7:
		return Key6
	case 8:
		return Key7
	case 9:
		return Key8
	case 10:
		return Key9
	case 57:
		return KeySpace
	case 1:
		return KeyEscape
	case 28:
		return KeyEnter
	case 15:
		return KeyTab
	case 14:
		return KeyBackspace
	case 103:
		return KeyUp
	case 108:
		return KeyDown
	case 105:
		return KeyLeft
	case 106:
		return KeyRight
	default:
		return KeyUnknown
	}
}

// ModsFromMask translates an X11 modifier mask into the canonical Mods
// bitflags (SPEC_FULL.md §4.9): bit 0 -> shift, bit 2 -> ctrl, bit 3 -> alt,
// bit 6 -> super.
func ModsFromMask(mask uint32) Mods {
	var m Mods
	if mask&(1<<0) != 0 {
		m |= ModShift
	}
	if mask&(1<<2) != 0 {
		m |= ModCtrl
	}
	if mask&(1<<3) != 0 {
		m |= ModAlt
	}
	if mask&(1<<6) != 0 {
		m |= ModSuper
	}
	return m
}

// ButtonCodeToButton translates an X11 pointer button code: 1 -> left,
// 3 -> right, anything else -> middle.
func ButtonCodeToButton(code uint8) Button {
	switch code {
	case 1:
		return ButtonLeft
	case 3:
		return ButtonRight
	default:
		return ButtonMiddle
	}
}
