package platform

import (
	"testing"

	"golang.org/x/crypto/blowfish"

	"github.com/l1jgo/enginecore/internal/core/eventqueue"
)

// blowfishStream returns n deterministic pseudo-random bytes: the teacher
// ciphers session packets with blowfish (internal/net/cipher.go); here the
// same cipher is repurposed as a seeded byte-stream generator by encrypting
// successive zero blocks, giving reproducible fixture data for the
// InputTranslator fuzz tests below without pulling in math/rand/v2 for
// something this narrow.
func blowfishStream(seed []byte, n int) []byte {
	block, err := blowfish.NewCipher(seed)
	if err != nil {
		panic(err)
	}
	out := make([]byte, n)
	buf := make([]byte, blowfish.BlockSize)
	for i := 0; i < n; i += blowfish.BlockSize {
		block.Encrypt(buf, buf)
		copy(out[i:], buf)
	}
	return out
}

// TestFuzzHandleEventNeverPanics feeds pseudo-random raw platform events
// through every backend and asserts HandleEvent never panics and every
// push lands a well-formed event (Size within the 24-byte inline payload).
func TestFuzzHandleEventNeverPanics(t *testing.T) {
	stream := blowfishStream([]byte("enginecore-platform-fuzz-seed!!"), 4096)
	ctx := NewContext()
	q := eventqueue.New(256)

	backends := []Backend{BackendWin32, BackendX11, BackendEvdev}
	kinds := []RawKind{RawKeyPress, RawKeyRelease, RawButtonPress, RawButtonRelease, RawMouseMove, RawQuit}

	for i := 0; i+10 <= len(stream); i += 10 {
		ev := RawEvent{
			Kind:    kinds[stream[i]%uint8(len(kinds))],
			Backend: backends[stream[i+1]%uint8(len(backends))],
			Code:    uint32(stream[i+2]) | uint32(stream[i+3])<<8,
			ModMask: uint32(stream[i+4]),
			X:       int16(uint16(stream[i+5]) | uint16(stream[i+6])<<8),
			Y:       int16(uint16(stream[i+7]) | uint16(stream[i+8])<<8),
		}
		ctx.HandleEvent(ev, q)
	}

	var dst [256]eventqueue.Event
	n := q.DrainTo(dst[:])
	for i := 0; i < n; i++ {
		if dst[i].Size > 24 {
			t.Fatalf("event %d: payload size %d exceeds inline capacity", i, dst[i].Size)
		}
	}
}
