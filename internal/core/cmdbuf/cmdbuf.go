// Package cmdbuf implements the deferred command buffer described in
// SPEC_FULL.md §4.5: a fixed-length list of add/set/remove/destroy commands
// with payload bytes staged in a parallel byte arena. No teacher file
// implements deferred world mutation directly (the teacher applies handler
// effects immediately); the append-then-flush framing is grounded on the
// append/flush shape of internal/persist/wal.go, with persistence semantics
// dropped and replaced by the spec's component-flush semantics.
package cmdbuf

import "github.com/l1jgo/enginecore/internal/core/coreerr"

// Kind identifies what a staged Command does at flush time.
type Kind uint8

const (
	Add Kind = iota
	Set
	Remove
	Destroy
)

// Command is one staged deferred mutation. TypeID is unused for Destroy.
type Command struct {
	Kind        Kind
	TypeID      uint64
	EntityIdx   uint32
	StageOffset uint32
	PayloadLen  uint32
}

// Buffer is a single-writer-per-frame append-only list of commands plus a
// staged byte arena for their payloads. World.FlushCommands is the only
// consumer; Clear resets both cursors to zero.
type Buffer struct {
	cmds  []Command
	stage []byte

	cmdCap   int
	stageCap int
}

func New(cmdCapacity, stageCapacity int) *Buffer {
	return &Buffer{
		cmds:     make([]Command, 0, cmdCapacity),
		stage:    make([]byte, 0, stageCapacity),
		cmdCap:   cmdCapacity,
		stageCap: stageCapacity,
	}
}

// Push appends a Command built from kind, typeID and entityIdx, copying
// payload into the stage arena (if non-empty) and recording its offset and
// length on that Command. Returns ErrOutOfSpace if either the command list
// or the stage arena is full.
func (b *Buffer) Push(kind Kind, typeID uint64, entityIdx uint32, payload []byte) error {
	if len(b.cmds) == b.cmdCap {
		return coreerr.ErrOutOfSpace
	}
	if len(b.stage)+len(payload) > b.stageCap {
		return coreerr.ErrOutOfSpace
	}
	offset := uint32(len(b.stage))
	if len(payload) > 0 {
		b.stage = append(b.stage, payload...)
	}
	b.cmds = append(b.cmds, Command{
		Kind:        kind,
		TypeID:      typeID,
		EntityIdx:   entityIdx,
		StageOffset: offset,
		PayloadLen:  uint32(len(payload)),
	})
	return nil
}

// Len returns the number of staged commands.
func (b *Buffer) Len() int { return len(b.cmds) }

// At returns the i'th command and its staged payload slice, in push order.
func (b *Buffer) At(i int) (Command, []byte) {
	c := b.cmds[i]
	return c, b.stage[c.StageOffset : c.StageOffset+c.PayloadLen]
}

// Clear resets both cursors to zero without releasing backing arrays.
func (b *Buffer) Clear() {
	b.cmds = b.cmds[:0]
	b.stage = b.stage[:0]
}
