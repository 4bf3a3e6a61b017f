// Package eventkind holds the canonical event-kind enumeration shared by
// the platform input translator and the ECS world, so both can push
// eventqueue.Event records with a common numbering (SPEC_FULL.md §6).
package eventkind

type Kind uint16

const (
	KeyDown Kind = iota
	KeyUp
	ButtonDown
	ButtonUp
	MouseMove
	ComponentAdd
	ComponentSet
	ComponentRemove
	EntityModified
	Quit
)

// UserStart is the first id available for host-defined event kinds.
const UserStart Kind = 0x100
