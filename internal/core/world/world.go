// Package world implements the ECS façade described in SPEC_FULL.md §4.7,
// composing the handle pool, hierarchy tree, component store, observer
// list, command buffer, system scheduler, and event queue into the single
// entry point scripts and the driver loop call through. Grounded on the
// teacher's internal/core/ecs/world.go, which plays the same composition-
// root role for its own entity/component/system trio.
package world

import (
	"encoding/binary"
	"time"

	"github.com/l1jgo/enginecore/internal/core/cmdbuf"
	"github.com/l1jgo/enginecore/internal/core/componentstore"
	"github.com/l1jgo/enginecore/internal/core/coreerr"
	"github.com/l1jgo/enginecore/internal/core/eventkind"
	"github.com/l1jgo/enginecore/internal/core/eventqueue"
	"github.com/l1jgo/enginecore/internal/core/handle"
	"github.com/l1jgo/enginecore/internal/core/hierarchy"
	"github.com/l1jgo/enginecore/internal/core/observer"
	"github.com/l1jgo/enginecore/internal/core/system"
)

// Config bounds every fixed-capacity structure the World owns.
type Config struct {
	MaxEntities      uint32
	MaxComponentTypes uint32
	MaxObservers     uint32
	CommandCap       int
	CommandStageCap  int
	EventQueueCap    uint32
}

// World is the composition root: entity identity, hierarchy, components,
// observers, deferred commands, systems, and the event queue driving them.
type World struct {
	handles  *handle.Pool
	tree     *hierarchy.Tree
	store    *componentstore.Store
	obs      *observer.List[*World]
	cmds     *cmdbuf.Buffer
	sched    *system.Scheduler
	events   *eventqueue.Queue
	entityCap uint32
}

func New(cfg Config) *World {
	return &World{
		handles:   handle.NewPool(cfg.MaxEntities),
		tree:      hierarchy.New(),
		store:     componentstore.New(nextPow2(cfg.MaxComponentTypes)),
		obs:       observer.New[*World](cfg.MaxObservers),
		cmds:      cmdbuf.New(cfg.CommandCap, cfg.CommandStageCap),
		sched:     system.NewScheduler(),
		events:    eventqueue.New(nextPow2(cfg.EventQueueCap)),
		entityCap: cfg.MaxEntities,
	}
}

func nextPow2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Events returns the World's event queue, for the platform input
// translator and driver loop to push/drain against.
func (w *World) Events() *eventqueue.Queue { return w.events }

// MaxEntities returns the entity capacity the World was configured with,
// so callers outside the package (the script boundary's own component
// stores) can size their own fixed-capacity structures to match entity
// indices rather than picking an arbitrary bound of their own.
func (w *World) MaxEntities() uint32 { return w.entityCap }

// Create allocates a new root entity.
func (w *World) Create() (handle.Handle, error) {
	h, err := w.handles.Create()
	if err != nil {
		return handle.Zero, err
	}
	w.tree.Grow(w.handles.Len())
	w.tree.SetRoot(h.Index())
	return h, nil
}

// IsValid reports whether h refers to a currently alive entity.
func (w *World) IsValid(h handle.Handle) bool {
	return w.handles.IsValid(h)
}

// Destroy invalidates h immediately, per the decided semantics in
// SPEC_FULL.md §9: a direct World.Destroy does NOT cascade into children
// or components — only a Destroy staged through the CommandBuffer does,
// via flushDestroy's explicit RemoveAll + child re-rooting. Callers that
// want cascading destruction go through PushDestroy + FlushCommands.
func (w *World) Destroy(h handle.Handle) error {
	if !w.handles.IsValid(h) {
		return coreerr.ErrInvalidHandle
	}
	return w.handles.Destroy(h)
}

// SetParent reattaches child under parent. Passing handle.Zero as parent
// makes child a root.
func (w *World) SetParent(child, parent handle.Handle) error {
	if !w.handles.IsValid(child) {
		return coreerr.ErrInvalidHandle
	}
	if parent.IsZero() {
		w.tree.SetRoot(child.Index())
		return nil
	}
	if !w.handles.IsValid(parent) {
		return coreerr.ErrInvalidHandle
	}
	w.tree.Attach(child.Index(), parent.Index())
	return nil
}

// Parent returns h's parent handle, or handle.Zero if h is a root.
func (w *World) Parent(h handle.Handle) handle.Handle {
	p := w.tree.Parent(h.Index())
	if p == hierarchy.Sentinel {
		return handle.Zero
	}
	return w.handles.HandleFromIndex(p)
}

// HandleFromIndex reconstructs the current (full 32-bit generation) handle
// for a live entity slot index, or handle.Zero if idx was never allocated.
// Used by the script boundary to rebuild a full handle from its lossy
// 24-bit-index/8-bit-generation packed form (SPEC_FULL.md §6/§9) — bounds
// checked since the packed index comes from untrusted script input.
func (w *World) HandleFromIndex(idx uint32) handle.Handle {
	if idx >= w.handles.Len() {
		return handle.Zero
	}
	return w.handles.HandleFromIndex(idx)
}

// IterChildren visits every child of h.
func (w *World) IterChildren(h handle.Handle, visit func(child handle.Handle)) {
	w.tree.IterChildren(h.Index(), func(idx uint32) {
		visit(w.handles.HandleFromIndex(idx))
	})
}

// Add attaches a component of type T to h immediately, firing OnAdd
// observers and a component_add event on success.
func Add[T any](w *World, h handle.Handle, v T) error {
	if !w.handles.IsValid(h) {
		return coreerr.ErrInvalidHandle
	}
	set, err := componentstore.Ensure[T](w.store, w.entityCap)
	if err != nil {
		return err
	}
	if err := set.Add(h.Index(), v); err != nil {
		return err
	}
	typeID := componentstore.TypeID[T]()
	w.obs.Notify(typeID, observer.OnAdd, w, h)
	w.PushEvent(eventkind.ComponentAdd, lifecycleEventPayload(h, typeID))
	return nil
}

// Set overwrites h's existing component of type T, firing OnSet observers
// and a component_set event.
func Set[T any](w *World, h handle.Handle, v T) error {
	if !w.handles.IsValid(h) {
		return coreerr.ErrInvalidHandle
	}
	set, err := componentstore.Ensure[T](w.store, w.entityCap)
	if err != nil {
		return err
	}
	if err := set.Set(h.Index(), v); err != nil {
		return err
	}
	typeID := componentstore.TypeID[T]()
	w.obs.Notify(typeID, observer.OnSet, w, h)
	w.PushEvent(eventkind.ComponentSet, lifecycleEventPayload(h, typeID))
	return nil
}

// Get returns a pointer to h's component of type T.
func Get[T any](w *World, h handle.Handle) (*T, error) {
	if !w.handles.IsValid(h) {
		return nil, coreerr.ErrInvalidHandle
	}
	set, err := componentstore.Ensure[T](w.store, w.entityCap)
	if err != nil {
		return nil, err
	}
	return set.Get(h.Index())
}

// Has reports whether h currently carries a component of type T.
func Has[T any](w *World, h handle.Handle) bool {
	if !w.handles.IsValid(h) {
		return false
	}
	return w.store.Has(componentstore.TypeID[T](), h.Index())
}

// Remove detaches h's component of type T immediately, firing OnRemove
// observers and a component_remove event. A missing component is a silent
// no-op but still notifies, matching the teacher's Registry.Removable
// bulk-cleanup idiom of never special-casing an absent entry.
func Remove[T any](w *World, h handle.Handle) error {
	if !w.handles.IsValid(h) {
		return coreerr.ErrInvalidHandle
	}
	id := componentstore.TypeID[T]()
	w.store.Remove(id, h.Index())
	w.obs.Notify(id, observer.OnRemove, w, h)
	w.PushEvent(eventkind.ComponentRemove, lifecycleEventPayload(h, id))
	return nil
}

// RegisterObserver wires fn to fire on kind lifecycle events for component
// type T.
func RegisterObserver[T any](w *World, kind observer.Kind, fn observer.Func[*World]) error {
	return w.obs.Register(componentstore.TypeID[T](), kind, fn)
}

// lifecycleEventPayload packs the component_add/component_set/
// component_remove event body described in SPEC_FULL.md §4.7:
// (idx, gen, lo32(typeID), hi32(typeID)), 16 bytes, little-endian.
func lifecycleEventPayload(h handle.Handle, typeID uint64) []byte {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Index())
	binary.LittleEndian.PutUint32(buf[4:8], h.Generation())
	binary.LittleEndian.PutUint32(buf[8:12], uint32(typeID))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(typeID>>32))
	return buf[:]
}

// PushAddBytes stages a deferred Add command for CommandBuffer.
func (w *World) PushAddBytes(typeID uint64, e handle.Handle, payload []byte) error {
	return w.cmds.Push(cmdbuf.Add, typeID, e.Index(), payload)
}

// PushSetBytes stages a deferred Set command.
func (w *World) PushSetBytes(typeID uint64, e handle.Handle, payload []byte) error {
	return w.cmds.Push(cmdbuf.Set, typeID, e.Index(), payload)
}

// PushRemove stages a deferred Remove command.
func (w *World) PushRemove(typeID uint64, e handle.Handle) error {
	return w.cmds.Push(cmdbuf.Remove, typeID, e.Index(), nil)
}

// PushDestroy stages a deferred, cascading Destroy command: at flush time
// the entity's whole component set is removed via ComponentStore.RemoveAll,
// its children are re-rooted, and the handle is destroyed. This is the
// engine's only cascading destroy path; World.Destroy called directly is
// non-cascading (SPEC_FULL.md §9 Open Question decision).
func (w *World) PushDestroy(e handle.Handle) error {
	return w.cmds.Push(cmdbuf.Destroy, 0, e.Index(), nil)
}

// FlushCommands applies every staged command in push order, then clears the
// buffer. Property 9 (SPEC_FULL.md §8): commands apply in push order within
// one flush.
func (w *World) FlushCommands() {
	n := w.cmds.Len()
	for i := 0; i < n; i++ {
		cmd, payload := w.cmds.At(i)
		w.applyCommand(cmd, payload)
	}
	w.cmds.Clear()
}

func (w *World) applyCommand(cmd cmdbuf.Command, payload []byte) {
	switch cmd.Kind {
	case cmdbuf.Add:
		if err := w.store.AddBytes(cmd.TypeID, cmd.EntityIdx, payload); err == nil {
			h := w.handles.HandleFromIndex(cmd.EntityIdx)
			w.obs.Notify(cmd.TypeID, observer.OnAdd, w, h)
			w.PushEvent(eventkind.ComponentAdd, lifecycleEventPayload(h, cmd.TypeID))
		}
	case cmdbuf.Set:
		if err := w.store.SetBytes(cmd.TypeID, cmd.EntityIdx, payload); err == nil {
			h := w.handles.HandleFromIndex(cmd.EntityIdx)
			w.obs.Notify(cmd.TypeID, observer.OnSet, w, h)
			w.PushEvent(eventkind.ComponentSet, lifecycleEventPayload(h, cmd.TypeID))
		}
	case cmdbuf.Remove:
		w.store.Remove(cmd.TypeID, cmd.EntityIdx)
		h := w.handles.HandleFromIndex(cmd.EntityIdx)
		w.obs.Notify(cmd.TypeID, observer.OnRemove, w, h)
		w.PushEvent(eventkind.ComponentRemove, lifecycleEventPayload(h, cmd.TypeID))
	case cmdbuf.Destroy:
		w.flushDestroy(cmd.EntityIdx)
	}
}

// flushDestroy implements the cascading destroy: children are re-rooted
// (not recursively destroyed — the spec's cascade is component cleanup,
// not entity annihilation of descendants), the entity's components are
// dropped, and its handle is invalidated.
func (w *World) flushDestroy(idx uint32) {
	var children []uint32
	w.tree.IterChildren(idx, func(child uint32) { children = append(children, child) })
	for _, c := range children {
		w.tree.SetRoot(c)
	}
	w.tree.SetRoot(idx)
	w.store.RemoveAll(idx)
	_ = w.handles.Destroy(w.handles.HandleFromIndex(idx))
}

// RegisterSystem registers sys to run every RunFrame call, in ascending
// order.
func (w *World) RegisterSystem(sys system.System, order byte) {
	w.sched.Register(sys, order)
}

// RunFrame runs one tick: every registered system in order, then flushes
// whatever commands they staged.
func (w *World) RunFrame(dt time.Duration) {
	w.sched.Run(dt)
	w.FlushCommands()
}

// PushEvent injects a canonical event, e.g. a component-lifecycle
// notification a caller wants observable through the same queue the
// platform layer feeds (SPEC_FULL.md §6). id should generally come from
// eventkind for built-in kinds, or eventkind.UserStart+n for host-defined
// ones.
func (w *World) PushEvent(id eventkind.Kind, payload []byte) {
	var ev eventqueue.Event
	ev.ID = uint16(id)
	ev.Size = uint8(len(payload))
	copy(ev.Payload[:], payload)
	w.events.Push(ev)
}
