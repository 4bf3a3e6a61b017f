// Package scripting implements the Lua script boundary described in
// SPEC_FULL.md §6: a single gopher-lua VM exposing the log/event/input/ecs/
// job namespaces, key/button/event-kind enumerations, and packed-integer
// entity/job handles. Grounded on the teacher's internal/scripting/engine.go
// NewEngine/loadDir/CallByParam(Protect: true) idiom; the ~30 Lineage2-
// specific bridge methods (combat formulas, skill/potion/AI callbacks) are
// replaced by the five generic namespaces the spec names.
package scripting

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/l1jgo/enginecore/internal/core/eventkind"
	"github.com/l1jgo/enginecore/internal/core/eventqueue"
	"github.com/l1jgo/enginecore/internal/core/handle"
	"github.com/l1jgo/enginecore/internal/core/job"
	"github.com/l1jgo/enginecore/internal/core/listener"
	"github.com/l1jgo/enginecore/internal/core/sparseset"
	"github.com/l1jgo/enginecore/internal/core/world"
	"github.com/l1jgo/enginecore/internal/platform"
)

// maxScriptFields bounds how many numeric fields a script-registered
// component may have; chosen to keep scriptValue a small fixed-size POD.
const maxScriptFields = 8

// scriptValue is the fixed-layout payload every script-defined component is
// stored as, regardless of its logical field names — the scripting
// package's own component store, keyed by a string name rather than a Go
// type, since Lua has no types to hand componentstore.Ensure[T].
type scriptValue struct {
	Fields [maxScriptFields]float64
}

type componentSchema struct {
	id     uint32
	fields []string
	set    *sparseset.Set[scriptValue]
}

// Engine wraps a single gopher-lua VM plus the World/JobSystem/platform
// Context it bridges to scripts. Single-goroutine access only, same as the
// teacher's Engine — scripts, the event drain, and job tasks dispatched
// from Lua all run on the driver's goroutine.
type Engine struct {
	vm   *lua.LState
	log  *zap.Logger
	w    *world.World
	jobs *job.JobSystem
	plat *platform.Context

	components map[string]*componentSchema
	luaFns     map[uint16][]*lua.LFunction
	events     *listener.Table
}

// NewEngine creates a Lua VM, wires the log/event/input/ecs/job namespaces
// and enumerations, and loads every .lua file under scriptsDir (and its
// immediate subdirectories, in lexical order).
func NewEngine(scriptsDir string, w *world.World, jobs *job.JobSystem, plat *platform.Context, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:         vm,
		log:        log,
		w:          w,
		jobs:       jobs,
		plat:       plat,
		components: make(map[string]*componentSchema),
		luaFns:     make(map[uint16][]*lua.LFunction),
		events:     listener.New(),
	}

	e.installNamespaces()
	e.installEnumerations()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts %s: %w", scriptsDir, err)
	}
	entries, err := os.ReadDir(scriptsDir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(scriptsDir, entry.Name())
			if err := e.loadDir(sub); err != nil {
				vm.Close()
				return nil, fmt.Errorf("load scripts %s: %w", sub, err)
			}
		}
	} else if !os.IsNotExist(err) {
		vm.Close()
		return nil, fmt.Errorf("read scripts dir %s: %w", scriptsDir, err)
	}

	return e, nil
}

// Close releases the underlying Lua VM.
func (e *Engine) Close() { e.vm.Close() }

// loadDir loads every .lua file directly inside dir, in directory order. A
// missing directory is not an error — feature script subdirectories are
// optional, same as the teacher's loadDir.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := readScriptSource(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := e.vm.DoString(src); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// scriptEncodings maps a script's declared encoding name to the x/text
// codec that reads it, covering the client codepages the teacher's
// config.CharacterConfig.ClientLanguageCode once selected among.
var scriptEncodings = map[string]encoding.Encoding{
	"big5": traditionalchinese.Big5,
	"gbk":  simplifiedchinese.GBK,
}

// readScriptSource reads path and transcodes it to UTF-8 if its first line
// is a `-- encoding: NAME` declaration naming a non-UTF-8 source encoding
// (SPEC_FULL.md §2.2's script-source handling, grounded on the teacher's
// multi-codepage ClientLanguageCode). Scripts with no such declaration, or
// an unrecognized one, are returned as-is.
func readScriptSource(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(string(raw), "\n")
	first = strings.TrimSpace(first)
	name, ok := strings.CutPrefix(first, "-- encoding:")
	if !ok {
		return string(raw), nil
	}
	codec, ok := scriptEncodings[strings.TrimSpace(strings.ToLower(name))]
	if !ok {
		return string(raw), nil
	}
	decoded, err := codec.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("transcode %s: %w", path, err)
	}
	return string(decoded), nil
}

// CallHook calls a global Lua function named fnName if it exists, with no
// arguments and no return value expected — the shape the driver loop uses
// for per-frame hooks like on_tick. A missing hook is not an error.
func (e *Engine) CallHook(fnName string) error {
	fn := e.vm.GetGlobal(fnName)
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		e.log.Error("lua hook error", zap.String("fn", fnName), zap.Error(err))
		return err
	}
	return nil
}

// installEnumerations exposes the Key/Button/EventKind tables named in
// SPEC_FULL.md §6 as global Lua tables of name -> numeric id.
func (e *Engine) installEnumerations() {
	keyTbl := e.vm.NewTable()
	for _, name := range []string{
		"space", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l",
		"m", "n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
		"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"escape", "enter", "tab", "backspace", "up", "down", "left", "right",
		"lshift", "rshift", "lctrl", "rctrl", "lalt", "ralt", "lsuper", "rsuper",
	} {
		if k, ok := platform.KeyByName(name); ok {
			keyTbl.RawSetString(name, lua.LNumber(k))
		}
	}
	e.vm.SetGlobal("Key", keyTbl)

	btnTbl := e.vm.NewTable()
	for _, name := range []string{"left", "right", "middle"} {
		if b, ok := platform.ButtonByName(name); ok {
			btnTbl.RawSetString(name, lua.LNumber(b))
		}
	}
	e.vm.SetGlobal("Button", btnTbl)

	evTbl := e.vm.NewTable()
	for name, kind := range map[string]eventkind.Kind{
		"KeyDown": eventkind.KeyDown, "KeyUp": eventkind.KeyUp,
		"ButtonDown": eventkind.ButtonDown, "ButtonUp": eventkind.ButtonUp,
		"MouseMove": eventkind.MouseMove, "ComponentAdd": eventkind.ComponentAdd,
		"ComponentSet": eventkind.ComponentSet, "ComponentRemove": eventkind.ComponentRemove,
		"EntityModified": eventkind.EntityModified, "Quit": eventkind.Quit,
	} {
		evTbl.RawSetString(name, lua.LNumber(kind))
	}
	e.vm.SetGlobal("EventKind", evTbl)
}

func (e *Engine) installNamespaces() {
	logTbl := e.vm.NewTable()
	e.vm.SetFuncs(logTbl, map[string]lua.LGFunction{
		"debug": e.luaLog(e.log.Debug),
		"info":  e.luaLog(e.log.Info),
		"warn":  e.luaLog(e.log.Warn),
		"error": e.luaLog(e.log.Error),
	})
	e.vm.SetGlobal("log", logTbl)

	eventTbl := e.vm.NewTable()
	e.vm.SetFuncs(eventTbl, map[string]lua.LGFunction{
		"push":  e.luaEventPush,
		"listen": e.luaEventListen,
	})
	e.vm.SetGlobal("event", eventTbl)

	inputTbl := e.vm.NewTable()
	e.vm.SetFuncs(inputTbl, map[string]lua.LGFunction{
		"key_down":    e.luaKeyDown,
		"button_down": e.luaButtonDown,
		"mouse":       e.luaMouse,
	})
	e.vm.SetGlobal("input", inputTbl)

	ecsTbl := e.vm.NewTable()
	e.vm.SetFuncs(ecsTbl, map[string]lua.LGFunction{
		"register_component": e.luaRegisterComponent,
		"create":             e.luaCreate,
		"destroy":            e.luaDestroy,
		"is_valid":           e.luaIsValid,
		"add":                e.luaAdd,
		"set":                e.luaSet,
		"get":                e.luaGet,
		"has":                e.luaHas,
		"remove":             e.luaRemove,
		"set_parent":         e.luaSetParent,
		"parent":             e.luaParent,
	})
	e.vm.SetGlobal("ecs", ecsTbl)

	jobTbl := e.vm.NewTable()
	e.vm.SetFuncs(jobTbl, map[string]lua.LGFunction{
		"spawn": e.luaJobSpawn,
		"wait":  e.luaJobWait,
	})
	e.vm.SetGlobal("job", jobTbl)
}

// ── log ──────────────────────────────────────────────────────────────

func (e *Engine) luaLog(fn func(string, ...zap.Field)) lua.LGFunction {
	return func(L *lua.LState) int {
		fn(L.CheckString(1))
		return 0
	}
}

// ── event ────────────────────────────────────────────────────────────

// luaEventPush implements event.push(kind, {n1, n2, ...}) — up to 6
// int32-sized numeric fields packed little-endian into the 24-byte
// payload, matching the "cross-layer kinds: 4xuint32" shape in
// SPEC_FULL.md §6.
func (e *Engine) luaEventPush(L *lua.LState) int {
	kind := uint16(L.CheckNumber(1))
	tbl := L.OptTable(2, L.NewTable())

	var payload []byte
	n := tbl.Len()
	for i := 1; i <= n && i <= 6; i++ {
		v := int32(lua.LVAsNumber(tbl.RawGetInt(i)))
		var b [4]byte
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
		payload = append(payload, b[:]...)
	}
	e.w.PushEvent(eventkind.Kind(kind), payload)
	return 0
}

// luaEventListen implements event.listen(kind, fn). The first script
// listener registered for a kind also registers this Engine's own
// dispatch callback on the shared listener.Table, so Go-native listeners
// and Lua ones are delivered through the same slot table and fire in
// registration order.
func (e *Engine) luaEventListen(L *lua.LState) int {
	kind := uint16(L.CheckNumber(1))
	fn := L.CheckFunction(2)
	if len(e.luaFns[kind]) == 0 {
		e.events.Register(kind, e.dispatch)
	}
	e.luaFns[kind] = append(e.luaFns[kind], fn)
	return 0
}

// DrainAndDispatch drains the World's queue, delivering up to len(scratch)
// pending events (any beyond that are discarded), in push order, to every callback
// registered on the Engine's listener.Table — Lua listeners added via
// event.listen and any Go-native ones added with RegisterListener.
// Called once per frame by the driver loop.
func (e *Engine) DrainAndDispatch(scratch []eventqueue.Event) int {
	return e.events.DrainQueue(e.w.Events(), scratch)
}

// RegisterListener adds a Go-native callback for kind, delivered through
// the same listener.Table Lua's event.listen uses.
func (e *Engine) RegisterListener(kind uint16, fn listener.Func) {
	e.events.Register(kind, fn)
}

func (e *Engine) dispatch(ev eventqueue.Event) {
	fns := e.luaFns[ev.ID]
	if len(fns) == 0 {
		return
	}
	tbl := e.vm.NewTable()
	for i := 0; i+4 <= int(ev.Size); i += 4 {
		v := int32(uint32(ev.Payload[i]) | uint32(ev.Payload[i+1])<<8 |
			uint32(ev.Payload[i+2])<<16 | uint32(ev.Payload[i+3])<<24)
		tbl.Append(lua.LNumber(v))
	}
	for _, fn := range fns {
		if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(ev.ID), tbl); err != nil {
			e.log.Error("lua event listener error", zap.Uint16("kind", ev.ID), zap.Error(err))
		}
	}
}

// ── input ────────────────────────────────────────────────────────────

func (e *Engine) luaKeyDown(L *lua.LState) int {
	name := L.CheckString(1)
	k, ok := platform.KeyByName(name)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(e.plat.KeyDown(k)))
	return 1
}

func (e *Engine) luaButtonDown(L *lua.LState) int {
	name := L.CheckString(1)
	b, ok := platform.ButtonByName(name)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LBool(e.plat.ButtonDown(b)))
	return 1
}

func (e *Engine) luaMouse(L *lua.LState) int {
	x, y := e.plat.LastMouse()
	L.Push(lua.LNumber(x))
	L.Push(lua.LNumber(y))
	return 2
}

// ── ecs ──────────────────────────────────────────────────────────────

// componentID32 is the FNV-1a 32-bit hash of a component name, the numeric
// id a script-facing component string is cached to on first use
// (SPEC_FULL.md §6).
func componentID32(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

// luaRegisterComponent implements ecs.register_component(name,
// {"field1", "field2", ...}).
func (e *Engine) luaRegisterComponent(L *lua.LState) int {
	name := L.CheckString(1)
	fieldsTbl := L.CheckTable(2)

	if _, exists := e.components[name]; exists {
		return 0
	}
	var fields []string
	fieldsTbl.ForEach(func(_, v lua.LValue) {
		fields = append(fields, v.String())
	})
	if len(fields) > maxScriptFields {
		L.RaiseError("component %q has %d fields, max is %d", name, len(fields), maxScriptFields)
		return 0
	}
	e.components[name] = &componentSchema{
		id:     componentID32(name),
		fields: fields,
		set:    sparseset.New[scriptValue](e.w.MaxEntities()),
	}
	return 0
}

func (e *Engine) luaCreate(L *lua.LState) int {
	h, err := e.w.Create()
	if err != nil {
		L.RaiseError("ecs.create: %v", err)
		return 0
	}
	L.Push(lua.LNumber(h.ScriptPacked()))
	return 1
}

func (e *Engine) luaDestroy(L *lua.LState) int {
	h, ok := e.decodeHandle(L, 1)
	if !ok {
		return 0
	}
	if err := e.w.Destroy(h); err != nil {
		L.RaiseError("ecs.destroy: %v", err)
	}
	return 0
}

// luaIsValid answers false for a stale or never-allocated packed handle
// instead of raising, unlike the other ecs functions.
func (e *Engine) luaIsValid(L *lua.LState) int {
	packed := uint32(L.CheckNumber(1))
	full := e.w.HandleFromIndex(packed & 0x00FFFFFF)
	L.Push(lua.LBool(!full.IsZero() && full.ScriptPacked() == packed && e.w.IsValid(full)))
	return 1
}

func (e *Engine) luaAdd(L *lua.LState) int {
	e.mutateComponent(L, (*componentSchema).add)
	return 0
}

func (e *Engine) luaSet(L *lua.LState) int {
	e.mutateComponent(L, (*componentSchema).setValue)
	return 0
}

func (s *componentSchema) add(idx uint32, v scriptValue) error    { return s.set.Add(idx, v) }
func (s *componentSchema) setValue(idx uint32, v scriptValue) error { return s.set.Set(idx, v) }

func (e *Engine) mutateComponent(L *lua.LState, apply func(*componentSchema, uint32, scriptValue) error) {
	h, ok := e.decodeHandle(L, 1)
	if !ok {
		return
	}
	name := L.CheckString(2)
	tbl := L.CheckTable(3)

	schema, ok := e.components[name]
	if !ok {
		L.RaiseError("ecs: component %q is not registered", name)
		return
	}
	var v scriptValue
	for i, field := range schema.fields {
		v.Fields[i] = float64(lua.LVAsNumber(tbl.RawGetString(field)))
	}
	if err := apply(schema, h.Index(), v); err != nil {
		L.RaiseError("ecs: %v", err)
		return
	}
}

func (e *Engine) luaGet(L *lua.LState) int {
	h, ok := e.decodeHandle(L, 1)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	name := L.CheckString(2)
	schema, ok := e.components[name]
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	v, err := schema.set.Get(h.Index())
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	tbl := L.NewTable()
	for i, field := range schema.fields {
		tbl.RawSetString(field, lua.LNumber(v.Fields[i]))
	}
	L.Push(tbl)
	return 1
}

func (e *Engine) luaHas(L *lua.LState) int {
	h, ok := e.decodeHandle(L, 1)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	name := L.CheckString(2)
	schema, ok := e.components[name]
	L.Push(lua.LBool(ok && schema.set.Has(h.Index())))
	return 1
}

func (e *Engine) luaRemove(L *lua.LState) int {
	h, ok := e.decodeHandle(L, 1)
	if !ok {
		return 0
	}
	name := L.CheckString(2)
	if schema, ok := e.components[name]; ok {
		schema.set.Remove(h.Index())
	}
	return 0
}

func (e *Engine) luaSetParent(L *lua.LState) int {
	child, ok := e.decodeHandle(L, 1)
	if !ok {
		return 0
	}
	var parent handle.Handle
	if L.Get(2) != lua.LNil {
		var ok2 bool
		parent, ok2 = e.decodeHandle(L, 2)
		if !ok2 {
			return 0
		}
	}
	if err := e.w.SetParent(child, parent); err != nil {
		L.RaiseError("ecs.set_parent: %v", err)
	}
	return 0
}

func (e *Engine) luaParent(L *lua.LState) int {
	h, ok := e.decodeHandle(L, 1)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	p := e.w.Parent(h)
	if p.IsZero() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(p.ScriptPacked()))
	return 1
}

// decodeHandle reconstructs a full entity handle from the lossy
// (gen8<<24)|idx24 packed form a script passed as argument n
// (SPEC_FULL.md §6/§9). Raises a Lua error, which unwinds the calling Lua
// function rather than returning, if the slot was never allocated or its
// generation has since moved past the 8-bit window the script last saw.
func (e *Engine) decodeHandle(L *lua.LState, n int) (handle.Handle, bool) {
	packed := uint32(L.CheckNumber(n))
	idx := packed & 0x00FFFFFF
	wantGen := uint8(packed >> 24)

	full := e.w.HandleFromIndex(idx)
	if full.IsZero() || uint8(full.Generation()&0xFF) != wantGen {
		L.RaiseError("ecs: stale entity handle")
		return handle.Zero, false
	}
	return full, true
}

// ── job ──────────────────────────────────────────────────────────────

// luaJobSpawn implements job.spawn(fn): fn runs on the Engine's own
// goroutine (scripts are single-goroutine) the next time the job is run.
// The job itself is run inline immediately, matching the non-worker
// dispatch path in JobSystem.Run — a script never owns a *job.Worker.
func (e *Engine) luaJobSpawn(L *lua.LState) int {
	fn := L.CheckFunction(1)
	h, err := e.jobs.CreateJob(func(ctx context.Context, j *job.Job) {
		if cbErr := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); cbErr != nil {
			e.log.Error("lua job task error", zap.Error(cbErr))
		}
	}, handle.Zero, nil)
	if err != nil {
		L.RaiseError("job.spawn: %v", err)
		return 0
	}
	e.jobs.Run(context.Background(), h)
	L.Push(lua.LNumber(h))
	return 1
}

func (e *Engine) luaJobWait(L *lua.LState) int {
	h := handle.Handle(uint64(L.CheckNumber(1)))
	e.jobs.Wait(context.Background(), h)
	return 0
}
