package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/l1jgo/enginecore/internal/core/eventqueue"
	"github.com/l1jgo/enginecore/internal/core/job"
	"github.com/l1jgo/enginecore/internal/core/world"
	"github.com/l1jgo/enginecore/internal/platform"
)

func newTestEngine(t *testing.T, scripts map[string]string) (*Engine, *world.World, *job.JobSystem) {
	t.Helper()
	dir := t.TempDir()
	for name, src := range scripts {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatalf("write script %s: %v", name, err)
		}
	}

	w := world.New(world.Config{
		MaxEntities: 1024, MaxComponentTypes: 16, MaxObservers: 32,
		CommandCap: 256, CommandStageCap: 4096, EventQueueCap: 64,
	})
	js := job.New(1, 16, nil)
	plat := platform.NewContext()
	log := zap.NewNop()

	e, err := NewEngine(dir, w, js, plat, log)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() {
		e.Close()
		js.Deinit()
	})
	return e, w, js
}

func TestEcsCreateAddGetRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine(t, map[string]string{
		"core.lua": `
			ecs.register_component("position", {"x", "y"})
			h = ecs.create()
			ecs.add(h, "position", {x = 3, y = 4})
		`,
	})

	if err := e.CallHook("missing_hook_is_a_noop"); err != nil {
		t.Fatalf("missing hook should not error: %v", err)
	}

	if err := e.vm.DoString(`
		assert(ecs.has(h, "position"))
		local p = ecs.get(h, "position")
		assert(p.x == 3, "x mismatch")
		assert(p.y == 4, "y mismatch")
		ecs.set(h, "position", {x = 5, y = 6})
		p = ecs.get(h, "position")
		assert(p.x == 5, "x after set mismatch")
		ecs.remove(h, "position")
		assert(not ecs.has(h, "position"))
	`); err != nil {
		t.Fatalf("lua assertions failed: %v", err)
	}
}

func TestEcsDestroyInvalidatesHandle(t *testing.T) {
	e, _, _ := newTestEngine(t, map[string]string{
		"core.lua": `
			h = ecs.create()
		`,
	})
	if err := e.vm.DoString(`
		assert(ecs.is_valid(h))
		ecs.destroy(h)
		assert(not ecs.is_valid(h))
	`); err != nil {
		t.Fatalf("lua assertions failed: %v", err)
	}
}

func TestEcsParentChild(t *testing.T) {
	e, _, _ := newTestEngine(t, map[string]string{
		"core.lua": `
			parent = ecs.create()
			child = ecs.create()
			ecs.set_parent(child, parent)
		`,
	})
	if err := e.vm.DoString(`
		assert(ecs.parent(child) == parent)
	`); err != nil {
		t.Fatalf("lua assertions failed: %v", err)
	}
}

func TestEventPushAndListen(t *testing.T) {
	e, w, _ := newTestEngine(t, map[string]string{
		"core.lua": `
			received = nil
			event.listen(EventKind.ComponentAdd, function(kind, fields)
				received = fields[1]
			end)
		`,
	})

	if err := e.vm.DoString(`event.push(EventKind.ComponentAdd, {42})`); err != nil {
		t.Fatalf("event.push failed: %v", err)
	}

	scratch := make([]eventqueue.Event, 8)
	n := e.DrainAndDispatch(scratch)
	if n != 1 {
		t.Fatalf("expected 1 event drained, got %d", n)
	}

	received := e.vm.GetGlobal("received")
	if received.String() != "42" {
		t.Fatalf("expected listener to observe 42, got %v", received)
	}
	_ = w
}

func TestJobSpawnAndWait(t *testing.T) {
	e, _, _ := newTestEngine(t, map[string]string{
		"core.lua": `
			ran = false
			h = job.spawn(function() ran = true end)
			job.wait(h)
		`,
	})
	if err := e.vm.DoString(`assert(ran)`); err != nil {
		t.Fatalf("lua assertions failed: %v", err)
	}
}

func TestInputKeyDown(t *testing.T) {
	dir := t.TempDir()
	w := world.New(world.Config{
		MaxEntities: 64, MaxComponentTypes: 8, MaxObservers: 8,
		CommandCap: 32, CommandStageCap: 512, EventQueueCap: 16,
	})
	js := job.New(1, 16, nil)
	defer js.Deinit()
	plat := platform.NewContext()
	e, err := NewEngine(dir, w, js, plat, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if err := e.vm.DoString(`assert(input.key_down("a") == false)`); err != nil {
		t.Fatalf("lua assertions failed: %v", err)
	}
}

// TestLoadDirTranscodesBig5Scripts verifies a script declaring a non-UTF-8
// source encoding is transcoded before being handed to the Lua parser.
func TestLoadDirTranscodesBig5Scripts(t *testing.T) {
	greeting, err := traditionalchinese.Big5.NewEncoder().String("測試")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	dir := t.TempDir()
	src := "-- encoding: big5\ngreeting = \"" + greeting + "\"\nloaded = true\n"
	if err := os.WriteFile(filepath.Join(dir, "core.lua"), []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	w := world.New(world.Config{
		MaxEntities: 16, MaxComponentTypes: 4, MaxObservers: 4,
		CommandCap: 16, CommandStageCap: 256, EventQueueCap: 16,
	})
	js := job.New(1, 16, nil)
	defer js.Deinit()
	plat := platform.NewContext()

	e, err := NewEngine(dir, w, js, plat, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if err := e.vm.DoString(`
		assert(loaded)
		assert(greeting == "測試")
	`); err != nil {
		t.Fatalf("lua assertions failed: %v", err)
	}
}
