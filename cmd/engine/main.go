package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/enginecore/internal/core/eventqueue"
	"github.com/l1jgo/enginecore/internal/core/job"
	"github.com/l1jgo/enginecore/internal/core/world"
	"github.com/l1jgo/enginecore/internal/enginecfg"
	"github.com/l1jgo/enginecore/internal/platform"
	"github.com/l1jgo/enginecore/internal/scripting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              enginecore  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main driver loop ────────────────────────────────────────────────

func run() error {
	printBanner()

	cfgPath := "config/engine.toml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	printSection("設定載入")
	cfg, err := enginecfg.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := enginecfg.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	tickRate, err := time.ParseDuration(cfg.World.TickRate)
	if err != nil {
		return fmt.Errorf("parse tick_rate %q: %w", cfg.World.TickRate, err)
	}

	printSection("世界初始化")
	w := world.New(world.Config{
		MaxEntities:       cfg.World.MaxEntities,
		MaxComponentTypes: cfg.World.MaxComponentTypes,
		MaxObservers:      cfg.World.MaxObservers,
		CommandCap:        cfg.World.CommandCap,
		CommandStageCap:   cfg.World.CommandStageCap,
		EventQueueCap:     cfg.EventQueue.Capacity,
	})

	js := job.New(cfg.Job.Workers, cfg.Job.DequeCap, log)
	defer js.Deinit()

	plat := platform.NewContext()

	printSection("腳本載入")
	engine, err := scripting.NewEngine(cfg.Scripting.ScriptsDir, w, js, plat, log)
	if err != nil {
		return fmt.Errorf("scripting engine: %w", err)
	}
	defer engine.Close()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s, workers: %d)", tickRate, cfg.Job.Workers))
	fmt.Println()

	eventScratch := make([]eventqueue.Event, 64)

	for {
		select {
		case <-ticker.C:
			engine.DrainAndDispatch(eventScratch)
			if err := engine.CallHook("on_tick"); err != nil {
				log.Error("on_tick hook failed", zap.Error(err))
			}
			w.RunFrame(tickRate)

		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			if err := engine.CallHook("on_shutdown"); err != nil {
				log.Error("on_shutdown hook failed", zap.Error(err))
			}
			log.Info("伺服器已停止")
			return nil
		}
	}
}
