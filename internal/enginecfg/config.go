// Package enginecfg loads the engine's TOML configuration, grounded on the
// teacher's internal/config/config.go Load/defaults pattern. The
// L1J-specific sections (Database, Rates, Enchant, Character, RateLimit)
// are replaced with the engine-relevant ones named in SPEC_FULL.md §2.1/§9.
package enginecfg

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the root of the engine's TOML configuration file.
type Config struct {
	Job        JobConfig        `toml:"job"`
	EventQueue EventQueueConfig `toml:"event_queue"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Logging    LoggingConfig    `toml:"logging"`
	World      WorldConfig      `toml:"world"`
}

// JobConfig bounds the work-stealing job system (SPEC_FULL.md §4.11/§4.12).
type JobConfig struct {
	Workers    int    `toml:"workers"`
	DequeCap   uint32 `toml:"deque_capacity"`
}

// EventQueueConfig bounds the EventQueue ring buffer (SPEC_FULL.md §4.8).
type EventQueueConfig struct {
	Capacity uint32 `toml:"capacity"`
}

// ScriptingConfig points at the Lua script tree the engine loads at boot.
type ScriptingConfig struct {
	ScriptsDir string `toml:"scripts_dir"`
}

// LoggingConfig mirrors the teacher's LoggingConfig verbatim.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// WorldConfig bounds the ECS World's fixed-capacity structures
// (SPEC_FULL.md §3/§4.7).
type WorldConfig struct {
	MaxEntities       uint32 `toml:"max_entities"`
	MaxComponentTypes uint32 `toml:"max_component_types"`
	MaxObservers      uint32 `toml:"max_observers"`
	CommandCap        int    `toml:"command_capacity"`
	CommandStageCap   int    `toml:"command_stage_capacity"`
	TickRate          string `toml:"tick_rate"`
}

// Load reads and parses path, falling back to defaults for anything the
// file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Job: JobConfig{
			Workers:  workers,
			DequeCap: 256,
		},
		EventQueue: EventQueueConfig{
			Capacity: 256,
		},
		Scripting: ScriptingConfig{
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		World: WorldConfig{
			MaxEntities:       8192,
			MaxComponentTypes: 64,
			MaxObservers:      128,
			CommandCap:        2048,
			CommandStageCap:   1 << 16,
			TickRate:          "16ms",
		},
	}
}
