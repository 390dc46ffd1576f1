// Package config loads and saves the keyflow keymap and engine tuning
// parameters as TOML, in the same atomic-write style the teacher project
// uses for its own settings file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// MatrixConfig describes the physical key matrix and which host device
// scans it.
type MatrixConfig struct {
	Rows   int    `toml:"rows"`
	Cols   int    `toml:"cols"`
	Device string `toml:"device"`

	// Bindings maps physical input keys to matrix coordinates, since a
	// bare evdev device or global-hotkey API has no notion of rows and
	// columns on its own. Empty by default — real hardware key names are
	// host-specific and cannot be guessed.
	Bindings []MatrixBinding `toml:"bindings"`
}

// MatrixBinding pairs one physical key (an evdev key name such as "KEY_A"
// on Linux, or a golang.design/x/hotkey key name such as "KeyA" on macOS,
// without modifiers) with the matrix coordinate it stands in for.
type MatrixBinding struct {
	Key string `toml:"key"`
	Row int    `toml:"row"`
	Col int    `toml:"col"`
}

// EngineConfig tunes the layout engine itself.
type EngineConfig struct {
	Layers         int `toml:"layers"`
	DefaultLayer   int `toml:"default_layer"`
	TickIntervalMs int `toml:"tick_interval_ms"`
}

// HoldTapParams are global hold-tap timing parameters. They are stored
// and loaded only: the keymap's wire codes cannot express HoldTap
// actions, and nothing builds one from these values.
type HoldTapParams struct {
	TimeoutMs         uint16 `toml:"timeout_ms"`
	TapHoldIntervalMs uint16 `toml:"tap_hold_interval_ms"`
}

// OneShotParams are the default one-shot timing parameters.
type OneShotParams struct {
	TimeoutMs uint16 `toml:"timeout_ms"`
}

// TapDanceParams are the default tap-dance timing parameters.
type TapDanceParams struct {
	TimeoutMs uint16 `toml:"timeout_ms"`
}

// Config is the top-level keyflow configuration.
type Config struct {
	Theme string `toml:"theme"`

	Matrix   MatrixConfig   `toml:"matrix"`
	Engine   EngineConfig   `toml:"engine"`
	HoldTap  HoldTapParams  `toml:"hold_tap"`
	OneShot  OneShotParams  `toml:"one_shot"`
	TapDance TapDanceParams `toml:"tap_dance"`

	// Keymap is [layer][row][col], each entry a 16-bit wire code
	// round-trippable through internal/codec (0x0000 is NoOp).
	Keymap [][][]uint16 `toml:"keymap"`
}

// Default returns a Config for a 2-layer, 4x12 matrix with every slot set
// to NoOp, and the stock hold-tap/one-shot/tap-dance timings.
func Default() *Config {
	cfg := &Config{
		Theme: "synthwave",
		Matrix: MatrixConfig{
			Rows:   4,
			Cols:   12,
			Device: "",
		},
		Engine: EngineConfig{
			Layers:         2,
			DefaultLayer:   0,
			TickIntervalMs: 1,
		},
		HoldTap: HoldTapParams{
			TimeoutMs:         200,
			TapHoldIntervalMs: 0,
		},
		OneShot: OneShotParams{
			TimeoutMs: 1000,
		},
		TapDance: TapDanceParams{
			TimeoutMs: 200,
		},
	}
	cfg.Keymap = blankKeymap(cfg.Engine.Layers, cfg.Matrix.Rows, cfg.Matrix.Cols)
	return cfg
}

func blankKeymap(layers, rows, cols int) [][][]uint16 {
	km := make([][][]uint16, layers)
	for l := range km {
		km[l] = make([][]uint16, rows)
		for r := range km[l] {
			km[l][r] = make([]uint16, cols)
		}
	}
	return km
}

// DefaultPath returns the default config file path
// (~/.config/keyflow/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keyflow", "config.toml")
}

// DefaultDataDir returns the default data directory
// (~/.local/share/keyflow).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "keyflow")
}

// Save writes cfg as TOML to path, creating parent directories if
// needed. The write is atomic: data goes to a temp file first, synced,
// then renamed into place, so a crash mid-write cannot corrupt an
// existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keyflow-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config at path. If the file does not exist, it
// returns Default() without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
