package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Matrix.Rows != 4 || cfg.Matrix.Cols != 12 {
		t.Errorf("expected 4x12 matrix, got %dx%d", cfg.Matrix.Rows, cfg.Matrix.Cols)
	}
	if cfg.Engine.Layers != 2 {
		t.Errorf("expected 2 layers, got %d", cfg.Engine.Layers)
	}
	if cfg.Engine.TickIntervalMs != 1 {
		t.Errorf("expected 1ms tick interval, got %d", cfg.Engine.TickIntervalMs)
	}
	if cfg.HoldTap.TimeoutMs != 200 {
		t.Errorf("expected hold-tap timeout 200, got %d", cfg.HoldTap.TimeoutMs)
	}
	if cfg.OneShot.TimeoutMs != 1000 {
		t.Errorf("expected one-shot timeout 1000, got %d", cfg.OneShot.TimeoutMs)
	}
	if len(cfg.Keymap) != 2 || len(cfg.Keymap[0]) != 4 || len(cfg.Keymap[0][0]) != 12 {
		t.Fatalf("expected a 2x4x12 keymap, got %d layers", len(cfg.Keymap))
	}
	if cfg.Keymap[0][0][0] != 0 {
		t.Errorf("expected blank keymap to default to NoOp (0x0000), got %#x", cfg.Keymap[0][0][0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Matrix.Rows != 4 {
		t.Errorf("expected default matrix, got %d rows", cfg.Matrix.Rows)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
keymap = [[[4]]]

[matrix]
rows = 5
cols = 14
device = "/dev/input/event3"

[engine]
layers = 3
default_layer = 1
tick_interval_ms = 2

[hold_tap]
timeout_ms = 180
tap_hold_interval_ms = 150
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Matrix.Rows != 5 || cfg.Matrix.Cols != 14 {
		t.Errorf("expected 5x14 matrix, got %dx%d", cfg.Matrix.Rows, cfg.Matrix.Cols)
	}
	if cfg.Matrix.Device != "/dev/input/event3" {
		t.Errorf("expected device override, got %s", cfg.Matrix.Device)
	}
	if cfg.Engine.Layers != 3 || cfg.Engine.DefaultLayer != 1 {
		t.Errorf("expected 3 layers/default 1, got %d/%d", cfg.Engine.Layers, cfg.Engine.DefaultLayer)
	}
	if cfg.HoldTap.TimeoutMs != 180 || cfg.HoldTap.TapHoldIntervalMs != 150 {
		t.Errorf("expected hold-tap overrides, got %+v", cfg.HoldTap)
	}
	if len(cfg.Keymap) != 1 || cfg.Keymap[0][0][0] != 4 {
		t.Errorf("expected overridden 1x1x1 keymap [4], got %v", cfg.Keymap)
	}
	// Non-overridden values should remain defaults.
	if cfg.OneShot.TimeoutMs != 1000 {
		t.Errorf("expected default one-shot timeout preserved, got %d", cfg.OneShot.TimeoutMs)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Theme = "gruvbox"
	cfg.Keymap[0][0][0] = 0x0004 // KeyCode(A)

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}

	if loaded.Theme != "gruvbox" {
		t.Errorf("expected theme gruvbox, got %s", loaded.Theme)
	}
	if loaded.Keymap[0][0][0] != 0x0004 {
		t.Errorf("expected keymap entry 0x0004 preserved, got %#x", loaded.Keymap[0][0][0])
	}
	if loaded.Matrix.Rows != 4 {
		t.Errorf("expected default matrix rows preserved, got %d", loaded.Matrix.Rows)
	}
}

func TestLoadMatrixBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[[matrix.bindings]]
key = "KEY_A"
row = 0
col = 0

[[matrix.bindings]]
key = "KEY_B"
row = 0
col = 1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Matrix.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(cfg.Matrix.Bindings))
	}
	if cfg.Matrix.Bindings[0].Key != "KEY_A" || cfg.Matrix.Bindings[0].Row != 0 || cfg.Matrix.Bindings[0].Col != 0 {
		t.Errorf("unexpected first binding: %+v", cfg.Matrix.Bindings[0])
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.toml")

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %s: %v", path, err)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[matrix]
rows = 6
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Matrix.Rows != 6 {
		t.Errorf("expected rows 6, got %d", cfg.Matrix.Rows)
	}
	if cfg.Matrix.Cols != 12 {
		t.Errorf("expected default cols preserved, got %d", cfg.Matrix.Cols)
	}
	if cfg.Engine.TickIntervalMs != 1 {
		t.Errorf("expected default tick interval preserved, got %d", cfg.Engine.TickIntervalMs)
	}
}
