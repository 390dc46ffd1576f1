//go:build darwin

package main

import (
	"fmt"
	"log"

	"github.com/nullkey/keyflow/internal/config"
	"github.com/nullkey/keyflow/internal/matrix"
)

func createScanner(cfg *config.Config, dbg *log.Logger) (matrix.Scanner, error) {
	bindings := make([]matrix.HotkeyBinding, len(cfg.Matrix.Bindings))
	for i, b := range cfg.Matrix.Bindings {
		key, err := matrix.KeyByName(b.Key)
		if err != nil {
			return nil, fmt.Errorf("matrix: binding %q: %w", b.Key, err)
		}
		bindings[i] = matrix.HotkeyBinding{Key: key, Row: uint8(b.Row), Col: uint8(b.Col)}
	}
	dbg.Printf("matrix: hotkey scanner ready with %d bindings", len(bindings))
	return matrix.NewHotkeyScanner(bindings), nil
}
