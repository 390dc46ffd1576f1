//go:build linux

package main

import (
	"log"

	"github.com/nullkey/keyflow/internal/config"
	"github.com/nullkey/keyflow/internal/matrix"
)

func createScanner(cfg *config.Config, dbg *log.Logger) (matrix.Scanner, error) {
	bindings := make([]matrix.KeyBinding, len(cfg.Matrix.Bindings))
	for i, b := range cfg.Matrix.Bindings {
		bindings[i] = matrix.KeyBinding{KeyName: b.Key, Row: uint8(b.Row), Col: uint8(b.Col)}
	}
	scanner, err := matrix.NewEvdevScanner(cfg.Matrix.Device, bindings)
	if err != nil {
		return nil, err
	}
	dbg.Printf("matrix: evdev scanner ready with %d bindings", len(bindings))
	return scanner, nil
}
