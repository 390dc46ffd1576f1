//go:build !linux && !darwin

package main

import (
	"log"

	"github.com/nullkey/keyflow/internal/config"
	"github.com/nullkey/keyflow/internal/matrix"
)

func createScanner(cfg *config.Config, dbg *log.Logger) (matrix.Scanner, error) {
	dbg.Printf("matrix: no scanner implementation on this platform")
	return matrix.NewUnsupportedScanner(), nil
}
