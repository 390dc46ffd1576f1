// Package matrix scans a physical input source for key transitions and
// reports them at (row, col) matrix coordinates, standing in for the
// electrical switch matrix spec.md's host boundary assumes real firmware
// provides.
package matrix

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by Start on platforms with no Scanner
// implementation wired up.
var ErrUnsupported = errors.New("matrix: no scanner available for this platform")

// Scanner polls key transitions from some underlying input source and
// reports them at (row, col) matrix coordinates.
type Scanner interface {
	// Start blocks, calling onEvent for every press/release, until ctx is
	// cancelled or Stop is called.
	Start(ctx context.Context, onEvent func(row, col uint8, press bool)) error
	// Stop causes a blocked Start call to return.
	Stop()
}
