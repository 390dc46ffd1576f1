//go:build !linux && !darwin

package matrix

import "context"

// UnsupportedScanner is the fallback Scanner for platforms with no
// wired input source.
type UnsupportedScanner struct{}

// NewUnsupportedScanner returns a Scanner whose Start always fails with
// ErrUnsupported.
func NewUnsupportedScanner() *UnsupportedScanner { return &UnsupportedScanner{} }

// Start returns ErrUnsupported immediately.
func (s *UnsupportedScanner) Start(ctx context.Context, onEvent func(row, col uint8, press bool)) error {
	return ErrUnsupported
}

// Stop is a no-op.
func (s *UnsupportedScanner) Stop() {}
