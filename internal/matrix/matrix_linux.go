//go:build linux

package matrix

import (
	"context"
	"fmt"
	"os"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/nullkey/keyflow/internal/hotkey"
)

// KeyBinding pairs a physical evdev key name (e.g. "KEY_A") with the
// matrix coordinate it should report press/release events at.
type KeyBinding struct {
	KeyName string
	Row     uint8
	Col     uint8
}

// EvdevScanner treats a real keyboard's evdev device as a stand-in
// switch matrix: it opens one device and reports the configured subset
// of its physical keys at their bound (row, col) coordinates, ignoring
// everything else. This lets the layout engine be driven and demoed from
// a real keyboard before any firmware matrix exists.
type EvdevScanner struct {
	dev     *evdev.InputDevice
	binding map[evdev.EvCode]KeyBinding
	done    chan struct{}
}

// NewEvdevScanner opens devicePath (or auto-detects a keyboard when
// devicePath is empty, via hotkey.FindKeyboard) and resolves every
// binding's key name to its evdev code.
func NewEvdevScanner(devicePath string, bindings []KeyBinding) (*EvdevScanner, error) {
	resolved, err := resolveBindings(bindings)
	if err != nil {
		return nil, err
	}

	dev, err := hotkey.FindKeyboard(devicePath)
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}

	return &EvdevScanner{dev: dev, binding: resolved, done: make(chan struct{})}, nil
}

// resolveBindings maps every binding's key name to its evdev code,
// split out from NewEvdevScanner so it can be exercised without opening
// a real device.
func resolveBindings(bindings []KeyBinding) (map[evdev.EvCode]KeyBinding, error) {
	m := make(map[evdev.EvCode]KeyBinding, len(bindings))
	for _, b := range bindings {
		code, err := hotkey.KeyCodeFromName(b.KeyName)
		if err != nil {
			return nil, fmt.Errorf("matrix: binding %q: %w", b.KeyName, err)
		}
		m[code] = b
	}
	return m, nil
}

// Start reads evdev key events until ctx is cancelled or Stop is called,
// reporting Press/Release for every bound coordinate and ignoring
// everything else (unbound keys, key repeats).
func (s *EvdevScanner) Start(ctx context.Context, onEvent func(row, col uint8, press bool)) error {
	errCh := make(chan error, 1)

	go func() {
		for {
			ev, err := s.dev.ReadOne()
			if err != nil {
				select {
				case <-s.done:
					errCh <- nil
				default:
					if os.IsNotExist(err) || strings.Contains(err.Error(), "file already closed") || strings.Contains(err.Error(), "bad file descriptor") {
						errCh <- nil
					} else {
						errCh <- fmt.Errorf("matrix: read event: %w", err)
					}
				}
				return
			}

			if ev.Type != evdev.EV_KEY {
				continue
			}
			b, ok := s.binding[ev.Code]
			if !ok {
				continue
			}
			switch ev.Value {
			case 1: // key down
				onEvent(b.Row, b.Col, true)
			case 0: // key up
				onEvent(b.Row, b.Col, false)
				// value 2 = key repeat, ignored; the engine ages its own state
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Stop closes the underlying device, causing a blocked Start to return.
func (s *EvdevScanner) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
		_ = s.dev.Close()
	}
}
