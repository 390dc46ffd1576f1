//go:build darwin

package matrix

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/hotkey"
	"golang.design/x/mainthread"
)

// HotkeyBinding pairs a global hotkey combination with the matrix
// coordinate it should report a press/release pair at. Since the
// platform hotkey API only delivers discrete key-down/key-up events
// for a registered combination (not a raw scan matrix), each binding
// stands in for one switch.
type HotkeyBinding struct {
	Mods []hotkey.Modifier
	Key  hotkey.Key
	Row  uint8
	Col  uint8
}

// HotkeyScanner reports global-hotkey press/release pairs at their
// bound matrix coordinates. It registers one system hotkey per binding,
// so every binding must be a combination the OS will hand to this
// process exclusively.
type HotkeyScanner struct {
	bindings []HotkeyBinding
	mu       sync.Mutex
	hks      []*hotkey.Hotkey
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHotkeyScanner returns a scanner that will register every binding on
// Start.
func NewHotkeyScanner(bindings []HotkeyBinding) *HotkeyScanner {
	return &HotkeyScanner{bindings: bindings, stopCh: make(chan struct{})}
}

// KeyByName resolves a key name from golang.design/x/hotkey's own KeyMap
// (e.g. "KeyA", "KeySpace") to its Key constant.
func KeyByName(name string) (hotkey.Key, error) {
	k, ok := hotkey.KeyMap[name]
	if !ok {
		return 0, fmt.Errorf("matrix: unknown key name %q", name)
	}
	return k, nil
}

// Start registers every binding and blocks, delivering press/release
// events until ctx is cancelled or Stop is called. Registration and
// event polling both require the main OS thread, so Start must run via
// mainthread.Init in cmd/keyflow's entry point.
func (s *HotkeyScanner) Start(ctx context.Context, onEvent func(row, col uint8, press bool)) error {
	s.mu.Lock()
	s.hks = make([]*hotkey.Hotkey, 0, len(s.bindings))
	for _, b := range s.bindings {
		hk := hotkey.New(b.Mods, b.Key)
		if err := hk.Register(); err != nil {
			s.unregisterAllLocked()
			s.mu.Unlock()
			return fmt.Errorf("matrix: register hotkey for (%d,%d): %w", b.Row, b.Col, err)
		}
		s.hks = append(s.hks, hk)
	}
	bindings := append([]HotkeyBinding(nil), s.bindings...)
	hks := append([]*hotkey.Hotkey(nil), s.hks...)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for i, hk := range hks {
		b := bindings[i]
		wg.Add(1)
		go func(hk *hotkey.Hotkey, b HotkeyBinding) {
			defer wg.Done()
			for {
				select {
				case <-hk.Keydown():
					onEvent(b.Row, b.Col, true)
				case <-hk.Keyup():
					onEvent(b.Row, b.Col, false)
				case <-s.stopCh:
					return
				}
			}
		}(hk, b)
	}

	select {
	case <-ctx.Done():
		s.Stop()
	case <-s.stopCh:
	}
	wg.Wait()

	s.mu.Lock()
	s.unregisterAllLocked()
	s.mu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (s *HotkeyScanner) unregisterAllLocked() {
	for _, hk := range s.hks {
		_ = hk.Unregister()
	}
	s.hks = nil
}

// Stop causes a blocked Start call to return.
func (s *HotkeyScanner) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// RunOnMainThread wraps fn in mainthread.Init, as CoreGraphics event taps
// require it to run on the process's first OS thread.
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}
