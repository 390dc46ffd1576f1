package tui

import (
	"io"
	"log"
	"testing"

	"github.com/nullkey/keyflow/internal/config"
	"github.com/nullkey/keyflow/internal/keycode"
)

// mockSnapshotter implements Snapshotter for testing, with every field
// directly settable by the test.
type mockSnapshotter struct {
	layer           int
	keycodes        []keycode.Code
	waitingHoldTap  bool
	oneShotActive   bool
	tapDancePending bool
	queuedSequences int
}

func (m *mockSnapshotter) CurrentLayer() int                { return m.layer }
func (m *mockSnapshotter) Keycodes() []keycode.Code         { return m.keycodes }
func (m *mockSnapshotter) IsWaitingOnHoldTap() bool         { return m.waitingHoldTap }
func (m *mockSnapshotter) IsOneShotActive() bool            { return m.oneShotActive }
func (m *mockSnapshotter) IsTapDancePending() bool          { return m.tapDancePending }
func (m *mockSnapshotter) QueuedSequences() int             { return m.queuedSequences }

func newTestModel(eng *mockSnapshotter) Model {
	cfg := config.Default()
	return NewModel(cfg, eng, log.New(io.Discard, "", 0), false)
}

func TestInitialState(t *testing.T) {
	m := newTestModel(&mockSnapshotter{})
	if m.currentLayer != 0 {
		t.Errorf("expected layer 0 before first snapshot tick, got %d", m.currentLayer)
	}
	if len(m.keycodes) != 0 {
		t.Error("expected no keycodes before first snapshot tick")
	}
}

func TestSnapshotTickPullsEngineState(t *testing.T) {
	eng := &mockSnapshotter{
		layer:           1,
		keycodes:        []keycode.Code{keycode.A, keycode.LShift},
		waitingHoldTap:  true,
		queuedSequences: 2,
	}
	m := newTestModel(eng)

	updated, cmd := m.Update(snapshotTickMsg{})
	model := updated.(Model)

	if model.currentLayer != 1 {
		t.Errorf("expected layer 1, got %d", model.currentLayer)
	}
	if len(model.keycodes) != 2 {
		t.Errorf("expected 2 keycodes, got %d", len(model.keycodes))
	}
	if !model.waitingHoldTap {
		t.Error("expected waitingHoldTap true")
	}
	if model.queuedMacros != 2 {
		t.Errorf("expected 2 queued macros, got %d", model.queuedMacros)
	}
	if cmd == nil {
		t.Error("expected snapshotTickMsg to reschedule another tick")
	}
}

func TestDebugLogAccumulatesAndTrims(t *testing.T) {
	m := newTestModel(&mockSnapshotter{})
	for i := 0; i < maxDebugLines+10; i++ {
		updated, _ := m.Update(DebugLogMsg{Entry: DebugEntry{Message: "x"}})
		m = updated.(Model)
	}
	if len(m.DebugEntries) != maxDebugLines {
		t.Errorf("expected DebugEntries capped at %d, got %d", maxDebugLines, len(m.DebugEntries))
	}
}

func TestParseLineInfersCategory(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"[DEBUG] 11:27:53.000001 matrix: opened /dev/input/event3", "matrix"},
		{"[DEBUG] 11:27:53.000001 macro: enqueued 4 bytes", "macro"},
		{"[DEBUG] 11:27:53.000001 hold-tap resolved as Hold", "holdtap"},
		{"[DEBUG] 11:27:53.000001 one-shot ended on first press", "oneshot"},
		{"[DEBUG] 11:27:53.000001 tap-dance timed out", "tapdance"},
		{"[DEBUG] 11:27:53.000001 config saved", "config"},
		{"[DEBUG] 11:27:53.000001 layer 2 activated", "layer"},
		{"[DEBUG] 11:27:53.000001 something else entirely", "debug"},
	}
	for _, tc := range cases {
		entry := parseLine(tc.line)
		if entry.Category != tc.want {
			t.Errorf("parseLine(%q).Category = %q, want %q", tc.line, entry.Category, tc.want)
		}
		if entry.Time != "11:27:53.000001" {
			t.Errorf("parseLine(%q).Time = %q, want %q", tc.line, entry.Time, "11:27:53.000001")
		}
	}
}

func TestThemeCycle(t *testing.T) {
	first := LoadTheme("synthwave")
	next := NextTheme(first.Name)
	if next.Name == first.Name {
		t.Error("expected NextTheme to advance to a different theme")
	}
	// Cycling through the full order returns to the start.
	cur := first
	for i := 0; i < len(themeOrder); i++ {
		cur = NextTheme(cur.Name)
	}
	if cur.Name != first.Name {
		t.Errorf("expected full cycle to return to %q, got %q", first.Name, cur.Name)
	}
}

func TestViewRendersWithoutPanicking(t *testing.T) {
	eng := &mockSnapshotter{layer: 0, keycodes: []keycode.Code{keycode.A}}
	m := newTestModel(eng)
	updated, _ := m.Update(snapshotTickMsg{})
	m = updated.(Model)
	if out := m.View(); out == "" {
		t.Error("expected non-empty rendered view")
	}
}
