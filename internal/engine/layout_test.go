package engine

import (
	"sort"
	"testing"

	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
	"github.com/nullkey/keyflow/internal/keycode"
)

func assertKeys(t *testing.T, expected []keycode.Code, got []keycode.Code) {
	t.Helper()
	exp := append([]keycode.Code(nil), expected...)
	gt := append([]keycode.Code(nil), got...)
	sort.Slice(exp, func(i, j int) bool { return exp[i] < exp[j] })
	sort.Slice(gt, func(i, j int) bool { return gt[i] < gt[j] })
	if len(exp) != len(gt) {
		t.Fatalf("expected keys %v, got %v", expected, got)
	}
	for i := range exp {
		if exp[i] != gt[i] {
			t.Fatalf("expected keys %v, got %v", expected, got)
		}
	}
}

func press(row, col uint8) event.Event   { return event.NewPress(row, col) }
func release(row, col uint8) event.Event { return event.NewRelease(row, col) }

func TestBasicHoldTap(t *testing.T) {
	layers := NewLayers(2, 1, 2)
	layers[0][0][0] = action.HoldTap(&action.HoldTapAction{
		Timeout: 200,
		Hold:    action.Layer(1),
		Tap:     action.KeyCode(keycode.Space),
		Config:  action.HoldTapDefault,
	})
	layers[0][0][1] = action.HoldTap(&action.HoldTapAction{
		Timeout: 200,
		Hold:    action.KeyCode(keycode.LCtrl),
		Tap:     action.KeyCode(keycode.Enter),
		Config:  action.HoldTapDefault,
	})
	layers[1][0][0] = action.Trans()
	layers[1][0][1] = action.MultipleKeyCodes(keycode.LCtrl, keycode.Enter)

	l := New(layers)
	l.Tick()
	if l.IsActive() {
		t.Fatal("expected inactive before any event")
	}
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 1))
	l.Tick()
	if !l.IsActive() {
		t.Fatal("expected active while waiting on hold-tap")
	}
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 0))
	l.Tick()
	if !l.IsActive() {
		t.Fatal("expected active")
	}
	assertKeys(t, nil, l.Keycodes())

	l.Event(release(0, 0))
	for i := 0; i < 197; i++ {
		l.Tick()
		if !l.IsActive() {
			t.Fatalf("expected active at iteration %d", i)
		}
		assertKeys(t, nil, l.Keycodes())
	}
	l.Tick()
	if !l.IsActive() {
		t.Fatal("expected active")
	}
	assertKeys(t, nil, l.Keycodes())

	l.Tick()
	if !l.IsActive() {
		t.Fatal("expected active")
	}
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())

	l.Tick()
	if !l.IsActive() {
		t.Fatal("expected active")
	}
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())

	l.Tick()
	if !l.IsActive() {
		t.Fatal("expected active")
	}
	assertKeys(t, []keycode.Code{keycode.LCtrl, keycode.Space}, l.Keycodes())

	l.Tick()
	if l.IsActive() {
		t.Fatal("expected inactive")
	}
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())

	l.Event(release(0, 1))
	l.Tick()
	if l.IsActive() {
		t.Fatal("expected inactive")
	}
	assertKeys(t, nil, l.Keycodes())
}

func TestHoldTapTapOnQuickRelease(t *testing.T) {
	layers := NewLayers(1, 1, 1)
	layers[0][0][0] = action.HoldTap(&action.HoldTapAction{
		Timeout: 200,
		Hold:    action.KeyCode(keycode.LCtrl),
		Tap:     action.KeyCode(keycode.Enter),
		Config:  action.HoldTapDefault,
	})
	l := New(layers)

	l.Event(press(0, 0))
	l.Tick()
	l.Event(release(0, 0))
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.Enter}, l.Keycodes())
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
}

func TestHoldOnOtherKeyPress(t *testing.T) {
	layers := NewLayers(1, 1, 2)
	layers[0][0][0] = action.HoldTap(&action.HoldTapAction{
		Timeout: 200,
		Hold:    action.KeyCode(keycode.LCtrl),
		Tap:     action.KeyCode(keycode.Enter),
		Config:  action.HoldOnOtherKeyPress,
	})
	layers[0][0][1] = action.KeyCode(keycode.A)
	l := New(layers)

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 1))
	l.Tick() // other key's press is now stacked -> Hold resolves this tick
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())

	l.Tick() // the other key's own press is only unstacked on the next tick
	assertKeys(t, []keycode.Code{keycode.LCtrl, keycode.A}, l.Keycodes())
}

func TestPermissiveHold(t *testing.T) {
	layers := NewLayers(1, 1, 2)
	layers[0][0][0] = action.HoldTap(&action.HoldTapAction{
		Timeout: 200,
		Hold:    action.KeyCode(keycode.LCtrl),
		Tap:     action.KeyCode(keycode.Enter),
		Config:  action.PermissiveHold,
	})
	layers[0][0][1] = action.KeyCode(keycode.A)
	l := New(layers)

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 1))
	l.Tick() // only the other key's press is stacked so far -> still waiting
	assertKeys(t, nil, l.Keycodes())

	l.Event(release(0, 1))
	l.Tick() // now both the press and its matching release are stacked -> Hold
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())

	l.Tick() // the other key's own press is only unstacked on the next tick
	assertKeys(t, []keycode.Code{keycode.LCtrl, keycode.A}, l.Keycodes())
}

func TestOneShotEndOnFirstPress(t *testing.T) {
	layers := NewLayers(1, 1, 2)
	layers[0][0][0] = action.OneShot(&action.OneShotAction{
		Action:    action.KeyCode(keycode.LShift),
		Timeout:   1000,
		EndConfig: action.EndOnFirstPress,
	})
	layers[0][0][1] = action.KeyCode(keycode.A)
	l := New(layers)

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.LShift}, l.Keycodes())

	l.Event(release(0, 0))
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.LShift}, l.Keycodes())

	l.Event(press(0, 1))
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.LShift, keycode.A}, l.Keycodes())

	l.Tick() // one-shot ends on next tick after the other press
	assertKeys(t, []keycode.Code{keycode.A}, l.Keycodes())
}

func TestTapDanceLazy(t *testing.T) {
	layers := NewLayers(1, 1, 1)
	layers[0][0][0] = action.TapDance(&action.TapDanceAction{
		Timeout: 100,
		Config:  action.Lazy,
		Actions: []action.Action{
			action.KeyCode(keycode.A),
			action.KeyCode(keycode.B),
			action.KeyCode(keycode.C),
			action.KeyCode(keycode.D),
		},
	})
	l := New(layers)

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Event(release(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Event(release(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Event(release(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())

	l.Event(press(0, 0))
	l.Tick() // 4th press reaches the last action -> fires immediately (Lazy, done)
	assertKeys(t, []keycode.Code{keycode.D}, l.Keycodes())
	l.Event(release(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
}

func TestMacroCtrlC(t *testing.T) {
	layers := NewLayers(1, 1, 1)
	layers[0][0][0] = action.Sequence([]byte{
		1, 2, byte(keycode.LCtrl),
		1, 2, byte(keycode.C),
		1, 3, byte(keycode.C),
		1, 3, byte(keycode.LCtrl),
	})
	l := New(layers)

	l.Event(press(0, 0))
	// the press is only unstacked at the end of this tick, so the
	// sequence it enqueues isn't processed until the next one
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.LCtrl, keycode.C}, l.Keycodes())
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.LCtrl}, l.Keycodes())
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
}

func TestMacroWithDelay(t *testing.T) {
	layers := NewLayers(1, 1, 1)
	layers[0][0][0] = action.Sequence([]byte{
		1, 1, byte(keycode.Y),
		1, 4, '3', '|',
		1, 1, byte(keycode.A),
	})
	l := New(layers)

	l.Event(press(0, 0))
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.Y}, l.Keycodes())
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	// the delay byte "3" is stored as delay-1 = 2 pure-decrement ticks
	// before the next instruction runs
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Tick()
	assertKeys(t, nil, l.Keycodes())
	l.Tick()
	assertKeys(t, []keycode.Code{keycode.A}, l.Keycodes())
}

func TestLayerTransDefersToDefault(t *testing.T) {
	layers := NewLayers(2, 1, 1)
	layers[0][0][0] = action.KeyCode(keycode.A)
	layers[1][0][0] = action.Trans()
	l := New(layers)
	l.states.push(momentaryLayerState(1, event.Coord{Row: 9, Col: 9}))

	a := l.layers.pressAsAction(event.Coord{Row: 0, Col: 0}, l.CurrentLayer(), l.defaultLayer)
	if !a.Equal(action.KeyCode(keycode.A)) {
		t.Fatalf("expected Trans to defer to default layer's KeyCode(A), got %v", a)
	}
}

func TestChangeActionOutOfBounds(t *testing.T) {
	layers := NewLayers(1, 1, 1)
	l := New(layers)
	if err := l.ChangeAction(event.Coord{Row: 5, Col: 5}, 0, action.NoOp()); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := l.ChangeAction(event.Coord{Row: 0, Col: 0}, 0, action.KeyCode(keycode.A)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := l.GetAction(event.Coord{Row: 0, Col: 0}, 0)
	if !ok || !got.Equal(action.KeyCode(keycode.A)) {
		t.Fatalf("expected KeyCode(A) after ChangeAction, got %v, %v", got, ok)
	}
}
