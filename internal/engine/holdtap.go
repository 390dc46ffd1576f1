package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
)

// waitingState is the at-most-one in-flight hold-tap arbitration window
// (spec.md §3: "waiting: Option<WaitingState>").
type waitingState struct {
	coord   event.Coord
	timeout uint16
	delay   uint16
	hold    action.Action
	tap     action.Action
	config  action.HoldTapConfig
	resolve action.CustomResolver
}

// tapHoldTracker implements the tap_hold_interval repeat-tap shortcut
// (spec.md §4.D): a second press at the same coordinate while the
// tracker's timeout is still running skips arbitration entirely.
type tapHoldTracker struct {
	coord   event.Coord
	timeout uint16
}

func (t *tapHoldTracker) tick() {
	if t.timeout > 0 {
		t.timeout--
	}
}

// tick advances the waiting state by one tick and returns the arbiter's
// decision, or ok=false to keep waiting. It implements spec.md §4.E
// exactly: strategy-specific early-outs first, then the timeout/release
// race, then the final timeout fallback.
func (w *waitingState) tick(stack *eventStack) (action.WaitingAction, bool) {
	if w.timeout > 0 {
		w.timeout--
	}

	switch w.config {
	case action.HoldOnOtherKeyPress:
		for i := 0; i < stack.Len(); i++ {
			if stack.At(i).Event.IsPress() {
				return action.Hold, true
			}
		}
	case action.PermissiveHold:
		for i := 0; i < stack.Len(); i++ {
			s := stack.At(i)
			if !s.Event.IsPress() {
				continue
			}
			target := event.NewRelease(s.Event.Coord.Row, s.Event.Coord.Col)
			for j := i + 1; j < stack.Len(); j++ {
				if stack.At(j).Event == target {
					return action.Hold, true
				}
			}
		}
	case action.HoldTapCustom:
		if w.resolve != nil {
			if d, ok := w.resolve(stack); ok {
				return d, true
			}
		}
	case action.HoldTapDefault:
		// only the timeout/release rules below apply
	}

	for i := 0; i < stack.Len(); i++ {
		s := stack.At(i)
		if w.isCorrespondingRelease(s.Event) {
			if w.timeout+s.Since > w.delay {
				return action.Tap, true
			}
			return action.Hold, true
		}
	}

	if w.timeout == 0 {
		return action.Hold, true
	}
	return 0, false
}

func (w *waitingState) isCorrespondingRelease(e event.Event) bool {
	return e.IsRelease() && e.Coord == w.coord
}
