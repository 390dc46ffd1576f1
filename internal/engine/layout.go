// Package engine implements the keyboard layout engine: a timing-driven
// state machine that resolves matrix press/release events into HID
// keycodes, layer changes, and custom host events, per spec.md §3-§4.
package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
	"github.com/nullkey/keyflow/internal/keycode"
)

// Layout is the top-level engine: the key map, the live state set, and
// every compound-behavior controller (hold-tap, one-shot, tap-dance,
// sequences), driven by repeated calls to Event and Tick.
type Layout struct {
	layers       Layers
	defaultLayer int

	states   stateSet
	waiting  *waitingState
	oneshot  *oneShotState
	tapdance *tapDanceState

	sequences sequenceController
	stack     eventStack
	tracker   tapHoldTracker
}

// New builds a Layout over layers, with layer 0 as the initial default
// layer and every other controller empty.
func New(layers Layers) *Layout {
	return &Layout{layers: layers}
}

// IsActive reports whether the engine has anything in flight that needs
// Tick to keep being called — hosts can skip ticking (to save power) when
// this is false and no new matrix events have arrived.
func (l *Layout) IsActive() bool {
	return !l.stack.isEmpty() ||
		!l.sequences.isEmpty() ||
		l.tapdance != nil ||
		l.waiting != nil ||
		l.oneshot != nil ||
		l.tracker.timeout > 0
}

// Keycodes returns every keycode currently contributed by the state set,
// in insertion order, duplicates included (spec.md §4.B).
func (l *Layout) Keycodes() []keycode.Code {
	return l.states.keycodes()
}

// CurrentLayer returns the layer of the most recently pushed layer
// modifier state, or the default layer if none is active (spec.md §4.C).
func (l *Layout) CurrentLayer() int {
	if n, ok := l.states.reverseFindLayer(); ok {
		return n
	}
	return l.defaultLayer
}

// IsWaitingOnHoldTap reports whether a hold-tap action is currently
// undecided, for dashboard/status display.
func (l *Layout) IsWaitingOnHoldTap() bool {
	return l.waiting != nil
}

// IsOneShotActive reports whether a one-shot modifier is currently
// latched, for dashboard/status display.
func (l *Layout) IsOneShotActive() bool {
	return l.oneshot != nil
}

// IsTapDancePending reports whether a tap-dance sequence is still
// accepting taps, for dashboard/status display.
func (l *Layout) IsTapDancePending() bool {
	return l.tapdance != nil
}

// QueuedSequences returns the number of macro programs currently in
// flight, for dashboard/status display.
func (l *Layout) QueuedSequences() int {
	return len(l.sequences.items)
}

// SetDefaultLayer sets the base layer Trans ultimately defers to, if n is
// a valid layer index.
func (l *Layout) SetDefaultLayer(n int) {
	if n >= 0 && n < len(l.layers) {
		l.defaultLayer = n
	}
}

// GetAction returns the action configured at (layer, coord).
func (l *Layout) GetAction(coord event.Coord, layer int) (action.Action, bool) {
	return l.layers.at(layer, coord)
}

// ChangeAction remaps (layer, coord) to a, for live keymap editing (e.g.
// from a persisted config or a host-side remap tool).
func (l *Layout) ChangeAction(coord event.Coord, layer int, a action.Action) error {
	if !l.layers.set(layer, coord, a) {
		return ErrOutOfBounds
	}
	return nil
}

// Event registers a matrix press or release. If the 16-slot event stack
// is already full, the oldest stacked event is evicted and dispatched
// immediately — after first resolving any pending hold-tap as a Hold, so
// no event is silently lost mid-resolution (spec.md §4.A).
func (l *Layout) Event(e event.Event) {
	evicted, overflowed := l.stack.pushBack(e)
	if overflowed {
		l.waitingIntoHold()
		l.unstack(evicted)
	}
}

// Tick advances the engine by one tick (the host calls this at a fixed
// rate, typically once per millisecond). It returns any CustomEvent
// produced during this tick, per the monotonic NoEvent<Press<Release
// ordering law (spec.md §6).
func (l *Layout) Tick() CustomEvent {
	l.states.ageAll()
	l.stack.ageAll()
	l.tracker.tick()

	custom := NoEvent()
	shouldUnstack := true

	l.sequences.process(&l.states)

	if l.oneshot != nil {
		if released, done := l.oneshot.tick(); done {
			for _, c := range released {
				custom.update(l.unstack(event.Stacked{Event: event.NewRelease(c.Row, c.Col)}))
			}
			l.oneshot = nil
		}
	}

	if l.tapdance != nil {
		l.tapdance.tick()
		if l.tapdance.td.Config == action.Lazy {
			custom.update(l.doTapdanceActionIfLazy(&actionContext{}))
		} else if l.tapdance.isDone() {
			l.tapdance = nil
		}
	}

	if l.waiting != nil {
		shouldUnstack = false
		if decision, ok := l.waiting.tick(&l.stack); ok {
			switch decision {
			case action.Hold:
				custom.update(l.waitingIntoHold())
			case action.Tap:
				custom.update(l.waitingIntoTap())
			case action.Drop:
				custom.update(l.dropWaiting())
			}
		}
	}

	if shouldUnstack {
		if s, ok := l.stack.popFront(); ok {
			custom.update(l.unstack(s))
		}
	}

	return custom
}

// unstack dispatches (or finalizes the release of) a single event popped
// from the stack.
func (l *Layout) unstack(s event.Stacked) CustomEvent {
	if s.Event.IsRelease() {
		custom := NoEvent()
		shouldReleaseNormally := true

		if l.oneshot != nil {
			ignoreRelease, extra := l.oneshot.handleRelease(s.Event.Coord)
			if extra != nil {
				for _, c := range extra {
					l.states.releaseCoord(c, &custom)
				}
				if !ignoreRelease {
					l.oneshot = nil
				}
			}
			if ignoreRelease {
				shouldReleaseNormally = false
			}
		}

		if l.tapdance != nil {
			l.tapdance.handleRelease(s.Event.Coord)
		}

		if shouldReleaseNormally {
			l.states.releaseCoord(s.Event.Coord, &custom)
		}
		return custom
	}

	a := l.layers.pressAsAction(s.Event.Coord, l.CurrentLayer(), l.defaultLayer)
	return l.doAction(a, s.Event.Coord, s.Since, &actionContext{})
}

func (l *Layout) waitingIntoHold() CustomEvent {
	if l.waiting == nil {
		return NoEvent()
	}
	w := l.waiting
	l.waiting = nil
	if w.coord == l.tracker.coord {
		l.tracker.timeout = 0
	}
	return l.doAction(w.hold, w.coord, 0, &actionContext{})
}

func (l *Layout) waitingIntoTap() CustomEvent {
	if l.waiting == nil {
		return NoEvent()
	}
	w := l.waiting
	l.waiting = nil
	return l.doAction(w.tap, w.coord, 0, &actionContext{})
}

func (l *Layout) dropWaiting() CustomEvent {
	l.waiting = nil
	return NoEvent()
}

// doTapdanceActionIfLazy fires a Lazy tap-dance's chosen action once it
// is done, replays its deferred release if one arrived while waiting,
// and clears the controller. It is also the hook terminal actions and
// ticks use to finalize a Lazy dance that has just become done.
func (l *Layout) doTapdanceActionIfLazy(ctx *actionContext) CustomEvent {
	if l.tapdance == nil || l.tapdance.td.Config != action.Lazy || !l.tapdance.isDone() {
		return NoEvent()
	}
	td := l.tapdance
	a := td.chosenAction()
	coord := td.coord
	release := td.releasePending

	ctx.insideTapDance = true
	custom := l.doAction(a, coord, 0, ctx)
	ctx.insideTapDance = false

	if release {
		l.Event(event.NewRelease(coord.Row, coord.Col))
	}
	l.tapdance = nil
	return custom
}

// doTapdanceActionIfEager fires an Eager tap-dance's current action every
// time it is invoked (idempotent: the state set tolerates duplicate
// NormalKey entries at the same coord), clearing the controller once the
// dance is done.
func (l *Layout) doTapdanceActionIfEager(ctx *actionContext) CustomEvent {
	if l.tapdance == nil || l.tapdance.td.Config != action.Eager {
		return NoEvent()
	}
	td := l.tapdance
	a := td.chosenAction()
	coord := td.coord
	done := td.isDone()

	ctx.insideTapDance = true
	custom := l.doAction(a, coord, 0, ctx)
	ctx.insideTapDance = false

	if done {
		l.tapdance = nil
	}
	return custom
}
