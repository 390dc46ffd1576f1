package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
)

// actionContext threads the "we are already inside a one-shot/tap-dance
// dispatch" flags through do_action's recursion, so the terminal-action
// hooks don't treat a one-shot or tap-dance's own inner action as a
// foreign press that should end itself (spec.md §4.D).
type actionContext struct {
	insideOneShot  bool
	insideTapDance bool
}

// doAction dispatches a single resolved Action, per spec.md §4.D. It
// assumes no WaitingState is currently parked (the caller resolves any
// pending hold-tap before recursing back into dispatch).
func (l *Layout) doAction(a action.Action, coord event.Coord, delay uint16, ctx *actionContext) CustomEvent {
	switch a.Kind() {
	case action.KindNoOp, action.KindTrans:
		l.handleTerminalAction(coord, ctx)

	case action.KindKeyCode:
		l.tracker.coord = coord
		l.states.push(normalKeyState(a.KeyCodeValue(), coord))
		l.handleTerminalAction(coord, ctx)

	case action.KindMultipleKeyCodes:
		l.tracker.coord = coord
		for _, k := range a.KeyCodes() {
			l.states.push(normalKeyState(k, coord))
		}
		l.handleTerminalAction(coord, ctx)

	case action.KindMultipleActions:
		l.tracker.coord = coord
		custom := NoEvent()
		for _, sub := range a.Actions() {
			c := l.doAction(sub, coord, delay, ctx)
			custom.update(c)
		}
		return custom

	case action.KindLayer:
		l.tracker.coord = coord
		l.states.push(momentaryLayerState(a.Layer(), coord))
		l.handleTerminalAction(coord, ctx)

	case action.KindToggleLayer:
		l.tracker.coord = coord
		if !l.states.removeToggleLayer(a.Layer()) {
			l.states.push(toggleLayerState(a.Layer()))
		}
		l.handleTerminalAction(coord, ctx)

	case action.KindDefaultLayer:
		l.tracker.coord = coord
		l.SetDefaultLayer(a.Layer())
		l.handleTerminalAction(coord, ctx)

	case action.KindCustom:
		l.tracker.coord = coord
		l.handleTerminalAction(coord, ctx)
		if l.states.push(customState(a.CustomValue(), coord)) {
			return customEventPress(a.CustomValue())
		}

	case action.KindHoldTap:
		h := a.HoldTapValue()
		if h.TapHoldInterval == 0 || coord != l.tracker.coord || l.tracker.timeout == 0 {
			l.waiting = &waitingState{
				coord:   coord,
				timeout: h.Timeout,
				delay:   delay,
				hold:    h.Hold,
				tap:     h.Tap,
				config:  h.Config,
				resolve: h.CustomResolve,
			}
			l.tracker.timeout = h.TapHoldInterval
		} else {
			l.tracker.timeout = 0
			l.doAction(h.Tap, coord, delay, ctx)
		}
		// tracker.coord must be set after the checks above, which compare
		// against the previous value.
		l.tracker.coord = coord

	case action.KindOneShot:
		o := a.OneShotValue()
		l.tracker.coord = coord
		ctx.insideOneShot = true
		custom := l.doAction(o.Action, coord, delay, ctx)
		ctx.insideOneShot = false

		var evicted event.Coord
		var overflowed bool
		if l.oneshot != nil {
			l.oneshot.endConfig = o.EndConfig
			l.oneshot.timeout = o.Timeout
			evicted, overflowed = l.oneshot.handlePress(coord, true)
		} else {
			l.oneshot = &oneShotState{endConfig: o.EndConfig, timeout: o.Timeout}
			evicted, overflowed = l.oneshot.handlePress(coord, true)
		}
		if overflowed {
			l.Event(event.NewRelease(evicted.Row, evicted.Col))
		}
		return custom

	case action.KindTapDance:
		td := a.TapDanceValue()
		l.tracker.coord = coord
		custom := NoEvent()

		if l.tapdance != nil {
			if coord == l.tapdance.coord && l.tapdance.td == td {
				l.tapdance.handlePress(true)
				if td.Config == action.Eager {
					return l.doTapdanceActionIfEager(ctx)
				}
				return l.doTapdanceActionIfLazy(ctx)
			}
			l.tapdance.handlePress(false)
			custom.update(l.doTapdanceActionIfLazy(ctx))
		}

		l.tapdance = &tapDanceState{coord: coord, timeout: td.Timeout, td: td}
		if td.Config == action.Eager {
			custom.update(l.doTapdanceActionIfEager(ctx))
		} else {
			custom.update(l.doTapdanceActionIfLazy(ctx))
		}
		return custom

	case action.KindSequence:
		l.sequences.enqueue(a.SequenceBytes())
	}

	return NoEvent()
}

// handleTerminalAction implements the "terminal-action hooks" of
// spec.md §4.D: unless we are recursing from inside a one-shot or
// tap-dance's own dispatch, a leaf action notifies the one-shot
// controller of a foreign press (which may end it per end-config) and
// forces any in-flight tap-dance to finalize.
func (l *Layout) handleTerminalAction(coord event.Coord, ctx *actionContext) {
	if !ctx.insideOneShot && l.oneshot != nil {
		l.oneshot.handlePress(coord, false)
	}
	if !ctx.insideTapDance && l.tapdance != nil {
		l.tapdance.handlePress(false)
		l.doTapdanceActionIfLazy(ctx)
	}
}
