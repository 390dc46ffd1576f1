package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
)

// maxOneShotCoords bounds each of the one-shot controller's three coord
// rings (spec.md §3: "One-shot rings never exceed 16 elements each;
// oldest is dropped on overflow").
const maxOneShotCoords = 16

// oneShotState is the single in-flight one-shot controller (spec.md
// §4.F). Unlike hold-tap and tap-dance, several one-shot keys can be
// simultaneously active (e.g. a one-shot Shift stacked with a one-shot
// Ctrl); they share one controller, timeout, and end-config — the
// config in force is always that of the most recently pressed one-shot
// activation.
type oneShotState struct {
	active       []event.Coord
	released     []event.Coord
	otherPressed []event.Coord

	timeout           uint16
	endConfig         action.OneShotEndConfig
	releaseOnNextTick bool
}

func pushCoordRing(ring []event.Coord, c event.Coord) (next []event.Coord, evicted event.Coord, overflowed bool) {
	ring = append(ring, c)
	if len(ring) > maxOneShotCoords {
		return ring[1:], ring[0], true
	}
	return ring, event.Coord{}, false
}

func removeCoord(ring []event.Coord, c event.Coord) []event.Coord {
	out := ring[:0]
	for _, x := range ring {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}

func containsCoord(ring []event.Coord, c event.Coord) bool {
	for _, x := range ring {
		if x == c {
			return true
		}
	}
	return false
}

// handlePress registers a press at coord. isActivation distinguishes the
// one-shot action's own dispatch (which arms or re-arms it) from a press
// of any other key while the one-shot is active (which may end it,
// depending on end-config). It returns a coord evicted from the active
// ring on overflow, for the dispatcher to synthesize a matching release.
func (s *oneShotState) handlePress(coord event.Coord, isActivation bool) (evicted event.Coord, overflowed bool) {
	s.released = removeCoord(s.released, coord)
	if isActivation {
		if (s.endConfig == action.EndOnFirstReleaseOrRepress || s.endConfig == action.EndOnFirstPressOrRepress) &&
			containsCoord(s.active, coord) {
			s.releaseOnNextTick = true
		}
		s.active, evicted, overflowed = pushCoordRing(s.active, coord)
		return evicted, overflowed
	}
	if s.endConfig == action.EndOnFirstPress || s.endConfig == action.EndOnFirstPressOrRepress {
		s.releaseOnNextTick = true
	} else {
		s.otherPressed, _, _ = pushCoordRing(s.otherPressed, coord)
	}
	return event.Coord{}, false
}

// handleRelease processes a matrix release at coord. ignoreRelease tells
// the caller whether the normal state-release for this coord should be
// suppressed (the release belongs to the one-shot machinery, not a live
// key); extra is any coords to release immediately as a consequence. A
// non-nil extra with ignoreRelease false means the one-shot has ended.
func (s *oneShotState) handleRelease(coord event.Coord) (ignoreRelease bool, extra []event.Coord) {
	if (s.endConfig == action.EndOnFirstRelease || s.endConfig == action.EndOnFirstReleaseOrRepress) &&
		containsCoord(s.otherPressed, coord) {
		drained := append([]event.Coord{}, s.released...)
		s.released = nil
		return false, drained
	}
	if containsCoord(s.active, coord) {
		var evicted event.Coord
		var overflowed bool
		s.released, evicted, overflowed = pushCoordRing(s.released, coord)
		if overflowed {
			return true, []event.Coord{evicted}
		}
		return true, nil
	}
	return false, nil
}

// tick ages the controller by one tick. If it has nothing active, it is
// a no-op. Otherwise it decrements timeout and, once releaseOnNextTick is
// set or the timeout has elapsed, clears everything and returns the
// coords that were pending release for the dispatcher to unstack.
func (s *oneShotState) tick() (released []event.Coord, done bool) {
	if len(s.active) == 0 {
		return nil, false
	}
	if s.timeout > 0 {
		s.timeout--
	}
	if !s.releaseOnNextTick && s.timeout > 0 {
		return nil, false
	}
	s.active = nil
	s.otherPressed = nil
	drained := s.released
	s.released = nil
	return drained, true
}
