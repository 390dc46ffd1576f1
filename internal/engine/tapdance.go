package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
)

// tapDanceState is the single in-flight tap dance (spec.md §3: "at most
// one TapDanceState"; pressing a different tap-dance key while one is
// already running finalizes the first, per spec.md §4.G).
type tapDanceState struct {
	coord          event.Coord
	timeout        uint16
	currentAction  uint8
	td             *action.TapDanceAction
	releasePending bool
}

// isDone reports whether the dance can fire without waiting any longer:
// either its timeout elapsed, or its press count already reached the
// last configured action.
func (s *tapDanceState) isDone() bool {
	return s.timeout == 0 || int(s.currentAction)+1 == len(s.td.Actions)
}

// handlePress advances the dance on a repeated press of its own key
// (sameDance=true), or forces it to finish on a press of anything else.
func (s *tapDanceState) handlePress(sameDance bool) {
	if sameDance {
		s.currentAction++
		s.timeout = s.td.Timeout
		s.releasePending = false
		return
	}
	s.timeout = 0
}

// handleRelease records a matrix release of the dance's own coordinate,
// to be replayed once the dance resolves (spec.md §4.G: Lazy dances defer
// the key-up until the chosen action actually fires).
func (s *tapDanceState) handleRelease(coord event.Coord) bool {
	if coord == s.coord {
		s.releasePending = true
		return true
	}
	return false
}

func (s *tapDanceState) tick() {
	if s.timeout > 0 {
		s.timeout--
	}
}

// chosenAction returns actions[currentAction], clamped to the last index
// so a press count beyond the configured actions reuses the last one.
func (s *tapDanceState) chosenAction() action.Action {
	i := int(s.currentAction)
	if i >= len(s.td.Actions) {
		i = len(s.td.Actions) - 1
	}
	return s.td.Actions[i]
}
