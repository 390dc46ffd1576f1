package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
	"github.com/nullkey/keyflow/internal/keycode"
)

// maxStates bounds the engine's state set (spec.md §3 invariant: "States
// set never exceeds 64 elements; silent drop on overflow").
const maxStates = 64

// stateKind tags which contributor a state represents.
type stateKind int

const (
	stateNormalKey stateKind = iota
	stateFakeKey
	stateMomentaryLayer
	stateToggleLayer
	stateCustom
)

// state is a single contributor to the current output: a held key, a
// macro-synthesized ("fake") key, a layer modifier, or a custom value.
// Each (except ToggleLayerModifier and FakeKey) carries the coordinate
// that created it so a matching matrix release can retire it.
type state struct {
	kind    stateKind
	keyCode keycode.Code
	layer   int
	custom  action.Custom
	coord   event.Coord
	hasCoord bool
}

func normalKeyState(k keycode.Code, coord event.Coord) state {
	return state{kind: stateNormalKey, keyCode: k, coord: coord, hasCoord: true}
}

func fakeKeyState(k keycode.Code) state {
	return state{kind: stateFakeKey, keyCode: k}
}

func momentaryLayerState(layer int, coord event.Coord) state {
	return state{kind: stateMomentaryLayer, layer: layer, coord: coord, hasCoord: true}
}

func toggleLayerState(layer int) state {
	return state{kind: stateToggleLayer, layer: layer}
}

func customState(v action.Custom, coord event.Coord) state {
	return state{kind: stateCustom, custom: v, coord: coord, hasCoord: true}
}

// keycodeOf returns the keycode this state contributes to the HID report,
// and whether it contributes one at all.
func (s state) keycodeOf() (keycode.Code, bool) {
	switch s.kind {
	case stateNormalKey, stateFakeKey:
		return s.keyCode, true
	default:
		return 0, false
	}
}

// layerOf returns the layer index this state contributes as a layer
// modifier, and whether it is one at all.
func (s state) layerOf() (int, bool) {
	switch s.kind {
	case stateMomentaryLayer, stateToggleLayer:
		return s.layer, true
	default:
		return 0, false
	}
}

// releaseAt returns (s, true) if s survives a matrix release at c, or
// (zero, false) if the release retires it. A release only ever retires
// NormalKey, MomentaryLayerModifier, and Custom states at matching
// coordinates; FakeKey and ToggleLayerModifier states have no matrix
// coordinate meaning and are untouched. Retiring a Custom state reports
// its release through custom.
func (s state) releaseAt(c event.Coord, custom *CustomEvent) (state, bool) {
	switch s.kind {
	case stateNormalKey, stateMomentaryLayer:
		if s.hasCoord && s.coord == c {
			return state{}, false
		}
	case stateCustom:
		if s.hasCoord && s.coord == c {
			custom.update(customEventRelease(s.custom))
			return state{}, false
		}
	}
	return s, true
}

// sequenceRelease returns (s, true) if s survives removing one FakeKey
// of keycode k, or (zero, false) if s was that fake key.
func (s state) sequenceRelease(k keycode.Code) (state, bool) {
	if s.kind == stateFakeKey && s.keyCode == k {
		return state{}, false
	}
	return s, true
}

// stateSet is a bounded, order-preserving collection of states. It has
// set semantics in the sense that duplicate NormalKey/FakeKey entries are
// permitted and meaningful (spec.md §4.B) but is scanned in O(n), n<=64.
type stateSet struct {
	items []state
}

// push appends s, silently dropping it if the set is already at capacity.
func (ss *stateSet) push(s state) bool {
	if len(ss.items) >= maxStates {
		return false
	}
	ss.items = append(ss.items, s)
	return true
}

// retain keeps only the states for which keep returns true, preserving order.
func (ss *stateSet) retain(keep func(state) bool) {
	out := ss.items[:0]
	for _, s := range ss.items {
		if keep(s) {
			out = append(out, s)
		}
	}
	ss.items = out
}

// releaseCoord retires any state matching c, reporting custom releases
// through custom.
func (ss *stateSet) releaseCoord(c event.Coord, custom *CustomEvent) {
	ss.retain(func(s state) bool {
		_, ok := s.releaseAt(c, custom)
		return ok
	})
}

// releaseFakeKey removes the first FakeKey matching k (used by the
// sequence player's Tap/Release steps, which remove exactly one fake per
// matching keycode rather than all of them if several were stacked).
func (ss *stateSet) releaseFakeKey(k keycode.Code) {
	removed := false
	ss.retain(func(s state) bool {
		if !removed && s.kind == stateFakeKey && s.keyCode == k {
			removed = true
			return false
		}
		return true
	})
}

// retainSequenceSurvivors removes every remaining FakeKey of keycode k —
// used for the sequence player's end-of-program cleanup sweep, which runs
// when a program has consumed all of its bytes and clears every fake key
// still held, not just one. A program terminated early on a malformed
// instruction skips this sweep.
func (ss *stateSet) retainSequenceSurvivors(k keycode.Code) {
	ss.retain(func(s state) bool {
		_, ok := s.sequenceRelease(k)
		return ok
	})
}

// reverseFindLayer scans from the back for the most recently pushed
// layer-modifier state (spec.md §4.C current_layer): "the layer of the
// most recently added MomentaryLayerModifier or ToggleLayerModifier in
// states (search states in reverse)".
func (ss *stateSet) reverseFindLayer() (int, bool) {
	for i := len(ss.items) - 1; i >= 0; i-- {
		if l, ok := ss.items[i].layerOf(); ok {
			return l, true
		}
	}
	return 0, false
}

// keycodes yields each NormalKey and FakeKey's keycode in insertion
// order, duplicates included.
func (ss *stateSet) keycodes() []keycode.Code {
	out := make([]keycode.Code, 0, len(ss.items))
	for _, s := range ss.items {
		if k, ok := s.keycodeOf(); ok {
			out = append(out, k)
		}
	}
	return out
}

// removeToggleLayer removes a ToggleLayerModifier for layer n if one
// exists, reporting whether it found (and removed) one.
func (ss *stateSet) removeToggleLayer(n int) bool {
	removed := false
	ss.retain(func(s state) bool {
		if s.kind == stateToggleLayer && s.layer == n {
			removed = true
			return false
		}
		return true
	})
	return removed
}

// ageAll is a no-op placeholder kept for symmetry with event.Stacked.Age:
// in this port states carry no age of their own (the Rust source's
// State::tick is an identity transform; states only disappear via
// release/sequence-completion, never via elapsed time).
func (ss *stateSet) ageAll() {}
