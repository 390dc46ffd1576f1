// Package action defines the Action sum type dispatched by the layout
// engine, and the configuration structs for its compound behaviors
// (hold-tap, one-shot, tap dance).
package action

import (
	"github.com/nullkey/keyflow/internal/event"
	"github.com/nullkey/keyflow/internal/keycode"
)

// Kind tags which variant an Action holds. Action is a closed sum type;
// Go has no tagged unions, so a Kind-plus-fields struct stands in for the
// Rust enum, switched on throughout the dispatcher.
type Kind int

const (
	KindNoOp Kind = iota
	KindTrans
	KindKeyCode
	KindMultipleKeyCodes
	KindMultipleActions
	KindLayer
	KindDefaultLayer
	KindToggleLayer
	KindHoldTap
	KindOneShot
	KindTapDance
	KindSequence
	KindCustom
)

// Custom is the opaque user-defined value a Custom action carries. The
// engine surfaces it unexamined through CustomEvent; callers downcast or
// dispatch on its numeric value themselves.
type Custom uint16

// Action is a single entry in a layer's key map. Zero value is NoOp.
// Variants are built with the constructor functions below rather than by
// setting fields directly, matching the closed set of shapes spec.md's
// Action sum type allows.
type Action struct {
	kind     Kind
	keyCode  keycode.Code
	keyCodes []keycode.Code
	actions  []Action
	layer    int
	holdTap  *HoldTapAction
	oneShot  *OneShotAction
	tapDance *TapDanceAction
	sequence []byte
	custom   Custom
}

// Kind returns the variant tag of a.
func (a Action) Kind() Kind { return a.kind }

// NoOp is the do-nothing action: no state change, no keycode.
func NoOp() Action { return Action{kind: KindNoOp} }

// Trans defers to the same coordinate on the default layer.
func Trans() Action { return Action{kind: KindTrans} }

// KeyCode activates a single HID keycode while the key is held.
func KeyCode(k keycode.Code) Action { return Action{kind: KindKeyCode, keyCode: k} }

// MultipleKeyCodes activates several HID keycodes simultaneously while held.
func MultipleKeyCodes(ks ...keycode.Code) Action {
	cp := append([]keycode.Code(nil), ks...)
	return Action{kind: KindMultipleKeyCodes, keyCodes: cp}
}

// MultipleActions dispatches several sub-actions for a single press.
func MultipleActions(as ...Action) Action {
	cp := append([]Action(nil), as...)
	return Action{kind: KindMultipleActions, actions: cp}
}

// Layer activates layer n momentarily, for as long as the key is held.
func Layer(n int) Action { return Action{kind: KindLayer, layer: n} }

// DefaultLayer sets the default (base) layer on press.
func DefaultLayer(n int) Action { return Action{kind: KindDefaultLayer, layer: n} }

// ToggleLayer latches layer n on press; a second press of the same
// ToggleLayer action un-latches it.
func ToggleLayer(n int) Action { return Action{kind: KindToggleLayer, layer: n} }

// HoldTap dispatches h.Hold if the key is held past its timeout (or a
// strategy-specific condition fires first), h.Tap otherwise.
func HoldTap(h *HoldTapAction) Action { return Action{kind: KindHoldTap, holdTap: h} }

// OneShot arms a modifier (or other action) that stays active through
// exactly one subsequent key (or until its timeout), per o.EndConfig.
func OneShot(o *OneShotAction) Action { return Action{kind: KindOneShot, oneShot: o} }

// TapDance chooses among td.Actions by repeated presses within a timeout.
func TapDance(td *TapDanceAction) Action { return Action{kind: KindTapDance, tapDance: td} }

// Sequence plays a macro byte program (see package engine's sequence
// player for the grammar).
func Sequence(bytes []byte) Action {
	cp := append([]byte(nil), bytes...)
	return Action{kind: KindSequence, sequence: cp}
}

// CustomAction surfaces v to the host via CustomEvent on press/release.
// Named CustomAction (not Custom) to avoid colliding with the Custom type.
func CustomAction(v Custom) Action { return Action{kind: KindCustom, custom: v} }

// KeyCodeValue returns the keycode of a KindKeyCode action; only valid when
// Kind() == KindKeyCode.
func (a Action) KeyCodeValue() keycode.Code { return a.keyCode }

// KeyCodes returns the keycode slice of a KindMultipleKeyCodes action.
func (a Action) KeyCodes() []keycode.Code { return a.keyCodes }

// Actions returns the sub-action slice of a KindMultipleActions action.
func (a Action) Actions() []Action { return a.actions }

// Layer returns the layer index of a Layer/DefaultLayer/ToggleLayer action.
func (a Action) Layer() int { return a.layer }

// HoldTapValue returns the hold-tap configuration of a KindHoldTap action.
func (a Action) HoldTapValue() *HoldTapAction { return a.holdTap }

// OneShotValue returns the one-shot configuration of a KindOneShot action.
func (a Action) OneShotValue() *OneShotAction { return a.oneShot }

// TapDanceValue returns the tap-dance configuration of a KindTapDance action.
func (a Action) TapDanceValue() *TapDanceAction { return a.tapDance }

// SequenceBytes returns the macro program of a KindSequence action.
func (a Action) SequenceBytes() []byte { return a.sequence }

// CustomValue returns the opaque value of a KindCustom action.
func (a Action) CustomValue() Custom { return a.custom }

// Equal reports whether a and b are the same action. MultipleActions and
// MultipleKeyCodes compare element-wise; HoldTap/OneShot/TapDance compare
// by pointer identity, matching the Rust source's `&'static` sharing
// semantics (two layout slots referencing the very same HoldTapAction are
// the same tap-dance/hold-tap in progress; two separately-constructed but
// field-identical ones are not).
func (a Action) Equal(b Action) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindKeyCode:
		return a.keyCode == b.keyCode
	case KindMultipleKeyCodes:
		return codesEqual(a.keyCodes, b.keyCodes)
	case KindMultipleActions:
		if len(a.actions) != len(b.actions) {
			return false
		}
		for i := range a.actions {
			if !a.actions[i].Equal(b.actions[i]) {
				return false
			}
		}
		return true
	case KindLayer, KindDefaultLayer, KindToggleLayer:
		return a.layer == b.layer
	case KindHoldTap:
		return a.holdTap == b.holdTap
	case KindOneShot:
		return a.oneShot == b.oneShot
	case KindTapDance:
		return a.tapDance == b.tapDance
	case KindSequence:
		return string(a.sequence) == string(b.sequence)
	case KindCustom:
		return a.custom == b.custom
	default:
		return true
	}
}

func codesEqual(a, b []keycode.Code) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// WaitingAction is the arbiter's resolution of a pending hold-tap key.
type WaitingAction int

const (
	// Hold triggers the HoldTapAction's Hold action.
	Hold WaitingAction = iota
	// Tap triggers the HoldTapAction's Tap action.
	Tap
	// Drop discards the press entirely, as if it never happened.
	Drop
)

// HoldTapConfig selects the strategy the arbiter uses to resolve a
// pending hold-tap key before its timeout elapses.
type HoldTapConfig int

const (
	// HoldTapDefault applies only the timeout/release rules.
	HoldTapDefault HoldTapConfig = iota
	// HoldOnOtherKeyPress resolves Hold as soon as any other key is pressed.
	HoldOnOtherKeyPress
	// PermissiveHold resolves Hold once some other pressed key has also
	// been released while this key is still waiting.
	PermissiveHold
	// HoldTapCustom defers to HoldTapAction.CustomResolve.
	HoldTapCustom
)

// CustomResolver observes the current event stack and optionally returns
// an early resolution for a waiting hold-tap key. ok=false means "no
// decision yet, keep waiting".
type CustomResolver func(stack event.Iterator) (decision WaitingAction, ok bool)

// HoldTapAction configures a hold-tap (a.k.a. mod-tap/layer-tap) key.
type HoldTapAction struct {
	// Timeout is how many ticks to wait, absent an earlier resolution,
	// before resolving Hold.
	Timeout uint16
	// Hold is dispatched when the key resolves to a hold.
	Hold Action
	// Tap is dispatched when the key resolves to a tap.
	Tap Action
	// Config selects the resolution strategy.
	Config HoldTapConfig
	// CustomResolve is consulted when Config == HoldTapCustom.
	CustomResolve CustomResolver
	// TapHoldInterval, if nonzero, lets a second press of the very same
	// coordinate within TapHoldInterval ticks of its previous hold-tap
	// press skip arbitration and immediately repeat Tap, unless that
	// previous press resolved as Hold (the
	// "repeat-tap" shortcut described in spec.md §4.D).
	TapHoldInterval uint16
}

// OneShotEndConfig selects which event ends a one-shot activation.
type OneShotEndConfig int

const (
	// EndOnFirstPress ends the one-shot on the very next non-oneshot press.
	EndOnFirstPress OneShotEndConfig = iota
	// EndOnFirstRelease ends it on the release of the next non-oneshot press.
	EndOnFirstRelease
	// EndOnFirstPressOrRepress is EndOnFirstPress, plus: re-pressing the
	// same one-shot key ends it immediately (instead of re-arming it).
	EndOnFirstPressOrRepress
	// EndOnFirstReleaseOrRepress is EndOnFirstRelease, plus the same
	// repress-ends-it behavior.
	EndOnFirstReleaseOrRepress
)

// OneShotAction configures a one-shot (sticky) modifier or other action.
type OneShotAction struct {
	// Action is dispatched immediately, and held until the one-shot ends.
	Action Action
	// Timeout is how many ticks the one-shot may wait for its end
	// condition before expiring unconditionally.
	Timeout uint16
	// EndConfig selects which event ends the one-shot.
	EndConfig OneShotEndConfig
}

// TapDanceConfig selects when a tap dance fires its chosen action.
type TapDanceConfig int

const (
	// Eager fires the action for the current press count on every press,
	// replacing the previous firing as the count increases.
	Eager TapDanceConfig = iota
	// Lazy waits until the timeout elapses or the last action is reached
	// before firing once.
	Lazy
)

// TapDanceAction configures a tap-dance key: repeated presses within
// Timeout ticks of each other select among Actions by press count.
type TapDanceAction struct {
	// Actions is indexed by (press count - 1); the last entry is reused
	// if a tap dance has nothing left to advance to once reached.
	Actions []Action
	// Timeout is how many ticks to wait between presses before the
	// dance is considered finished.
	Timeout uint16
	// Config selects eager vs. lazy firing.
	Config TapDanceConfig
}
