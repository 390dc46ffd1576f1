package engine

import "github.com/nullkey/keyflow/internal/action"

// customKind tags which CustomEvent variant is held.
type customKind int

const (
	customNoEvent customKind = iota
	customPress
	customRelease
)

// CustomEvent is returned from Layout.Tick, reporting a press or release
// of a Custom action's value, per spec.md §6 "Custom-event boundary".
type CustomEvent struct {
	kind  customKind
	value action.Custom
}

// NoEvent reports that no custom action fired this tick.
func NoEvent() CustomEvent { return CustomEvent{kind: customNoEvent} }

func customEventPress(v action.Custom) CustomEvent {
	return CustomEvent{kind: customPress, value: v}
}

func customEventRelease(v action.Custom) CustomEvent {
	return CustomEvent{kind: customRelease, value: v}
}

// IsNoEvent reports whether e carries no custom event.
func (e CustomEvent) IsNoEvent() bool { return e.kind == customNoEvent }

// IsPress reports whether e is a custom-value press.
func (e CustomEvent) IsPress() bool { return e.kind == customPress }

// IsRelease reports whether e is a custom-value release.
func (e CustomEvent) IsRelease() bool { return e.kind == customRelease }

// Value returns the custom value carried by a Press or Release event.
func (e CustomEvent) Value() action.Custom { return e.value }

// update folds a newly-produced event into e according to the monotonic
// ordering law in spec.md §6/§8: "the event can only be modified in the
// order NoEvent < Press < Release". Release always wins over NoEvent or
// Press; Press only replaces NoEvent; nothing ever replaces a Release.
func (e *CustomEvent) update(next CustomEvent) {
	switch {
	case next.kind == customRelease && (e.kind == customNoEvent || e.kind == customPress):
		*e = next
	case next.kind == customPress && e.kind == customNoEvent:
		*e = next
	}
}
