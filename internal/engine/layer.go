package engine

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/event"
)

// Layers is a 3-D [layer][row][col] table of actions, mutable in place
// for live remapping via Layout.ChangeAction. It is exclusively owned by
// the Layout that was constructed with it (spec.md §9: "the layout is
// exclusively owned by the engine").
type Layers [][][]action.Action

// NewLayers allocates a Layers table of the given dimensions, every slot
// initialized to NoOp.
func NewLayers(numLayers, rows, cols int) Layers {
	l := make(Layers, numLayers)
	for i := range l {
		l[i] = make([][]action.Action, rows)
		for r := range l[i] {
			l[i][r] = make([]action.Action, cols)
		}
	}
	return l
}

// at returns the action at (layer, coord), and whether that slot exists.
func (l Layers) at(layer int, c event.Coord) (action.Action, bool) {
	if layer < 0 || layer >= len(l) {
		return action.Action{}, false
	}
	rows := l[layer]
	if int(c.Row) >= len(rows) {
		return action.Action{}, false
	}
	row := rows[c.Row]
	if int(c.Col) >= len(row) {
		return action.Action{}, false
	}
	return row[c.Col], true
}

// set writes the action at (layer, coord), reporting false if out of bounds.
func (l Layers) set(layer int, c event.Coord, a action.Action) bool {
	if layer < 0 || layer >= len(l) {
		return false
	}
	rows := l[layer]
	if int(c.Row) >= len(rows) {
		return false
	}
	row := rows[c.Row]
	if int(c.Col) >= len(row) {
		return false
	}
	row[c.Col] = a
	return true
}

// pressAsAction resolves the action to dispatch for a press at coord on
// layer, per spec.md §4.C: a missing slot is NoOp; Trans defers to the
// default layer (or becomes NoOp if already on it); anything else is
// returned as-is.
func (l Layers) pressAsAction(c event.Coord, layer, defaultLayer int) action.Action {
	a, ok := l.at(layer, c)
	if !ok {
		return action.NoOp()
	}
	if a.Kind() == action.KindTrans {
		if layer != defaultLayer {
			return l.pressAsAction(c, defaultLayer, defaultLayer)
		}
		return action.NoOp()
	}
	return a
}
