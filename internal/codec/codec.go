// Package codec implements the static bidirectional mapping between
// engine actions and 16-bit wire codes described in spec.md §4.I, plus
// the flat big-endian keymap array used for persistent storage
// (spec.md §6 "Persistent state layout").
package codec

import (
	"github.com/nullkey/keyflow/internal/action"
	"github.com/nullkey/keyflow/internal/keycode"
)

const (
	// Leave is the sentinel wire code meaning "do not overwrite the
	// current action at this slot" — returned by Encode for any action
	// outside the mappable set, and interpreted that way by Decode.
	Leave uint16 = 0xFFFF

	codeNoOp  uint16 = 0x0000
	codeTrans uint16 = 0x0001

	keyCodeLow  uint16 = 0x0004
	keyCodeHigh uint16 = 0x00FF

	layerBase        uint16 = 0x5220
	defaultLayerBase uint16 = 0x5240
	layerRangeSize   uint16 = 32

	customBase      uint16 = 0x7E00
	customRangeSize uint16 = 32
)

// Encode maps a to its 16-bit wire code, or Leave if a has no
// representation in the mappable set.
func Encode(a action.Action) uint16 {
	switch a.Kind() {
	case action.KindNoOp:
		return codeNoOp
	case action.KindTrans:
		return codeTrans
	case action.KindKeyCode:
		k := uint16(a.KeyCodeValue())
		if k >= keyCodeLow && k <= keyCodeHigh {
			return k
		}
		return Leave
	case action.KindLayer:
		n := a.Layer()
		if n >= 0 && uint16(n) < layerRangeSize {
			return layerBase + uint16(n)
		}
		return Leave
	case action.KindDefaultLayer:
		n := a.Layer()
		if n >= 0 && uint16(n) < layerRangeSize {
			return defaultLayerBase + uint16(n)
		}
		return Leave
	case action.KindCustom:
		id := uint16(a.CustomValue())
		if id < customRangeSize {
			return customBase + id
		}
		return Leave
	default:
		return Leave
	}
}

// Decode maps a 16-bit wire code back to an Action, and reports whether
// code fell in the mappable set. A false return (including for code ==
// Leave) means the caller should leave whatever action already occupies
// this slot untouched rather than overwrite it with the zero Action.
func Decode(code uint16) (action.Action, bool) {
	switch {
	case code == codeNoOp:
		return action.NoOp(), true
	case code == codeTrans:
		return action.Trans(), true
	case code >= keyCodeLow && code <= keyCodeHigh:
		return action.KeyCode(keycode.Code(code)), true
	case code >= layerBase && code < layerBase+layerRangeSize:
		return action.Layer(int(code - layerBase)), true
	case code >= defaultLayerBase && code < defaultLayerBase+layerRangeSize:
		return action.DefaultLayer(int(code - defaultLayerBase)), true
	case code >= customBase && code < customBase+customRangeSize:
		return action.CustomAction(action.Custom(code - customBase)), true
	default:
		return action.Action{}, false
	}
}

// EncodeKeymap flattens a [layer][row][col] keymap into the persistent
// big-endian wire format: layer-major, row-major, col-minor, two bytes
// per code.
func EncodeKeymap(keymap [][][]action.Action) []byte {
	out := make([]byte, 0, keymapLen(keymap)*2)
	for _, layer := range keymap {
		for _, row := range layer {
			for _, a := range row {
				code := Encode(a)
				out = append(out, byte(code>>8), byte(code))
			}
		}
	}
	return out
}

func keymapLen(keymap [][][]action.Action) int {
	n := 0
	for _, layer := range keymap {
		for _, row := range layer {
			n += len(row)
		}
	}
	return n
}

// DecodeKeymap walks flat in layer-major/row-major/col-minor order,
// writing each decoded action into the corresponding slot of keymap.
// A slot whose wire code is Leave, or any code Decode does not
// recognize, is left untouched — so storage round-trips never destroy
// an existing non-representable action. It returns the number of bytes
// consumed.
func DecodeKeymap(flat []byte, keymap [][][]action.Action) int {
	i := 0
	for l := range keymap {
		for r := range keymap[l] {
			for c := range keymap[l][r] {
				if i+2 > len(flat) {
					return i
				}
				code := uint16(flat[i])<<8 | uint16(flat[i+1])
				i += 2
				if code == Leave {
					continue
				}
				if a, ok := Decode(code); ok {
					keymap[l][r][c] = a
				}
			}
		}
	}
	return i
}
