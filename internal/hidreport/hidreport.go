// Package hidreport assembles USB HID input reports from the set of
// keycodes the engine currently holds, and offers the inverse direction
// (ASCII reconstruction) for display/export tooling. Neither direction
// is a core engine responsibility; both live here so cmd/keyflow can
// stay a thin wiring layer.
package hidreport

import "github.com/nullkey/keyflow/internal/keycode"

// BootReportLen is the fixed size of a USB HID boot-protocol keyboard
// report: 1 modifier byte, 1 reserved byte, 6 keycode slots.
const BootReportLen = 8

// rolloverCode fills every keycode slot when more than six non-modifier
// keys are held at once, signalling overflow to the host rather than
// reporting a truncated or wrong key set.
const rolloverCode = 0x01

// BootReport is an 8-byte USB HID boot-protocol keyboard report.
type BootReport [BootReportLen]byte

// Modifier returns the report's modifier byte (byte 0).
func (r BootReport) Modifier() byte { return r[0] }

// Keys returns the report's six keycode slots (bytes 2-7).
func (r BootReport) Keys() [6]byte {
	var k [6]byte
	copy(k[:], r[2:8])
	return k
}

// Overflowed reports whether this report signals NKRO rollover (more
// than six non-modifier keys held at once).
func (r BootReport) Overflowed() bool {
	for _, b := range r[2:8] {
		if b != rolloverCode {
			return false
		}
	}
	return true
}

// BuildBootReport assembles a boot-protocol report from held, the
// engine's currently-held keycode set. Modifier keycodes are folded
// into the modifier byte rather than occupying a keycode slot, matching
// how every real USB HID keyboard report works. Consumer-control
// keycodes (keycode.IsConsumer) are excluded — they belong in a
// separate ConsumerReport — as is keycode.No. When more than six
// non-modifier, non-consumer keycodes remain, the six keycode slots are
// filled with the rollover marker instead of a truncated key list.
func BuildBootReport(held []keycode.Code) BootReport {
	var r BootReport
	var slots []byte

	for _, c := range held {
		if c == keycode.No || c.IsConsumer() {
			continue
		}
		if bit, ok := c.ModifierBit(); ok {
			r[0] |= bit
			continue
		}
		slots = append(slots, byte(c))
	}

	if len(slots) > 6 {
		for i := 2; i < BootReportLen; i++ {
			r[i] = rolloverCode
		}
		return r
	}

	copy(r[2:8], slots)
	return r
}

// ConsumerReportLen is the size of the minimal single-usage
// consumer-control report this package emits: a 16-bit little-endian
// usage ID, zero meaning "no consumer key pressed".
const ConsumerReportLen = 2

// ConsumerReport is a minimal single-usage HID consumer-control report.
type ConsumerReport [ConsumerReportLen]byte

// Usage returns the report's 16-bit consumer usage ID, or 0 if none is
// active.
func (r ConsumerReport) Usage() uint16 {
	return uint16(r[0]) | uint16(r[1])<<8
}

// BuildConsumerReport returns a report carrying the first consumer-range
// keycode found in held (real consumer-control hardware usage pages
// report one active control at a time; if the engine is somehow holding
// more than one, only the first survives). An empty held, or one with no
// consumer keycode, yields the zero report.
func BuildConsumerReport(held []keycode.Code) ConsumerReport {
	var r ConsumerReport
	for _, c := range held {
		if c.IsConsumer() {
			usage := uint16(c)
			r[0] = byte(usage)
			r[1] = byte(usage >> 8)
			return r
		}
	}
	return r
}

// Decode reconstructs the printable text a stream of held-keycode
// snapshots would have typed, using keycode.ToASCII. Each element of
// snapshots is the Keycodes() result from one engine tick; repeated
// identical snapshots across consecutive ticks (a key still held) are
// collapsed to a single character, since the engine reports a key for
// every tick it remains down, not once per press. Keycodes with no
// ASCII representation (function keys, arrows, bare modifiers with
// nothing else held) are silently skipped rather than aborting the
// reconstruction.
func Decode(snapshots [][]keycode.Code) string {
	out := make([]byte, 0, len(snapshots))
	var prev []keycode.Code

	for _, snap := range snapshots {
		if sameKeys(snap, prev) {
			prev = snap
			continue
		}
		prev = snap

		shift := false
		var typed keycode.Code
		for _, c := range snap {
			if c == keycode.LShift || c == keycode.RShift {
				shift = true
				continue
			}
			if !c.IsModifier() && c != keycode.No {
				typed = c
			}
		}
		if typed == keycode.No {
			continue
		}
		if b, ok := keycode.ToASCII(typed, shift); ok {
			out = append(out, b)
		}
	}
	return string(out)
}

func sameKeys(a, b []keycode.Code) bool {
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
