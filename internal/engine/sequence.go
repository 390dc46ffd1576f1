package engine

import "github.com/nullkey/keyflow/internal/keycode"

// maxSequences bounds the active-sequence ring (spec.md §3: "active
// sequences: bounded ring of ≤4 SequenceState").
const maxSequences = 4

// sequenceState is one in-flight macro program, per spec.md §4.H.
type sequenceState struct {
	remaining []byte
	delay     uint16

	tapInProgress   bool
	asciiInProgress bool

	// pendingKey/pendingShift record what a two-tick Tap or ASCII-literal
	// step pushed on its first tick, so the second tick knows exactly
	// what to retire without re-decoding the head byte.
	pendingKey   keycode.Code
	pendingShift bool
}

// sequenceController owns the bounded ring of active macro programs.
type sequenceController struct {
	items []sequenceState
}

// enqueue starts a new macro program, dropping the oldest in-flight
// program if the ring is already at capacity (spec.md §3 overflow rule).
func (c *sequenceController) enqueue(bytes []byte) {
	cp := append([]byte(nil), bytes...)
	if len(c.items) >= maxSequences {
		c.items = c.items[1:]
	}
	c.items = append(c.items, sequenceState{remaining: cp})
}

func (c *sequenceController) isEmpty() bool { return len(c.items) == 0 }

// process advances every active sequence by exactly one instruction (or
// one delay tick), per spec.md §4.H. Each sequence is processed at most
// once per call, matching the Rust source's pop-front/push-back queue
// walk bounded to len(active_sequences) iterations.
func (c *sequenceController) process(ss *stateSet) {
	n := len(c.items)
	items := c.items
	c.items = items[:0:0]
	for i := 0; i < n; i++ {
		s := items[i]
		if next, ok := s.step(ss); ok {
			c.items = append(c.items, next)
		}
	}
}

// step runs one tick of s, returning the updated state and whether the
// sequence survives (ok=false means it terminated or finished this tick).
func (s sequenceState) step(ss *stateSet) (sequenceState, bool) {
	if s.delay > 0 {
		s.delay--
		return s, true
	}

	if s.tapInProgress {
		ss.releaseFakeKey(s.pendingKey)
		s.tapInProgress = false
		s.remaining = s.remaining[3:]
		return s, true
	}
	if s.asciiInProgress {
		ss.releaseFakeKey(s.pendingKey)
		if s.pendingShift {
			ss.releaseFakeKey(keycode.LShift)
		}
		s.asciiInProgress = false
		s.remaining = s.remaining[1:]
		return s, true
	}

	if len(s.remaining) == 0 {
		for _, st := range ss.items {
			if st.kind == stateFakeKey {
				ss.retainSequenceSurvivors(st.keyCode)
			}
		}
		return sequenceState{}, false
	}

	b := s.remaining[0]
	if b != 0x01 {
		k := keycode.FromASCII(b)
		shift := keycode.NeedsShift(b)
		ss.push(fakeKeyState(k))
		if shift {
			ss.push(fakeKeyState(keycode.LShift))
		}
		s.pendingKey = k
		s.pendingShift = shift
		s.asciiInProgress = true
		return s, true
	}

	if len(s.remaining) < 3 {
		return sequenceState{}, false
	}
	op := s.remaining[1]
	switch op {
	case 0x01: // Tap(k)
		k := keycode.Code(s.remaining[2])
		ss.push(fakeKeyState(k))
		s.pendingKey = k
		s.tapInProgress = true
		return s, true
	case 0x02: // Press(k)
		k := keycode.Code(s.remaining[2])
		ss.push(fakeKeyState(k))
		s.remaining = s.remaining[3:]
		return s, true
	case 0x03: // Release(k)
		k := keycode.Code(s.remaining[2])
		ss.releaseFakeKey(k)
		s.remaining = s.remaining[3:]
		return s, true
	case 0x04: // Delay
		digits := s.remaining[2:]
		if len(digits) == 0 || digits[0] == '0' {
			return sequenceState{}, false
		}
		value := 0
		i := 0
		for ; i < len(digits); i++ {
			d := digits[i]
			if d == '|' {
				break
			}
			if d < '0' || d > '9' {
				return sequenceState{}, false
			}
			value = value*10 + int(d-'0')
		}
		if i == len(digits) {
			return sequenceState{}, false // missing '|' terminator
		}
		s.remaining = s.remaining[2+i+1:]
		if value > 0 {
			s.delay = uint16(value - 1)
		}
		return s, true
	default:
		return sequenceState{}, false
	}
}
