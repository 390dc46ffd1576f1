package engine

import "github.com/nullkey/keyflow/internal/event"

// maxStacked bounds the event stack (spec.md §3: "Stack never exceeds 16
// elements; on overflow the oldest is popped and immediately dispatched").
const maxStacked = 16

// eventStack is a bounded FIFO of recently arrived, not-yet-dispatched
// matrix events, each aged in ticks since arrival.
type eventStack struct {
	items []event.Stacked
}

// pushBack appends e. If this overflows the 16-slot capacity, the oldest
// stacked event is evicted and returned for the caller to dispatch.
func (s *eventStack) pushBack(e event.Event) (evicted event.Stacked, overflowed bool) {
	s.items = append(s.items, event.Stacked{Event: e, Since: 0})
	if len(s.items) > maxStacked {
		evicted = s.items[0]
		s.items = s.items[1:]
		return evicted, true
	}
	return event.Stacked{}, false
}

// popFront removes and returns the oldest stacked event.
func (s *eventStack) popFront() (event.Stacked, bool) {
	if len(s.items) == 0 {
		return event.Stacked{}, false
	}
	e := s.items[0]
	s.items = s.items[1:]
	return e, true
}

// ageAll advances every stacked event's Since counter by one tick.
func (s *eventStack) ageAll() {
	for i := range s.items {
		s.items[i].Age()
	}
}

func (s *eventStack) len() int { return len(s.items) }

func (s *eventStack) isEmpty() bool { return len(s.items) == 0 }

// Len implements event.Iterator.
func (s *eventStack) Len() int { return len(s.items) }

// At implements event.Iterator.
func (s *eventStack) At(i int) event.Stacked { return s.items[i] }

var _ event.Iterator = (*eventStack)(nil)
