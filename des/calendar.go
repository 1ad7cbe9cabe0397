package des

import "container/heap"

// Calendar is an ordered multiset of events keyed by (Time, Priority, ID)
// ascending, yielding the minimum event on demand (spec.md §4.1). It is
// the event-list half of the teacher's Frontier (graph/scheduler.go)
// with the concurrency layer removed: no channel, no mutex, no atomic
// metrics — the Executive is the only caller, on the only goroutine
// (spec.md §5).
type Calendar struct {
	heap eventHeap
}

// NewCalendar returns an empty Calendar.
func NewCalendar() *Calendar {
	c := &Calendar{heap: make(eventHeap, 0)}
	heap.Init(&c.heap)
	return c
}

// Insert adds evt to the calendar. evt.scheduled is set true.
func (c *Calendar) Insert(evt *Event) {
	evt.scheduled = true
	heap.Push(&c.heap, evt)
}

// PopNext removes and returns the minimum event under the calendar's
// order, or nil if the calendar is empty. The returned event's scheduled
// flag is cleared; callers are responsible for checking Cancelled.
func (c *Calendar) PopNext() *Event {
	if len(c.heap) == 0 {
		return nil
	}
	evt := heap.Pop(&c.heap).(*Event)
	evt.scheduled = false
	return evt
}

// Peek returns the minimum event without removing it, or nil if the
// calendar is empty.
func (c *Calendar) Peek() *Event {
	if len(c.heap) == 0 {
		return nil
	}
	return c.heap[0]
}

// Len returns the number of events currently in the calendar (including
// any that are cancelled but not yet popped).
func (c *Calendar) Len() int { return len(c.heap) }

// IsEmpty reports whether the calendar holds no events.
func (c *Calendar) IsEmpty() bool { return len(c.heap) == 0 }

// Clear removes every event from the calendar without dispatching them.
// Used by Executive.Initialize at the start of each replication.
func (c *Calendar) Clear() {
	c.heap = make(eventHeap, 0)
	heap.Init(&c.heap)
}

// Remove is implicit in this design: spec.md §4.1 documents it as "via
// cancel flag" — callers call Event.Cancel, and the cancelled event is
// skipped when it is eventually popped rather than searched for and
// spliced out of the heap in place. There is no O(n) removal path.
