package des

import "testing"

func TestCalendarOrdersByTimeThenPriorityThenID(t *testing.T) {
	c := NewCalendar()
	c.Insert(&Event{ID: 3, Time: 5, Priority: 10})
	c.Insert(&Event{ID: 1, Time: 1, Priority: 10})
	c.Insert(&Event{ID: 2, Time: 1, Priority: 5})
	c.Insert(&Event{ID: 4, Time: 1, Priority: 5}) // same time+priority as ID 2, tie-break on ID

	want := []int64{2, 4, 1, 3}
	for _, id := range want {
		evt := c.PopNext()
		if evt == nil || evt.ID != id {
			t.Fatalf("want event %d next, got %+v", id, evt)
		}
	}
	if !c.IsEmpty() {
		t.Fatal("calendar should be empty after draining")
	}
}

func TestCalendarPopNextOnEmptyReturnsNil(t *testing.T) {
	c := NewCalendar()
	if evt := c.PopNext(); evt != nil {
		t.Fatalf("want nil from an empty calendar, got %+v", evt)
	}
}

func TestCalendarCancelledEventStillPopsInOrder(t *testing.T) {
	// Cancellation is a live flag, not a heap removal (spec.md §4.1):
	// a cancelled event is still popped at its scheduled position, and
	// it is the caller's job (the Executive's main loop) to skip it.
	c := NewCalendar()
	a := &Event{ID: 1, Time: 1}
	b := &Event{ID: 2, Time: 2}
	c.Insert(a)
	c.Insert(b)
	a.cancelled = true

	first := c.PopNext()
	if first.ID != 1 || !first.Cancelled() {
		t.Fatalf("want cancelled event 1 first, got %+v", first)
	}
	second := c.PopNext()
	if second.ID != 2 {
		t.Fatalf("want event 2 second, got %+v", second)
	}
}

func TestCalendarClear(t *testing.T) {
	c := NewCalendar()
	c.Insert(&Event{ID: 1, Time: 1})
	c.Insert(&Event{ID: 2, Time: 2})
	c.Clear()
	if !c.IsEmpty() || c.Len() != 0 {
		t.Fatalf("want empty calendar after Clear, got len=%d", c.Len())
	}
}
