package des

// Default priorities, per spec.md §6's numeric choices table. Lower runs
// first at a given simulated time. Following the teacher's convention
// (graph/options.go) of naming tunable defaults instead of inlining magic
// numbers.
const (
	// DefaultEventPriority is used by Executive.Schedule when the caller
	// does not specify one.
	DefaultEventPriority = 10

	// DefaultEndReplicationPriority is the priority of the distinguished
	// end-of-replication event; it is deliberately high so ordinary events
	// scheduled for the same instant run first.
	DefaultEndReplicationPriority = 10000

	// DefaultWarmUpPriority is used for an element's individual warmup event.
	DefaultWarmUpPriority = 9000

	// DefaultBatchPriority is reserved for batch/statistics-collection events.
	DefaultBatchPriority = 8000

	// DefaultTimedUpdatePriority is used for an element's recurring
	// timed-update event.
	DefaultTimedUpdatePriority = 3

	// DefaultGeneratorPriority is used for Event Generator arrival events.
	// It is one step below DefaultEventPriority so that, at a tie, a
	// generator's arrival fires before an ordinary same-priority event
	// scheduled for the same instant (spec.md §4.7 "Priority").
	DefaultGeneratorPriority = DefaultEventPriority - 1

	// DefaultScheduleStartPriority is used for a Schedule's own start event.
	DefaultScheduleStartPriority = DefaultEventPriority - 5

	// DefaultScheduleItemStartPriority is used for Schedule Item start events.
	DefaultScheduleItemStartPriority = DefaultEventPriority - 4

	// DefaultMaxConditionalScans bounds the conditional-action C-phase.
	DefaultMaxConditionalScans = 1000
)

// Action is the code a scheduled Event invokes when it is dispatched. The
// Executive passes the Event itself: the simulated time is read off the
// Event or the Executive, and the optional payload is evt.Message.
type Action func(evt *Event)

// Event is an immutable-after-schedule record of a future action. Once
// Schedule returns an Event, its Time and Priority never change; the
// Cancel flag is the sole permitted post-schedule mutation (spec.md §5
// "Cancellation").
type Event struct {
	// ID is a unique, increasing identifier assigned at scheduling time.
	// Because ids are monotone with scheduling order, they form the final
	// tie-break in the calendar's ordering.
	ID int64

	// Time is the absolute simulated time this event fires at.
	Time float64

	// Priority is the tie-break for events sharing a Time; lower runs
	// first.
	Priority int

	// Name optionally labels the event for diagnostics.
	Name string

	// Message is an optional, caller-defined payload delivered to the
	// Action unchanged.
	Message any

	// Element is the model element that scheduled this event, if any.
	Element Element

	// CreatedAt is the simulated time at which the event was scheduled
	// (not necessarily the same replication clock value it fires at).
	CreatedAt float64

	// cancelled is checked at dispatch time; a cancelled event is popped
	// from the calendar and skipped rather than removed from the heap in
	// place (the "live bitset" re-architecture in spec.md §9).
	cancelled bool

	// scheduled is true from Schedule until the event is popped (whether
	// or not it is then found cancelled); Cancel does not clear it. It is
	// owned by the Executive.
	scheduled bool

	// detached is true for events whose computed time exceeded the
	// scheduled end and were therefore never inserted into the calendar
	// (spec.md §4.2 "Computed event time..."). A detached event's action
	// never runs.
	detached bool

	action Action

	// seq breaks ties between events that otherwise compare equal; it is
	// set to ID, kept as a separate field only for clarity at call sites
	// that talk about "scheduling sequence" per spec.md §3.
	seq int64
}

// Cancelled reports whether this event has been cancelled.
func (e *Event) Cancelled() bool { return e.cancelled }

// Scheduled reports whether this event is currently owned by a calendar
// (inserted and not yet popped), per spec.md §3 "scheduled flag (mutable;
// owned by executive)".
func (e *Event) Scheduled() bool { return e.scheduled }

// Detached reports whether this event was returned by Schedule without
// ever being inserted into the calendar, because its computed time
// exceeded the scheduled end time. Detached events never execute.
func (e *Event) Detached() bool { return e.detached }

// Cancel marks the event so that, when popped from the calendar, its
// action is skipped. Cancelling an event that is not currently scheduled
// is a precondition error (spec.md §5 "Cancellation").
func (e *Event) Cancel() error {
	if e == nil {
		return newPrecondition("NIL_EVENT", "cannot cancel a nil event")
	}
	if !e.scheduled {
		return newPrecondition("EVENT_NOT_SCHEDULED", "cannot cancel event %d (%q): not currently scheduled", e.ID, e.Name)
	}
	e.cancelled = true
	return nil
}

// eventHeap implements heap.Interface, ordering events by
// (Time, Priority, ID) ascending — the strict weak order spec.md §3 and
// §4.1 require. Grounded on the teacher's workHeap in graph/scheduler.go,
// stripped of the channel/backpressure machinery that made sense for a
// concurrent frontier but has no place in a single-threaded calendar
// (spec.md §5).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
