package des

import (
	"fmt"
	"math"
	"time"
)

// ExecutiveState is one of the five states of the Executive (spec.md
// §4.2 "State machine").
type ExecutiveState int

const (
	ExecCreated ExecutiveState = iota
	ExecInitialized
	ExecBeforeEvent
	ExecAfterEvent
	ExecAfterExecution
)

func (s ExecutiveState) String() string {
	switch s {
	case ExecCreated:
		return "Created"
	case ExecInitialized:
		return "Initialized"
	case ExecBeforeEvent:
		return "BeforeEvent"
	case ExecAfterEvent:
		return "AfterEvent"
	case ExecAfterExecution:
		return "AfterExecution"
	default:
		return "Unknown"
	}
}

// ScheduleOption configures an Executive.Schedule call, following the
// teacher's functional-options convention (graph/options.go's
// Option/WithXxx pattern) rather than a long positional parameter list.
type ScheduleOption func(*scheduleConfig)

type scheduleConfig struct {
	message  any
	priority int
	name     string
}

// WithMessage attaches an arbitrary payload to the scheduled event.
func WithMessage(msg any) ScheduleOption { return func(c *scheduleConfig) { c.message = msg } }

// WithPriority overrides DefaultEventPriority for this event.
func WithPriority(p int) ScheduleOption { return func(c *scheduleConfig) { c.priority = p } }

// WithEventName labels the scheduled event for diagnostics.
func WithEventName(name string) ScheduleOption { return func(c *scheduleConfig) { c.name = name } }

// Executive owns the calendar and the current simulated time, and is the
// sole primitive model elements use to schedule future actions (spec.md
// §4.2). It is not safe for concurrent use — the kernel is single
// threaded by design (spec.md §5).
type Executive struct {
	calendar *Calendar
	state    ExecutiveState

	currentTime   float64
	scheduledEnd  float64 // absolute time beyond which events are detached, not inserted
	nextEventID   int64
	executedCount int64

	conditional *ConditionalActionProcessor

	endReplicationEvent *Event

	observers []StatusObserver

	// MaxWallTime bounds how long RunUntilEmpty may run in real time; zero
	// disables the check (spec.md §4.2 "Timeouts").
	MaxWallTime time.Duration
	wallStart   time.Time

	// stopRequested is set by RequestStop and checked between dispatches.
	stopRequested bool
}

// NewExecutive returns an Executive in the Created state.
func NewExecutive() *Executive {
	return &Executive{
		calendar:    NewCalendar(),
		state:       ExecCreated,
		conditional: NewConditionalActionProcessor(),
	}
}

// State returns the executive's current state.
func (ex *Executive) State() ExecutiveState { return ex.state }

// CurrentTime returns the simulated time the executive is currently at.
func (ex *Executive) CurrentTime() float64 { return ex.currentTime }

// ExecutedCount returns the number of events dispatched (non-cancelled,
// action invoked) since the last Initialize.
func (ex *Executive) ExecutedCount() int64 { return ex.executedCount }

// Conditional exposes the C-phase registry so model elements can
// register predicate/action pairs (spec.md §4.5 "registerConditionalActions").
func (ex *Executive) Conditional() *ConditionalActionProcessor { return ex.conditional }

// AddObserver attaches a status observer that receives OnEvent
// notifications around every dispatch.
func (ex *Executive) AddObserver(o StatusObserver) { ex.observers = append(ex.observers, o) }

// RemoveObserver detaches a previously attached observer.
func (ex *Executive) RemoveObserver(o StatusObserver) {
	for i, obs := range ex.observers {
		if obs == o {
			ex.observers = append(ex.observers[:i], ex.observers[i+1:]...)
			return
		}
	}
}

func (ex *Executive) notify(evt *Event) {
	for _, o := range ex.observers {
		o.OnEvent(ex, evt)
	}
}

// Initialize clears the calendar, zeroes the clock, resets counters, and
// moves to Initialized (spec.md §4.2 "Initialization").
func (ex *Executive) Initialize() {
	ex.calendar.Clear()
	ex.currentTime = 0
	ex.nextEventID = 1
	ex.executedCount = 0
	ex.scheduledEnd = posInf
	ex.endReplicationEvent = nil
	ex.stopRequested = false
	ex.conditional.Clear()
	ex.state = ExecInitialized
	ex.wallStart = wallNow()
}

// SetScheduledEnd sets the absolute simulated time beyond which newly
// scheduled events are detached rather than inserted (spec.md §4.2
// "Computed event time..."). It does not itself schedule the
// end-of-replication event; see ScheduleEndReplication.
func (ex *Executive) SetScheduledEnd(t float64) { ex.scheduledEnd = t }

// RequestStop asks the main loop to stop after the event currently being
// dispatched (or immediately, if called between dispatches).
func (ex *Executive) RequestStop() { ex.stopRequested = true }

var posInf = math.Inf(1)

// Schedule is the Executive's single scheduling primitive (spec.md §4.2).
// interEventTime must be >= 0. Schedule only succeeds from Initialized,
// BeforeEvent, or AfterEvent; it fails with a StateError from Created or
// AfterExecution. If the computed time exceeds the scheduled end, the
// returned Event is detached (not inserted) rather than an error —
// callers must check Event.Detached, not treat this as failure.
func (ex *Executive) Schedule(elem Element, interEventTime float64, action Action, opts ...ScheduleOption) (*Event, error) {
	if interEventTime < 0 {
		return nil, newPrecondition("NEGATIVE_INTER_EVENT_TIME", "interEventTime must be >= 0, got %g", interEventTime)
	}
	if ex.state != ExecInitialized && ex.state != ExecBeforeEvent && ex.state != ExecAfterEvent {
		return nil, newStateError("EXECUTIVE_NOT_RUNNING", "cannot schedule while executive is in state %s", ex.state)
	}
	cfg := scheduleConfig{priority: DefaultEventPriority}
	for _, opt := range opts {
		opt(&cfg)
	}

	id := ex.nextEventID
	ex.nextEventID++
	evt := &Event{
		ID:        id,
		Time:      ex.currentTime + interEventTime,
		Priority:  cfg.priority,
		Name:      cfg.name,
		Message:   cfg.message,
		Element:   elem,
		CreatedAt: ex.currentTime,
		action:    action,
		seq:       id,
	}
	if evt.Time > ex.scheduledEnd {
		evt.detached = true
		return evt, nil
	}
	ex.calendar.Insert(evt)
	return evt, nil
}

// ScheduleEndReplication schedules the distinguished end-of-replication
// event length time units after the current time, cancelling any prior
// one (spec.md §4.2 "End-of-replication event"). Callers pass
// DefaultEndReplicationPriority as priority so ties with ordinary events
// at the same instant run after them.
func (ex *Executive) ScheduleEndReplication(length float64, priority int) (*Event, error) {
	if ex.endReplicationEvent != nil && ex.endReplicationEvent.Scheduled() {
		_ = ex.endReplicationEvent.Cancel()
	}
	evt, err := ex.Schedule(nil, length, func(*Event) { ex.RequestStop() }, WithPriority(priority), WithEventName("end-of-replication"))
	if err != nil {
		return nil, err
	}
	ex.endReplicationEvent = evt
	ex.SetScheduledEnd(evt.Time)
	return evt, nil
}

// RunUntilEmpty drains the calendar, dispatching events in order and
// running the C-phase after each popped event whose next pending event is
// strictly later than the current time (spec.md §4.2 "Main loop"). It stops
// early if RequestStop was called, or if MaxWallTime is exceeded, in
// which case it returns ErrExceededExecutionTime.
func (ex *Executive) RunUntilEmpty() error {
	for !ex.calendar.IsEmpty() && !ex.stopRequested {
		if ex.MaxWallTime > 0 && wallNow().Sub(ex.wallStart) > ex.MaxWallTime {
			return ErrExceededExecutionTime
		}

		evt := ex.calendar.PopNext()
		if !evt.Cancelled() {
			ex.currentTime = evt.Time
			ex.state = ExecBeforeEvent
			ex.notify(evt)

			if err := ex.dispatch(evt); err != nil {
				return err
			}

			ex.state = ExecAfterEvent
			ex.notify(evt)
			ex.executedCount++
		}

		// spec.md §4.2 main loop step 3: a cancelled event skips straight
		// to step 6 without advancing the clock, but the C-phase check
		// itself still runs.
		if next := ex.calendar.Peek(); next != nil && next.Time > ex.currentTime {
			if err := ex.conditional.Run(); err != nil {
				return err
			}
		}
	}
	if !ex.calendar.IsEmpty() {
		// Drained because of RequestStop with events still pending; that is
		// a normal, intentional end (e.g. endSimulation), not an error.
		return nil
	}
	return nil
}

// dispatch invokes evt's action, converting a panic into a DispatchError
// so a user action's mistake never corrupts executive state silently
// (spec.md §7 "Event dispatch errors").
func (ex *Executive) dispatch(evt *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ex.wrapDispatchError(evt, fmt.Errorf("panic: %v", r))
		}
	}()
	if evt.action != nil {
		evt.action(evt)
	}
	return nil
}

func (ex *Executive) wrapDispatchError(evt *Event, cause error) *DispatchError {
	name := ""
	if evt.Element != nil {
		name = evt.Element.Name()
	}
	return &DispatchError{
		EventID:     evt.ID,
		Time:        evt.Time,
		ElementName: name,
		Cause:       cause,
	}
}

// End transitions the executive to AfterExecution. Scheduling thereafter
// fails with a StateError until the next Initialize.
func (ex *Executive) End() { ex.state = ExecAfterExecution }
