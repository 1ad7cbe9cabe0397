package arrival

import (
	"math"
	"sort"

	"github.com/desgo/kernel/des"
)

// ScheduleEventKind identifies which of a Schedule's four notification
// points a ScheduleListener is being told about (spec.md §4.8).
type ScheduleEventKind int

const (
	ScheduleStarted ScheduleEventKind = iota
	ItemStarted
	ItemEnded
	ScheduleEnded
)

func (k ScheduleEventKind) String() string {
	switch k {
	case ScheduleStarted:
		return "ScheduleStarted"
	case ItemStarted:
		return "ItemStarted"
	case ItemEnded:
		return "ItemEnded"
	case ScheduleEnded:
		return "ScheduleEnded"
	default:
		return "Unknown"
	}
}

// ScheduleListener receives a generic notification for every item a
// Schedule manages (spec.md §4.8 "addScheduleChangeListener"), in
// addition to any per-item OnStart/OnEnd callback. item is nil for
// ScheduleStarted and ScheduleEnded.
type ScheduleListener interface {
	OnScheduleEvent(kind ScheduleEventKind, item *ScheduleItem, time float64)
}

// ScheduleListenerFunc adapts a plain function to ScheduleListener,
// following the teacher's function-adapter convention for single-method
// interfaces.
type ScheduleListenerFunc func(kind ScheduleEventKind, item *ScheduleItem, time float64)

// OnScheduleEvent implements ScheduleListener.
func (f ScheduleListenerFunc) OnScheduleEvent(kind ScheduleEventKind, item *ScheduleItem, time float64) {
	f(kind, item, time)
}

// ScheduleItem is one piecewise-constant segment of a Schedule (spec.md
// §3 "Schedule Item"): from its StartTime for Duration time units,
// relative to the owning Schedule's cycle-start time, not an absolute
// simulated time.
type ScheduleItem struct {
	Name      string
	StartTime float64
	Duration  float64

	// Priority breaks ties against other items and the schedule's own
	// start/end events at the same absolute time. The zero value means
	// "use the owning Schedule's ItemStartPriority", assigned in AddItem.
	Priority int

	// Payload is an opaque, caller-defined value delivered to listeners
	// alongside this item (spec.md §3 "optional payload").
	Payload any

	// OnStart is invoked when this item's window begins; a generator
	// reconfiguration (new TimeBetweenEvents, TurnOn) is the typical use.
	OnStart Action

	// OnEnd is invoked when this item's window ends, Duration time units
	// after it started.
	OnEnd Action

	startEvent *des.Event
	endEvent   *des.Event
}

// EndTime returns StartTime + Duration, this item's offset from cycle
// start at which it ends.
func (it *ScheduleItem) EndTime() float64 { return it.StartTime + it.Duration }

// Schedule drives a sequence of ScheduleItems in time order, starting
// each and ending the previous one at the right simulated times, cycling
// on a fixed Length and optionally repeating (spec.md §4.8). Priorities
// follow the biasing rules spec.md §4.8 specifies, computed dynamically
// from StartPriority/ItemStartPriority rather than the fixed defaults
// alone, so a schedule start or item that coincides exactly with another
// event still resolves ties in the documented order.
type Schedule struct {
	des.ElementBase
	des.BaseHooks

	// InitialStartTime is the absolute simulated time AutoStart schedules
	// the first cycle at (spec.md §3 "initial start time").
	InitialStartTime float64

	// Length is the cycle length; an item's end time must not exceed it
	// (spec.md §3 "item.endTime <= initialStartTime + scheduleLength").
	// The zero value of a freshly constructed Schedule is +Inf, so a
	// schedule with no Length configured never fires an end-of-schedule
	// event, and Repeat has no effect.
	Length float64

	// Repeat re-invokes the start logic from the end-of-schedule event, a
	// new cycle at the same relative offsets (spec.md §4.8 "End-of-
	// schedule event... if repeat flag is true, re-invokes start logic").
	Repeat bool

	// AutoStart schedules the first cycle at InitialStartTime when the
	// replication initializes, instead of requiring a manual Start call.
	AutoStart bool

	// StartPriority and ItemStartPriority default to
	// des.DefaultScheduleStartPriority and des.DefaultScheduleItemStartPriority
	// (spec.md §6); override per-schedule if needed.
	StartPriority     int
	ItemStartPriority int

	exec  *des.Executive
	items []*ScheduleItem

	listeners []ScheduleListener

	onScheduleStart Action
	onScheduleEnd   Action

	startEvent     *des.Event
	endEvent       *des.Event
	cycleStartTime float64
}

// NewSchedule returns an empty Schedule bound to exec, with the default
// priorities and an unbounded (+Inf) length.
func NewSchedule(base *des.ElementBase, exec *des.Executive) *Schedule {
	return &Schedule{
		ElementBase:       *base,
		exec:              exec,
		Length:            math.Inf(1),
		StartPriority:     des.DefaultScheduleStartPriority,
		ItemStartPriority: des.DefaultScheduleItemStartPriority,
	}
}

// AddItem inserts item, keeping the schedule's items sorted by
// (StartTime, Priority). It is a precondition error to add a duplicate
// name or an item whose end time exceeds Length.
func (s *Schedule) AddItem(item *ScheduleItem) error {
	for _, existing := range s.items {
		if existing.Name == item.Name {
			return newSchedulePrecondition("duplicate schedule item name " + item.Name)
		}
	}
	if item.Priority == 0 {
		item.Priority = s.ItemStartPriority
	}
	if !math.IsInf(s.Length, 1) && item.EndTime() > s.Length {
		return newSchedulePrecondition("item " + item.Name + " end time exceeds schedule length")
	}
	s.items = append(s.items, item)
	sort.SliceStable(s.items, func(i, j int) bool {
		if s.items[i].StartTime != s.items[j].StartTime {
			return s.items[i].StartTime < s.items[j].StartTime
		}
		return s.items[i].Priority < s.items[j].Priority
	})
	return nil
}

// RemoveItem removes the first item with the given name, if any.
func (s *Schedule) RemoveItem(name string) {
	for i, it := range s.items {
		if it.Name == name {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ClearSchedule removes every registered item.
func (s *Schedule) ClearSchedule() { s.items = nil }

// SetOnScheduleStart registers a callback fired at the schedule's own
// start event, in addition to any listeners added via
// AddScheduleChangeListener.
func (s *Schedule) SetOnScheduleStart(a Action) { s.onScheduleStart = a }

// SetOnScheduleEnd registers a callback fired at the end-of-schedule
// event, in addition to any listeners added via AddScheduleChangeListener.
func (s *Schedule) SetOnScheduleEnd(a Action) { s.onScheduleEnd = a }

// AddScheduleChangeListener registers l to receive every notification
// this schedule produces (spec.md §4.8 "addScheduleChangeListener").
func (s *Schedule) AddScheduleChangeListener(l ScheduleListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Schedule) notify(kind ScheduleEventKind, item *ScheduleItem, t float64) {
	for _, l := range s.listeners {
		l.OnScheduleEvent(kind, item, t)
	}
}

// Initialize resets the schedule's per-replication bookkeeping and, if
// AutoStart is set, schedules the first cycle at InitialStartTime
// (spec.md §4.8 "Lifecycle").
func (s *Schedule) Initialize() {
	s.startEvent = nil
	s.endEvent = nil
	s.cycleStartTime = 0
	for _, it := range s.items {
		it.startEvent = nil
		it.endEvent = nil
	}
	if s.AutoStart {
		_ = s.Start(s.InitialStartTime)
	}
}

// Start schedules the schedule's own start event delay time units from
// now, and from it every item's start and end events. Its priority is
// the schedule's own StartPriority, reduced below the priority of any
// item whose StartTime is 0 (coincides with the start instant) if
// necessary to guarantee the schedule start fires first at ties
// (spec.md §4.8 "Lifecycle").
func (s *Schedule) Start(delay float64) error {
	evt, err := s.exec.Schedule(s, delay, func(*des.Event) { s.fireStart() },
		des.WithPriority(s.startEventPriority()), des.WithEventName("schedule-start"))
	if err != nil {
		return err
	}
	s.startEvent = evt
	return nil
}

// CancelScheduleStart cancels a pending start event scheduled by Start or
// AutoStart, the named `cancelScheduleStart` operation of spec.md §4.8.
// It is a no-op if no start event is currently pending.
func (s *Schedule) CancelScheduleStart() error {
	if s.startEvent == nil || !s.startEvent.Scheduled() {
		return nil
	}
	err := s.startEvent.Cancel()
	s.startEvent = nil
	return err
}

func (s *Schedule) startEventPriority() int {
	p := s.StartPriority
	for _, it := range s.items {
		if it.StartTime == 0 && it.Priority-1 < p {
			p = it.Priority - 1
		}
	}
	return p
}

// fireStart is the schedule-start event's action: it records the cycle's
// start time, notifies ScheduleStarted, schedules every item's start
// event, and — if Length is finite — the end-of-schedule event (spec.md
// §4.8 "Start event").
func (s *Schedule) fireStart() {
	s.cycleStartTime = s.exec.CurrentTime()
	startPriorityUsed := s.startEventPriority()

	if s.onScheduleStart != nil {
		s.onScheduleStart()
	}
	s.notify(ScheduleStarted, nil, s.cycleStartTime)

	var (
		haveItemAtLength     bool
		maxItemPriorityAtLen int
	)
	finite := !math.IsInf(s.Length, 1)

	for _, item := range s.items {
		it := item
		itemStartPriority := it.Priority
		if it.StartTime == 0 {
			// Adjusted above (i.e. after) the schedule start's own
			// priority actually used, so the two coincident events fire
			// in the right order even when the caller's configured
			// ItemStartPriority would otherwise tie or precede it.
			itemStartPriority = startPriorityUsed + 1
		}
		evt, err := s.exec.Schedule(s, it.StartTime, func(*des.Event) { s.fireItemStart(it) },
			des.WithPriority(itemStartPriority), des.WithEventName("item-start:"+it.Name))
		if err == nil {
			it.startEvent = evt
		}

		if finite && it.EndTime() == s.Length {
			if !haveItemAtLength || it.Priority > maxItemPriorityAtLen {
				maxItemPriorityAtLen = it.Priority
				haveItemAtLength = true
			}
		}
	}

	if !finite {
		return
	}

	endPriority := s.ItemStartPriority + 1
	if haveItemAtLength && maxItemPriorityAtLen+1 > endPriority {
		endPriority = maxItemPriorityAtLen + 1
	}
	evt, err := s.exec.Schedule(s, s.Length, func(*des.Event) { s.fireEnd() },
		des.WithPriority(endPriority), des.WithEventName("schedule-end"))
	if err == nil {
		s.endEvent = evt
	}
}

// fireItemStart is an item-start event's action: it notifies ItemStarted
// and schedules the matching item-end event after Duration (spec.md
// §4.8 "Item-start event").
func (s *Schedule) fireItemStart(it *ScheduleItem) {
	if it.OnStart != nil {
		it.OnStart()
	}
	s.notify(ItemStarted, it, s.exec.CurrentTime())

	evt, err := s.exec.Schedule(s, it.Duration, func(*des.Event) { s.fireItemEnd(it) },
		des.WithPriority(it.Priority), des.WithEventName("item-end:"+it.Name))
	if err == nil {
		it.endEvent = evt
	}
}

// fireItemEnd is an item-end event's action: it notifies ItemEnded
// (spec.md §4.8 "Item-end event").
func (s *Schedule) fireItemEnd(it *ScheduleItem) {
	if it.OnEnd != nil {
		it.OnEnd()
	}
	s.notify(ItemEnded, it, s.exec.CurrentTime())
}

// fireEnd is the end-of-schedule event's action: it notifies
// ScheduleEnded and, if Repeat is set, re-invokes the start logic for a
// new cycle (spec.md §4.8 "End-of-schedule event"). Since the new cycle
// is started from the current simulated time with no added delay,
// successive cycle-start times form an arithmetic sequence with common
// difference Length (spec.md §8 round-trip law).
func (s *Schedule) fireEnd() {
	endTime := s.exec.CurrentTime()
	if s.onScheduleEnd != nil {
		s.onScheduleEnd()
	}
	s.notify(ScheduleEnded, nil, endTime)
	if s.Repeat {
		_ = s.Start(0)
	}
}

func newSchedulePrecondition(msg string) error {
	return &des.PreconditionError{Code: "SCHEDULE_STATE", Message: msg}
}
