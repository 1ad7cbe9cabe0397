// Package arrival provides the two standard traffic-generation
// primitives built on top of the kernel (spec.md §4.7, §4.8): Generator,
// a recurring-arrival process with an explicit on/off/suspend state
// machine, and Schedule, a piecewise-constant rate profile built from
// ScheduleItems. Neither has a direct analog in the teacher — LangGraph
// has no notion of recurring simulated arrivals — so both are grounded
// on the teacher's state-machine *shape* (graph/engine.go's own
// created/running/done lifecycle) generalized to the four states and
// explicit transition guards spec.md §4.7 specifies.
package arrival

import (
	"math"

	"github.com/desgo/kernel/des"
)

// GeneratorState is one of the four states a Generator passes through
// (spec.md §4.7 "State machine").
type GeneratorState int

const (
	GeneratorNotStarted GeneratorState = iota
	GeneratorRunning
	GeneratorSuspended
	GeneratorDone
)

func (s GeneratorState) String() string {
	switch s {
	case GeneratorNotStarted:
		return "NotStarted"
	case GeneratorRunning:
		return "Running"
	case GeneratorSuspended:
		return "Suspended"
	case GeneratorDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// TimeBetweenEvents supplies the inter-arrival time for the next
// generated event. Implementations typically close over a
// des.StreamProvider to draw a variate.
type TimeBetweenEvents func() float64

// Action is invoked once per generated arrival.
type Action func()

// Generator produces a stream of arrival events at a rate controlled by
// TimeBetweenEvents, until MaxEvents fires, EndingTime passes, or it is
// turned off (spec.md §4.7).
type Generator struct {
	des.ElementBase
	des.BaseHooks

	TimeBetweenEvents TimeBetweenEvents
	OnArrival         Action

	// MaxEvents bounds the number of arrivals generated; 0 means
	// unbounded (spec.md §4.7 "bounded generator").
	MaxEvents int

	// StartTime delays the generator's first arrival (relative to
	// replication start).
	StartTime float64

	// EndingTime is the absolute simulated time past which no further
	// events are produced this replication (spec.md §3 "ending time";
	// §4.7 "if next absolute time > ending time, turn off"). The zero
	// value of a freshly constructed Generator is +Inf (unbounded); set
	// it with SetEndingTime, which validates it.
	EndingTime float64

	// InitialState and AutoStart both control whether Initialize starts
	// the generator automatically; InitialState predates AutoStart and
	// is kept for callers that prefer setting a target state directly.
	InitialState GeneratorState
	AutoStart    bool

	exec         *des.Executive
	state        GeneratorState
	eventsFired  int
	pendingEvent *des.Event
	endEvent     *des.Event

	// The four "current" fields above are restored from these captured
	// counterparts at every replication's Initialize (spec.md §3 "initial
	// counterparts of all four... used at replication init"; §4.7
	// "restore current values from the initial counterparts"). The
	// counterparts are captured lazily, from whatever the caller
	// configured before the first Initialize, rather than requiring a
	// parallel set of Initial* fields to be filled in by hand — a
	// generator configured once before Model.Controller.Run and never
	// touched mid-replication behaves identically to one with explicit
	// Initial* fields, and replications that do call SetTimeBetweenEvents
	// mid-run still reset back to the original configuration on the next
	// replication, per spec.
	initialCaptured          bool
	initialTimeBetweenEvents TimeBetweenEvents
	initialMaxEvents         int
	initialStartTime         float64
	initialEndingTime        float64
}

// NewGenerator returns a Generator bound to exec, in the NotStarted
// state, with an unbounded (+Inf) ending time.
func NewGenerator(base *des.ElementBase, exec *des.Executive) *Generator {
	return &Generator{
		ElementBase:  *base,
		exec:         exec,
		InitialState: GeneratorNotStarted,
		EndingTime:   math.Inf(1),
	}
}

// State returns the generator's current state.
func (g *Generator) State() GeneratorState { return g.state }

// EventsFired returns how many arrivals have been generated this
// replication.
func (g *Generator) EventsFired() int { return g.eventsFired }

// SetEndingTime sets the absolute simulated time past which the
// generator stops producing events. It must be >= 0 (spec.md §4.7
// "Validation").
func (g *Generator) SetEndingTime(t float64) error {
	if t < 0 {
		return newArrivalPrecondition("ending time must be >= 0")
	}
	g.EndingTime = t
	return nil
}

// SetTimeBetweenEvents validates and installs a new inter-event source
// and event cap, the named `setTimeBetweenEvents(source, maxN)`
// operation of spec.md §4.7. maxN must be >= 0; pairing an unbounded cap
// (maxN == 0) with a source that always returns zero is rejected, since
// it would enqueue arrivals at the same instant forever. If the
// generator has already fired at least maxN events, it is turned off
// immediately.
func (g *Generator) SetTimeBetweenEvents(source TimeBetweenEvents, maxN int) error {
	if maxN < 0 {
		return newArrivalPrecondition("maxEvents must be >= 0")
	}
	if maxN == 0 && isConstantZero(source) {
		return newArrivalPrecondition("unbounded max events requires a time-between source that is not constant zero")
	}
	g.TimeBetweenEvents = source
	g.MaxEvents = maxN
	if g.MaxEvents > 0 && g.eventsFired >= g.MaxEvents {
		return g.TurnOff()
	}
	return nil
}

// isConstantZero heuristically detects a time-between source that always
// returns exactly zero. Sampling is a pragmatic check, not a proof — a
// source that returns zero most but not all of the time is the caller's
// responsibility — but it catches the common mistake of pairing an
// unbounded generator with `func() float64 { return 0 }`.
func isConstantZero(source TimeBetweenEvents) bool {
	if source == nil {
		return true
	}
	for i := 0; i < 3; i++ {
		if source() != 0 {
			return false
		}
	}
	return true
}

// Initialize restores the generator's current values from their initial
// counterparts, schedules the end-generator self-event if EndingTime is
// finite, and — if InitialState is Running or AutoStart is set —
// schedules the first arrival at StartTime (spec.md §4.7 "Replication
// initialization").
func (g *Generator) Initialize() {
	if !g.initialCaptured {
		g.initialTimeBetweenEvents = g.TimeBetweenEvents
		g.initialMaxEvents = g.MaxEvents
		g.initialStartTime = g.StartTime
		g.initialEndingTime = g.EndingTime
		g.initialCaptured = true
	}

	g.state = GeneratorNotStarted
	g.eventsFired = 0
	g.pendingEvent = nil
	g.endEvent = nil

	g.TimeBetweenEvents = g.initialTimeBetweenEvents
	g.MaxEvents = g.initialMaxEvents
	g.StartTime = g.initialStartTime
	g.EndingTime = g.initialEndingTime

	if !math.IsInf(g.EndingTime, 1) {
		evt, err := g.exec.Schedule(g, g.EndingTime, func(*des.Event) { _ = g.TurnOff() },
			des.WithPriority(des.DefaultGeneratorPriority), des.WithEventName("end-generator"))
		if err == nil {
			g.endEvent = evt
		}
	}

	if g.AutoStart || g.InitialState == GeneratorRunning {
		_ = g.TurnOn(g.StartTime)
	}
}

// TurnOn starts the generator, scheduling its first arrival delay time
// units from now unless that would land past EndingTime, in which case
// the generator goes straight to Done. It is a precondition error to
// turn on an already running or suspended generator; turning on a Done
// generator is a no-op.
func (g *Generator) TurnOn(delay float64) error {
	if g.state == GeneratorRunning || g.state == GeneratorSuspended {
		return newArrivalPrecondition("already active")
	}
	if g.state == GeneratorDone {
		return nil
	}
	g.state = GeneratorRunning
	return g.scheduleNext(delay)
}

// TurnOff permanently stops the generator, cancelling any pending
// arrival and the end-generator self-event. A generator that has been
// turned off cannot be turned back on within the same replication; a
// fresh Initialize is required.
func (g *Generator) TurnOff() error {
	if g.pendingEvent != nil && g.pendingEvent.Scheduled() {
		_ = g.pendingEvent.Cancel()
	}
	g.pendingEvent = nil
	if g.endEvent != nil && g.endEvent.Scheduled() {
		_ = g.endEvent.Cancel()
	}
	g.endEvent = nil
	g.state = GeneratorDone
	return nil
}

// Suspend pauses generation without cancelling the generator's
// bookkeeping; Resume picks up where it left off. It is a precondition
// error to suspend a generator that is not Running.
func (g *Generator) Suspend() error {
	if g.state != GeneratorRunning {
		return newArrivalPrecondition("cannot suspend: generator is not running")
	}
	if g.pendingEvent != nil && g.pendingEvent.Scheduled() {
		_ = g.pendingEvent.Cancel()
	}
	g.pendingEvent = nil
	g.state = GeneratorSuspended
	return nil
}

// Resume restarts generation after a Suspend, scheduling the next
// arrival delay time units from now unless that would land past
// EndingTime, in which case the generator goes to Done. It is a
// precondition error to resume a generator that is not Suspended.
func (g *Generator) Resume(delay float64) error {
	if g.state != GeneratorSuspended {
		return newArrivalPrecondition("cannot resume: generator is not suspended")
	}
	g.state = GeneratorRunning
	return g.scheduleNext(delay)
}

// scheduleNext is the single funnel TurnOn, Resume, and fire all go
// through to arm the next arrival; the MaxEvents and EndingTime gates
// (spec.md §4.7 "if next absolute time > ending time, turn off") live
// here once rather than being duplicated at every call site.
func (g *Generator) scheduleNext(delay float64) error {
	if g.MaxEvents > 0 && g.eventsFired >= g.MaxEvents {
		g.state = GeneratorDone
		return nil
	}
	if g.exec.CurrentTime()+delay > g.EndingTime {
		g.state = GeneratorDone
		return nil
	}
	evt, err := g.exec.Schedule(g, delay, g.fire, des.WithPriority(des.DefaultGeneratorPriority), des.WithEventName("arrival"))
	if err != nil {
		return err
	}
	g.pendingEvent = evt
	return nil
}

func (g *Generator) fire(*des.Event) {
	if g.state != GeneratorRunning {
		return
	}
	g.eventsFired++
	if g.OnArrival != nil {
		g.OnArrival()
	}
	if g.state != GeneratorRunning {
		// Suspended or turned off from within OnArrival: arm nothing.
		return
	}
	if g.MaxEvents > 0 && g.eventsFired >= g.MaxEvents {
		g.state = GeneratorDone
		return
	}
	next := 0.0
	if g.TimeBetweenEvents != nil {
		next = g.TimeBetweenEvents()
	}
	_ = g.scheduleNext(next)
}

func newArrivalPrecondition(msg string) error {
	return &des.PreconditionError{Code: "GENERATOR_STATE", Message: msg}
}
