package des

import "time"

// IterativeProcessState is one of the four states of the base state
// machine (spec.md §4.3).
type IterativeProcessState int

const (
	StateCreated IterativeProcessState = iota
	StateInitialized
	StateStepCompleted
	StateEnded
)

func (s IterativeProcessState) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInitialized:
		return "Initialized"
	case StateStepCompleted:
		return "StepCompleted"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// EndingStatus classifies why an IterativeProcess ended (spec.md §4.3).
type EndingStatus int

const (
	// EndingStatusUnset means the process has not ended yet.
	EndingStatusUnset EndingStatus = iota
	EndingStatusNoStepsExecuted
	EndingStatusCompletedAllSteps
	EndingStatusExceededExecutionTime
	EndingStatusMetStoppingCondition
	EndingStatusUnfinished
)

// String returns the canonical message for the ending status, per
// spec.md §4.3 "Each has a canonical message."
func (s EndingStatus) String() string {
	switch s {
	case EndingStatusUnset:
		return "not yet ended"
	case EndingStatusNoStepsExecuted:
		return "ended before any step executed"
	case EndingStatusCompletedAllSteps:
		return "completed all steps"
	case EndingStatusExceededExecutionTime:
		return "exceeded maximum execution time"
	case EndingStatusMetStoppingCondition:
		return "met a stopping condition"
	case EndingStatusUnfinished:
		return "ended unfinished due to an error"
	default:
		return "unknown ending status"
	}
}

// Stepper performs exactly one step of an IterativeProcess and reports
// whether the step itself requested an orderly stop (e.g. the
// replication's end-of-replication event fired). It is the only thing a
// concrete process (ReplicationController) must supply.
type Stepper interface {
	// RunStep executes exactly one step. ok is false only when the step
	// could not run at all (e.g. no further steps are possible).
	RunStep() (ok bool, err error)

	// StepStoppingCondition reports whether the process should stop after
	// the step that just completed, independent of the Stop() flag.
	StepStoppingCondition() bool
}

// IterativeProcess is the abstract state machine underlying the
// Replication Controller (spec.md §4.3): Created → Initialized →
// StepCompleted* → Ended, with guarded transitions and an ending-status
// classification. It has no teacher analog in dshills-langgraph-go
// (whose Engine.Run is a single un-phased call); it is grounded on the
// *shape* the teacher gives its own lifecycle — a struct holding state
// plus small guarded mutators — generalized into an explicit state
// machine because spec.md §4.3 requires one.
type IterativeProcess struct {
	state       IterativeProcessState
	stepper     Stepper
	stopFlag    bool
	endingState EndingStatus
	stopMessage string

	stepCount int
	beginTime time.Time
	endTime   time.Time

	// MaxStepWallTime, when non-zero, bounds how long a single RunStep may
	// take; if a step returns having exceeded it the process ends with
	// EndingStatusExceededExecutionTime. The Replication Controller
	// enforces the real per-replication wall-clock budget itself (via the
	// Executive's timeout, spec.md §4.2 "Timeouts"); this field exists so
	// IterativeProcess remains independently testable against spec.md
	// §4.3's table without requiring a full Executive.
	MaxStepWallTime time.Duration
}

// NewIterativeProcess creates a process in the Created state, driven by
// stepper.
func NewIterativeProcess(stepper Stepper) *IterativeProcess {
	return &IterativeProcess{state: StateCreated, stepper: stepper}
}

// State returns the current state.
func (p *IterativeProcess) State() IterativeProcessState { return p.state }

// EndingStatus returns the classification recorded when the process
// ended, or EndingStatusUnset if it has not ended.
func (p *IterativeProcess) EndingStatus() EndingStatus { return p.endingState }

// StoppingMessage returns the free-text reason recorded alongside the
// ending status (spec.md §7 "The kernel records an endingStatus and
// stoppingMessage").
func (p *IterativeProcess) StoppingMessage() string { return p.stopMessage }

// StepCount returns the number of steps executed since the last
// Initialize.
func (p *IterativeProcess) StepCount() int { return p.stepCount }

// Initialize transitions Created or Ended → Initialized, clearing stop
// flags and counters and marking the begin time.
func (p *IterativeProcess) Initialize() error {
	if p.state != StateCreated && p.state != StateEnded {
		return newStateError("ILLEGAL_TRANSITION", "initialize: illegal from state %s", p.state)
	}
	p.state = StateInitialized
	p.stopFlag = false
	p.endingState = EndingStatusUnset
	p.stopMessage = ""
	p.stepCount = 0
	p.beginTime = wallNow()
	p.endTime = time.Time{}
	return nil
}

// Stop requests an orderly stop after the current step completes. It is
// legal from any state and never itself performs a transition.
func (p *IterativeProcess) Stop(message string) {
	p.stopFlag = true
	if message != "" {
		p.stopMessage = message
	}
}

// RunNext executes exactly one step, transitioning Initialized or
// StepCompleted → StepCompleted, then checks whether the process should
// now end.
func (p *IterativeProcess) RunNext() error {
	if p.state != StateInitialized && p.state != StateStepCompleted {
		return newStateError("ILLEGAL_TRANSITION", "runNext: illegal from state %s", p.state)
	}
	stepStart := wallNow()
	ok, err := p.stepper.RunStep()
	if err != nil {
		p.end(EndingStatusUnfinished, err.Error())
		return err
	}
	if !ok {
		status := EndingStatusCompletedAllSteps
		if p.stepCount == 0 {
			status = EndingStatusNoStepsExecuted
		}
		p.end(status, "")
		return nil
	}
	p.stepCount++
	p.state = StateStepCompleted

	switch {
	case p.MaxStepWallTime > 0 && wallNow().Sub(stepStart) > p.MaxStepWallTime:
		p.end(EndingStatusExceededExecutionTime, "")
	case p.stopFlag:
		p.end(EndingStatusMetStoppingCondition, p.stopMessage)
	case p.stepper.StepStoppingCondition():
		p.end(EndingStatusMetStoppingCondition, p.stopMessage)
	}
	return nil
}

// Run auto-initializes from Created, then loops RunNext until the
// process ends.
func (p *IterativeProcess) Run() error {
	if p.state == StateCreated {
		if err := p.Initialize(); err != nil {
			return err
		}
	}
	if p.state != StateInitialized && p.state != StateStepCompleted {
		return newStateError("ILLEGAL_TRANSITION", "run: illegal from state %s", p.state)
	}
	for p.state != StateEnded {
		if err := p.RunNext(); err != nil {
			return err
		}
	}
	return nil
}

// End forces a transition to Ended from any non-Created state, recording
// EndingStatusUnfinished unless a more specific status was already set
// by RunNext.
func (p *IterativeProcess) End(message string) error {
	if p.state == StateCreated {
		return newStateError("ILLEGAL_TRANSITION", "end: illegal from state %s", p.state)
	}
	if p.state == StateEnded {
		return nil
	}
	status := EndingStatusUnfinished
	if message == "" {
		message = p.stopMessage
	}
	p.end(status, message)
	return nil
}

func (p *IterativeProcess) end(status EndingStatus, message string) {
	p.state = StateEnded
	p.endingState = status
	if message != "" {
		p.stopMessage = message
	}
	p.endTime = wallNow()
}

// wallNow is a seam over time.Now so that the wall-clock-bound check in
// RunNext can be exercised in tests with a fixed offset rather than real
// sleeps; production callers never override it.
var wallNow = time.Now
