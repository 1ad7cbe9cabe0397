package des

import (
	"runtime"
	"time"
)

// ReplicationController drives one experiment (spec.md §4.5): it sets
// the experiment up once, then runs NumReplications replications each as
// one pass of the IterativeProcess state machine, with itself as the
// Stepper. Grounded on the overall shape of the teacher's Engine.Run
// (graph/engine.go) — a loop with explicit setup/step/teardown phases —
// generalized from "run a graph once" to "run N replications of a model
// tree, dispatching lifecycle hooks in pre-order at each phase boundary".
type ReplicationController struct {
	model   *Model
	process *IterativeProcess

	currentReplication int
	replicationsRun     int

	// The controller holds no observers of its own; status observers are
	// attached at the Model level.
}

// NewReplicationController returns a controller bound to model. It is
// created eagerly by NewModel; callers use Model.Controller rather than
// constructing one directly.
func NewReplicationController(model *Model) *ReplicationController {
	rc := &ReplicationController{model: model}
	rc.process = NewIterativeProcess(rc)
	return rc
}

// State returns the underlying IterativeProcess state.
func (rc *ReplicationController) State() IterativeProcessState { return rc.process.State() }

// CurrentReplication returns the 1-based replication number currently
// running, or the one most recently completed.
func (rc *ReplicationController) CurrentReplication() int { return rc.currentReplication }

// ReplicationsRun returns how many replications have completed.
func (rc *ReplicationController) ReplicationsRun() int { return rc.replicationsRun }

// Run executes the whole experiment: setUpExperiment once, then every
// replication in turn, then afterExperiment (spec.md §4.5). It is the
// single entry point most callers use; HasNextReplication/RunNextReplication
// exist for callers that want to drive replications one at a time (e.g.
// to inspect per-replication state between them).
func (rc *ReplicationController) Run() error {
	if err := rc.setUpExperiment(); err != nil {
		return err
	}
	err := rc.process.Run()
	rc.afterExperiment()
	return err
}

// HasNextReplication reports whether another replication remains to run
// under the experiment's NumReplications setting.
func (rc *ReplicationController) HasNextReplication() bool {
	return rc.replicationsRun < rc.model.Params.NumReplications
}

// RunNextReplication runs exactly one more replication, initializing the
// experiment first if this is the first call.
func (rc *ReplicationController) RunNextReplication() error {
	if rc.process.State() == StateCreated {
		if err := rc.setUpExperiment(); err != nil {
			return err
		}
	}
	return rc.process.RunNext()
}

// setUpExperiment performs the one-time, pre-replication setup spec.md
// §4.5 describes: assign traversal counts, advance streams past the
// configured warm-start offset, apply controls, invoke the configuration
// manager, then dispatch beforeExperiment in pre-order.
func (rc *ReplicationController) setUpExperiment() error {
	rc.model.assignTraversalCounts()

	if rc.model.Stream != nil {
		for i := 0; i < rc.model.Params.NumberOfStreamAdvancesBeforeRunning; i++ {
			rc.model.Stream.AdvanceToNextSubstream()
		}
	}

	// If antithetic is on, the controller manages reset/advance itself on
	// alternating replications (runReplication's antithetic rule); the
	// per-replication reset-start-stream and advance-next-substream
	// options would otherwise fight over the same stream state (spec.md
	// §4.5 setUpExperiment step 4).
	if rc.model.Params.AntitheticOption {
		rc.model.Params.ResetStartStreamOption = ResetStartStreamNever
		rc.model.Params.AdvanceNextSubstreamOption = false
	}

	if rc.model.configManager != nil {
		if err := rc.model.configManager.Configure(rc.model, rc.model.Params.Controls); err != nil {
			return err
		}
	}

	rc.model.running = true
	for _, elem := range rc.model.PreOrder() {
		if elementOptions(elem).BeforeExperiment {
			elem.BeforeExperiment()
		}
		setStatusOf(elem, StatusBeforeExperiment)
	}
	rc.model.running = false

	rc.currentReplication = rc.model.Params.StartingReplicationID - 1
	return rc.process.Initialize()
}

// afterExperiment dispatches the afterExperiment hook in pre-order once
// every replication has run (spec.md §4.5 step 5).
func (rc *ReplicationController) afterExperiment() {
	rc.model.running = true
	for _, elem := range rc.model.PreOrder() {
		if elementOptions(elem).AfterExperiment {
			elem.AfterExperiment()
		}
		setStatusOf(elem, StatusAfterExperiment)
	}
	rc.model.running = false
}

// RunStep implements Stepper: it runs exactly one replication to
// completion via the model's Executive and reports whether another
// remains.
func (rc *ReplicationController) RunStep() (bool, error) {
	if !rc.HasNextReplication() {
		return false, nil
	}
	rc.currentReplication++
	if err := rc.runReplication(rc.currentReplication); err != nil {
		return false, err
	}
	rc.replicationsRun++
	return true, nil
}

// StepStoppingCondition never requests an early stop on its own; the
// experiment always runs exactly NumReplications replications unless a
// replication itself errors.
func (rc *ReplicationController) StepStoppingCondition() bool { return false }

// runReplication performs one full replication: stream configuration,
// element initialization (beforeReplication, then initialize, per the
// Open Question decision recorded in DESIGN.md), conditional-action
// registration, the optional Monte Carlo pass, the Executive's main
// loop, then teardown (replicationEnded, stream advance, afterReplication).
func (rc *ReplicationController) runReplication(repNumber int) error {
	m := rc.model

	if m.Stream != nil {
		switch m.Params.ResetStartStreamOption {
		case ResetStartStreamEachReplication:
			m.Stream.ResetStartStream()
		}
		if m.Params.AntitheticOption {
			// spec.md §4.5 runReplication step 3 (Setup): on even
			// replication numbers, reset to the current sub-stream and
			// enable antithetic draws, replaying the prior (odd)
			// replication's exact draw sequence mirrored through 1-u; on
			// odd replications beyond the first, disable antithetic draws
			// and advance to a fresh sub-stream for the next pair.
			if repNumber%2 == 0 {
				m.Stream.ResetStartSubstream()
				m.Stream.SetAntithetic(true)
			} else {
				m.Stream.SetAntithetic(false)
				if repNumber > m.Params.StartingReplicationID {
					m.Stream.AdvanceToNextSubstream()
				}
			}
		} else if m.Params.AdvanceNextSubstreamOption && repNumber > m.Params.StartingReplicationID {
			m.Stream.AdvanceToNextSubstream()
		}
	}

	m.Executive.MaxWallTime = time.Duration(m.Params.MaxWallTimePerReplication * float64(time.Second))
	m.Executive.Initialize()

	m.running = true

	for _, elem := range m.PreOrder() {
		if elementOptions(elem).BeforeReplication {
			elem.BeforeReplication()
		}
		setStatusOf(elem, StatusBeforeReplication)
	}

	if m.Params.ReplicationInitOption == ReplicationInitFresh {
		for _, elem := range m.PreOrder() {
			if elementOptions(elem).Initialization {
				elem.Initialize()
			}
			setStatusOf(elem, StatusInitialized)
		}
	}

	for _, elem := range m.PreOrder() {
		elem.RegisterConditionalActions(m.Executive.Conditional())
		setStatusOf(elem, StatusConditionalActionRegistration)
	}

	for _, elem := range m.PreOrder() {
		if elementOptions(elem).MonteCarlo {
			elem.MonteCarlo()
			setStatusOf(elem, StatusMonteCarlo)
		}
	}

	rc.scheduleWarmUps()

	if _, err := m.Executive.ScheduleEndReplication(m.Params.ReplicationLength, DefaultEndReplicationPriority); err != nil {
		m.running = false
		return err
	}

	if err := m.Executive.RunUntilEmpty(); err != nil {
		m.running = false
		if de, ok := err.(*DispatchError); ok {
			de.Replication = repNumber
		}
		return err
	}
	m.Executive.End()

	for _, elem := range m.PreOrder() {
		if elementOptions(elem).ReplicationEnded {
			elem.ReplicationEnded()
		}
		setStatusOf(elem, StatusReplicationEnded)
	}

	// spec.md §4.5 runReplication step 5 (Teardown): "if advance-next-
	// substream: advance all streams" — under antithetic pairing this
	// option is forced false in setUpExperiment, since the Setup phase
	// above already manages sub-stream advancement per the pairing rule.
	if m.Stream != nil && m.Params.AdvanceNextSubstreamOption {
		m.Stream.AdvanceToNextSubstream()
	}

	for _, elem := range m.PreOrder() {
		if elementOptions(elem).AfterReplication {
			elem.AfterReplication()
		}
		setStatusOf(elem, StatusAfterReplication)
	}

	m.running = false

	if m.Params.GarbageCollectionAfterReplication {
		runtime.GC()
	}
	return nil
}

// scheduleWarmUps schedules each element's individual or inherited
// warmup event, if its effective warmup length is positive (spec.md
// §4.6 "Warmup").
func (rc *ReplicationController) scheduleWarmUps() {
	for _, elem := range rc.model.PreOrder() {
		base := elementBaseOf(elem)
		if base == nil {
			continue
		}
		length := base.EffectiveWarmUp()
		if length <= 0 {
			continue
		}
		capturedElem := elem
		evt, err := rc.model.Executive.Schedule(elem, length, func(*Event) {
			capturedElem.WarmUp()
			setStatusOf(capturedElem, StatusWarmup)
		}, WithPriority(DefaultWarmUpPriority), WithEventName("warmup"))
		if err == nil {
			base.warmUpEvent = evt
		}
	}
}

func elementOptions(elem Element) LifecycleOptions {
	if base := elementBaseOf(elem); base != nil {
		return base.Options
	}
	return DefaultLifecycleOptions()
}

func setStatusOf(elem Element, s Status) {
	if base := elementBaseOf(elem); base != nil {
		base.setStatus(elem, s)
	}
}
