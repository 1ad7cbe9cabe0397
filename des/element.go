package des

// Status enumerates the lifecycle phases an element passes through
// (spec.md §4.6 "Status").
type Status int

const (
	StatusNone Status = iota
	StatusBeforeExperiment
	StatusBeforeReplication
	StatusInitialized
	StatusConditionalActionRegistration
	StatusMonteCarlo
	StatusWarmup
	StatusUpdate
	StatusTimedUpdate
	StatusReplicationEnded
	StatusAfterReplication
	StatusAfterExperiment
	StatusModelElementAdded
	StatusModelElementRemoved
	StatusRemovedFromModel
)

func (s Status) String() string {
	names := [...]string{
		"None", "BeforeExperiment", "BeforeReplication", "Initialized",
		"ConditionalActionRegistration", "MonteCarlo", "Warmup", "Update",
		"TimedUpdate", "ReplicationEnded", "AfterReplication", "AfterExperiment",
		"ModelElementAdded", "ModelElementRemoved", "RemovedFromModel",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// StatusObserver receives notification whenever an element's status
// changes, and whenever the executive dispatches (or skips) an event.
// This is the "status observer" collaborator of spec.md §6: the same
// interface shape is used both as a model-wide observer (attached to the
// Model) and as a per-element observer (attached to one ElementBase),
// following the teacher's single-interface-many-attachment-points design
// for graph/emit.Emitter.
type StatusObserver interface {
	OnStatusChange(elem Element, previous, current Status)
	OnEvent(exec *Executive, evt *Event)
}

// LifecycleHooks is the full set of virtual callbacks a model element may
// override (spec.md §6 "Model-element base type with virtual hooks").
// Concrete element types embed BaseHooks to get no-op defaults for all of
// them and override only the ones they need — the "capability trait"
// re-architecture of spec.md §9, replacing the source's open-inheritance
// ModelElement base class.
type LifecycleHooks interface {
	BeforeExperiment()
	BeforeReplication()
	Initialize()
	RegisterConditionalActions(p *ConditionalActionProcessor)
	MonteCarlo()
	WarmUp()
	TimedUpdate()
	ReplicationEnded()
	AfterReplication()
	AfterExperiment()
	RemovedFromModel()
}

// BaseHooks is a no-op implementation of every LifecycleHooks method.
// Embed it by value in a concrete element type and override only the
// hooks that type cares about, exactly as the teacher's NodeFunc pattern
// (graph/node.go) lets callers supply only the behavior they need.
type BaseHooks struct{}

func (BaseHooks) BeforeExperiment()                                   {}
func (BaseHooks) BeforeReplication()                                  {}
func (BaseHooks) Initialize()                                         {}
func (BaseHooks) RegisterConditionalActions(p *ConditionalActionProcessor) {}
func (BaseHooks) MonteCarlo()                                         {}
func (BaseHooks) WarmUp()                                             {}
func (BaseHooks) TimedUpdate()                                        {}
func (BaseHooks) ReplicationEnded()                                   {}
func (BaseHooks) AfterReplication()                                   {}
func (BaseHooks) AfterExperiment()                                    {}
func (BaseHooks) RemovedFromModel()                                   {}

// Element is what the model tree stores and traverses: identity plus the
// full hook surface. A concrete user type satisfies it (through a
// pointer) by embedding ElementBase (for identity/bookkeeping) and BaseHooks (for hook
// defaults), overriding whichever hooks it needs.
type Element interface {
	LifecycleHooks
	Name() string
	ID() int64
}

// LifecycleOptions gates whether an element's own hook runs during a
// given phase; it never gates recursion into children (spec.md §4.6
// "Option flags... do not gate recursion into children").
type LifecycleOptions struct {
	BeforeExperiment   bool
	BeforeReplication  bool
	Initialization     bool
	MonteCarlo         bool // default false
	ReplicationEnded   bool
	AfterReplication   bool
	AfterExperiment    bool
	WarmUp             bool // default true: inherit parent's warmup
	TimedUpdate        bool
}

// DefaultLifecycleOptions returns the options every new element starts
// with: every hook enabled except MonteCarlo, per spec.md §4.6's
// explicit "(default false)" on monteCarloOption alone.
func DefaultLifecycleOptions() LifecycleOptions {
	return LifecycleOptions{
		BeforeExperiment:  true,
		BeforeReplication: true,
		Initialization:    true,
		MonteCarlo:        false,
		ReplicationEnded:  true,
		AfterReplication:  true,
		AfterExperiment:   true,
		WarmUp:            true,
		TimedUpdate:       true,
	}
}

// ElementBase is the identity, tree-bookkeeping, and option/state record
// every model element embeds. It never dispatches hooks itself — the
// ReplicationController walks the Model's arena and invokes LifecycleHooks
// methods on the Element interface value, so overrides resolve correctly.
type ElementBase struct {
	id     int64
	name   string
	model  *Model
	Options LifecycleOptions

	status Status

	// IndividualWarmUpLength, when > 0, gives this element its own warmup
	// length and disables WarmUp (inheritance); setting it back to 0
	// re-enables inheritance (spec.md §4.6 "Warmup").
	IndividualWarmUpLength float64

	// TimedUpdateInterval records this element's timed-update interval.
	// The ReplicationController does not schedule timed-update events
	// from it, so the kernel never invokes the TimedUpdate hook on its own.
	TimedUpdateInterval float64

	warmUpEvent     *Event
	timedUpdateEvent *Event

	observers []StatusObserver

	// leftCount/rightCount are the pre-order traversal bounds assigned by
	// ReplicationController.setUpExperiment (spec.md §4.5 step 2), used to
	// impose and verify deterministic visitation order.
	leftCount, rightCount int
}

// newElementBase is called by Model.Add; user code never constructs one
// directly.
func newElementBase(id int64, name string, model *Model) *ElementBase {
	return &ElementBase{
		id:      id,
		name:    name,
		model:   model,
		Options: DefaultLifecycleOptions(),
	}
}

// ID returns the element's stable, model-unique integer id.
func (e *ElementBase) ID() int64 { return e.id }

// Name returns the element's model-unique name.
func (e *ElementBase) Name() string { return e.name }

// Model returns the owning root model.
func (e *ElementBase) Model() *Model { return e.model }

// Status returns the element's current lifecycle status.
func (e *ElementBase) Status() Status { return e.status }

// Parent returns the element's parent, or nil for the root model.
func (e *ElementBase) Parent() Element { return e.model.parentOf(e.id) }

// Children returns the element's children in insertion order.
func (e *ElementBase) Children() []Element { return e.model.childrenOf(e.id) }

// AddStatusObserver attaches an observer to this element alone. Per
// spec.md §5, attach/detach only while the model is not running.
func (e *ElementBase) AddStatusObserver(o StatusObserver) error {
	if e.model != nil && e.model.IsRunning() {
		return newStateError("MODEL_RUNNING", "cannot attach observer to %q while running", e.name)
	}
	e.observers = append(e.observers, o)
	return nil
}

// RemoveStatusObserver detaches a previously attached observer.
func (e *ElementBase) RemoveStatusObserver(o StatusObserver) error {
	if e.model != nil && e.model.IsRunning() {
		return newStateError("MODEL_RUNNING", "cannot detach observer from %q while running", e.name)
	}
	for i, obs := range e.observers {
		if obs == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return nil
		}
	}
	return nil
}

// setStatus transitions the element's status and notifies, in
// attachment order, this element's own observers followed by the
// model-wide observers (spec.md §5 "Status observers are notified in the
// order they were attached").
func (e *ElementBase) setStatus(elem Element, s Status) {
	previous := e.status
	e.status = s
	for _, o := range e.observers {
		o.OnStatusChange(elem, previous, s)
	}
	if e.model != nil {
		for _, o := range e.model.observers {
			o.OnStatusChange(elem, previous, s)
		}
	}
}

// EffectiveWarmUp returns the warmup length this element uses: its own
// IndividualWarmUpLength if WarmUp inheritance is disabled, otherwise the
// model's replication warmup length (spec.md §4.6 "The root model's
// lengthOfReplicationWarmUp acts as the default warmup length").
func (e *ElementBase) EffectiveWarmUp() float64 {
	if !e.Options.WarmUp && e.IndividualWarmUpLength > 0 {
		return e.IndividualWarmUpLength
	}
	return e.model.Params.WarmUpLength
}

// SetIndividualWarmUpLength sets this element's own warmup length. A
// positive value disables warmup inheritance; zero re-enables it.
func (e *ElementBase) SetIndividualWarmUpLength(length float64) error {
	if length < 0 {
		return newPrecondition("NEGATIVE_WARMUP", "warmup length must be >= 0, got %g", length)
	}
	e.IndividualWarmUpLength = length
	e.Options.WarmUp = length == 0
	return nil
}

// cancelWarmUpAndTimedUpdate cancels this element's own pending warmup
// and timed-update events, if scheduled. Used on removal (spec.md §4.6
// "Removal" step 2).
func (e *ElementBase) cancelWarmUpAndTimedUpdate() {
	if e.warmUpEvent != nil && e.warmUpEvent.Scheduled() {
		_ = e.warmUpEvent.Cancel()
	}
	e.warmUpEvent = nil
	if e.timedUpdateEvent != nil && e.timedUpdateEvent.Scheduled() {
		_ = e.timedUpdateEvent.Cancel()
	}
	e.timedUpdateEvent = nil
}
