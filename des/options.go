package des

// ReplicationInitOption selects how a replication's initial state is
// derived from the one before it (spec.md §3 "replicationInitializationOption").
type ReplicationInitOption int

const (
	// ReplicationInitFresh re-initializes every element from scratch at
	// the start of each replication (the common case).
	ReplicationInitFresh ReplicationInitOption = iota
	// ReplicationInitCarryState skips per-element Initialize, carrying
	// state forward from the previous replication.
	ReplicationInitCarryState
)

// StreamResetOption selects whether a stream's starting substream resets
// to the experiment's starting position at the beginning of each
// replication (spec.md §3 "resetStartStreamOption").
type StreamResetOption int

const (
	ResetStartStreamEachReplication StreamResetOption = iota
	ResetStartStreamNever
)

// ExperimentParams holds the parameters of a simulation experiment
// (spec.md §3 "Experiment parameters"). A *Model always has one, either
// the defaults from DefaultExperimentParams or one set with ModelOption
// values (WithExperimentParams and the other With... options) at
// construction time.
type ExperimentParams struct {
	ExperimentName string

	// ExperimentID uniquely identifies one run of an experiment, for
	// correlating emitted events and reporter rows across a distributed
	// batch of replications. Left empty, NewModel fills it in with a
	// freshly generated UUID.
	ExperimentID string

	NumReplications       int
	StartingReplicationID int

	ReplicationLength float64
	WarmUpLength      float64

	MaxWallTimePerReplication float64 // seconds; 0 disables the check

	ReplicationInitOption ReplicationInitOption
	ResetStartStreamOption StreamResetOption

	// AdvanceNextSubstreamOption, if true, advances every stream to its
	// next substream at the start of each replication rather than
	// reusing the same substream (spec.md §3 "advanceNextSubstreamOption").
	AdvanceNextSubstreamOption bool

	// AntitheticOption, if true, alternates the even/odd replication's
	// substream between a stream's normal and antithetic variate
	// (spec.md §8 scenario 6).
	AntitheticOption bool

	// NumberOfStreamAdvancesBeforeRunning offsets every stream's
	// substream position before the first replication runs, so that
	// repeated short experiments against the same stream family don't
	// reuse the same early substreams.
	NumberOfStreamAdvancesBeforeRunning int

	// GarbageCollectionAfterReplication requests a runtime.GC() call
	// between replications; useful for long experiments with large
	// per-replication allocations, never required for correctness.
	GarbageCollectionAfterReplication bool

	// Controls carries free-form experiment-design parameters down to
	// the ConfigurationManager and individual elements (spec.md §6
	// "Configuration manager").
	Controls map[string]string
}

// DefaultExperimentParams returns a single replication of length 1 with
// no warmup — the minimal configuration the three-event scenarios in
// spec.md §8 run under.
func DefaultExperimentParams() *ExperimentParams {
	return &ExperimentParams{
		ExperimentName:        "experiment",
		NumReplications:       1,
		StartingReplicationID: 1,
		ReplicationLength:     1,
		WarmUpLength:          0,
		ReplicationInitOption: ReplicationInitFresh,
		Controls:              map[string]string{},
	}
}

// ModelOption configures a Model at construction time, following the
// teacher's functional-options convention (graph/options.go's
// Option/WithXxx pattern), generalized from per-engine knobs to
// per-model/per-experiment ones.
type ModelOption func(*Model)

// WithExperimentParams replaces the model's experiment parameters
// wholesale.
func WithExperimentParams(p *ExperimentParams) ModelOption {
	return func(m *Model) { m.Params = p }
}

// WithStream sets the model's random-number stream provider.
func WithStream(s StreamProvider) ModelOption {
	return func(m *Model) { m.Stream = s }
}

// WithConfigurationManager attaches the optional collaborator invoked
// once per experiment after parameter/control application.
func WithConfigurationManager(cm ConfigurationManager) ModelOption {
	return func(m *Model) { m.configManager = cm }
}

// WithBaseTimeUnit sets the model's display-only time-unit conversion
// factor (spec.md §9 "never used in time comparisons").
func WithBaseTimeUnit(unit float64) ModelOption {
	return func(m *Model) { m.BaseTimeUnit = unit }
}

// WithMaxWallTimePerReplication bounds how long any single replication's
// RunUntilEmpty loop may run in real time.
func WithMaxWallTimePerReplication(seconds float64) ModelOption {
	return func(m *Model) { m.Params.MaxWallTimePerReplication = seconds }
}

// WithNumReplications sets the number of replications the experiment
// runs.
func WithNumReplications(n int) ModelOption {
	return func(m *Model) { m.Params.NumReplications = n }
}

// WithReplicationLength sets the simulated length of each replication.
func WithReplicationLength(length float64) ModelOption {
	return func(m *Model) { m.Params.ReplicationLength = length }
}

// WithWarmUpLength sets the model-wide default warmup length that
// elements inherit unless they set their own (spec.md §4.6).
func WithWarmUpLength(length float64) ModelOption {
	return func(m *Model) { m.Params.WarmUpLength = length }
}

// WithAntithetic enables antithetic-variate replication pairing
// (spec.md §8 scenario 6).
func WithAntithetic(enabled bool) ModelOption {
	return func(m *Model) { m.Params.AntitheticOption = enabled }
}

// WithControl sets a single experiment-design control value, creating
// the Controls map if necessary.
func WithControl(key, value string) ModelOption {
	return func(m *Model) {
		if m.Params.Controls == nil {
			m.Params.Controls = map[string]string{}
		}
		m.Params.Controls[key] = value
	}
}
