package des

// StreamProvider is the random-number collaborator a Model delegates
// variate generation to (spec.md §6 "Stream / random-number provider").
// The kernel itself never calls math/rand directly; every element that
// needs randomness goes through the Model's Stream. Concrete
// implementations live in package des/stream, grounded on the teacher's
// initRNG/computeBackoff (graph/engine.go) sha256-seeded math/rand use.
type StreamProvider interface {
	// Next returns the next uniform variate in [0, 1) from the provider's
	// current substream.
	Next() float64

	// ResetStartStream rewinds to the first substream of the provider's
	// seed stream (spec.md §3 "resetStartStreamOption").
	ResetStartStream()

	// ResetStartSubstream rewinds to the beginning of the current
	// substream without changing which substream is selected.
	ResetStartSubstream()

	// AdvanceToNextSubstream moves to the next substream, so that two
	// replications drawing from the same stream never reuse variates
	// (spec.md §3 "advanceNextSubstreamOption").
	AdvanceToNextSubstream()

	// SetAntithetic toggles whether Next returns 1-u instead of u for
	// every later draw, until it is toggled again; changing substream
	// does not reset it (spec.md §8 scenario 6: antithetic replication
	// pairs).
	SetAntithetic(on bool)
}
