// Package stream provides the default math/rand-backed implementation of
// des.StreamProvider, with substream and antithetic-variate support
// (spec.md §6 "Stream / random-number provider", §8 scenario 6).
//
// Substreams are derived deterministically: the provider's seed, stream
// id, and substream index are hashed with sha256 into a fresh int64 seed
// for a dedicated *rand.Rand, the same "hash the inputs into a seed"
// technique the teacher uses in its retry backoff (graph/engine.go's
// initRNG), generalized from "one seed per engine run" to "one seed per
// substream".
package stream

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Rand is the default des.StreamProvider implementation: a family of
// independent substreams derived from a single root seed, with optional
// antithetic negation.
type Rand struct {
	mu sync.Mutex

	name string
	seed int64

	substreamIndex int64
	rng            *rand.Rand

	antithetic bool
}

// New returns a Rand provider identified by name (used only to
// distinguish substream derivation across multiple independent
// providers sharing a root seed) and seeded from seed.
func New(name string, seed int64) *Rand {
	r := &Rand{name: name, seed: seed}
	r.seedSubstream(0)
	return r
}

func (r *Rand) seedSubstream(index int64) {
	h := sha256.New()
	h.Write([]byte(r.name))
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.seed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(index))
	h.Write(buf[:])
	sum := h.Sum(nil)
	derived := int64(binary.LittleEndian.Uint64(sum[:8]))
	if derived < 0 {
		derived = -derived
	}
	r.substreamIndex = index
	r.rng = rand.New(rand.NewSource(derived))
}

// Next returns the next uniform variate in [0, 1), negated to 1-u when
// antithetic mode is on.
func (r *Rand) Next() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.rng.Float64()
	if r.antithetic {
		return 1 - u
	}
	return u
}

// ResetStartStream rewinds to substream 0.
func (r *Rand) ResetStartStream() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedSubstream(0)
}

// ResetStartSubstream rewinds the current substream to its own
// beginning without changing which substream is selected.
func (r *Rand) ResetStartSubstream() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedSubstream(r.substreamIndex)
}

// AdvanceToNextSubstream moves to substream index+1.
func (r *Rand) AdvanceToNextSubstream() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedSubstream(r.substreamIndex + 1)
}

// SetAntithetic toggles 1-u negation for subsequent draws.
func (r *Rand) SetAntithetic(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.antithetic = on
}
