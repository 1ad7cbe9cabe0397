package stream

import "testing"

func TestRandIsDeterministicForAFixedSeed(t *testing.T) {
	a := New("stream-a", 7)
	b := New("stream-a", 7)
	for i := 0; i < 10; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("draw %d: want identical sequences from identical seeds, got %g vs %g", i, x, y)
		}
	}
}

func TestRandSubstreamsAreIndependent(t *testing.T) {
	r := New("stream-b", 7)
	first := make([]float64, 5)
	for i := range first {
		first[i] = r.Next()
	}
	r.AdvanceToNextSubstream()
	second := make([]float64, 5)
	for i := range second {
		second[i] = r.Next()
	}
	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
		}
	}
	if same {
		t.Fatal("want a different draw sequence after advancing to the next substream")
	}
}

func TestRandResetStartStreamReturnsToSubstreamZero(t *testing.T) {
	r := New("stream-c", 7)
	baseline := r.Next()
	r.AdvanceToNextSubstream()
	r.AdvanceToNextSubstream()
	r.ResetStartStream()
	if got := r.Next(); got != baseline {
		t.Fatalf("want ResetStartStream to reproduce substream 0's first draw, got %g want %g", got, baseline)
	}
}

func TestRandResetStartSubstreamReplaysCurrentSubstream(t *testing.T) {
	r := New("stream-d", 7)
	r.AdvanceToNextSubstream()
	baseline := r.Next()
	r.Next()
	r.Next()
	r.ResetStartSubstream()
	if got := r.Next(); got != baseline {
		t.Fatalf("want ResetStartSubstream to replay the current substream from its start, got %g want %g", got, baseline)
	}
}

func TestRandAntitheticNegatesDraws(t *testing.T) {
	plain := New("stream-e", 7)
	anti := New("stream-e", 7)
	anti.SetAntithetic(true)
	for i := 0; i < 5; i++ {
		u, v := plain.Next(), anti.Next()
		want := 1 - u
		if v != want {
			t.Fatalf("draw %d: want antithetic 1-u=%g, got %g", i, want, v)
		}
	}
}
