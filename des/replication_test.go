package des

import (
	"testing"

	"github.com/desgo/kernel/des/stream"
)

type trackingElement struct {
	ElementBase
	BaseHooks

	beforeExperiment int
	beforeReplication int
	initialize        int
	afterReplication  int
	afterExperiment   int
	warmUps           int
}

func (e *trackingElement) BeforeExperiment()  { e.beforeExperiment++ }
func (e *trackingElement) BeforeReplication() { e.beforeReplication++ }
func (e *trackingElement) Initialize()        { e.initialize++ }
func (e *trackingElement) AfterReplication()  { e.afterReplication++ }
func (e *trackingElement) AfterExperiment()   { e.afterExperiment++ }
func (e *trackingElement) WarmUp()            { e.warmUps++ }

func newTrackingElement(base *ElementBase) *trackingElement {
	return &trackingElement{ElementBase: *base}
}

func TestReplicationControllerRunsExactlyNumReplications(t *testing.T) {
	m := NewModel("sim", t.TempDir(), WithNumReplications(3), WithReplicationLength(10))
	elem, err := Add(m, nil, "elem", newTrackingElement)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := m.Controller.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if elem.beforeExperiment != 1 || elem.afterExperiment != 1 {
		t.Fatalf("want beforeExperiment/afterExperiment exactly once each, got %d/%d",
			elem.beforeExperiment, elem.afterExperiment)
	}
	if elem.beforeReplication != 3 || elem.initialize != 3 || elem.afterReplication != 3 {
		t.Fatalf("want per-replication hooks exactly 3 times each, got before=%d init=%d after=%d",
			elem.beforeReplication, elem.initialize, elem.afterReplication)
	}
	if m.Controller.ReplicationsRun() != 3 {
		t.Fatalf("want 3 replications run, got %d", m.Controller.ReplicationsRun())
	}
}

func TestReplicationControllerWarmUpFiresOncePerReplication(t *testing.T) {
	m := NewModel("sim", t.TempDir(), WithNumReplications(2), WithReplicationLength(10), WithWarmUpLength(5))
	elem, err := Add(m, nil, "elem", newTrackingElement)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := m.Controller.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elem.warmUps != 2 {
		t.Fatalf("want warmup to fire once per replication, got %d", elem.warmUps)
	}
}

func TestReplicationControllerResetStartStreamReproducesDraws(t *testing.T) {
	m := NewModel("sim", t.TempDir(),
		WithNumReplications(2),
		WithReplicationLength(5),
		WithStream(stream.New("repl-test", 99)),
	)
	m.Params.ResetStartStreamOption = ResetStartStreamEachReplication

	var draws []float64
	_, err := Add(m, nil, "drawer", func(base *ElementBase) *drawingElement {
		d := &drawingElement{ElementBase: *base, model: m}
		d.onDraw = func(u float64) { draws = append(draws, u) }
		return d
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := m.Controller.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(draws) != 2 {
		t.Fatalf("want one draw per replication, got %d", len(draws))
	}
	if draws[0] != draws[1] {
		t.Fatalf("want identical draws across replications when the stream resets each time, got %g vs %g", draws[0], draws[1])
	}
}

type drawingElement struct {
	ElementBase
	BaseHooks
	model  *Model
	onDraw func(float64)
}

func (d *drawingElement) Initialize() {
	if d.model.Stream != nil {
		d.onDraw(d.model.Stream.Next())
	}
}

// multiDrawingElement draws n variates at Initialize time, letting the
// antithetic test check the sum identity at every draw index, not just
// the first.
type multiDrawingElement struct {
	ElementBase
	BaseHooks
	model *Model
	n     int
	onRep func([]float64)
}

func (d *multiDrawingElement) Initialize() {
	if d.model.Stream == nil {
		return
	}
	draws := make([]float64, d.n)
	for i := range draws {
		draws[i] = d.model.Stream.Next()
	}
	d.onRep(draws)
}

// TestReplicationControllerAntitheticPairsSumToOne reproduces spec.md §8
// scenario 6: with antithetic pairing enabled, replication 2 replays
// replication 1's exact draw sequence negated (u -> 1-u), so their sums
// equal 1.0 (twice the uniform mean) at every draw index; replication 3
// moves to a fresh sub-stream, and replication 4 mirrors it the same way.
func TestReplicationControllerAntitheticPairsSumToOne(t *testing.T) {
	m := NewModel("sim", t.TempDir(),
		WithNumReplications(4),
		WithReplicationLength(5),
		WithStream(stream.New("antithetic-test", 7)),
		WithAntithetic(true),
	)

	const drawsPerRep = 5
	var reps [][]float64
	_, err := Add(m, nil, "drawer", func(base *ElementBase) *multiDrawingElement {
		d := &multiDrawingElement{ElementBase: *base, model: m, n: drawsPerRep}
		d.onRep = func(draws []float64) { reps = append(reps, draws) }
		return d
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := m.Controller.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reps) != 4 {
		t.Fatalf("want 4 replications of draws, got %d", len(reps))
	}

	const tol = 1e-9
	for i := 0; i < drawsPerRep; i++ {
		if sum := reps[0][i] + reps[1][i]; abs(sum-1.0) > tol {
			t.Fatalf("rep1+rep2 draw %d: want sum 1.0, got %g (%g + %g)", i, sum, reps[0][i], reps[1][i])
		}
		if sum := reps[2][i] + reps[3][i]; abs(sum-1.0) > tol {
			t.Fatalf("rep3+rep4 draw %d: want sum 1.0, got %g (%g + %g)", i, sum, reps[2][i], reps[3][i])
		}
		if reps[0][i] == reps[2][i] {
			t.Fatalf("rep1 and rep3 draw %d: want distinct sub-streams, got identical draw %g", i, reps[0][i])
		}
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
