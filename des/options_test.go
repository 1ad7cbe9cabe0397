package des

import "testing"

func TestDefaultExperimentParams(t *testing.T) {
	p := DefaultExperimentParams()
	if p.NumReplications != 1 || p.ReplicationLength != 1 || p.WarmUpLength != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestModelOptionsApplyInOrder(t *testing.T) {
	m := NewModel("sim", t.TempDir(),
		WithNumReplications(5),
		WithReplicationLength(100),
		WithWarmUpLength(10),
		WithAntithetic(true),
		WithBaseTimeUnit(60),
		WithControl("seed-family", "A"),
		WithControl("seed-family", "B"), // last write wins for the same key
	)

	if m.Params.NumReplications != 5 {
		t.Fatalf("want NumReplications=5, got %d", m.Params.NumReplications)
	}
	if m.Params.ReplicationLength != 100 {
		t.Fatalf("want ReplicationLength=100, got %g", m.Params.ReplicationLength)
	}
	if m.Params.WarmUpLength != 10 {
		t.Fatalf("want WarmUpLength=10, got %g", m.Params.WarmUpLength)
	}
	if !m.Params.AntitheticOption {
		t.Fatal("want AntitheticOption enabled")
	}
	if m.BaseTimeUnit != 60 {
		t.Fatalf("want BaseTimeUnit=60, got %g", m.BaseTimeUnit)
	}
	if m.Params.Controls["seed-family"] != "B" {
		t.Fatalf("want last WithControl to win, got %q", m.Params.Controls["seed-family"])
	}
}

func TestWithConfigurationManagerIsInvoked(t *testing.T) {
	var seenControls map[string]string
	cm := ConfigurationManagerFunc(func(model *Model, controls map[string]string) error {
		seenControls = controls
		return nil
	})
	m := NewModel("sim", t.TempDir(), WithConfigurationManager(cm), WithControl("rate", "fast"))

	if err := m.configManager.Configure(m, m.Params.Controls); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if seenControls["rate"] != "fast" {
		t.Fatalf("want configuration manager to observe Controls, got %+v", seenControls)
	}
}
