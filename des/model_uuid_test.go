package des

import "testing"

func TestNewModelAssignsExperimentIDWhenUnset(t *testing.T) {
	m := NewModel("sim", t.TempDir())
	if m.Params.ExperimentID == "" {
		t.Fatal("want a generated ExperimentID")
	}
}

func TestNewModelKeepsExplicitExperimentID(t *testing.T) {
	p := DefaultExperimentParams()
	p.ExperimentID = "fixed-id"
	m := NewModel("sim", t.TempDir(), WithExperimentParams(p))
	if m.Params.ExperimentID != "fixed-id" {
		t.Fatalf("want explicit ExperimentID preserved, got %q", m.Params.ExperimentID)
	}
}
