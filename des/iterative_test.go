package des

import "testing"

type countingStepper struct {
	stepsLeft int
	stop      bool
}

func (s *countingStepper) RunStep() (bool, error) {
	if s.stepsLeft <= 0 {
		return false, nil
	}
	s.stepsLeft--
	return true, nil
}

func (s *countingStepper) StepStoppingCondition() bool { return s.stop }

func TestIterativeProcessRunsToCompletion(t *testing.T) {
	stepper := &countingStepper{stepsLeft: 3}
	p := NewIterativeProcess(stepper)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.State() != StateEnded {
		t.Fatalf("want Ended, got %s", p.State())
	}
	if p.StepCount() != 3 {
		t.Fatalf("want 3 steps run, got %d", p.StepCount())
	}
	if p.EndingStatus() != EndingStatusCompletedAllSteps {
		t.Fatalf("want EndingStatusCompletedAllSteps, got %s", p.EndingStatus())
	}
}

func TestIterativeProcessNoStepsExecuted(t *testing.T) {
	stepper := &countingStepper{stepsLeft: 0}
	p := NewIterativeProcess(stepper)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.EndingStatus() != EndingStatusNoStepsExecuted {
		t.Fatalf("want EndingStatusNoStepsExecuted, got %s", p.EndingStatus())
	}
}

func TestIterativeProcessStoppingConditionEndsEarly(t *testing.T) {
	stepper := &countingStepper{stepsLeft: 100}
	p := NewIterativeProcess(stepper)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := p.RunNext(); err != nil {
		t.Fatalf("RunNext: %v", err)
	}
	stepper.stop = true
	if err := p.RunNext(); err != nil {
		t.Fatalf("RunNext: %v", err)
	}
	if p.State() != StateEnded {
		t.Fatalf("want Ended once the stopping condition is met, got %s", p.State())
	}
	if p.EndingStatus() != EndingStatusMetStoppingCondition {
		t.Fatalf("want EndingStatusMetStoppingCondition, got %s", p.EndingStatus())
	}
	if p.StepCount() != 2 {
		t.Fatalf("want 2 steps run before stopping, got %d", p.StepCount())
	}
}

func TestIterativeProcessIllegalTransitions(t *testing.T) {
	stepper := &countingStepper{stepsLeft: 1}
	p := NewIterativeProcess(stepper)
	if err := p.RunNext(); err == nil {
		t.Fatal("want an error calling RunNext before Initialize")
	}
	if err := p.End(""); err == nil {
		t.Fatal("want an error calling End from Created")
	}
}

func TestIterativeProcessReinitializeAfterEnded(t *testing.T) {
	stepper := &countingStepper{stepsLeft: 1}
	p := NewIterativeProcess(stepper)
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := p.Initialize(); err != nil {
		t.Fatalf("want Initialize legal from Ended, got: %v", err)
	}
	if p.State() != StateInitialized {
		t.Fatalf("want Initialized, got %s", p.State())
	}
	if p.StepCount() != 0 {
		t.Fatalf("want step count reset, got %d", p.StepCount())
	}
}
