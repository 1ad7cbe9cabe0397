package des

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := vec.WithLabelValues(labels...).Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMetricsObserverCountsDispatchedEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	ex := NewExecutive()
	ex.Initialize()
	ex.AddObserver(metrics.Observer("sim"))

	for i := 0; i < 3; i++ {
		if _, err := ex.Schedule(nil, 1, func(*Event) {}); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}
	if err := ex.RunUntilEmpty(); err != nil {
		t.Fatalf("RunUntilEmpty: %v", err)
	}

	if got := counterValue(t, metrics.eventsDispatched, "sim"); got != 6 {
		// OnEvent fires on both the BeforeEvent and AfterEvent notification,
		// so three dispatched events register as six increments.
		t.Fatalf("want 6 OnEvent notifications for 3 dispatches, got %g", got)
	}
}

func TestMetricsRecordReplicationAndDispatchError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	metrics.RecordReplication("sim", 0.5)
	metrics.RecordReplication("sim", 1.5)
	metrics.RecordDispatchError("sim")

	if got := counterValue(t, metrics.replicationsRun, "sim"); got != 2 {
		t.Fatalf("want 2 replications recorded, got %g", got)
	}
	if got := counterValue(t, metrics.dispatchErrors, "sim"); got != 1 {
		t.Fatalf("want 1 dispatch error recorded, got %g", got)
	}
}
