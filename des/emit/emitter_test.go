package emit

import (
	"context"
	"testing"

	"github.com/desgo/kernel/des"
)

type fakeElement struct {
	des.ElementBase
	des.BaseHooks
}

func TestAdapterOnStatusChange(t *testing.T) {
	buf := NewBufferedObserver()
	a := NewAdapter("queue-sim", buf)
	a.Replication = 2

	m := des.NewModel("queue-sim", t.TempDir())
	elem, err := des.Add(m, nil, "server", func(base *des.ElementBase) *fakeElement {
		return &fakeElement{ElementBase: *base}
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	a.OnStatusChange(elem, des.StatusNone, des.StatusInitialized)

	history := buf.History("queue-sim")
	if len(history) != 1 {
		t.Fatalf("want 1 event, got %d", len(history))
	}
	got := history[0]
	if got.ElementName != "server" || got.Msg != "Initialized" || got.Replication != 2 {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Meta["previous_status"] != "None" {
		t.Fatalf("want previous_status=None, got %v", got.Meta["previous_status"])
	}
}

func TestAdapterOnEvent(t *testing.T) {
	buf := NewBufferedObserver()
	a := NewAdapter("queue-sim", buf)

	exec := des.NewExecutive()
	exec.Initialize()
	evt, err := exec.Schedule(nil, 1.5, func(*des.Event) {}, des.WithEventName("arrival"))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	a.OnEvent(exec, evt)

	history := buf.History("queue-sim")
	if len(history) != 1 || history[0].Msg != "dispatch" {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history[0].Meta["event_name"] != "arrival" {
		t.Fatalf("want event_name=arrival, got %v", history[0].Meta["event_name"])
	}
}

func TestNullObserverDiscards(t *testing.T) {
	n := NewNullObserver()
	n.Emit(Event{Msg: "ignored"})
	if err := n.EmitBatch(context.Background(), []Event{{Msg: "ignored"}}); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if err := n.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
