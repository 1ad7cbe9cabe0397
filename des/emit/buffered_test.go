package emit

import "testing"

func TestBufferedObserverHistoryAndClear(t *testing.T) {
	b := NewBufferedObserver()
	b.Emit(Event{ModelName: "m1", Msg: "a"})
	b.Emit(Event{ModelName: "m1", Msg: "b"})
	b.Emit(Event{ModelName: "m2", Msg: "c"})

	if got := b.History("m1"); len(got) != 2 {
		t.Fatalf("want 2 events for m1, got %d", len(got))
	}
	if got := b.History("m2"); len(got) != 1 {
		t.Fatalf("want 1 event for m2, got %d", len(got))
	}

	b.Clear("m1")
	if got := b.History("m1"); len(got) != 0 {
		t.Fatalf("want 0 events after Clear(m1), got %d", len(got))
	}
	if got := b.History("m2"); len(got) != 1 {
		t.Fatalf("m2 should be unaffected by Clear(m1), got %d", len(got))
	}

	b.Clear("")
	if got := b.History("m2"); len(got) != 0 {
		t.Fatalf("want 0 events after Clear(\"\"), got %d", len(got))
	}
}
