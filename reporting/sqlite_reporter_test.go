package reporting

import (
	"context"
	"testing"

	"github.com/desgo/kernel/des/emit"
)

func TestSQLiteReporterEmitAndCount(t *testing.T) {
	r, err := NewSQLiteReporter(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteReporter: %v", err)
	}
	defer func() { _ = r.Close() }()

	r.Emit(emit.Event{ModelName: "mm1", Replication: 1, Msg: "Initialized"})
	r.Emit(emit.Event{ModelName: "mm1", Replication: 1, Msg: "Warmup"})
	r.Emit(emit.Event{ModelName: "other", Replication: 1, Msg: "Initialized"})

	ctx := context.Background()
	n, err := r.Count(ctx, "mm1")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 events for mm1, got %d", n)
	}
}

func TestSQLiteReporterEmitBatch(t *testing.T) {
	r, err := NewSQLiteReporter(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteReporter: %v", err)
	}
	defer func() { _ = r.Close() }()

	ctx := context.Background()
	err = r.EmitBatch(ctx, []emit.Event{
		{ModelName: "mm1", Msg: "a"},
		{ModelName: "mm1", Msg: "b"},
		{ModelName: "mm1", Msg: "c"},
	})
	if err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	n, err := r.Count(ctx, "mm1")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 events, got %d", n)
	}
}

func TestSQLiteReporterClosedRejectsWrites(t *testing.T) {
	r, err := NewSQLiteReporter(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteReporter: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("double Close should be a no-op, got: %v", err)
	}
	if err := r.EmitBatch(context.Background(), []emit.Event{{ModelName: "mm1"}}); err == nil {
		t.Fatal("want error emitting to a closed reporter")
	}
}
