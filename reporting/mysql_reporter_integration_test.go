//go:build integration

package reporting

import (
	"context"
	"os"
	"testing"

	"github.com/desgo/kernel/des/emit"
)

// These tests require a live MySQL instance reachable at DES_MYSQL_DSN,
// mirroring the teacher's gating of its MySQL store tests behind an
// integration build tag plus an environment-provided DSN.
func TestMySQLReporterIntegration(t *testing.T) {
	dsn := os.Getenv("DES_MYSQL_DSN")
	if dsn == "" {
		t.Skip("DES_MYSQL_DSN not set")
	}

	r, err := NewMySQLReporter(dsn)
	if err != nil {
		t.Fatalf("NewMySQLReporter: %v", err)
	}
	defer func() { _ = r.Close() }()

	ctx := context.Background()
	if err := r.EmitBatch(ctx, []emit.Event{
		{ModelName: "integration-mm1", Msg: "Initialized"},
		{ModelName: "integration-mm1", Msg: "Warmup"},
	}); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}

	n, err := r.Count(ctx, "integration-mm1")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n < 2 {
		t.Fatalf("want at least 2 events, got %d", n)
	}
}
