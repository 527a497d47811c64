package commands

import (
	"context"
	"testing"
	"time"

	"github.com/riftlang/rift/pkg/engine"
	"github.com/riftlang/rift/pkg/stores"
)

func newTestStore(t *testing.T) stores.Store {
	t.Helper()
	store, err := stores.NewSQLiteStore(stores.Config{
		Path: ":memory:",
		// A single connection keeps the in-memory database stable across
		// statements.
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("initializing store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrating store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRunRecord(id string) engine.RunRecord {
	return engine.RunRecord{
		ID:        id,
		SessionID: "session-1",
		Mode:      "repl",
		Status:    "succeeded",
		StartedAt: time.Now().UTC(),
		Duration:  42 * time.Millisecond,
		Source:    "call hello;",
	}
}

func TestRecorderBuffersChildrenUntilRunLands(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newHistoryRecorder(store)

	err := rec.RecordFuse(ctx, engine.FuseRecord{
		RunID:    "run-1",
		Language: "python",
		Hash:     "abc123",
		Duration: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("RecordFuse: %v", err)
	}
	err = rec.RecordDeployment(ctx, engine.DeployRecord{
		RunID:    "run-1",
		Sink:     "local",
		Attempts: 1,
		Status:   "succeeded",
		Duration: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("RecordDeployment: %v", err)
	}

	// Nothing persists until the run row exists.
	fuses, err := store.ListFuseExecutionsByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListFuseExecutionsByRun: %v", err)
	}
	if len(fuses) != 0 {
		t.Fatalf("got %d fuse rows before run landed, want 0", len(fuses))
	}

	if err := rec.RecordRun(ctx, testRunRecord("run-1")); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != stores.RunStatusSucceeded {
		t.Errorf("run status = %s, want succeeded", run.Status)
	}

	fuses, err = store.ListFuseExecutionsByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListFuseExecutionsByRun: %v", err)
	}
	if len(fuses) != 1 {
		t.Fatalf("got %d fuse rows, want 1", len(fuses))
	}
	if fuses[0].Language != "python" || fuses[0].Hash != "abc123" {
		t.Errorf("fuse row = %+v, want python/abc123", fuses[0])
	}

	deploys, err := store.ListDeploymentsByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListDeploymentsByRun: %v", err)
	}
	if len(deploys) != 1 {
		t.Fatalf("got %d deployment rows, want 1", len(deploys))
	}
	if deploys[0].Sink != "local" || deploys[0].Status != stores.DeploymentStatusSucceeded {
		t.Errorf("deployment row = %+v, want local/succeeded", deploys[0])
	}
}

func TestRecorderDiscardsChildrenWhenRunInsertFails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newHistoryRecorder(store)

	// Occupy the run ID so the recorder's insert collides.
	now := time.Now().UTC()
	err := store.CreateRun(ctx, &stores.Run{
		ID:        "run-dup",
		SessionID: "session-1",
		Mode:      "repl",
		Status:    stores.RunStatusSucceeded,
		StartedAt: now,
	})
	if err != nil {
		t.Fatalf("seeding run: %v", err)
	}

	if err := rec.RecordFuse(ctx, engine.FuseRecord{RunID: "run-dup", Language: "go", Hash: "ff00"}); err != nil {
		t.Fatalf("RecordFuse: %v", err)
	}

	if err := rec.RecordRun(ctx, testRunRecord("run-dup")); err == nil {
		t.Fatal("expected duplicate run insert to fail")
	}

	// The buffered child was discarded with the failed run.
	fuses, err := store.ListFuseExecutionsByRun(ctx, "run-dup")
	if err != nil {
		t.Fatalf("ListFuseExecutionsByRun: %v", err)
	}
	if len(fuses) != 0 {
		t.Fatalf("got %d fuse rows after failed run insert, want 0", len(fuses))
	}

	rec.mu.Lock()
	pending := len(rec.pending)
	rec.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending buffer has %d entries, want 0", pending)
	}
}

func TestRecorderIgnoresRecordsWithoutRunID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newHistoryRecorder(store)

	if err := rec.RecordFuse(ctx, engine.FuseRecord{Language: "python", Hash: "aa"}); err != nil {
		t.Fatalf("RecordFuse: %v", err)
	}
	if err := rec.RecordDeployment(ctx, engine.DeployRecord{Sink: "local"}); err != nil {
		t.Fatalf("RecordDeployment: %v", err)
	}

	rec.mu.Lock()
	pending := len(rec.pending)
	rec.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending buffer has %d entries, want 0", pending)
	}
}

func TestRecorderMapsErrorFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rec := newHistoryRecorder(store)

	if err := rec.RecordFuse(ctx, engine.FuseRecord{
		RunID:    "run-2",
		Language: "rust",
		Hash:     "beef",
		Error:    "toolchain not found: rustc",
	}); err != nil {
		t.Fatalf("RecordFuse: %v", err)
	}

	run := testRunRecord("run-2")
	run.Status = "failed"
	run.Error = "toolchain not found: rustc"
	if err := rec.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	stored, err := store.GetRun(ctx, "run-2")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if stored.Error == nil || *stored.Error != "toolchain not found: rustc" {
		t.Errorf("run error = %v, want toolchain message", stored.Error)
	}

	fuses, err := store.ListFuseExecutionsByRun(ctx, "run-2")
	if err != nil {
		t.Fatalf("ListFuseExecutionsByRun: %v", err)
	}
	if len(fuses) != 1 || fuses[0].Error == nil {
		t.Fatalf("fuse rows = %+v, want one row with error", fuses)
	}
}
