package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
		// A single connection keeps the in-memory database stable and
		// makes the foreign key pragma apply to every statement.
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

func insertRun(t *testing.T, store *SQLiteStore, id string, startedAt time.Time) *Run {
	t.Helper()

	run := &Run{
		ID:         id,
		SessionID:  "session-1",
		Mode:       "repl",
		Status:     RunStatusSucceeded,
		StartedAt:  startedAt,
		DurationMS: 12,
		Source:     `@fuse python { "print('hi')" }`,
	}
	if err := store.CreateRun(context.Background(), run); err != nil {
		t.Fatalf("failed to create run %s: %v", id, err)
	}
	return run
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Fatal("expected an error for a store without a path")
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Check that tables exist by querying them
	tables := []string{"runs", "fuse_executions", "deployments"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		err := store.db.QueryRowContext(ctx, query).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}

	// Migrating again is a no-op
	if err := store.Migrate(ctx); err != nil {
		t.Errorf("second migrate failed: %v", err)
	}
}

// TestRunCRUD tests Run operations
func TestRunCRUD(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	errMsg := "function not found: missing"
	run := &Run{
		ID:         "run-001",
		SessionID:  "session-1",
		Mode:       "file",
		Status:     RunStatusFailed,
		StartedAt:  now,
		DurationMS: 42,
		Source:     "call missing;",
		Error:      &errMsg,
	}

	if err := store.CreateRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	retrieved, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}

	if retrieved.SessionID != run.SessionID {
		t.Errorf("expected SessionID %s, got %s", run.SessionID, retrieved.SessionID)
	}
	if retrieved.Mode != run.Mode {
		t.Errorf("expected Mode %s, got %s", run.Mode, retrieved.Mode)
	}
	if retrieved.Status != RunStatusFailed {
		t.Errorf("expected Status %s, got %s", RunStatusFailed, retrieved.Status)
	}
	if retrieved.DurationMS != 42 {
		t.Errorf("expected DurationMS 42, got %d", retrieved.DurationMS)
	}
	if retrieved.Error == nil || *retrieved.Error != errMsg {
		t.Errorf("expected Error %q, got %v", errMsg, retrieved.Error)
	}

	if _, err := store.GetRun(ctx, "run-missing"); err == nil {
		t.Error("expected an error for a missing run")
	}

	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	if err := store.DeleteRun(ctx, run.ID); err == nil {
		t.Error("expected an error deleting an already-deleted run")
	}
}

// TestListRuns tests listing with ordering, pagination, and session filter
func TestListRuns(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	insertRun(t, store, "run-a", base)
	insertRun(t, store, "run-b", base.Add(time.Minute))
	insertRun(t, store, "run-c", base.Add(2*time.Minute))

	other := &Run{
		ID:        "run-other",
		SessionID: "session-2",
		Mode:      "exec",
		Status:    RunStatusSucceeded,
		StartedAt: base.Add(3 * time.Minute),
	}
	if err := store.CreateRun(ctx, other); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	// Most recent first, no filter
	runs, err := store.ListRuns(ctx, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-other" || runs[3].ID != "run-a" {
		t.Errorf("unexpected order: %s ... %s", runs[0].ID, runs[3].ID)
	}

	// Session filter
	session := "session-1"
	runs, err = store.ListRuns(ctx, &session, 10, 0)
	if err != nil {
		t.Fatalf("failed to list session runs: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs for session-1, got %d", len(runs))
	}

	// Pagination
	runs, err = store.ListRuns(ctx, nil, 2, 1)
	if err != nil {
		t.Fatalf("failed to list paginated runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-c" {
		t.Errorf("unexpected page: %+v", runs)
	}
}

// TestPruneRuns tests history pruning
func TestPruneRuns(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"run-1", "run-2", "run-3", "run-4", "run-5"} {
		insertRun(t, store, id, base.Add(time.Duration(i)*time.Minute))
	}

	removed, err := store.PruneRuns(ctx, 2)
	if err != nil {
		t.Fatalf("failed to prune runs: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 pruned runs, got %d", removed)
	}

	runs, err := store.ListRuns(ctx, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-5" || runs[1].ID != "run-4" {
		t.Errorf("expected the two most recent runs, got %+v", runs)
	}

	// keep of 0 clears everything
	removed, err = store.PruneRuns(ctx, 0)
	if err != nil {
		t.Fatalf("failed to clear runs: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 pruned runs, got %d", removed)
	}
}

// TestFuseExecutions tests fuse execution records and cascade delete
func TestFuseExecutions(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	run := insertRun(t, store, "run-fuse", time.Now().UTC())

	first := &FuseExecution{
		RunID:      run.ID,
		Language:   "python",
		Hash:       "abc123",
		DurationMS: 100,
	}
	if err := store.AppendFuseExecution(ctx, first); err != nil {
		t.Fatalf("failed to append fuse execution: %v", err)
	}
	if first.ID == 0 {
		t.Error("expected an auto-generated ID")
	}

	second := &FuseExecution{
		RunID:    run.ID,
		Language: "python",
		Hash:     "abc123",
		Cached:   true,
	}
	if err := store.AppendFuseExecution(ctx, second); err != nil {
		t.Fatalf("failed to append cached execution: %v", err)
	}

	execs, err := store.ListFuseExecutionsByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to list fuse executions: %v", err)
	}
	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	if execs[0].Cached || !execs[1].Cached {
		t.Errorf("expected miss then hit, got %v then %v", execs[0].Cached, execs[1].Cached)
	}

	// Deleting the run cascades
	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	execs, err = store.ListFuseExecutionsByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to list after delete: %v", err)
	}
	if len(execs) != 0 {
		t.Errorf("expected cascade to remove executions, got %d", len(execs))
	}
}

// TestDeployments tests deployment records
func TestDeployments(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	run := insertRun(t, store, "run-deploy", time.Now().UTC())

	errMsg := "deployment failed"
	deps := []*Deployment{
		{RunID: run.ID, Sink: "local", Attempts: 1, Status: DeploymentStatusSucceeded, DurationMS: 5},
		{RunID: run.ID, Sink: "aws", Attempts: 4, Status: DeploymentStatusFailed, Error: &errMsg},
		{RunID: run.ID, Sink: "solana", Attempts: 0, Status: DeploymentStatusConfigError},
	}
	for _, dep := range deps {
		if err := store.AppendDeployment(ctx, dep); err != nil {
			t.Fatalf("failed to append deployment for %s: %v", dep.Sink, err)
		}
	}

	listed, err := store.ListDeploymentsByRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to list deployments: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 deployments, got %d", len(listed))
	}
	if listed[1].Sink != "aws" || listed[1].Attempts != 4 {
		t.Errorf("unexpected aws record: %+v", listed[1])
	}
	if listed[1].Error == nil || *listed[1].Error != errMsg {
		t.Errorf("expected aws error %q, got %v", errMsg, listed[1].Error)
	}
	if listed[2].Status != DeploymentStatusConfigError {
		t.Errorf("expected config_error status, got %s", listed[2].Status)
	}
}

// TestFileBackedStore tests persistence across store instances
func TestFileBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(Config{Path: path})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	insertRun(t, store, "run-persist", time.Now().UTC())
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := NewSQLiteStore(Config{Path: path})
	if err != nil {
		t.Fatalf("failed to recreate store: %v", err)
	}
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Migrate(ctx); err != nil {
		t.Fatalf("failed to re-migrate store: %v", err)
	}

	run, err := reopened.GetRun(ctx, "run-persist")
	if err != nil {
		t.Fatalf("failed to get persisted run: %v", err)
	}
	if run.SessionID != "session-1" {
		t.Errorf("expected persisted session, got %s", run.SessionID)
	}
}
