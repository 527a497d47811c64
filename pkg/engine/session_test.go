package engine

import (
	"context"
	"testing"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/executor"
)

func newTestSession(cfg Config) *Session {
	if cfg.Resolver == nil {
		cfg.Resolver = &fakeResolver{}
	}
	if cfg.Runner == nil {
		cfg.Runner = &fakeRunner{}
	}
	return NewSession(cfg)
}

func TestSessionExecuteSource(t *testing.T) {
	runner := &fakeRunner{}
	rec := &fakeRecorder{}
	s := newTestSession(Config{Runner: runner, Recorder: rec})

	register := `@rift greet {
  @fuse python { "print('hi')" }
}`
	if err := s.ExecuteSource(context.Background(), register, "repl"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.ExecuteSource(context.Background(), "call greet;", "repl"); err != nil {
		t.Fatalf("call: %v", err)
	}

	if got := runner.executions(); got != 1 {
		t.Errorf("runner executions = %d, want 1", got)
	}

	status := s.Status()
	if len(status.Rifts) != 1 || status.Rifts[0] != "greet" {
		t.Errorf("status rifts = %v, want [greet]", status.Rifts)
	}
	if status.CacheEntries != 1 {
		t.Errorf("cache entries = %d, want 1", status.CacheEntries)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.runs) != 2 {
		t.Fatalf("recorded %d runs, want 2", len(rec.runs))
	}
	for _, run := range rec.runs {
		if run.Status != "succeeded" {
			t.Errorf("run %s status = %q, want succeeded", run.ID, run.Status)
		}
		if run.Mode != "repl" {
			t.Errorf("run %s mode = %q, want repl", run.ID, run.Mode)
		}
		if run.SessionID != s.ID() {
			t.Errorf("run session = %q, want %q", run.SessionID, s.ID())
		}
	}
	if rec.runs[0].ID == rec.runs[1].ID {
		t.Error("both runs share one run ID")
	}
}

func TestSessionParseErrorNotRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestSession(Config{Recorder: rec})

	err := s.ExecuteSource(context.Background(), "@rift {", "repl")
	if !errdefs.IsKind(err, errdefs.KindParse) {
		t.Fatalf("err = %v, want parse error", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.runs) != 0 {
		t.Errorf("recorded %d runs for unparsable input, want 0", len(rec.runs))
	}
}

func TestSessionFailedRunRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestSession(Config{Recorder: rec})

	err := s.ExecuteSource(context.Background(), "call missing;", "file")
	if !errdefs.IsKind(err, errdefs.KindFunctionNotFound) {
		t.Fatalf("err = %v, want function not found", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(rec.runs))
	}
	run := rec.runs[0]
	if run.Status != "failed" {
		t.Errorf("status = %q, want failed", run.Status)
	}
	if run.Error == "" {
		t.Error("failed run recorded without an error message")
	}
	if run.Mode != "file" {
		t.Errorf("mode = %q, want file", run.Mode)
	}
}

func TestSessionExecuteFuse(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]executor.Output{
		"print('x')": {Stdout: "x-marks"},
	}}
	s := newTestSession(Config{Runner: runner})

	out, err := s.ExecuteFuse(context.Background(), "python", "print('x')")
	if err != nil {
		t.Fatalf("ExecuteFuse: %v", err)
	}
	if out != "x-marks" {
		t.Errorf("output = %q, want %q", out, "x-marks")
	}

	// A second execution serves the cached artifact.
	out, err = s.ExecuteFuse(context.Background(), "python", "print('x')")
	if err != nil {
		t.Fatalf("cached ExecuteFuse: %v", err)
	}
	if out != "x-marks" {
		t.Errorf("cached output = %q, want %q", out, "x-marks")
	}
	if got := runner.executions(); got != 1 {
		t.Errorf("runner executions = %d, want 1", got)
	}
}

func TestSessionReset(t *testing.T) {
	s := newTestSession(Config{})

	if err := s.ExecuteSource(context.Background(), `let x = 5;`, "repl"); err != nil {
		t.Fatalf("let: %v", err)
	}
	if err := s.ExecuteSource(context.Background(), `@fuse python { "print('hi')" }`, "repl"); err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if s.Status().Variables != 1 || s.Status().CacheEntries != 1 {
		t.Fatalf("unexpected pre-reset status %+v", s.Status())
	}

	id := s.ID()
	s.Reset()

	status := s.Status()
	if status.Variables != 0 || status.CacheEntries != 0 || len(status.Rifts) != 0 {
		t.Errorf("post-reset status %+v, want empty environment", status)
	}
	if s.ID() != id {
		t.Error("Reset changed the session identity")
	}
}

func TestSessionStatusTargetLanguage(t *testing.T) {
	s := newTestSession(Config{})

	if got := s.Status().TargetLanguage; got != "" {
		t.Errorf("initial target = %q, want unset", got)
	}
	if err := s.ExecuteSource(context.Background(), `@target rust`, "repl"); err != nil {
		t.Fatalf("target: %v", err)
	}
	if got := s.Status().TargetLanguage; got != "rust" {
		t.Errorf("target = %q, want rust", got)
	}
}
