package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/riftlang/rift/pkg/cache"
	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/lang"
	"github.com/riftlang/rift/pkg/telemetry"
)

// Session binds an interpreter and its environment to a stable identity
// that outlives individual runs. The REPL keeps one session alive across
// inputs; file and exec modes use one per invocation.
type Session struct {
	id       string
	env      *Environment
	interp   *Interpreter
	recorder Recorder
	logger   *telemetry.Logger
	events   *telemetry.EventPublisher
}

// Status is a point-in-time summary of a session's environment.
type Status struct {
	SessionID      string
	Rifts          []string
	Tasks          []string
	Variables      int
	CacheEntries   int
	CacheHits      uint64
	CacheMisses    uint64
	TargetLanguage string
}

// NewSession creates a session around a fresh interpreter built from cfg.
func NewSession(cfg Config) *Session {
	interp := New(cfg)
	id := uuid.New().String()
	s := &Session{
		id:       id,
		env:      interp.env,
		interp:   interp,
		recorder: interp.recorder,
		logger:   interp.logger.WithSessionID(id),
		events:   interp.events,
	}
	if s.events != nil {
		_ = s.events.PublishSessionStarted(id)
	}
	s.logger.Info("session started")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Environment returns the session's shared environment.
func (s *Session) Environment() *Environment {
	return s.env
}

// ExecuteSource parses source and runs the resulting program as one run.
// Mode is "repl", "file", or "exec".
func (s *Session) ExecuteSource(ctx context.Context, source, mode string) error {
	program, err := lang.ParseSource(source)
	if err != nil {
		s.interp.metrics.RecordError(string(errdefs.KindOf(err)))
		return err
	}
	return s.Run(ctx, program, mode, source)
}

// Run interprets a parsed program with run-scoped telemetry and records
// the run outcome.
func (s *Session) Run(ctx context.Context, program *lang.Program, mode, source string) error {
	runID := uuid.New().String()
	started := time.Now()
	runCtx := telemetry.WithRunContext(ctx, s.id, runID, mode)

	err := s.interp.Run(runCtx, program)

	status := "succeeded"
	if err != nil {
		status = "failed"
		s.interp.metrics.RecordError(string(errdefs.KindOf(err)))
	}
	telemetry.EndRunContext(runCtx, s.id, runID, status, err)

	s.recordRun(ctx, RunRecord{
		ID:        runID,
		SessionID: s.id,
		Mode:      mode,
		Status:    status,
		StartedAt: started,
		Duration:  time.Since(started),
		Source:    source,
		Error:     errorMessage(err),
	})
	return err
}

// ExecuteFuse runs a single snippet as its own run and returns its
// output. Cached output counts as the run's output.
func (s *Session) ExecuteFuse(ctx context.Context, language, code string) (string, error) {
	program := &lang.Program{Children: []lang.Node{
		&lang.Fuse{Language: language, Code: code},
	}}
	if err := s.Run(ctx, program, "exec", code); err != nil {
		return "", err
	}
	output, _ := s.env.Artifacts().Peek(cache.HashSnippet(code))
	return output, nil
}

// Reset clears the environment, giving the session a fresh start while
// keeping its identity.
func (s *Session) Reset() {
	s.env.Reset()
	if s.events != nil {
		_ = s.events.Publish(telemetry.Event{
			Type:      telemetry.EventSessionCleared,
			SessionID: s.id,
			Message:   "environment cleared",
		})
	}
	s.logger.Info("environment cleared")
}

// Status reports the environment's current contents.
func (s *Session) Status() Status {
	hits, misses := s.env.Artifacts().Stats()
	return Status{
		SessionID:      s.id,
		Rifts:          s.env.RiftNames(),
		Tasks:          s.env.TaskNames(),
		Variables:      s.env.VariableCount(),
		CacheEntries:   s.env.Artifacts().Len(),
		CacheHits:      hits,
		CacheMisses:    misses,
		TargetLanguage: s.env.TargetLanguage(),
	}
}

func (s *Session) recordRun(ctx context.Context, rec RunRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRun(ctx, rec); err != nil {
		s.logger.WithError(err).Warn("recording run failed")
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
