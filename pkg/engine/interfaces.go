package engine

import (
	"context"
	"time"

	"github.com/riftlang/rift/pkg/deploy"
	"github.com/riftlang/rift/pkg/executor"
	"github.com/riftlang/rift/pkg/policy"
	"github.com/riftlang/rift/pkg/transform"
)

// Resolver extracts declared dependencies from a foreign-language snippet.
// *resolver.Resolver is the production implementation.
type Resolver interface {
	// Resolve returns the snippet's declared imports in traversal order.
	// Unknown languages fail with an unsupported-language error.
	Resolve(ctx context.Context, language, code string) ([]string, error)
}

// Runner executes a foreign-language snippet through its toolchain.
// *executor.Executor is the production implementation.
type Runner interface {
	// Execute materializes, compiles where needed, and runs one snippet,
	// returning captured stdout and stderr.
	Execute(ctx context.Context, language, code string, deps []string) (executor.Output, error)
}

// Transformer rewrites a snippet from one language into another.
// *transform.TemplateService is the production implementation.
type Transformer interface {
	// Translate returns the rewritten snippet and true when a template
	// covers the (source, target) pair.
	Translate(source, target, code string) (transform.Translation, bool)
}

// Deployer ships a compiled payload to the sinks matched by a selector.
// *deploy.Orchestrator is the production implementation.
type Deployer interface {
	// Sinks returns the sink names the selector would deploy to.
	Sinks(selector string) []string

	// Deploy fans the payload out to every matched sink concurrently.
	Deploy(ctx context.Context, selector string, payload []byte, config map[string]string) ([]deploy.Result, error)
}

// Admission gates a deployment sink against policy rules before fan-out.
// *policy.Gate is the production implementation.
type Admission interface {
	// Check evaluates the input and, in enforcing mode, returns an error
	// for blocking violations.
	Check(ctx context.Context, input policy.Input) (*policy.Decision, error)
}

// RunRecord describes one completed program run for the history store.
type RunRecord struct {
	ID        string
	SessionID string

	// Mode is "repl", "file", or "exec".
	Mode string

	// Status is "succeeded" or "failed".
	Status string

	StartedAt time.Time
	Duration  time.Duration

	// Source is the program text that ran.
	Source string

	// Error is the run's error message, empty on success.
	Error string
}

// FuseRecord describes one fuse execution for the history store.
type FuseRecord struct {
	RunID    string
	Language string
	Hash     string

	// Cached is true when the artifact was reused without executing.
	Cached bool

	Duration time.Duration
	Error    string
}

// DeployRecord describes one per-sink deployment outcome for the history
// store.
type DeployRecord struct {
	RunID    string
	Sink     string
	Attempts int

	// Status is "succeeded", "failed", or "config_error".
	Status string

	Duration time.Duration
	Error    string
}

// Recorder persists run history. Recording is advisory: implementations
// may fail without affecting the run, and callers log rather than
// propagate recording errors.
type Recorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	RecordFuse(ctx context.Context, rec FuseRecord) error
	RecordDeployment(ctx context.Context, rec DeployRecord) error
}
