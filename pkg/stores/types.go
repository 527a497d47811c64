package stores

import (
	"context"
	"time"
)

// RunStatus is the terminal status of an interpreted run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// DeploymentStatus is the terminal status of one sink deployment.
type DeploymentStatus string

const (
	DeploymentStatusSucceeded   DeploymentStatus = "succeeded"
	DeploymentStatusFailed      DeploymentStatus = "failed"
	DeploymentStatusConfigError DeploymentStatus = "config_error"
)

// Run is one interpreted program execution.
type Run struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"` // repl, file, exec
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Source     string    `json:"source"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FuseExecution is one snippet's trip through the fuse pipeline.
type FuseExecution struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Language   string    `json:"language"`
	Hash       string    `json:"hash"`
	Cached     bool      `json:"cached"`
	DurationMS int64     `json:"duration_ms"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Deployment is the outcome of one sink within a deploy statement.
type Deployment struct {
	ID         int64            `json:"id"`
	RunID      string           `json:"run_id"`
	Sink       string           `json:"sink"`
	Attempts   int              `json:"attempts"`
	Status     DeploymentStatus `json:"status"`
	DurationMS int64            `json:"duration_ms"`
	Error      *string          `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Store defines the interface for the run history layer.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, sessionID *string, limit, offset int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error
	PruneRuns(ctx context.Context, keep int) (int64, error)

	// Fuse execution operations
	AppendFuseExecution(ctx context.Context, exec *FuseExecution) error
	ListFuseExecutionsByRun(ctx context.Context, runID string) ([]*FuseExecution, error)

	// Deployment operations
	AppendDeployment(ctx context.Context, dep *Deployment) error
	ListDeploymentsByRun(ctx context.Context, runID string) ([]*Deployment, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
