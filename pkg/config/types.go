package config

import (
	"time"

	"github.com/riftlang/rift/pkg/deploy"
	"github.com/riftlang/rift/pkg/executor"
	"github.com/riftlang/rift/pkg/policy"
	"github.com/riftlang/rift/pkg/stores"
	"github.com/riftlang/rift/pkg/telemetry"
)

// Config is the root runtime configuration for the rift CLI.
type Config struct {
	// Telemetry configures logging, tracing, metrics, and events.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// Executor configures snippet execution.
	Executor ExecutorConfig `json:"executor" yaml:"executor"`

	// Deploy configures deployment fan-out.
	Deploy DeployConfig `json:"deploy" yaml:"deploy"`

	// Policy configures deployment admission control.
	Policy PolicyConfig `json:"policy" yaml:"policy"`

	// History configures run history persistence.
	History HistoryConfig `json:"history" yaml:"history"`

	// REPL configures the interactive shell.
	REPL REPLConfig `json:"repl" yaml:"repl"`
}

// TelemetryConfig configures observability output.
type TelemetryConfig struct {
	// LogLevel sets the minimum log level (trace, debug, info, warn, error).
	LogLevel string `json:"log_level" yaml:"log_level" validate:"required,oneof=trace debug info warn error"`

	// LogFormat selects the log encoding (console, json).
	LogFormat string `json:"log_format" yaml:"log_format" validate:"required,oneof=console json"`

	// MetricsEnabled exposes Prometheus metrics over HTTP.
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`

	// MetricsAddr is the listen address for the metrics endpoint.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`

	// TracingEnabled turns on span export for runs and fuse executions.
	TracingEnabled bool `json:"tracing_enabled" yaml:"tracing_enabled"`

	// TracingExporter selects the span exporter (otlp, stdout, none).
	TracingExporter string `json:"tracing_exporter,omitempty" yaml:"tracing_exporter,omitempty" validate:"omitempty,oneof=otlp stdout none"`

	// TracingEndpoint is the OTLP collector endpoint (e.g., "localhost:4317").
	TracingEndpoint string `json:"tracing_endpoint,omitempty" yaml:"tracing_endpoint,omitempty"`

	// TracingSampleRate is the fraction of runs that are traced (0.0 to 1.0).
	TracingSampleRate float64 `json:"tracing_sample_rate" yaml:"tracing_sample_rate" validate:"gte=0,lte=1"`

	// EventsEnabled turns on event publication to subscribers.
	EventsEnabled bool `json:"events_enabled" yaml:"events_enabled"`
}

// ExecutorConfig configures snippet execution.
type ExecutorConfig struct {
	// WorkDir is where snippets are materialized and run. Empty means
	// the current directory.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`

	// WASMMemoryPages caps in-process module memory in 64KB pages.
	// Zero means the executor default.
	WASMMemoryPages uint32 `json:"wasm_memory_pages,omitempty" yaml:"wasm_memory_pages,omitempty" validate:"omitempty,lte=65536"`
}

// DeployConfig configures deployment fan-out.
type DeployConfig struct {
	// LocalDir is where the local sink writes artifact files. Empty
	// means the current directory.
	LocalDir string `json:"local_dir,omitempty" yaml:"local_dir,omitempty"`

	// MaxRetries bounds retries per sink after the first attempt.
	MaxRetries int `json:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`

	// BackoffBaseMS is the base retry delay in milliseconds, doubled
	// after each failed attempt.
	BackoffBaseMS int `json:"backoff_base_ms" yaml:"backoff_base_ms" validate:"gte=0"`
}

// PolicyConfig configures deployment admission control.
type PolicyConfig struct {
	// Enabled indicates if admission control runs before deployments.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Paths lists extra .rego policy files or directories loaded in
	// addition to the built-in rules.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Mode is the enforcement mode (advisory, enforcing).
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=advisory enforcing"`
}

// HistoryConfig configures run history persistence.
type HistoryConfig struct {
	// Enabled indicates if runs are recorded to the history store.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file path. Empty resolves to
	// .rift/history.db under the user home directory at startup.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Keep bounds how many runs are retained when pruning. Zero keeps
	// everything.
	Keep int `json:"keep" yaml:"keep" validate:"gte=0"`
}

// REPLConfig configures the interactive shell.
type REPLConfig struct {
	// HistoryFile is where input history is saved between sessions.
	// Empty resolves to .rift_history under the user home directory.
	HistoryFile string `json:"history_file,omitempty" yaml:"history_file,omitempty"`
}

// DefaultConfig returns the configuration used when no file and no
// environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			LogLevel:          "info",
			LogFormat:         "console",
			MetricsEnabled:    false,
			MetricsAddr:       ":9090",
			TracingEnabled:    false,
			TracingExporter:   "stdout",
			TracingSampleRate: 1.0,
			EventsEnabled:     true,
		},
		Executor: ExecutorConfig{
			WorkDir:         "",
			WASMMemoryPages: 256,
		},
		Deploy: DeployConfig{
			LocalDir:      "",
			MaxRetries:    3,
			BackoffBaseMS: 100,
		},
		Policy: PolicyConfig{
			Enabled: true,
			Mode:    string(policy.ModeEnforcing),
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    200,
		},
		REPL: REPLConfig{},
	}
}

// ToTelemetryConfig maps the telemetry section onto the telemetry
// package configuration. Service identity comes from the caller.
func (c *Config) ToTelemetryConfig(serviceVersion string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = serviceVersion
	tc.Logging.Level = c.Telemetry.LogLevel
	tc.Logging.Format = c.Telemetry.LogFormat
	tc.Tracing.Enabled = c.Telemetry.TracingEnabled
	if c.Telemetry.TracingExporter != "" {
		tc.Tracing.Exporter = c.Telemetry.TracingExporter
	}
	tc.Tracing.Endpoint = c.Telemetry.TracingEndpoint
	tc.Tracing.SamplingRate = c.Telemetry.TracingSampleRate
	tc.Metrics.Enabled = c.Telemetry.MetricsEnabled
	if c.Telemetry.MetricsAddr != "" {
		tc.Metrics.ListenAddress = c.Telemetry.MetricsAddr
	}
	tc.Events.Enabled = c.Telemetry.EventsEnabled
	return tc
}

// ToExecutorConfig maps the executor section onto the executor package
// configuration. The caller attaches the logger.
func (c *Config) ToExecutorConfig() executor.Config {
	return executor.Config{
		WorkDir:         c.Executor.WorkDir,
		WASMMemoryPages: c.Executor.WASMMemoryPages,
	}
}

// ToDeployConfig maps the deploy section onto the deploy package
// configuration. The caller attaches telemetry.
func (c *Config) ToDeployConfig() deploy.Config {
	return deploy.Config{
		LocalDir:    c.Deploy.LocalDir,
		MaxRetries:  c.Deploy.MaxRetries,
		BackoffBase: time.Duration(c.Deploy.BackoffBaseMS) * time.Millisecond,
	}
}

// ToPolicyConfig maps the policy section onto the policy package
// configuration. The caller attaches the logger.
func (c *Config) ToPolicyConfig() policy.Config {
	return policy.Config{
		Mode:  policy.Mode(c.Policy.Mode),
		Paths: c.Policy.Paths,
	}
}

// ToStoreConfig maps the history section onto the stores package
// configuration.
func (c *Config) ToStoreConfig() stores.Config {
	return stores.Config{Path: c.History.Path}
}
