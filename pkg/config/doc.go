// Package config provides YAML configuration loading and validation
// for the Rift runtime.
//
// # Overview
//
// The config package resolves the effective runtime configuration from
// three layers, lowest precedence first: built-in defaults, an optional
// YAML file, and RIFT_* environment variables. The merged result is
// validated with struct tags before any component sees it.
//
// # Sections
//
//   - telemetry: log level and format, metrics endpoint, trace export, events
//   - executor: snippet working directory and WASM memory limits
//   - deploy: local sink directory and retry behavior
//   - policy: admission control mode and extra rule paths
//   - history: run history database location and retention
//   - repl: interactive shell preferences
//
// # Usage Example
//
//	cfg, err := config.LoadIfPresent(".rift.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tel, err := telemetry.NewTelemetry(cfg.ToTelemetryConfig(version))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration File
//
// A typical .rift.yaml:
//
//	telemetry:
//	  log_level: debug
//	  log_format: console
//	  events_enabled: true
//
//	deploy:
//	  local_dir: ./artifacts
//	  max_retries: 3
//	  backoff_base_ms: 100
//
//	policy:
//	  enabled: true
//	  mode: enforcing
//	  paths:
//	    - ./policies
//
//	history:
//	  enabled: true
//	  keep: 200
//
// # Environment Overrides
//
// Environment variables override file values and are applied before
// validation:
//
//	RIFT_LOG_LEVEL        telemetry.log_level
//	RIFT_LOG_FORMAT       telemetry.log_format
//	RIFT_METRICS_ADDR     telemetry.metrics_addr
//	RIFT_TRACING_ENDPOINT telemetry.tracing_endpoint
//	RIFT_WORK_DIR         executor.work_dir
//	RIFT_DEPLOY_DIR       deploy.local_dir
//	RIFT_POLICY_MODE      policy.mode
//	RIFT_HISTORY_PATH     history.path
//
// # Error Handling
//
// Validation failures are reported as an InvalidConfigError carrying
// one ValidationError per failing field:
//
//	ValidationError{
//	    Field:   "Config.Telemetry.LogLevel",
//	    Value:   "verbose",
//	    Message: "must be one of: trace, debug, info, warn, error",
//	}
package config
