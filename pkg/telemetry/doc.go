// Package telemetry provides observability instrumentation for the Rift runtime.
//
// The telemetry package integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), metrics (Prometheus), and event publishing into a unified system
// for monitoring and debugging fusion runs.
//
// # Architecture
//
// The telemetry system is built on four pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with multiple exporters
//  3. Metrics Collection - Prometheus metrics for operational insights
//  4. Event Publishing - Async event system for audit and notifications
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "rift"
//	cfg.ServiceVersion = "2.0.1"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	// Start metrics server
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context propagation:
//
//	logger := tel.Logger.NewComponentLogger("engine")
//	logger = logger.WithRunID("run-123").WithLanguage("python")
//	logger.Info("Executing fuse")
//	logger.WithError(err).Error("Execution failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into run flow and performance:
//
//	ctx, span := tel.Tracer.StartFuseSpan(ctx, "python", hash)
//	defer span.End()
//
//	span.SetAttributes(
//	    telemetry.AttrFuseCached.Bool(false),
//	)
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: OTLP (production), Stdout (development)
//
// # Metrics
//
// Prometheus metrics track runtime behavior and performance:
//
//	tel.Metrics.RecordRunStarted("repl")
//	tel.Metrics.RecordRunCompleted("succeeded", duration)
//
//	tel.Metrics.RecordFuseExecution("python", "success", duration)
//	tel.Metrics.RecordCacheLookup("hit")
//
//	tel.Metrics.RecordDeployAttempt("aws")
//	tel.Metrics.RecordDeployOutcome("aws", "succeeded", duration)
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics)
//
// # Event Publishing
//
// The event system provides async publishing with buffering and filtering:
//
//	tel.Events.PublishRunStarted(sessionID, runID)
//	tel.Events.PublishFuseCached(runID, "python", hash)
//	tel.Events.PublishSinkOutcome(runID, "ethereum", attempts, err)
//
//	tel.Events.Subscribe("audit", func(ctx context.Context, event telemetry.Event) error {
//	    fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
//	    return nil
//	})
//
// Event filters: FilterByLevel, FilterByType, FilterBySessionID, FilterByLanguage
//
// # Context Helpers
//
// High-level helpers simplify common instrumentation patterns:
//
//	// Instrument an operation
//	ic := telemetry.StartOperation(ctx, "deploy.execute",
//	    telemetry.AttrDeploySelector.String(selector))
//	defer ic.End(err)
//
//	ic.Logger.Info("Deploying payload")
//
//	// Run context
//	ctx = telemetry.WithRunContext(ctx, sessionID, runID, "file")
//	defer telemetry.EndRunContext(ctx, sessionID, runID, status, err)
//
//	// Fuse operation
//	err := telemetry.RecordFuseOperation(ctx, "python", hash, func(ctx context.Context) error {
//	    return executor.Run(ctx, snippet)
//	})
//
// # Configuration
//
// The package provides pre-configured setups for different environments:
//
//	// Development (verbose logging, stdout traces, full sampling)
//	cfg := telemetry.DevelopmentConfig()
//
//	// Production (JSON logs, OTLP traces, 10% sampling)
//	cfg := telemetry.ProductionConfig()
//
// # Common Metrics
//
// Key metrics exposed:
//
//   - rift_runs_started_total{mode}
//   - rift_runs_completed_total{status}
//   - rift_run_duration_seconds{status}
//   - rift_fuses_executed_total{language,status}
//   - rift_fuse_duration_seconds{language}
//   - rift_artifact_cache_lookups_total{result}
//   - rift_dependency_installs_total{language,status}
//   - rift_deploy_attempts_total{sink}
//   - rift_deploy_outcomes_total{sink,status}
//   - rift_deploy_duration_seconds{sink}
//   - rift_transformations_total{source,target}
//   - rift_errors_total{kind}
//   - rift_active_runs
//
// # Graceful Shutdown
//
// Always shut down telemetry gracefully to flush pending data:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	if err := tel.Shutdown(ctx); err != nil {
//	    log.Printf("Telemetry shutdown error: %v", err)
//	}
//
// This ensures all buffered events are published and all pending traces are
// exported.
package telemetry
