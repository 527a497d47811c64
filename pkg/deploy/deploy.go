// Package deploy fans a compiled payload out to deployment sinks with
// per-sink retry and failure aggregation.
//
// The sink set is fixed: ethereum, solana, aws, local. A selector of "all"
// addresses every sink; any other selector addresses the sinks whose names
// it contains as substrings. Sinks run concurrently and never cancel each
// other; the aggregate error reports every failed sink. Configuration
// errors are permanent and skip the retry loop entirely, while transient
// sink failures retry with exponential backoff.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/telemetry"
)

// Target is one deployment sink. Validate reports missing configuration
// before any deploy attempt; Deploy performs one attempt.
type Target interface {
	Name() string
	Validate(config map[string]string) error
	Deploy(ctx context.Context, payload []byte, config map[string]string) error
}

// Compressor shrinks the payload before fan-out.
type Compressor interface {
	Compress(payload []byte) ([]byte, error)
}

// IdentityCompressor passes the payload through unchanged.
type IdentityCompressor struct{}

// Compress returns the payload as is.
func (IdentityCompressor) Compress(payload []byte) ([]byte, error) {
	return payload, nil
}

// Result is the outcome of one sink's deployment.
type Result struct {
	Sink     string
	Attempts int
	Duration time.Duration
	Err      error
}

// Config configures an Orchestrator.
type Config struct {
	// Targets overrides the default sink set. Order is preserved in the
	// returned results.
	Targets []Target

	// Compressor defaults to IdentityCompressor.
	Compressor Compressor

	// LocalDir is where the local sink writes its artifact files.
	// Defaults to the current directory.
	LocalDir string

	// MaxRetries bounds retries per sink after the first attempt.
	// Defaults to 3, so a sink is tried at most 4 times.
	MaxRetries int

	// BackoffBase scales the retry delay: base << attempt after the
	// n-th failed attempt. Defaults to 100ms, giving 200ms, 400ms, 800ms.
	BackoffBase time.Duration

	Logger  *telemetry.Logger
	Metrics *telemetry.Metrics
	Events  *telemetry.EventPublisher
}

// Orchestrator runs deployments across the sink set.
type Orchestrator struct {
	targets     []Target
	compressor  Compressor
	maxRetries  int
	backoffBase time.Duration
	logger      *telemetry.Logger
	metrics     *telemetry.Metrics
	events      *telemetry.EventPublisher
}

// NewOrchestrator creates an orchestrator over cfg.Targets, or over the
// default sink set when none are given.
func NewOrchestrator(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.FromContext(context.Background())
	}
	logger = logger.NewComponentLogger("deploy")

	targets := cfg.Targets
	if targets == nil {
		dir := cfg.LocalDir
		if dir == "" {
			dir = "."
		}
		targets = DefaultTargets(dir, logger)
	}

	compressor := cfg.Compressor
	if compressor == nil {
		compressor = IdentityCompressor{}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = 100 * time.Millisecond
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics, _ = telemetry.NewMetrics(telemetry.MetricsConfig{})
	}

	return &Orchestrator{
		targets:     targets,
		compressor:  compressor,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		logger:      logger,
		metrics:     metrics,
		events:      cfg.Events,
	}
}

// matched reports whether a sink named name participates under selector.
// "all" selects everything; otherwise the selector must contain the sink
// name as a substring.
func matched(selector, name string) bool {
	return selector == "all" || strings.Contains(selector, name)
}

// Sinks returns the names of the sinks a selector would deploy to, in
// sink-set order. Admission control consults this before fan-out.
func (o *Orchestrator) Sinks(selector string) []string {
	var names []string
	for _, target := range o.targets {
		if matched(selector, target.Name()) {
			names = append(names, target.Name())
		}
	}
	return names
}

// Deploy compresses payload and runs every selected sink concurrently.
// Results are returned in sink-set order. The error aggregates every sink
// failure; zero matched sinks is a warned no-op, not a failure.
func (o *Orchestrator) Deploy(ctx context.Context, selector string, payload []byte, config map[string]string) ([]Result, error) {
	compressed, err := o.compressor.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}

	var selected []Target
	for _, target := range o.targets {
		if matched(selector, target.Name()) {
			selected = append(selected, target)
		}
	}
	if len(selected) == 0 {
		o.logger.Warnf("no sinks matched selector %q", selector)
		return nil, nil
	}

	runID := telemetry.RunIDFromContext(ctx)
	if o.events != nil {
		names := make([]string, len(selected))
		for i, target := range selected {
			names[i] = target.Name()
		}
		_ = o.events.PublishDeployStarted(runID, selector, names)
	}

	results := make([]Result, len(selected))
	var wg sync.WaitGroup
	for i, target := range selected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.deployOne(ctx, runID, target, compressed, config)
		}()
	}
	wg.Wait()

	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}
	return results, errors.Join(errs...)
}

// deployOne validates and then attempts one sink, retrying transient
// failures. Configuration errors fail immediately and are never retried.
func (o *Orchestrator) deployOne(ctx context.Context, runID string, target Target, payload []byte, config map[string]string) Result {
	name := target.Name()
	log := o.logger.WithSink(name)
	timer := telemetry.NewTimer()

	if err := target.Validate(config); err != nil {
		log.WithError(err).Error("sink configuration invalid")
		o.metrics.RecordDeployOutcome(name, "config_error", timer.Duration())
		if o.events != nil {
			_ = o.events.PublishSinkOutcome(runID, name, 0, err)
		}
		return Result{Sink: name, Attempts: 0, Duration: timer.Duration(), Err: err}
	}

	var err error
	attempts := 0
	for {
		attempts++
		o.metrics.RecordDeployAttempt(name)
		err = target.Deploy(ctx, payload, config)
		if err == nil || !errdefs.IsRetryable(err) || attempts > o.maxRetries {
			break
		}
		delay := o.backoffBase << attempts
		log.WithError(err).Warnf("attempt %d failed, retrying in %s", attempts, delay)
		if sleepErr := sleepContext(ctx, delay); sleepErr != nil {
			err = sleepErr
			break
		}
	}

	duration := timer.Duration()
	if err != nil {
		var de *errdefs.Error
		if errors.As(err, &de) {
			de.WithAttempts(attempts)
		} else {
			err = errdefs.NewDeployFailed(name, err).WithAttempts(attempts)
		}
		log.WithError(err).Errorf("deployment failed after %d attempts", attempts)
		o.metrics.RecordDeployOutcome(name, "failure", duration)
	} else {
		log.Infof("deployment succeeded after %d attempts", attempts)
		o.metrics.RecordDeployOutcome(name, "success", duration)
	}
	if o.events != nil {
		_ = o.events.PublishSinkOutcome(runID, name, attempts, err)
	}
	return Result{Sink: name, Attempts: attempts, Duration: duration, Err: err}
}

// sleepContext waits for d unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
