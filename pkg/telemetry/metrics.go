package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the Rift runtime.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	// Fuse execution metrics
	fusesExecuted *prometheus.CounterVec
	fuseDuration  *prometheus.HistogramVec

	// Artifact cache metrics
	cacheLookups *prometheus.CounterVec

	// Dependency metrics
	dependenciesResolved *prometheus.CounterVec
	dependencyInstalls   *prometheus.CounterVec

	// Deployment metrics
	deployAttempts *prometheus.CounterVec
	deployOutcomes *prometheus.CounterVec
	deployDuration *prometheus.HistogramVec

	// Optimize metrics
	transformations *prometheus.CounterVec

	// Error metrics
	errorsByKind *prometheus.CounterVec

	// System metrics
	activeRuns prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
// When metrics are disabled every Record method is a no-op.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_started_total",
				Help:      "Total number of program runs started",
			},
			[]string{"mode"},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of program runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of program runs in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		fusesExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fuses_executed_total",
				Help:      "Total number of fuse snippet executions",
			},
			[]string{"language", "status"},
		),
		fuseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fuse_duration_seconds",
				Help:      "Duration of fuse executions in seconds",
				Buckets:   buckets,
			},
			[]string{"language"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_cache_lookups_total",
				Help:      "Total number of artifact cache lookups",
			},
			[]string{"result"},
		),

		dependenciesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dependencies_resolved_total",
				Help:      "Total number of dependencies collected from snippets",
			},
			[]string{"language"},
		),
		dependencyInstalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dependency_installs_total",
				Help:      "Total number of package manager install invocations",
			},
			[]string{"language", "status"},
		),

		deployAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deploy_attempts_total",
				Help:      "Total number of per-sink deployment attempts",
			},
			[]string{"sink"},
		),
		deployOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deploy_outcomes_total",
				Help:      "Final per-sink deployment outcomes",
			},
			[]string{"sink", "status"},
		),
		deployDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "deploy_duration_seconds",
				Help:      "Duration of per-sink deployments in seconds, retries included",
				Buckets:   buckets,
			},
			[]string{"sink"},
		),

		transformations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transformations_total",
				Help:      "Total number of applied optimize translations",
			},
			[]string{"source", "target"},
		),

		errorsByKind: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of taxonomy errors by kind",
			},
			[]string{"kind"},
		),

		activeRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Current number of in-flight program runs",
			},
		),
	}

	registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runDuration,
		m.fusesExecuted,
		m.fuseDuration,
		m.cacheLookups,
		m.dependenciesResolved,
		m.dependencyInstalls,
		m.deployAttempts,
		m.deployOutcomes,
		m.deployDuration,
		m.transformations,
		m.errorsByKind,
		m.activeRuns,
	)

	return m, nil
}

// Run Metrics

// RecordRunStarted increments the counter for started runs. Mode is "repl",
// "file", or "exec".
func (m *Metrics) RecordRunStarted(mode string) {
	if m.runsStarted == nil {
		return
	}
	m.runsStarted.WithLabelValues(mode).Inc()
	m.activeRuns.Inc()
}

// RecordRunCompleted records a completed run with its status and duration.
func (m *Metrics) RecordRunCompleted(status string, duration time.Duration) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.activeRuns.Dec()
}

// Fuse Metrics

// RecordFuseExecution records one fuse execution with its outcome.
func (m *Metrics) RecordFuseExecution(language, status string, duration time.Duration) {
	if m.fusesExecuted == nil {
		return
	}
	m.fusesExecuted.WithLabelValues(language, status).Inc()
	m.fuseDuration.WithLabelValues(language).Observe(duration.Seconds())
}

// RecordCacheLookup records an artifact cache lookup. Result is "hit" or
// "miss".
func (m *Metrics) RecordCacheLookup(result string) {
	if m.cacheLookups == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Dependency Metrics

// RecordDependenciesResolved adds the number of dependencies collected from
// one snippet.
func (m *Metrics) RecordDependenciesResolved(language string, count int) {
	if m.dependenciesResolved == nil {
		return
	}
	m.dependenciesResolved.WithLabelValues(language).Add(float64(count))
}

// RecordDependencyInstall records one package manager invocation.
func (m *Metrics) RecordDependencyInstall(language, status string) {
	if m.dependencyInstalls == nil {
		return
	}
	m.dependencyInstalls.WithLabelValues(language, status).Inc()
}

// Deployment Metrics

// RecordDeployAttempt records a single attempt against a sink.
func (m *Metrics) RecordDeployAttempt(sink string) {
	if m.deployAttempts == nil {
		return
	}
	m.deployAttempts.WithLabelValues(sink).Inc()
}

// RecordDeployOutcome records the final outcome for a sink, retries included.
func (m *Metrics) RecordDeployOutcome(sink, status string, duration time.Duration) {
	if m.deployOutcomes == nil {
		return
	}
	m.deployOutcomes.WithLabelValues(sink, status).Inc()
	m.deployDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// Optimize Metrics

// RecordTransformation records one applied optimize translation.
func (m *Metrics) RecordTransformation(source, target string) {
	if m.transformations == nil {
		return
	}
	m.transformations.WithLabelValues(source, target).Inc()
}

// Error Metrics

// RecordError records a taxonomy error by kind.
func (m *Metrics) RecordError(kind string) {
	if m.errorsByKind == nil {
		return
	}
	m.errorsByKind.WithLabelValues(kind).Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
