package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/riftlang/rift/pkg/config"
	"github.com/riftlang/rift/pkg/deploy"
	"github.com/riftlang/rift/pkg/engine"
	"github.com/riftlang/rift/pkg/executor"
	"github.com/riftlang/rift/pkg/policy"
	"github.com/riftlang/rift/pkg/stores"
	"github.com/riftlang/rift/pkg/telemetry"
)

// runtime bundles the assembled engine stack for one command invocation.
type runtime struct {
	cfg      *config.Config
	tel      *telemetry.Telemetry
	store    stores.Store
	recorder *historyRecorder
	session  *engine.Session
}

// newRuntime resolves the configuration and wires the full engine stack.
// History store failures are downgraded to warnings so a broken database
// never blocks program execution.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadIfPresent(configFilePath())
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Telemetry.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	applyGlobalLogLevel(cfg.Telemetry.LogLevel)

	tel, err := telemetry.NewTelemetry(cfg.ToTelemetryConfig(buildVersion))
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	if cfg.Telemetry.MetricsEnabled {
		if err := tel.StartMetricsServer(); err != nil {
			tel.Logger.WithError(err).Warn("metrics server failed to start")
		}
	}

	rt := &runtime{cfg: cfg, tel: tel}

	if cfg.History.Enabled {
		store, err := openHistoryStore(ctx, cfg)
		if err != nil {
			tel.Logger.WithError(err).Warn("run history unavailable")
		} else {
			rt.store = store
			rt.recorder = newHistoryRecorder(store)
			if cfg.History.Keep > 0 {
				if _, err := store.PruneRuns(ctx, cfg.History.Keep); err != nil {
					tel.Logger.WithError(err).Warn("pruning run history failed")
				}
			}
		}
	}

	var admission engine.Admission
	if cfg.Policy.Enabled {
		pcfg := cfg.ToPolicyConfig()
		pcfg.Logger = tel.Logger
		gate, err := policy.NewGate(pcfg)
		if err != nil {
			return nil, fmt.Errorf("compiling policies: %w", err)
		}
		admission = gate
	}

	ecfg := cfg.ToExecutorConfig()
	ecfg.Logger = tel.Logger

	dcfg := cfg.ToDeployConfig()
	dcfg.Logger = tel.Logger
	dcfg.Metrics = tel.Metrics
	dcfg.Events = tel.Events

	sessionCfg := engine.Config{
		Runner:    executor.NewExecutor(ecfg),
		Deployer:  deploy.NewOrchestrator(dcfg),
		Admission: admission,
		Logger:    tel.Logger,
		Metrics:   tel.Metrics,
		Events:    tel.Events,
	}
	if rt.recorder != nil {
		sessionCfg.Recorder = rt.recorder
	}
	rt.session = engine.NewSession(sessionCfg)

	return rt, nil
}

// context enriches ctx with the runtime's telemetry so engine operations
// pick up tracing, metrics, and the configured logger.
func (r *runtime) context(ctx context.Context) context.Context {
	return r.tel.WithContext(ctx)
}

// Close releases the history store and flushes telemetry.
func (r *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.tel.Logger.WithError(err).Warn("closing history store failed")
		}
	}
	if err := r.tel.Shutdown(ctx); err != nil {
		r.tel.Logger.WithError(err).Warn("telemetry shutdown failed")
	}
}

func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return ".rift.yaml"
}

// openHistoryStore resolves the database path, creates its directory,
// and runs migrations.
func openHistoryStore(ctx context.Context, cfg *config.Config) (stores.Store, error) {
	scfg := cfg.ToStoreConfig()
	if scfg.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		scfg.Path = filepath.Join(home, ".rift", "history.db")
	}
	if err := os.MkdirAll(filepath.Dir(scfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	store, err := stores.NewSQLiteStore(scfg)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func applyGlobalLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	zerolog.SetGlobalLevel(parsed)
}
