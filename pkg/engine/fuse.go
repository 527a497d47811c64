package engine

import (
	"context"
	"strings"

	"github.com/riftlang/rift/pkg/cache"
	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/executor"
	"github.com/riftlang/rift/pkg/lang"
	"github.com/riftlang/rift/pkg/telemetry"
)

// execFuse runs one snippet through the fuse pipeline: hash, cache
// lookup, dependency resolution, toolchain execution, cache store. A
// cache hit is authoritative and skips every later stage.
func (i *Interpreter) execFuse(ctx context.Context, fuse *lang.Fuse) error {
	hash := cache.HashSnippet(fuse.Code)
	runID := telemetry.RunIDFromContext(ctx)
	log := i.logger.WithLanguage(fuse.Language).WithHash(hash)
	timer := telemetry.NewTimer()

	if _, ok := i.env.Artifacts().Get(hash); ok {
		i.metrics.RecordCacheLookup("hit")
		log.Info("artifact reused from cache")
		if i.events != nil {
			_ = i.events.PublishFuseCached(runID, fuse.Language, hash)
		}
		i.recordFuse(ctx, FuseRecord{
			RunID:    runID,
			Language: fuse.Language,
			Hash:     hash,
			Cached:   true,
			Duration: timer.Duration(),
		})
		return nil
	}
	i.metrics.RecordCacheLookup("miss")

	// WASM snippets are self-contained modules; there is no source to
	// scan for imports, so the resolver never sees them.
	var deps []string
	if fuse.Language != executor.LanguageWASM {
		resolved, err := i.resolver.Resolve(ctx, fuse.Language, fuse.Code)
		if err != nil {
			return i.fuseFailed(ctx, runID, fuse.Language, hash, timer, err)
		}
		deps = resolved
		i.metrics.RecordDependenciesResolved(fuse.Language, len(deps))
		if len(deps) > 0 {
			log.Debugf("resolved dependencies: %s", strings.Join(deps, ", "))
		}
	}

	var out executor.Output
	err := telemetry.RecordFuseOperation(ctx, fuse.Language, hash, func(ctx context.Context) error {
		var execErr error
		out, execErr = i.runner.Execute(ctx, fuse.Language, fuse.Code, deps)
		return execErr
	})
	if err != nil {
		if errdefs.IsKind(err, errdefs.KindDependencyInstall) {
			i.metrics.RecordDependencyInstall(fuse.Language, "failure")
		}
		return i.fuseFailed(ctx, runID, fuse.Language, hash, timer, err)
	}
	for range deps {
		i.metrics.RecordDependencyInstall(fuse.Language, "success")
	}

	i.env.Artifacts().Put(hash, out.Stdout)
	log.WithField("duration_ms", timer.Duration().Milliseconds()).Info("fuse executed")
	if i.events != nil {
		_ = i.events.PublishFuseCompleted(runID, fuse.Language, hash, timer.Duration())
	}
	i.recordFuse(ctx, FuseRecord{
		RunID:    runID,
		Language: fuse.Language,
		Hash:     hash,
		Duration: timer.Duration(),
	})
	return nil
}

func (i *Interpreter) fuseFailed(ctx context.Context, runID, language, hash string, timer *telemetry.Timer, err error) error {
	i.metrics.RecordError(string(errdefs.KindOf(err)))
	i.logger.WithLanguage(language).WithHash(hash).WithError(err).Error("fuse failed")
	if i.events != nil {
		_ = i.events.PublishFuseFailed(runID, language, hash, err)
	}
	i.recordFuse(ctx, FuseRecord{
		RunID:    runID,
		Language: language,
		Hash:     hash,
		Duration: timer.Duration(),
		Error:    err.Error(),
	})
	return err
}

// recordFuse persists a fuse record when a recorder is wired. Recording
// failures are logged, never surfaced.
func (i *Interpreter) recordFuse(ctx context.Context, rec FuseRecord) {
	if i.recorder == nil {
		return
	}
	if err := i.recorder.RecordFuse(ctx, rec); err != nil {
		i.logger.WithError(err).Warn("recording fuse execution failed")
	}
}
