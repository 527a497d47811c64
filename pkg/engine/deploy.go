package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riftlang/rift/pkg/cache"
	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/lang"
	"github.com/riftlang/rift/pkg/policy"
	"github.com/riftlang/rift/pkg/telemetry"
)

// compilePayload renders every registered rift into the deployable
// artifact, in rift registration order. A fuse renders as its cached
// execution output when one exists, otherwise as "language: code".
// Lookups go through Peek so rendering does not skew cache hit rates.
func (i *Interpreter) compilePayload() []byte {
	var lines []string
	for _, rift := range i.env.RiftSnapshot() {
		for _, node := range rift.Body {
			fuse, ok := node.(*lang.Fuse)
			if !ok {
				continue
			}
			hash := cache.HashSnippet(fuse.Code)
			if output, ok := i.env.Artifacts().Peek(hash); ok {
				lines = append(lines, output)
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", fuse.Language, fuse.Code))
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

// execDeploy compiles the payload, runs it past the admission gate for
// every sink the selector matches, then hands fan-out to the deployer.
// A blocking policy violation aborts the whole statement before any
// sink runs.
func (i *Interpreter) execDeploy(ctx context.Context, d *lang.Deploy) (err error) {
	if i.deployer == nil {
		return errdefs.NewUnsupportedOperation("no deployer configured")
	}

	payload := i.compilePayload()
	runID := telemetry.RunIDFromContext(ctx)
	log := i.logger.WithField("selector", d.Selector)

	op := telemetry.StartOperation(ctx, "deploy.execute", telemetry.AttrDeploySelector.String(d.Selector))
	defer func() { op.End(err) }()

	if i.admission != nil {
		for _, sink := range i.deployer.Sinks(d.Selector) {
			if err := i.admitSink(op.Ctx, runID, sink, d, len(payload)); err != nil {
				return err
			}
		}
	}

	results, err := i.deployer.Deploy(op.Ctx, d.Selector, payload, d.Config)
	for _, r := range results {
		i.recordDeployment(ctx, runID, r.Sink, r.Attempts, r.Duration, r.Err)
	}
	if err != nil {
		log.WithError(err).Error("deployment failed")
		return err
	}
	log.WithField("sinks", len(results)).Info("deployment complete")
	return nil
}

// admitSink evaluates the policy gate for one sink. Advisory violations
// are logged and published; a blocking violation in enforcing mode comes
// back as the error that aborts the statement.
func (i *Interpreter) admitSink(ctx context.Context, runID, sink string, d *lang.Deploy, payloadSize int) error {
	decision, err := i.admission.Check(ctx, policy.Input{
		Sink:        sink,
		Selector:    d.Selector,
		Config:      d.Config,
		PayloadSize: payloadSize,
	})
	if decision != nil {
		for _, w := range decision.Warnings {
			i.logger.WithSink(sink).Warn(w)
		}
		for _, v := range decision.Violations {
			if i.events != nil {
				_ = i.events.PublishPolicyViolation(runID, sink, v.Rule)
			}
			i.logger.WithSink(sink).WithField("rule", v.Rule).Warn(v.Message)
		}
	}
	return err
}

func (i *Interpreter) recordDeployment(ctx context.Context, runID, sink string, attempts int, duration time.Duration, deployErr error) {
	if i.recorder == nil {
		return
	}
	rec := DeployRecord{
		RunID:    runID,
		Sink:     sink,
		Attempts: attempts,
		Status:   "succeeded",
		Duration: duration,
	}
	switch {
	case deployErr == nil:
	case errdefs.IsKind(deployErr, errdefs.KindDeployConfigMissing):
		rec.Status = "config_error"
		rec.Error = deployErr.Error()
	default:
		rec.Status = "failed"
		rec.Error = deployErr.Error()
	}
	if err := i.recorder.RecordDeployment(ctx, rec); err != nil {
		i.logger.WithError(err).Warn("recording deployment failed")
	}
}
