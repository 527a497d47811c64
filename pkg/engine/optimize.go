package engine

import (
	"context"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/lang"
	"github.com/riftlang/rift/pkg/telemetry"
)

// execOptimize rewrites a rift's fuses into the session's target
// language and stores the result under "optimized_<name>". The original
// rift is left untouched. Fuses with no translation template keep their
// original language.
func (i *Interpreter) execOptimize(ctx context.Context, args []lang.Node) error {
	if len(args) == 0 {
		return errdefs.NewUnsupportedOperation("optimize requires a rift argument")
	}

	var name string
	var body []lang.Node
	switch arg := args[0].(type) {
	case *lang.Identifier:
		name = arg.Name
		registered, ok := i.env.Rift(name)
		if !ok {
			return errdefs.NewFunctionNotFound(name)
		}
		body = registered
	case *lang.Rift:
		name = arg.Name
		body = arg.Body
	default:
		return errdefs.NewUnsupportedOperation("optimize expects a rift name")
	}

	target := i.env.TargetLanguage()
	if target == "" {
		target = DefaultTargetLanguage
	}

	runID := telemetry.RunIDFromContext(ctx)
	log := i.logger.WithRift(name)

	op := telemetry.StartOperation(ctx, "optimize.apply", telemetry.AttrRiftName.String(name))
	defer func() { op.End(nil) }()

	optimized := make([]lang.Node, 0, len(body))
	applied := 0
	for _, node := range body {
		fuse, ok := node.(*lang.Fuse)
		if !ok {
			optimized = append(optimized, node)
			continue
		}
		translation, ok := i.transformer.Translate(fuse.Language, target, fuse.Code)
		if !ok {
			optimized = append(optimized, fuse)
			continue
		}
		log.Info(translation.Summary)
		i.metrics.RecordTransformation(fuse.Language, translation.Language)
		if i.events != nil {
			_ = i.events.PublishOptimizeApplied(runID, name, fuse.Language, translation.Language)
		}
		optimized = append(optimized, &lang.Fuse{Language: translation.Language, Code: translation.Code})
		applied++
	}

	i.env.RegisterRift("optimized_"+name, optimized)
	log.WithField("translations", applied).Debug("optimized rift stored")
	return nil
}
