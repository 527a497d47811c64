package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/executor"
	"github.com/riftlang/rift/pkg/lang"
	"github.com/riftlang/rift/pkg/resolver"
	"github.com/riftlang/rift/pkg/telemetry"
	"github.com/riftlang/rift/pkg/transform"
)

// maxWhileIterations is the hard ceiling on While body executions.
const maxWhileIterations = 10000

// DefaultTargetLanguage is the optimize target when no Target statement
// has run.
const DefaultTargetLanguage = "rust"

// optimizeBuiltin is the reserved call name for the optimize path.
const optimizeBuiltin = "optimize"

// Config configures an Interpreter. Zero-value fields get production
// defaults; Admission and Recorder stay nil unless wired.
type Config struct {
	// Environment defaults to a fresh one with a default-capacity cache.
	Environment *Environment

	// Resolver defaults to the tree-sitter adapter registry.
	Resolver Resolver

	// Runner defaults to a toolchain executor in the current directory.
	Runner Runner

	// Transformer defaults to the built-in template service.
	Transformer Transformer

	// Deployer defaults to an orchestrator over the standard sink set.
	Deployer Deployer

	// Admission gates deploy statements when set. No gate means every
	// deployment is admitted.
	Admission Admission

	// Recorder persists run history when set.
	Recorder Recorder

	Logger  *telemetry.Logger
	Metrics *telemetry.Metrics
	Events  *telemetry.EventPublisher
}

// Interpreter walks a program's AST and applies each node's runtime
// meaning to the shared Environment.
type Interpreter struct {
	env         *Environment
	resolver    Resolver
	runner      Runner
	transformer Transformer
	deployer    Deployer
	admission   Admission
	recorder    Recorder
	logger      *telemetry.Logger
	metrics     *telemetry.Metrics
	events      *telemetry.EventPublisher
}

// New creates an interpreter from cfg, filling in production defaults
// for unset collaborators.
func New(cfg Config) *Interpreter {
	env := cfg.Environment
	if env == nil {
		env = NewEnvironment(nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.FromContext(context.Background())
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics, _ = telemetry.NewMetrics(telemetry.MetricsConfig{})
	}

	res := cfg.Resolver
	if res == nil {
		res = resolver.New(resolver.NewDefaultRegistry())
	}

	runner := cfg.Runner
	if runner == nil {
		runner = executor.NewExecutor(executor.Config{Logger: logger})
	}

	transformer := cfg.Transformer
	if transformer == nil {
		transformer = transform.NewTemplateService()
	}

	return &Interpreter{
		env:         env,
		resolver:    res,
		runner:      runner,
		transformer: transformer,
		deployer:    cfg.Deployer,
		admission:   cfg.Admission,
		recorder:    cfg.Recorder,
		logger:      logger.NewComponentLogger("engine"),
		metrics:     metrics,
		events:      cfg.Events,
	}
}

// Environment returns the interpreter's shared environment.
func (i *Interpreter) Environment() *Environment {
	return i.env
}

// Run interprets a program. Top-level children run as independent
// concurrent units of work; the first error cancels the rest and becomes
// the program's error. Environment side effects already applied by other
// children are kept.
func (i *Interpreter) Run(ctx context.Context, program *lang.Program) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, child := range program.Children {
		g.Go(func() error {
			return i.exec(ctx, child)
		})
	}
	return g.Wait()
}

// exec applies one statement to the environment.
func (i *Interpreter) exec(ctx context.Context, node lang.Node) error {
	switch n := node.(type) {
	case *lang.Rift:
		i.env.RegisterRift(n.Name, n.Body)
		i.logger.WithRift(n.Name).Debug("rift registered")
		return nil

	case *lang.Task:
		i.env.RegisterTask(n.Name, n.Body)
		i.logger.WithField("task", n.Name).Debug("task registered")
		return nil

	case *lang.Fuse:
		return i.execFuse(ctx, n)

	case *lang.Target:
		i.env.SetTargetLanguage(n.Language)
		i.logger.WithLanguage(n.Language).Debug("target language set")
		return nil

	case *lang.Deploy:
		return i.execDeploy(ctx, n)

	case *lang.Let:
		value, err := i.evaluate(n.Value)
		if err != nil {
			return err
		}
		i.env.SetVariable(n.Name, value)
		return nil

	case *lang.Call:
		return i.execCall(ctx, n)

	case *lang.If:
		truthy, err := i.condition(n.Cond)
		if err != nil {
			return err
		}
		if truthy {
			return i.execSequence(ctx, n.Then)
		}
		return i.execSequence(ctx, n.Else)

	case *lang.While:
		return i.execWhile(ctx, n)

	case *lang.Number, *lang.String, *lang.Identifier:
		return errdefs.NewUnsupportedOperation("bare expression at statement position")

	default:
		return errdefs.NewUnsupportedOperation("cannot interpret %T as a statement", node)
	}
}

// execSequence runs statements in textual order, stopping at the first
// error. Bodies invoked by If, While, and Call all come through here.
func (i *Interpreter) execSequence(ctx context.Context, nodes []lang.Node) error {
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.exec(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execCall(ctx context.Context, call *lang.Call) error {
	if call.Name == optimizeBuiltin {
		return i.execOptimize(ctx, call.Args)
	}

	body, ok := i.env.Callable(call.Name)
	if !ok {
		return errdefs.NewFunctionNotFound(call.Name)
	}
	return i.execSequence(ctx, body)
}

func (i *Interpreter) execWhile(ctx context.Context, loop *lang.While) error {
	iterations := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		truthy, err := i.condition(loop.Cond)
		if err != nil {
			return err
		}
		if !truthy {
			return nil
		}
		if iterations >= maxWhileIterations {
			return errdefs.NewIterationLimit(maxWhileIterations)
		}
		if err := i.execSequence(ctx, loop.Body); err != nil {
			return err
		}
		iterations++
	}
}

// condition evaluates a branch condition. Only number literals are
// conditions; nonzero is true.
func (i *Interpreter) condition(node lang.Node) (bool, error) {
	number, ok := node.(*lang.Number)
	if !ok {
		return false, errdefs.NewUnsupportedOperation("condition must be a number literal")
	}
	return number.Value != 0, nil
}

// evaluate reduces an expression node to a Value. Only literals and
// variable references are expressions.
func (i *Interpreter) evaluate(node lang.Node) (Value, error) {
	switch n := node.(type) {
	case *lang.Number:
		return NumberValue(n.Value), nil
	case *lang.String:
		return StringValue(n.Value), nil
	case *lang.Identifier:
		value, ok := i.env.Variable(n.Name)
		if !ok {
			return Value{}, errdefs.NewVariableNotFound(n.Name)
		}
		return value, nil
	default:
		return Value{}, errdefs.NewUnsupportedOperation("unsupported expression")
	}
}
