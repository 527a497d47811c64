package policy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/rego"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/telemetry"
)

// Mode controls whether a blocking decision actually blocks.
type Mode string

const (
	// ModeEnforcing turns blocking decisions into errors.
	ModeEnforcing Mode = "enforcing"

	// ModeAdvisory logs blocking decisions but lets the deployment
	// proceed.
	ModeAdvisory Mode = "advisory"
)

// Gate admits sink deployments against a set of compiled Rego rules.
type Gate struct {
	mu     sync.RWMutex
	rules  map[string]*compiledRule
	order  []string
	mode   Mode
	logger *telemetry.Logger
}

type compiledRule struct {
	rule  Rule
	query rego.PreparedEvalQuery
}

// Config configures a Gate.
type Config struct {
	// Mode defaults to enforcing.
	Mode Mode

	// Rules defaults to BuiltinRules. Explicit rules replace the
	// builtins entirely.
	Rules []Rule

	// Paths name extra .rego files or directories appended to the rule
	// set.
	Paths []string

	Logger *telemetry.Logger
}

// NewGate compiles every rule and returns a ready gate.
func NewGate(cfg Config) (*Gate, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.FromContext(context.Background())
	}

	mode := cfg.Mode
	if mode == "" {
		mode = ModeEnforcing
	}

	rules := cfg.Rules
	if rules == nil {
		rules = BuiltinRules()
	}
	if len(cfg.Paths) > 0 {
		loaded, err := LoadRules(cfg.Paths)
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}

	g := &Gate{
		rules:  make(map[string]*compiledRule, len(rules)),
		mode:   mode,
		logger: logger.NewComponentLogger("policy"),
	}
	for _, rule := range rules {
		if err := g.compile(context.Background(), rule); err != nil {
			return nil, err
		}
	}

	g.logger.Debugf("compiled %d admission rules in %s mode", len(g.order), mode)
	return g, nil
}

func (g *Gate) compile(ctx context.Context, rule Rule) error {
	query := fmt.Sprintf("data.%s.deny", packageName(rule.Rego))
	prepared, err := rego.New(
		rego.Query(query),
		rego.Module(rule.Name, rule.Rego),
	).PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("compiling rule %s: %w", rule.Name, err)
	}

	if _, exists := g.rules[rule.Name]; !exists {
		g.order = append(g.order, rule.Name)
	}
	g.rules[rule.Name] = &compiledRule{rule: rule, query: prepared}
	return nil
}

// Mode returns the gate's mode.
func (g *Gate) Mode() Mode {
	return g.mode
}

// Rules returns the loaded rules in evaluation order.
func (g *Gate) Rules() []Rule {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rules := make([]Rule, 0, len(g.order))
	for _, name := range g.order {
		rules = append(rules, g.rules[name].rule)
	}
	return rules
}

// Admit evaluates every enabled rule against input. A rule that fails to
// evaluate is reported as a warning and skipped; it never blocks.
func (g *Gate) Admit(ctx context.Context, input Input) (*Decision, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	decision := &Decision{Allowed: true, EvaluatedAt: time.Now()}
	for _, name := range g.order {
		cr := g.rules[name]
		if !cr.rule.Enabled {
			continue
		}

		results, err := cr.query.Eval(ctx, rego.EvalInput(input))
		if err != nil {
			g.logger.WithError(err).Warnf("rule %s evaluation failed", name)
			decision.Warnings = append(decision.Warnings, fmt.Sprintf("rule %s evaluation failed: %v", name, err))
			continue
		}

		for _, result := range results {
			for _, expr := range result.Expressions {
				denied, ok := expr.Value.([]interface{})
				if !ok {
					continue
				}
				for _, entry := range denied {
					violation := newViolation(cr.rule, input.Sink, entry)
					decision.Violations = append(decision.Violations, violation)
					if violation.Severity == SeverityError || violation.Severity == SeverityCritical {
						decision.Allowed = false
					}
				}
			}
		}
	}
	return decision, nil
}

// Check admits input and, in enforcing mode, turns a blocking decision into
// a policy violation error. The decision is returned in both modes so
// callers can surface warnings.
func (g *Gate) Check(ctx context.Context, input Input) (*Decision, error) {
	decision, err := g.Admit(ctx, input)
	if err != nil {
		return nil, err
	}

	if blocking, ok := decision.Blocking(); ok {
		if g.mode == ModeEnforcing {
			return decision, errdefs.NewPolicyViolation(blocking.Rule, blocking.Message).WithSink(input.Sink)
		}
		g.logger.WithSink(input.Sink).Warnf("advisory mode: rule %s would block: %s", blocking.Rule, blocking.Message)
	}
	return decision, nil
}

// newViolation normalizes one deny set entry. Entries are either bare
// message strings or objects with message/severity keys.
func newViolation(rule Rule, sink string, entry interface{}) Violation {
	violation := Violation{
		Rule:     rule.Name,
		Sink:     sink,
		Severity: rule.Severity,
	}

	switch v := entry.(type) {
	case string:
		violation.Message = v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			violation.Message = msg
		}
		if sev, ok := v["severity"].(string); ok {
			violation.Severity = Severity(sev)
		}
	default:
		violation.Message = fmt.Sprintf("%v", entry)
	}
	return violation
}

// packageName extracts the package path from Rego source.
func packageName(source string) string {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") {
			if parts := strings.Fields(trimmed); len(parts) >= 2 {
				return parts[1]
			}
		}
	}
	return "rift.policies"
}
