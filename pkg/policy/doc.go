// Package policy gates deployments with Open Policy Agent (OPA) rules.
//
// Before the engine hands a compiled payload to a deployment sink, the
// gate evaluates the target against a set of Rego rules. Rules can block
// a sink outright or attach advisory violations that are surfaced but do
// not stop the deployment.
//
// # Usage
//
// Creating a gate with the built-in rules:
//
//	gate, err := policy.NewGate(policy.Config{Logger: logger})
//	if err != nil {
//	    return err
//	}
//
// Admitting a sink:
//
//	decision, err := gate.Check(ctx, policy.Input{
//	    Sink:        "aws",
//	    Selector:    "all",
//	    Config:      cfg,
//	    PayloadSize: len(payload),
//	})
//	if err != nil {
//	    return err // blocked in enforcing mode
//	}
//	for _, v := range decision.Violations {
//	    logger.Warnf("policy %s: %s", v.Rule, v.Message)
//	}
//
// # Built-in Rules
//
// The following rules are included by default:
//
//  1. payload-not-empty - Rejects deployments with an empty payload
//  2. payload-size-limit - Warns when the payload exceeds 10 MiB
//  3. aws-role-format - Requires the aws role to be an ARN
//  4. ethereum-endpoint - Warns when ethereum has no explicit endpoint
//
// # Custom Rules
//
// Custom rules are written in Rego and loaded from .rego files via
// Config.Paths. The rule name is the file name, the description comes
// from the leading comment block, and a "# severity: error" comment
// overrides the default warning severity:
//
//	# Production deployments must target a named function.
//	# severity: error
//	package custom.policies.naming
//
//	import rego.v1
//
//	deny contains violation if {
//	    input.sink == "aws"
//	    not input.config.function
//	    violation := {
//	        "message": "aws deployments must name a function",
//	        "severity": "error",
//	    }
//	}
//
// # Severity Levels
//
// Violations have four severity levels:
//
//   - info: Informational messages
//   - warning: Issues that should be reviewed but don't block deployment
//   - error: Issues that block the sink
//   - critical: Severe issues that block the sink
//
// # Modes
//
// In enforcing mode (the default) a blocking violation turns into an
// error and the deployment aborts before any sink runs. In advisory mode
// the same violation is logged and the deployment proceeds.
//
// Rules are compiled once at construction with OPA's PreparedEvalQuery
// and reused for every evaluation.
package policy
