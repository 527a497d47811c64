package policy

import "time"

// Severity represents the severity level of a rule violation.
type Severity string

const (
	// SeverityInfo is for informational findings.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed but do not
	// block a deployment.
	SeverityWarning Severity = "warning"

	// SeverityError is for findings that block a deployment in enforcing
	// mode.
	SeverityError Severity = "error"

	// SeverityCritical is for findings that must always block.
	SeverityCritical Severity = "critical"
)

// Rule is one admission rule with its Rego source.
type Rule struct {
	// Name is the unique rule name.
	Name string `json:"name"`

	// Description is a human-readable summary.
	Description string `json:"description"`

	// Rego contains the rule's Rego source. The module must define a
	// deny set under its package.
	Rego string `json:"rego"`

	// Severity is the default severity for violations the rule raises
	// without their own severity.
	Severity Severity `json:"severity"`

	// Enabled indicates whether the rule participates in admission.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing rules.
	Tags []string `json:"tags,omitempty"`
}

// Violation is a single admission finding.
type Violation struct {
	// Rule is the name of the rule that raised the finding.
	Rule string `json:"rule"`

	// Sink is the deployment sink being admitted.
	Sink string `json:"sink,omitempty"`

	// Message is the human-readable finding.
	Message string `json:"message"`

	// Severity is the finding's severity level.
	Severity Severity `json:"severity"`
}

// Decision is the outcome of admitting one sink deployment.
type Decision struct {
	// Allowed is false when any violation reaches error or critical
	// severity.
	Allowed bool `json:"allowed"`

	// Violations lists every finding, blocking or not.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists rules that could not be evaluated.
	Warnings []string `json:"warnings,omitempty"`

	// EvaluatedAt is when the admission ran.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Blocking returns the first violation that forces a denial, if any.
func (d *Decision) Blocking() (Violation, bool) {
	for _, v := range d.Violations {
		if v.Severity == SeverityError || v.Severity == SeverityCritical {
			return v, true
		}
	}
	return Violation{}, false
}

// Input is the document admission rules evaluate against.
type Input struct {
	// Sink is the deployment sink name.
	Sink string `json:"sink"`

	// Selector is the deploy statement's sink selector.
	Selector string `json:"selector"`

	// Config is the sink configuration from the deploy statement.
	Config map[string]string `json:"config"`

	// PayloadSize is the compiled payload size in bytes.
	PayloadSize int `json:"payload_size"`
}
