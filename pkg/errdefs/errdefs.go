// Package errdefs defines the error taxonomy shared by the Rift runtime.
// Every failure surfaced by the interpreter, the resolver, the executor, or
// the deployment orchestrator is a classified *Error so callers can branch
// on Kind and retry logic can branch on Class.
package errdefs

import (
	"errors"
	"fmt"
)

// Class represents the classification of an error for retry logic.
type Class string

const (
	// ClassTransient indicates a temporary failure that may succeed on retry.
	// Examples: sink timeouts, temporary service unavailability.
	ClassTransient Class = "transient"

	// ClassPermanent indicates a non-recoverable error.
	// Examples: missing deploy config, unknown language, parse failures.
	ClassPermanent Class = "permanent"
)

// Kind identifies the failure mode independent of the message text.
type Kind string

const (
	KindParse                Kind = "parse_error"
	KindUnsupportedLanguage  Kind = "unsupported_language"
	KindToolchainNotFound    Kind = "toolchain_not_found"
	KindDependencyInstall    Kind = "dependency_install_failed"
	KindExecutionFailed      Kind = "execution_failed"
	KindVariableNotFound     Kind = "variable_not_found"
	KindFunctionNotFound     Kind = "function_not_found"
	KindIterationLimit       Kind = "iteration_limit_exceeded"
	KindDeployConfigMissing  Kind = "deploy_config_missing"
	KindDeployFailed         Kind = "deploy_failed"
	KindCache                Kind = "cache_error"
	KindUnsupportedOperation Kind = "unsupported_operation"
	KindPolicyViolation      Kind = "policy_violation"
)

// Execution stages distinguished by KindExecutionFailed errors.
const (
	StageMaterialize = "materialize"
	StageCompile     = "compile"
	StageRun         = "run"
)

// Error is a classified runtime error with context fields. Only the fields
// relevant to the Kind are populated.
type Error struct {
	// Kind is the taxonomy entry for programmatic handling.
	Kind Kind `json:"kind"`

	// Class drives retry decisions.
	Class Class `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Language is the snippet language, if applicable.
	Language string `json:"language,omitempty"`

	// Dependency is the dependency that failed to install, if applicable.
	Dependency string `json:"dependency,omitempty"`

	// Sink is the deployment sink name, if applicable.
	Sink string `json:"sink,omitempty"`

	// Name is the variable, rift, or task name that was looked up.
	Name string `json:"name,omitempty"`

	// Stage distinguishes compile from runtime failures.
	Stage string `json:"stage,omitempty"`

	// Stderr carries captured toolchain stderr, if any.
	Stderr string `json:"stderr,omitempty"`

	// Attempts is the number of attempts made before giving up.
	Attempts int `json:"attempts,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	switch {
	case e.Language != "" && e.Dependency != "":
		return fmt.Sprintf("[%s] %s (language=%s, dependency=%s)", e.Kind, msg, e.Language, e.Dependency)
	case e.Language != "":
		return fmt.Sprintf("[%s] %s (language=%s)", e.Kind, msg, e.Language)
	case e.Sink != "":
		return fmt.Sprintf("[%s] %s (sink=%s)", e.Kind, msg, e.Sink)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, msg)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is. Two taxonomy errors match when
// their kinds match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewParse creates a parse error with position context already formatted in.
func NewParse(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindParse,
		Class:   ClassPermanent,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewUnsupportedLanguage reports a language with no registered adapter.
func NewUnsupportedLanguage(language string) *Error {
	return &Error{
		Kind:     KindUnsupportedLanguage,
		Class:    ClassPermanent,
		Message:  fmt.Sprintf("unsupported language: %s", language),
		Language: language,
	}
}

// NewToolchainNotFound reports a toolchain probe failure.
func NewToolchainNotFound(language string, err error) *Error {
	return &Error{
		Kind:     KindToolchainNotFound,
		Class:    ClassPermanent,
		Message:  fmt.Sprintf("toolchain not found for %s", language),
		Language: language,
		Err:      err,
	}
}

// NewDependencyInstall reports a failed package manager invocation.
func NewDependencyInstall(language, dependency, stderr string, err error) *Error {
	return &Error{
		Kind:       KindDependencyInstall,
		Class:      ClassPermanent,
		Message:    fmt.Sprintf("dependency installation failed: %s", dependency),
		Language:   language,
		Dependency: dependency,
		Stderr:     stderr,
		Err:        err,
	}
}

// NewExecutionFailed reports a materialize, compile, or runtime failure with
// captured stderr.
func NewExecutionFailed(language, stage, stderr string, err error) *Error {
	return &Error{
		Kind:     KindExecutionFailed,
		Class:    ClassPermanent,
		Message:  fmt.Sprintf("execution failed in %s stage", stage),
		Language: language,
		Stage:    stage,
		Stderr:   stderr,
		Err:      err,
	}
}

// NewVariableNotFound reports an identifier with no bound variable.
func NewVariableNotFound(name string) *Error {
	return &Error{
		Kind:    KindVariableNotFound,
		Class:   ClassPermanent,
		Message: fmt.Sprintf("variable not found: %s", name),
		Name:    name,
	}
}

// NewFunctionNotFound reports a call target registered neither as a rift nor
// as a task.
func NewFunctionNotFound(name string) *Error {
	return &Error{
		Kind:    KindFunctionNotFound,
		Class:   ClassPermanent,
		Message: fmt.Sprintf("function not found: %s", name),
		Name:    name,
	}
}

// NewIterationLimit reports a loop that hit the hard iteration ceiling.
func NewIterationLimit(limit int) *Error {
	return &Error{
		Kind:    KindIterationLimit,
		Class:   ClassPermanent,
		Message: fmt.Sprintf("iteration limit exceeded (%d)", limit),
	}
}

// NewDeployConfigMissing reports a sink invoked without a required config key.
// Config errors are permanent and must never enter the retry loop.
func NewDeployConfigMissing(sink, key string) *Error {
	return &Error{
		Kind:    KindDeployConfigMissing,
		Class:   ClassPermanent,
		Message: fmt.Sprintf("missing required config %q", key),
		Sink:    sink,
	}
}

// NewPolicyViolation reports a deployment blocked by an admission rule.
func NewPolicyViolation(rule, message string) *Error {
	return &Error{
		Kind:    KindPolicyViolation,
		Class:   ClassPermanent,
		Message: fmt.Sprintf("policy %s: %s", rule, message),
	}
}

// NewDeployFailed reports a sink operation failure. Sink operations are
// retryable, so the class is transient unless the wrapped error is itself a
// permanent taxonomy error.
func NewDeployFailed(sink string, err error) *Error {
	class := ClassTransient
	var inner *Error
	if errors.As(err, &inner) && inner.Class == ClassPermanent {
		class = ClassPermanent
	}
	return &Error{
		Kind:    KindDeployFailed,
		Class:   class,
		Message: "deployment failed",
		Sink:    sink,
		Err:     err,
	}
}

// NewCache reports an artifact cache failure. Reserved for corruption and
// construction errors; lookups and stores do not fail.
func NewCache(message string, err error) *Error {
	return &Error{
		Kind:    KindCache,
		Class:   ClassPermanent,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedOperation reports a node that is not interpretable at
// statement position.
func NewUnsupportedOperation(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindUnsupportedOperation,
		Class:   ClassPermanent,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithAttempts records how many attempts were made before the error was
// returned.
func (e *Error) WithAttempts(attempts int) *Error {
	e.Attempts = attempts
	return e
}

// WithSink adds sink context to an error.
func (e *Error) WithSink(sink string) *Error {
	e.Sink = sink
	return e
}

// WithLanguage adds language context to an error.
func (e *Error) WithLanguage(language string) *Error {
	e.Language = language
	return e
}

// KindOf returns the taxonomy kind of err, or the empty string when err is
// not a taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind returns true if err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsTransient returns true if the error is classified as transient.
func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ClassTransient
	}
	return false
}

// IsPermanent returns true if the error is classified as permanent.
func IsPermanent(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ClassPermanent
	}
	return false
}

// IsRetryable returns true if the error can be retried. Unclassified errors
// are treated as transient so plain sink client failures still retry.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ClassTransient
	}
	return err != nil
}
