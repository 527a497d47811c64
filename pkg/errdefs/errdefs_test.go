package errdefs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"parse", NewParse("unexpected token: %s", "}"), KindParse},
		{"unsupported language", NewUnsupportedLanguage("cobol"), KindUnsupportedLanguage},
		{"toolchain", NewToolchainNotFound("python", errors.New("exec: not found")), KindToolchainNotFound},
		{"install", NewDependencyInstall("python", "requests", "boom", nil), KindDependencyInstall},
		{"execution", NewExecutionFailed("go", StageRun, "", errors.New("exit 1")), KindExecutionFailed},
		{"variable", NewVariableNotFound("x"), KindVariableNotFound},
		{"function", NewFunctionNotFound("build"), KindFunctionNotFound},
		{"iteration", NewIterationLimit(10000), KindIterationLimit},
		{"deploy config", NewDeployConfigMissing("ethereum", "api_key"), KindDeployConfigMissing},
		{"deploy failed", NewDeployFailed("aws", errors.New("timeout")), KindDeployFailed},
		{"cache", NewCache("bad capacity", nil), KindCache},
		{"unsupported op", NewUnsupportedOperation("unexpected node"), KindUnsupportedOperation},
		{"policy", NewPolicyViolation("payload-not-empty", "deployment payload is empty"), KindPolicyViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
			if !IsKind(tt.err, tt.want) {
				t.Errorf("IsKind() = false, want true")
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	inner := NewVariableNotFound("counter")
	wrapped := fmt.Errorf("interpreting let: %w", inner)

	if got := KindOf(wrapped); got != KindVariableNotFound {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindVariableNotFound)
	}
	if !errors.Is(wrapped, &Error{Kind: KindVariableNotFound}) {
		t.Error("errors.Is should match on kind through wrapping")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}

func TestRetryClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"deploy failure is transient", NewDeployFailed("ethereum", errors.New("rpc timeout")), true},
		{"missing config is permanent", NewDeployConfigMissing("ethereum", "api_key"), false},
		{"deploy wrapping a config error stays permanent", NewDeployFailed("aws", NewDeployConfigMissing("aws", "region")), false},
		{"execution failure is permanent", NewExecutionFailed("python", StageRun, "", nil), false},
		{"plain errors retry", errors.New("connection reset"), true},
		{"nil does not retry", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestErrorMessageContext(t *testing.T) {
	err := NewDependencyInstall("python", "requests", "no matching distribution", errors.New("exit status 1"))
	msg := err.Error()

	for _, want := range []string{"dependency_install_failed", "language=python", "dependency=requests"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestWithAttempts(t *testing.T) {
	err := NewDeployFailed("solana", errors.New("rpc unavailable")).WithAttempts(4)
	if err.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", err.Attempts)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("exit status 2")
	err := NewExecutionFailed("cpp", StageCompile, "undefined reference", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if err.Stage != StageCompile {
		t.Errorf("Stage = %q, want %q", err.Stage, StageCompile)
	}
}
