package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/riftlang/rift/pkg/errdefs"
)

// WASMRunner executes base64-encoded WebAssembly modules in-process. The
// guest gets WASI stdio only, with no filesystem or network access, and its
// linear memory is capped.
type WASMRunner struct {
	memoryLimitPages uint32
}

// NewWASMRunner creates a runner whose guest memory is capped at
// memoryLimitPages 64KB pages.
func NewWASMRunner(memoryLimitPages uint32) *WASMRunner {
	return &WASMRunner{memoryLimitPages: memoryLimitPages}
}

// Execute decodes and runs one module, invoking its _start export. Decode
// and compilation failures report the compile stage; traps and non-zero
// exits report the run stage.
func (w *WASMRunner) Execute(ctx context.Context, code string) (Output, error) {
	module, err := base64.StdEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return Output{}, errdefs.NewExecutionFailed(LanguageWASM, errdefs.StageCompile, "", err)
	}

	runtimeConfig := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(w.memoryLimitPages).
		WithCloseOnContextDone(true)

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return Output{}, errdefs.NewExecutionFailed(LanguageWASM, errdefs.StageCompile, "", err)
	}

	compiled, err := runtime.CompileModule(ctx, module)
	if err != nil {
		return Output{}, errdefs.NewExecutionFailed(LanguageWASM, errdefs.StageCompile, "", err)
	}

	var stdout, stderr bytes.Buffer
	moduleConfig := wazero.NewModuleConfig().
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithName("rift-snippet")

	_, err = runtime.InstantiateModule(ctx, compiled, moduleConfig)

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = int(exitErr.ExitCode())
			if exitErr.ExitCode() == 0 {
				return out, nil
			}
		}
		return out, errdefs.NewExecutionFailed(LanguageWASM, errdefs.StageRun, out.Stderr, err)
	}
	return out, nil
}
