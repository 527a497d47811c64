// Package executor materializes guest-language snippets to disk and runs
// them through the language's toolchain, with per-stage failure reporting.
// It provides no OS-level sandboxing; isolation is the process boundary and
// hash-derived file naming only.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/riftlang/rift/pkg/cache"
	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/telemetry"
)

const (
	// NativeLanguage is the language the engine itself is written in.
	// Materialized sources in this language are retained on disk after
	// execution instead of being cleaned up.
	NativeLanguage = "go"

	// LanguageWASM names the in-process pseudo-language. Its snippets are
	// base64-encoded WebAssembly modules and need no toolchain probe or
	// dependency installation.
	LanguageWASM = "wasm"
)

// Output captures the observable result of one snippet execution.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner spawns a subprocess and captures its output. A non-nil error means
// the process could not be spawned at all; a non-zero exit status is
// reported through Output.ExitCode with a nil error.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Output, error)
}

// langSpec describes how one guest language is probed, installed,
// materialized, and run. file arguments are bare names relative to the
// executor's working directory.
type langSpec struct {
	probe      []string
	install    func(dep string) []string
	fileName   func(hash, code string) string
	compileCmd func(file string) []string
	runCmd     func(file string) []string
	artifacts  func(file string) []string
	keepSource bool
}

var specs = map[string]langSpec{
	"python": {
		probe:    []string{"python3", "--version"},
		install:  func(dep string) []string { return []string{"pip3", "install", dep} },
		fileName: func(hash, _ string) string { return hash + ".py" },
		runCmd:   func(file string) []string { return []string{"python3", file} },
	},
	"javascript": {
		probe:    []string{"node", "--version"},
		install:  func(dep string) []string { return []string{"npm", "install", dep} },
		fileName: func(hash, _ string) string { return hash + ".js" },
		runCmd:   func(file string) []string { return []string{"node", file} },
	},
	"go": {
		probe:      []string{"go", "version"},
		fileName:   func(hash, _ string) string { return hash + ".go" },
		runCmd:     func(file string) []string { return []string{"go", "run", file} },
		keepSource: true,
	},
	"cpp": {
		probe:      []string{"g++", "--version"},
		fileName:   func(hash, _ string) string { return hash + ".cpp" },
		compileCmd: func(file string) []string { return []string{"g++", file, "-o", binName(file)} },
		runCmd:     func(file string) []string { return []string{"./" + binName(file)} },
		artifacts:  func(file string) []string { return []string{binName(file)} },
	},
	"java": {
		probe:      []string{"java", "-version"},
		install:    func(dep string) []string { return []string{"mvn", "dependency:get", "-Dartifact=" + dep} },
		fileName:   func(_, code string) string { return javaClassName(code) + ".java" },
		compileCmd: func(file string) []string { return []string{"javac", file} },
		runCmd:     func(file string) []string { return []string{"java", strings.TrimSuffix(file, ".java")} },
		artifacts:  func(file string) []string { return []string{strings.TrimSuffix(file, ".java") + ".class"} },
	},
	"php": {
		probe:    []string{"php", "--version"},
		fileName: func(hash, _ string) string { return hash + ".php" },
		runCmd:   func(file string) []string { return []string{"php", file} },
	},
	"rust": {
		probe:      []string{"rustc", "--version"},
		fileName:   func(hash, _ string) string { return hash + ".rs" },
		compileCmd: func(file string) []string { return []string{"rustc", file, "-o", binName(file)} },
		runCmd:     func(file string) []string { return []string{"./" + binName(file)} },
		artifacts:  func(file string) []string { return []string{binName(file)} },
	},
}

var aliases = map[string]string{
	"js": "javascript",
}

func binName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// canonical resolves language aliases to their canonical names.
func canonical(language string) string {
	if c, ok := aliases[language]; ok {
		return c
	}
	return language
}

// Supported reports whether the executor can run snippets in language.
func Supported(language string) bool {
	lang := canonical(language)
	if lang == LanguageWASM {
		return true
	}
	_, ok := specs[lang]
	return ok
}

// javaClassName scans code for the first class declaration so the source
// file name matches what javac requires. Falls back to Main.
func javaClassName(code string) string {
	for _, line := range strings.Split(code, "\n") {
		if !strings.Contains(line, "class") {
			continue
		}
		rest := strings.SplitN(line, "class", 2)[1]
		decl := strings.SplitN(rest, "{", 2)[0]
		if fields := strings.Fields(decl); len(fields) > 0 {
			return fields[0]
		}
	}
	return "Main"
}

// Config configures an Executor.
type Config struct {
	// WorkDir is where snippets are materialized and run. Defaults to the
	// current directory.
	WorkDir string

	// Logger receives per-stage debug logging.
	Logger *telemetry.Logger

	// WASMMemoryPages caps in-process module memory in 64KB pages.
	// Defaults to 256 (16MB).
	WASMMemoryPages uint32
}

// Executor runs snippets through their language toolchains.
type Executor struct {
	runner     Runner
	wasm       *WASMRunner
	workDir    string
	logger     *telemetry.Logger
	executions atomic.Uint64
}

// NewExecutor creates an executor that spawns real subprocesses.
func NewExecutor(cfg Config) *Executor {
	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = "."
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.FromContext(context.Background())
	}
	pages := cfg.WASMMemoryPages
	if pages == 0 {
		pages = 256
	}
	return &Executor{
		runner:  execRunner{},
		wasm:    NewWASMRunner(pages),
		workDir: workDir,
		logger:  logger.NewComponentLogger("executor"),
	}
}

// Executions returns the number of successfully executed snippets.
func (e *Executor) Executions() uint64 {
	return e.executions.Load()
}

// Execute runs code through the language's toolchain and returns its
// captured output. Failures are distinguishable per stage: toolchain probe,
// dependency install, compile, run. deps come from the resolver and may
// contain duplicates; installation is invoked once per entry.
func (e *Executor) Execute(ctx context.Context, language, code string, deps []string) (Output, error) {
	lang := canonical(language)

	if lang == LanguageWASM {
		out, err := e.wasm.Execute(ctx, code)
		if err == nil {
			e.executions.Add(1)
		}
		return out, err
	}

	spec, ok := specs[lang]
	if !ok {
		return Output{}, errdefs.NewUnsupportedLanguage(language)
	}

	if err := e.probe(ctx, lang, spec); err != nil {
		return Output{}, err
	}
	if err := e.installDeps(ctx, lang, spec, deps); err != nil {
		return Output{}, err
	}

	file := spec.fileName(cache.HashSnippet(code), code)
	if err := os.WriteFile(filepath.Join(e.workDir, file), []byte(code), 0o644); err != nil {
		return Output{}, errdefs.NewExecutionFailed(lang, errdefs.StageMaterialize, "", err)
	}
	defer e.cleanup(spec, file)

	if spec.compileCmd != nil {
		cmd := spec.compileCmd(file)
		out, err := e.runner.Run(ctx, e.workDir, cmd[0], cmd[1:]...)
		if err != nil {
			return Output{}, errdefs.NewExecutionFailed(lang, errdefs.StageCompile, out.Stderr, err)
		}
		if out.ExitCode != 0 {
			return Output{}, errdefs.NewExecutionFailed(lang, errdefs.StageCompile, out.Stderr, fmt.Errorf("exit status %d", out.ExitCode))
		}
	}

	cmd := spec.runCmd(file)
	out, err := e.runner.Run(ctx, e.workDir, cmd[0], cmd[1:]...)
	if err != nil {
		return out, errdefs.NewExecutionFailed(lang, errdefs.StageRun, out.Stderr, err)
	}
	if out.ExitCode != 0 {
		return out, errdefs.NewExecutionFailed(lang, errdefs.StageRun, out.Stderr, fmt.Errorf("exit status %d", out.ExitCode))
	}

	e.executions.Add(1)
	e.logger.WithLanguage(lang).Debugf("snippet executed, %d bytes of stdout", len(out.Stdout))
	return out, nil
}

// probe verifies the toolchain answers a version invocation.
func (e *Executor) probe(ctx context.Context, lang string, spec langSpec) error {
	out, err := e.runner.Run(ctx, "", spec.probe[0], spec.probe[1:]...)
	if err != nil {
		return errdefs.NewToolchainNotFound(lang, err)
	}
	if out.ExitCode != 0 {
		return errdefs.NewToolchainNotFound(lang, fmt.Errorf("%s exited with status %d", spec.probe[0], out.ExitCode))
	}
	return nil
}

// installDeps installs each dependency through the language's package
// manager. Languages without one skip this stage. The first failure aborts,
// with no partial continuation.
func (e *Executor) installDeps(ctx context.Context, lang string, spec langSpec, deps []string) error {
	if spec.install == nil || len(deps) == 0 {
		return nil
	}
	for _, dep := range deps {
		cmd := spec.install(dep)
		out, err := e.runner.Run(ctx, e.workDir, cmd[0], cmd[1:]...)
		if err != nil {
			return errdefs.NewDependencyInstall(lang, dep, "", err)
		}
		if out.ExitCode != 0 {
			return errdefs.NewDependencyInstall(lang, dep, out.Stderr, fmt.Errorf("exit status %d", out.ExitCode))
		}
		e.logger.WithLanguage(lang).Debugf("installed dependency %s", dep)
	}
	return nil
}

// cleanup removes materialized files best-effort; a failure to delete never
// fails the execution. The native language's source stays on disk.
func (e *Executor) cleanup(spec langSpec, file string) {
	if !spec.keepSource {
		os.Remove(filepath.Join(e.workDir, file))
	}
	if spec.artifacts != nil {
		for _, extra := range spec.artifacts(file) {
			os.Remove(filepath.Join(e.workDir, extra))
		}
	}
}
