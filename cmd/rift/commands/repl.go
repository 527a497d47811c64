package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/riftlang/rift/pkg/engine"
	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/lang"
)

const (
	promptMain = "rift> "
	promptCont = "...   "
)

func newReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		Long: `Start an interactive Rift session.

The shell keeps one environment alive across inputs: rifts, tasks,
variables, and cached artifacts accumulate until 'clear'. Incomplete
statements continue on the next line. Input history is saved between
sessions.`,
		Example: `  # Start the shell
  rift repl

  # Inside the shell
  rift> @rift hello { @fuse "python" { "print('Hello, World!')" } }
  rift> call hello;`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			return runRepl(rt.context(cmd.Context()), rt)
		},
	}

	return cmd
}

func runRepl(ctx context.Context, rt *runtime) error {
	fmt.Printf("Rift v%s - Code Fusion Powerhouse\n", buildVersion)
	fmt.Println("Type 'help' for available commands, 'exit' to quit")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := replHistoryPath(rt)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

loop:
	for {
		if ctx.Err() != nil {
			fmt.Println("Goodbye!")
			break
		}

		input, status := readStatement(ln)
		switch status {
		case readEOF:
			fmt.Println("Goodbye!")
			break loop
		case readAborted:
			fmt.Println("Use 'exit' to quit")
			continue
		}

		line := strings.TrimSpace(input)
		switch line {
		case "":
			continue
		case "help":
			printHelp()
			continue
		case "exit", "quit":
			fmt.Println("Goodbye!")
			break loop
		case "clear":
			rt.session.Reset()
			fmt.Println("Environment cleared")
			continue
		case "status":
			printStatus(rt.session.Status())
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(line, "\n", " "))

		if err := rt.session.ExecuteSource(ctx, input, "repl"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			printHint(err)
			continue
		}
		fmt.Println("Ok")
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	} else {
		fmt.Fprintf(os.Stderr, "Warning: Could not save history: %v\n", err)
	}

	return nil
}

type readResult int

const (
	readOK readResult = iota
	readAborted
	readEOF
)

// readStatement reads one statement, prompting for continuation lines
// while the parser reports the buffer as incomplete.
func readStatement(ln *liner.State) (string, readResult) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", readAborted
		}
		if errors.Is(err, io.EOF) {
			return "", readEOF
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Input error: %v\n", err)
			return "", readEOF
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" || isShellCommand(src) {
			return src, readOK
		}
		if _, perr := lang.ParseSource(src); perr == nil || !looksIncomplete(perr) {
			return src, readOK
		}
	}
}

func isShellCommand(src string) bool {
	switch strings.TrimSpace(src) {
	case "help", "exit", "quit", "clear", "status":
		return true
	}
	return false
}

// looksIncomplete classifies parse errors that mean "need more input"
// rather than a real syntax error.
func looksIncomplete(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "end of input") ||
		strings.Contains(msg, "unterminated string")
}

func printHint(err error) {
	switch errdefs.KindOf(err) {
	case errdefs.KindUnsupportedLanguage:
		fmt.Fprintln(os.Stderr, "Hint: Supported languages are: python, javascript, go, java, cpp, php, rust")
	case errdefs.KindParse:
		fmt.Fprintln(os.Stderr, "Hint: Check syntax. Use 'help' for examples")
	}
}

func replHistoryPath(rt *runtime) string {
	if rt.cfg.REPL.HistoryFile != "" {
		return rt.cfg.REPL.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rift_history"
	}
	return filepath.Join(home, ".rift_history")
}

func printStatus(status engine.Status) {
	fmt.Println("Environment Status:")
	fmt.Printf("  Rifts: %d\n", len(status.Rifts))
	fmt.Printf("  Tasks: %d\n", len(status.Tasks))
	fmt.Printf("  Variables: %d\n", status.Variables)
	fmt.Printf("  Cache entries: %d\n", status.CacheEntries)
	fmt.Printf("  Cache hits: %d, misses: %d\n", status.CacheHits, status.CacheMisses)

	if status.TargetLanguage != "" {
		fmt.Printf("  Target language: %s\n", status.TargetLanguage)
	}
	if len(status.Rifts) > 0 {
		fmt.Printf("  Available rifts: %s\n", strings.Join(status.Rifts, ", "))
	}
	if len(status.Tasks) > 0 {
		fmt.Printf("  Available tasks: %s\n", strings.Join(status.Tasks, ", "))
	}
}

func printHelp() {
	fmt.Printf(`
Rift v%s Commands:

Basic Commands:
  @rift name { ... }           - Create a new rift (project)
  @fuse "lang" { "code" }      - Add code in specified language
  @task name { ... }           - Create a transformation task
  @target "lang"               - Set target language for transformation
  @deploy "target" { ... }     - Deploy to specified target
  call name;                   - Execute a rift or task
  let var = value;             - Set a variable

Flow Control:
  if condition { ... }         - Conditional execution
  while condition { ... }      - Loop execution

Utility Commands:
  help                         - Show this help
  status                       - Show environment status
  clear                        - Clear all rifts and variables
  exit/quit                    - Exit Rift

Example Usage:
  @rift hello { @fuse "python" { "print('Hello, World!')" } }
  call hello;

  @target "rust"
  call optimize with hello;
  call optimized_hello;

Supported Languages:
  python, javascript, go, java, cpp, php, rust

Deployment Targets:
  local, ethereum, solana, aws
`, buildVersion)
}
