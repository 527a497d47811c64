package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a Rift program file",
		Long: `Parse and execute a Rift program file.

This command:
  - Loads the program source
  - Runs every top-level statement, failing fast on the first error
  - Records the run in history when enabled
  - With --watch, re-runs on every change to the file`,
		Example: `  # Run a program
  rift run examples/hello.rift

  # Re-run on change
  rift run examples/hello.rift --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := rt.context(cmd.Context())
			path := args[0]

			if watch {
				return watchAndRun(ctx, rt, path)
			}
			return runFile(ctx, rt, path)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run when the file changes")

	return cmd
}

func runFile(ctx context.Context, rt *runtime, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	started := time.Now()
	if err := rt.session.ExecuteSource(ctx, string(src), "file"); err != nil {
		return err
	}

	log.Info().
		Str("file", path).
		Dur("duration", time.Since(started)).
		Msg("Run succeeded")
	return nil
}

// watchAndRun runs the file once, then re-runs it on every write. The
// environment is reset before each re-run so edits never see stale
// rifts from a previous version of the file.
func watchAndRun(ctx context.Context, rt *runtime, path string) error {
	if err := runFile(ctx, rt, path); err != nil {
		log.Error().Err(err).Msg("Run failed")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors that replace the file on save would
	// otherwise detach a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Info().Str("file", path).Msg("Watching for changes")

	target := filepath.Clean(path)

	// Debounce rapid save events
	var rerunTimer *time.Timer
	rerunDelay := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("File changed")

			if rerunTimer != nil {
				rerunTimer.Stop()
			}
			rerunTimer = time.AfterFunc(rerunDelay, func() {
				rt.session.Reset()
				if err := runFile(ctx, rt, path); err != nil {
					log.Error().Err(err).Msg("Run failed")
				}
			})

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(werr).Msg("Watcher error")
		}
	}
}
