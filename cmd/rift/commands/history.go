package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riftlang/rift/pkg/config"
	"github.com/riftlang/rift/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
		Long: `Inspect the run history database.

Every run records its program source, status, and duration, plus the
fuse executions and per-sink deployments it performed.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var (
		sessionID string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		Example: `  # Most recent runs
  rift history list

  # Runs from one session, as JSON
  rift history list --session 6f9da8 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openConfiguredStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var filter *string
			if sessionID != "" {
				filter = &sessionID
			}
			runs, err := store.ListRuns(ctx, filter, limit, offset)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(runs)
			}

			if len(runs) == 0 {
				fmt.Println("No runs recorded")
				return nil
			}
			for _, run := range runs {
				fmt.Printf("%s  %-4s  %-9s  %s  %6dms\n",
					run.ID, run.Mode, run.Status,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.DurationMS)
				if run.Error != nil {
					fmt.Printf("    error: %s\n", *run.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "filter by session ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "runs to skip")

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run in detail",
		Long: `Show one run with its fuse executions and deployments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openConfiguredStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			fuses, err := store.ListFuseExecutionsByRun(ctx, run.ID)
			if err != nil {
				return err
			}
			deploys, err := store.ListDeploymentsByRun(ctx, run.ID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(struct {
					Run            *stores.Run             `json:"run"`
					FuseExecutions []*stores.FuseExecution `json:"fuse_executions"`
					Deployments    []*stores.Deployment    `json:"deployments"`
				}{run, fuses, deploys})
			}

			fmt.Printf("Run %s\n", run.ID)
			fmt.Printf("  Session:  %s\n", run.SessionID)
			fmt.Printf("  Mode:     %s\n", run.Mode)
			fmt.Printf("  Status:   %s\n", run.Status)
			fmt.Printf("  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("  Duration: %dms\n", run.DurationMS)
			if run.Error != nil {
				fmt.Printf("  Error:    %s\n", *run.Error)
			}
			if run.Source != "" {
				fmt.Println("  Source:")
				for _, line := range strings.Split(strings.TrimRight(run.Source, "\n"), "\n") {
					fmt.Printf("    %s\n", line)
				}
			}

			if len(fuses) > 0 {
				fmt.Println("Fuse executions:")
				for _, exec := range fuses {
					detail := fmt.Sprintf("%dms", exec.DurationMS)
					if exec.Cached {
						detail = "cached"
					}
					if exec.Error != nil {
						detail += ", error: " + *exec.Error
					}
					fmt.Printf("  [%s] %s (%s)\n", exec.Language, shortHash(exec.Hash), detail)
				}
			}

			if len(deploys) > 0 {
				fmt.Println("Deployments:")
				for _, dep := range deploys {
					line := fmt.Sprintf("  %s: %s after %d attempt(s) (%dms)",
						dep.Sink, dep.Status, dep.Attempts, dep.DurationMS)
					if dep.Error != nil {
						line += ", error: " + *dep.Error
					}
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	return cmd
}

func newHistoryPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Long: `Delete all but the most recent runs. Fuse executions and
deployments of pruned runs are removed with them.`,
		Example: `  # Keep the 50 most recent runs
  rift history prune --keep 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openConfiguredStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.PruneRuns(ctx, keep)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d runs\n", removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 100, "most recent runs to retain")

	return cmd
}

// openConfiguredStore opens the history database for inspection
// commands. Unlike program execution, a missing or broken database is
// an error here.
func openConfiguredStore(ctx context.Context) (stores.Store, error) {
	cfg, err := config.LoadIfPresent(configFilePath())
	if err != nil {
		return nil, err
	}
	return openHistoryStore(ctx, cfg)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
