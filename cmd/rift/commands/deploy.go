package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/riftlang/rift/pkg/lang"
)

func newDeployCommand() *cobra.Command {
	var (
		file      string
		setValues []string
	)

	cmd := &cobra.Command{
		Use:   "deploy <selector>",
		Short: "Deploy compiled rifts to sinks",
		Long: `Compile the registered rifts into a payload and ship it to every
sink the selector matches.

This command:
  - Executes the source file when --file is given
  - Gates every matched sink through the deploy policy
  - Fans the payload out concurrently with per-sink retries
  - Records each sink outcome in history when enabled

Selectors: "all" targets every sink; any other selector targets the
sinks whose names it contains (local, ethereum, solana, aws).`,
		Example: `  # Execute a program, then deploy everything locally
  rift deploy local --file app.rift

  # Deploy to ethereum with sink configuration
  rift deploy ethereum --file app.rift --set api_key=xyz --set contract=0x123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := args[0]
			sinkConfig, err := parseSetFlags(setValues)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := rt.context(cmd.Context())

			if file != "" {
				if err := runFile(ctx, rt, file); err != nil {
					return err
				}
			}

			// Config values may hold credentials; only the selector is
			// recorded as the run's source.
			program := &lang.Program{Children: []lang.Node{
				&lang.Deploy{Selector: selector, Config: sinkConfig},
			}}
			if err := rt.session.Run(ctx, program, "exec", fmt.Sprintf("@deploy %q", selector)); err != nil {
				return err
			}

			log.Info().Str("selector", selector).Msg("Deployment succeeded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "program to execute before deploying")
	cmd.Flags().StringArrayVar(&setValues, "set", nil, "sink configuration as key=value (repeatable)")

	return cmd
}

// parseSetFlags turns repeated key=value flags into a deploy config map.
func parseSetFlags(values []string) (map[string]string, error) {
	config := make(map[string]string, len(values))
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q, want key=value", kv)
		}
		config[key] = value
	}
	return config, nil
}
