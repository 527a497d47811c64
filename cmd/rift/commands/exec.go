package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExecCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "exec <code>",
		Short: "Execute a single snippet",
		Long: `Execute one code snippet through the fuse pipeline and print its
output.

The snippet goes through the full pipeline: dependency resolution,
toolchain execution, and artifact caching. Identical code is served
from the cache without re-executing.`,
		Example: `  # Run a Python one-liner
  rift exec -l python "print(6 * 7)"

  # Run JavaScript
  rift exec -l javascript "console.log('hi')"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := rt.context(cmd.Context())

			output, err := rt.session.ExecuteFuse(ctx, language, args[0])
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Print(output)
				if !strings.HasSuffix(output, "\n") {
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "snippet language")
	cmd.MarkFlagRequired("language")

	return cmd
}
