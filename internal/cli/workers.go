package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/axondata/go-svcspec"
)

func newWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workers GROUP TEMPLATE COUNT",
		Short: "Print the worker names a service group expands to",
		Long: `Expand TEMPLATE once per worker index and print one
"<group>_<n>/<expansion>" name per line. The index is bound to dot.

Examples:
  svcspec workers queue '/usr/bin/worker --id {{.}}' 3
  svcspec workers web '/usr/bin/httpd --port {{add . 8000}}' 4`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid worker count %q: %w", args[2], err)
			}

			names, err := svcspec.GenerateWorkerNames(args[0], args[1], count)
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
