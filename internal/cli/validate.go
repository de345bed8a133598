package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/axondata/go-svcspec"
)

// Color setup for formatting
var (
	errorColor   = color.New(color.FgRed, color.Bold)
	fileColor    = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
)

func newValidateCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate spec files without printing bundles",
		Long: `Validate every service and group in one or more spec files. Each
service is reported as passing or failing; the command exits non-zero when any
service fails.

Examples:
  svcspec validate services.yaml workers.toml

  # Only report failures
  svcspec validate --quiet services.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := layoutFromViper(a.v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				fileColor.Fprintln(out, path)

				f, err := svcspec.LoadFile(path)
				if err != nil {
					failed++
					errorColor.Fprintf(out, "  ✗ %v\n", err)
					continue
				}

				entries, err := f.Entries()
				if err != nil {
					failed++
					errorColor.Fprintf(out, "  ✗ %v\n", err)
					continue
				}

				for _, e := range entries {
					if _, err := svcspec.Compile(e.Name, e.Raw, svcspec.WithLayout(layout), svcspec.WithLogger(a.logger)); err != nil {
						failed++
						errorColor.Fprintf(out, "  ✗ %s: %v\n", e.Name, err)
						continue
					}
					if !quiet {
						successColor.Fprintf(out, "  ✓ %s\n", e.Name)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d validation failure(s)", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report failures")

	return cmd
}
