package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axondata/go-svcspec"
)

func newCompileCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a spec file into artifact bundles",
		Long: `Compile every service and group in a YAML or TOML spec file and print
the resulting bundles. Services that fail validation are reported and left out;
the others are still printed.

Examples:
  # Print bundles as YAML
  svcspec compile services.yaml

  # Print bundles as JSON
  svcspec compile --format json services.toml

  # Also write run scripts, down markers and symlinks below ./root
  svcspec compile --out ./root services.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundles, compileErr := compileFile(cmd, a, args[0])

			if outDir != "" {
				for _, b := range bundles {
					if err := svcspec.Export(b, outDir); err != nil {
						return fmt.Errorf("exporting %s: %w", b.Service.Name, err)
					}
				}
				a.logger.Info("Exported bundles", zap.String("root", outDir), zap.Int("bundles", len(bundles)))
			}

			if err := svcspec.Encode(cmd.OutOrStdout(), svcspec.Format(format), bundles); err != nil {
				return err
			}
			return compileErr
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(svcspec.FormatYAML), "output format: yaml or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "export files and symlinks below this directory")

	return cmd
}

// compileFile compiles every entry of a spec file, returning the bundles that
// compiled and an error describing those that did not
func compileFile(cmd *cobra.Command, a *app, path string) ([]*svcspec.Bundle, error) {
	compiler, err := a.compiler()
	if err != nil {
		return nil, err
	}

	f, err := svcspec.LoadFile(path)
	if err != nil {
		return nil, err
	}

	entries, err := f.Entries()
	if err != nil {
		return nil, err
	}

	bundles, err := compiler.CompileAll(cmd.Context(), entries)

	compiled := make([]*svcspec.Bundle, 0, len(bundles))
	for _, b := range bundles {
		if b != nil {
			compiled = append(compiled, b)
		}
	}
	return compiled, err
}
