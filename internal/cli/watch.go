package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axondata/go-svcspec"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Recompile a spec file whenever it changes",
		Long: `Compile a spec file, then recompile it each time it is written. Every
compilation prints the bundles; with --out the files are exported as well.
Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compiler, err := a.compiler()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, cleanup, err := svcspec.Watch(ctx, args[0], compiler)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-events:
					if !ok {
						return nil
					}
					if event.Err != nil {
						a.logger.Error("Compilation failed", zap.Error(event.Err))
					}

					var compiled []*svcspec.Bundle
					for _, b := range event.Bundles {
						if b == nil {
							continue
						}
						compiled = append(compiled, b)
						if outDir != "" {
							if err := svcspec.Export(b, outDir); err != nil {
								a.logger.Error("Export failed", zap.String("service", b.Service.Name), zap.Error(err))
							}
						}
					}

					if err := svcspec.Encode(cmd.OutOrStdout(), svcspec.Format(format), compiled); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(svcspec.FormatYAML), "output format: yaml or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "export files and symlinks below this directory")

	return cmd
}
