// Package cli implements the svcspec command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/axondata/go-svcspec"
	"github.com/axondata/go-svcspec/internal/logger"
)

// app holds state shared by all subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
}

// compiler builds a batch compiler from the current configuration
func (a *app) compiler() (*svcspec.Compiler, error) {
	layout, err := layoutFromViper(a.v)
	if err != nil {
		return nil, err
	}
	return svcspec.NewCompiler(
		svcspec.WithConcurrency(a.v.GetInt(keyConcurrency)),
		svcspec.WithCompilerLayout(layout),
		svcspec.WithCompilerLogger(a.logger),
	), nil
}

// NewRootCmd returns the svcspec command with all subcommands attached
func NewRootCmd() *cobra.Command {
	a := &app{v: newViper(), logger: zap.NewNop()}
	info := svcspec.GetVersion()

	root := &cobra.Command{
		Use:   "svcspec",
		Short: "Compile daemontools service specifications",
		Long: `svcspec compiles declarative service specifications into the run
scripts, supervision symlinks, control commands and sudo grants needed to run
them under daemontools. It never runs anything itself: the output is meant for
a configuration management engine to apply.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(a.v, a.cfgFile); err != nil {
				return err
			}
			level, format := logger.FromEnv(a.v.GetString(keyLogLevel), a.v.GetString(keyLogFormat))
			a.logger = logger.New(cmd.ErrOrStderr(), level, logger.ParseFormat(format))
			return nil
		},
	}

	root.SetVersionTemplate("svcspec {{.Version}} for " + info.Supervisor + "\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file with layout overrides")
	flags.String("log-level", "", "log level: debug, info, warn, error (default $LOGGING_LEVEL or info)")
	flags.String("log-format", "", "log format: console or json (default $LOGGING_FORMAT or console)")
	flags.Int("concurrency", 10, "maximum number of services compiled at once")
	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(keyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(keyConcurrency, flags.Lookup("concurrency"))

	root.AddCommand(newCompileCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newWorkersCmd())
	root.AddCommand(newWatchCmd(a))

	return root
}

// Execute runs the svcspec command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
