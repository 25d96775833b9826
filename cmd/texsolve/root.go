package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/telemetry/logging"
)

// rootOptions carries the persistent flags and what PersistentPreRunE loads
// from them.
type rootOptions struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

// reportedError marks a failure whose details were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "texsolve",
		Short: "Convert LaTeX-style math markup to solver syntax",
		Long: `texsolve converts LaTeX-style math markup into the plain syntax accepted by
the solver.

Conversion runs in three stages: the markup is cleaned of presentation-only
commands, parsed into an expression tree and translated. Failures are
reported as delimiter, cleaning, syntax or translation errors.

Conversions run from the command line, through the HTTP API (serve) or on
file changes (watch), and are recorded in the conversion history.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "texsolve.yaml", "config file path (defaults apply when missing)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &cli.UsageError{Message: err.Error()}
	})

	cmd.AddCommand(
		newConvertCmd(opts),
		newCleanCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration and installs the process logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Initialize(o.cfgFile)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	o.cfg = cfg
	o.logger = logger.Slog()
	o.logger.Debug("configuration loaded", "path", o.cfgFile)
	return nil
}

// Execute runs the command line and returns the process exit code. Signals
// cancel the command context.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitOK
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(stderr, cli.Message(err))
	}
	return cli.ExitCode(err)
}

// usageArgs wraps a cobra argument validator so violations exit as usage
// errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &cli.UsageError{Message: err.Error()}
		}
		return nil
	}
}
