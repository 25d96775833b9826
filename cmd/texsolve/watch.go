package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/watch"
)

type watchOptions struct {
	once   bool
	suffix string
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Convert markup files as they change",
		Long: `Watch a directory tree and convert markup files whenever they are written.

Each <name>.tex is converted to <name>.solver next to it. When a conversion
fails, <name>.err holds the error message instead. Existing files are
converted once at startup.

Examples:
  # Watch the configured directory
  texsolve watch

  # Convert everything under ./problems once and exit
  texsolve watch ./problems --once`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.once, "once", false, "convert existing files and exit")
	cmd.Flags().StringVar(&opts.suffix, "suffix", "", "override the output file suffix")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions, args []string) error {
	cfg := root.cfg.Watch
	if len(args) == 1 {
		cfg.Dir = args[0]
	}
	if opts.suffix != "" {
		cfg.Suffix = opts.suffix
	}

	pipe, err := root.newPipeline(nil, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipe.Close(); err != nil {
			root.logger.Warn("failed to close history", "error", err)
		}
	}()

	w, err := watch.New(&cfg, pipe.engine, root.logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	var (
		mu     sync.Mutex
		failed int
	)
	w.OnResult = func(res watch.Result) {
		mu.Lock()
		defer mu.Unlock()
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %s\n", res.Source, cli.Message(res.Err))
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s -> %s\n", res.Source, res.Output)
	}

	if opts.once {
		defer w.Close()
		total, err := w.ConvertAll(cmd.Context())
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		if failed > 0 {
			return &reportedError{err: fmt.Errorf("%d of %d files failed to convert", failed, total)}
		}
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.Dir)
	if err := w.Run(cmd.Context()); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}
