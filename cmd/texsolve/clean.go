package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/engine"
)

type cleanOptions struct {
	input  inputFlags
	format string
}

func newCleanCmd(root *rootOptions) *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean [markup...]",
		Short: "Run only the cleaning stage",
		Long: `Strip presentation-only commands (colors, spacing, text boxes) from markup
and print the cleaned text without parsing it.

Examples:
  texsolve clean '\textcolor{primary}{2x+3}'
  texsolve clean --file problem.tex --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, root, opts, args)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json")
	return cmd
}

func runClean(cmd *cobra.Command, root *rootOptions, opts *cleanOptions, args []string) error {
	format, err := cli.ParseFormat(opts.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	inputs, err := opts.input.gather(cmd, args)
	if err != nil {
		return err
	}

	// Cleaning runs are not recorded, so no history is opened.
	eng := engine.New(&root.cfg.Converter, engine.WithLogger(root.logger))

	batch := len(inputs) > 1
	results := make([]conversionResult, 0, len(inputs))
	failed := 0
	for _, in := range inputs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		out, cleanErr := eng.Clean(cmd.Context(), engine.Request{Input: in.text, Origin: engine.OriginCLI})

		res := newConversionResult(in, out, cleanErr, true)
		res.Output = ""
		results = append(results, res)
		if cleanErr != nil {
			failed++
		}

		if format == cli.FormatText {
			prefix := label(in, batch)
			if cleanErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s%s\n", prefix, res.Error)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", prefix, out.Cleaned)
			}
		}
	}

	if format == cli.FormatJSON {
		var data any = results
		if len(results) == 1 {
			data = results[0]
		}
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), data); err != nil {
			return err
		}
	}

	if failed > 0 {
		return &reportedError{err: fmt.Errorf("%d of %d inputs failed to clean", failed, len(inputs))}
	}
	return nil
}
