package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/ltp"
)

type convertOptions struct {
	input       inputFlags
	format      string
	showCleaned bool
	progress    bool
}

// conversionResult is the JSON form of one conversion.
type conversionResult struct {
	Source      string `json:"source"`
	Input       string `json:"input"`
	Output      string `json:"output,omitempty"`
	Cleaned     string `json:"cleaned,omitempty"`
	CleanPasses int    `json:"clean_passes,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorType   string `json:"error_type,omitempty"`
	Position    *int   `json:"position,omitempty"`
	RequestID   string `json:"request_id"`
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [markup...]",
		Short: "Convert markup to solver syntax",
		Long: `Convert LaTeX-style markup to solver syntax.

Each argument, file and standard input is converted separately. Failed
conversions print their error message and make the command exit with
status 1.

Examples:
  # Convert an expression
  texsolve convert '\frac{2}{3}'

  # Convert files, showing progress
  texsolve convert --file a.tex --file b.tex --progress

  # Convert standard input and print JSON with the cleaned markup
  echo '\textcolor{red}{x^2}' | texsolve convert --stdin --format json --show-cleaned`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, root, opts, args)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json")
	cmd.Flags().BoolVar(&opts.showCleaned, "show-cleaned", false, "also print the cleaned markup")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "report progress on stderr when converting several inputs")
	return cmd
}

func runConvert(cmd *cobra.Command, root *rootOptions, opts *convertOptions, args []string) error {
	format, err := cli.ParseFormat(opts.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	inputs, err := opts.input.gather(cmd, args)
	if err != nil {
		return err
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

	var progress cli.ProgressReporter
	if opts.progress && len(inputs) > 1 {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		progress.Start(int64(len(inputs)))
	}

	batch := len(inputs) > 1
	results := make([]conversionResult, 0, len(inputs))
	failed := 0
	for i, in := range inputs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		out, convErr := pipe.engine.Convert(cmd.Context(), engine.Request{
			Input:  in.text,
			Origin: engine.OriginCLI,
		})

		res := newConversionResult(in, out, convErr, opts.showCleaned)
		results = append(results, res)
		if convErr != nil {
			failed++
		}

		if format == cli.FormatText {
			printConversion(cmd, in, res, batch, opts.showCleaned)
		}
		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}
	if progress != nil {
		progress.Finish()
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
		return &reportedError{err: fmt.Errorf("%d of %d conversions failed", failed, len(inputs))}
	}
	return nil
}

func newConversionResult(in input, out *engine.Outcome, err error, showCleaned bool) conversionResult {
	res := conversionResult{
		Source:    in.source,
		Input:     in.text,
		Output:    out.Output,
		RequestID: out.RequestID,
	}
	if showCleaned {
		res.Cleaned = out.Cleaned
		res.CleanPasses = out.CleanPasses
	}
	if err != nil {
		res.Error = cli.Message(err)
		res.ErrorType = engine.ErrorType(err)
		var convErr *ltp.Error
		if errors.As(err, &convErr) && convErr.Position >= 0 {
			pos := convErr.Position
			res.Position = &pos
		}
	}
	return res
}

// printConversion writes a text result: output to stdout, errors to stderr.
func printConversion(cmd *cobra.Command, in input, res conversionResult, batch, showCleaned bool) {
	prefix := label(in, batch)
	if showCleaned && res.Cleaned != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%scleaned: %s\n", prefix, res.Cleaned)
	}
	if res.Error != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s%s\n", prefix, res.Error)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", prefix, res.Output)
}
