package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/texsolve/pkg/cli"
)

// inputFlags selects where markup is read from.
type inputFlags struct {
	files []string
	stdin bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "read markup from file (repeatable)")
	cmd.Flags().BoolVar(&f.stdin, "stdin", false, "read markup from standard input")
}

// input is one piece of markup and where it came from.
type input struct {
	source string // "arg", "stdin" or a file path
	text   string
}

// gather collects inputs in order: arguments, then files, then stdin.
// Surrounding whitespace is trimmed from file and stdin contents.
func (f *inputFlags) gather(cmd *cobra.Command, args []string) ([]input, error) {
	var inputs []input
	for _, arg := range args {
		inputs = append(inputs, input{source: "arg", text: arg})
	}

	for _, path := range f.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, input{source: path, text: strings.TrimSpace(string(data))})
	}

	if f.stdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		inputs = append(inputs, input{source: "stdin", text: strings.TrimSpace(string(data))})
	}

	if len(inputs) == 0 {
		return nil, cli.NewUsageError("no input: pass markup as arguments, --file or --stdin")
	}
	return inputs, nil
}

// label prefixes batch output lines so results can be told apart.
func label(in input, batch bool) string {
	if !batch || in.source == "arg" {
		return ""
	}
	return in.source + ": "
}
