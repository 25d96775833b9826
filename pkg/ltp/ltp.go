package ltp

import (
	"context"

	"mercator-hq/texsolve/pkg/ltp/ast"
	"mercator-hq/texsolve/pkg/ltp/cleaner"
	"mercator-hq/texsolve/pkg/ltp/parser"
	"mercator-hq/texsolve/pkg/ltp/translator"
)

// Options configures a Converter. Zero values select the stage defaults.
type Options struct {
	// MaxCleanPasses bounds the cleaning fixpoint loop.
	MaxCleanPasses int

	// MaxDepth bounds parser and translator nesting.
	MaxDepth int
}

// Result is a successful conversion together with what the stages saw.
type Result struct {
	Output      string
	Cleaned     string
	CleanPasses int
	Nodes       int
}

// Converter runs the clean, parse and translate pipeline.
// A Converter is immutable and safe for concurrent use.
type Converter struct {
	cleaner    *cleaner.Cleaner
	parser     *parser.Parser
	translator *translator.Translator
}

// New creates a converter with the given options.
func New(opts Options) *Converter {
	return &Converter{
		cleaner:    cleaner.New().WithMaxIterations(opts.MaxCleanPasses),
		parser:     parser.New().WithMaxDepth(opts.MaxDepth),
		translator: translator.New().WithMaxDepth(opts.MaxDepth),
	}
}

// NewConverter creates a converter with default options.
func NewConverter() *Converter {
	return New(Options{})
}

// Convert converts markup to solver syntax. On failure it returns an empty
// string and a *Error.
func (c *Converter) Convert(source string) (string, error) {
	res, err := c.ConvertDetailed(source)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// ConvertDetailed is like Convert but also reports the cleaned text, the
// number of cleaning passes and the size of the tree.
func (c *Converter) ConvertDetailed(source string) (*Result, error) {
	cleaned, passes, err := c.Clean(source)
	if err != nil {
		return nil, Normalize(err, source)
	}

	root, err := c.Parse(cleaned)
	if err != nil {
		return nil, Normalize(err, cleaned)
	}

	out, err := c.Translate(root)
	if err != nil {
		return nil, Normalize(err, cleaned)
	}

	return &Result{
		Output:      out,
		Cleaned:     cleaned,
		CleanPasses: passes,
		Nodes:       ast.Count(root),
	}, nil
}

// ConvertContext is like Convert but stops between stages once ctx is done,
// returning ctx.Err() unwrapped.
func (c *Converter) ConvertContext(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleaned, _, err := c.Clean(source)
	if err != nil {
		return "", Normalize(err, source)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	root, err := c.Parse(cleaned)
	if err != nil {
		return "", Normalize(err, cleaned)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := c.Translate(root)
	if err != nil {
		return "", Normalize(err, cleaned)
	}
	return out, nil
}

// Clean runs only the cleaning stage and reports the number of passes.
// Errors are returned raw; see Normalize.
func (c *Converter) Clean(source string) (string, int, error) {
	return c.cleaner.CleanWithPasses(source)
}

// Parse runs only the parsing stage on cleaned text.
func (c *Converter) Parse(cleaned string) (*ast.Root, error) {
	return c.parser.Parse(cleaned)
}

// Translate runs only the translation stage.
func (c *Converter) Translate(root *ast.Root) (string, error) {
	return c.translator.Translate(root)
}

var defaultConverter = NewConverter()

// Convert converts markup with the default converter.
func Convert(source string) (string, error) {
	return defaultConverter.Convert(source)
}
