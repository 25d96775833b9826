package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"mercator-hq/texsolve/pkg/ltp/ast"
)

// ErrorType categorizes failures by the pipeline stage that produced them.
type ErrorType string

const (
	ErrorTypeDelimiter   ErrorType = "delimiter"   // Bracket scan failure
	ErrorTypeCleaning    ErrorType = "cleaning"    // Missing macro argument
	ErrorTypeSyntax      ErrorType = "syntax"      // Parser rejected the cleaned text
	ErrorTypeTranslation ErrorType = "translation" // Unknown or malformed tree construct
	ErrorTypeInternal    ErrorType = "internal"    // Safety limit exceeded
	ErrorTypeUnknown     ErrorType = "unknown"     // Not produced by this module
)

// ContextLength is the number of characters of trailing context attached to
// positional errors.
const ContextLength = 10

var (
	ErrDelimiterStart              = stderrors.New("expression not starting with a bracket was sent to bracket parser")
	ErrUnbalancedDelimiter         = stderrors.New("missing closing brace")
	ErrMissingArgument             = stderrors.New("missing arguments")
	ErrUnknownNodeKind             = stderrors.New("unknown node kind")
	ErrUnknownFunctionName         = stderrors.New("unknown function name")
	ErrUnknownEnvironmentType      = stderrors.New("unknown environment type")
	ErrUnsupportedDeterminantOrder = stderrors.New("unsupported determinant order")
	ErrArityMismatch               = stderrors.New("wrong number of arguments")
	ErrNonConvergence              = stderrors.New("cleaning did not converge")
	ErrDepthLimit                  = stderrors.New("nesting depth limit exceeded")
)

// ContextAt returns up to ContextLength characters of text starting at pos.
// Out-of-range positions yield an empty string.
func ContextAt(text string, pos int) string {
	if pos < 0 || pos >= len(text) {
		return ""
	}
	end := pos + ContextLength
	if end > len(text) {
		end = len(text)
	}
	return text[pos:end]
}

// DelimiterError reports a failed bracket scan.
type DelimiterError struct {
	Reason   error  // ErrDelimiterStart or ErrUnbalancedDelimiter
	Position int    // Index of the opening character
	Context  string // Text starting at Position
}

// Error implements the error interface.
func (e *DelimiterError) Error() string {
	if stderrors.Is(e.Reason, ErrUnbalancedDelimiter) {
		return "Missing closing brace: " + e.Context
	}
	return fmt.Sprintf("Expression not starting with a bracket was sent to bracket parser (position %d)", e.Position)
}

// Unwrap returns the sentinel reason.
func (e *DelimiterError) Unwrap() error {
	return e.Reason
}

// MissingArgumentError reports a macro invocation without enough brace
// arguments.
type MissingArgumentError struct {
	Macro    string // Macro name including the leading backslash
	Argument int    // 1-based index of the argument that was not found
	Position int    // Start of the macro invocation
}

// Error implements the error interface.
func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: argument %d of %s not found", ErrMissingArgument, e.Argument, e.Macro)
}

// Unwrap returns ErrMissingArgument.
func (e *MissingArgumentError) Unwrap() error {
	return ErrMissingArgument
}

// CleaningError wraps a cleaning failure with positional context.
type CleaningError struct {
	Position int
	Context  string
	Cause    error
}

// Error implements the error interface.
func (e *CleaningError) Error() string {
	return "Missing arguments:" + e.Context
}

// Unwrap returns the underlying cause.
func (e *CleaningError) Unwrap() error {
	return e.Cause
}

// NewCleaningError builds a CleaningError for a macro missing an argument.
func NewCleaningError(text, macro string, argument, pos int) *CleaningError {
	return &CleaningError{
		Position: pos,
		Context:  ContextAt(text, pos),
		Cause: &MissingArgumentError{
			Macro:    macro,
			Argument: argument,
			Position: pos,
		},
	}
}

// TranslationError reports a tree construct the translator cannot handle.
type TranslationError struct {
	Reason     error    // One of the translation sentinels
	Node       ast.Node // Offending node
	Detail     string   // Human readable detail
	Suggestion string   // Optional hint
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	var sb strings.Builder
	sb.WriteString("Unknown entity encountered")
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Suggestion != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Suggestion)
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the sentinel reason.
func (e *TranslationError) Unwrap() error {
	return e.Reason
}

// SyntaxError is returned by the parser. Offsets are byte offsets into the
// cleaned text; Line and Column are 1-based.
type SyntaxError struct {
	Message    string
	Start      int
	End        int
	Line       int
	Column     int
	Found      string
	Expected   []string
	Suggestion string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message))
	if len(e.Expected) > 0 {
		sb.WriteString(fmt.Sprintf(" (expected %s)", strings.Join(e.Expected, ", ")))
	}
	if e.Suggestion != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

// InternalError reports a safety limit being hit.
type InternalError struct {
	Reason error // ErrNonConvergence or ErrDepthLimit
	Detail string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%v: %s", e.Reason, e.Detail)
}

// Unwrap returns the sentinel reason.
func (e *InternalError) Unwrap() error {
	return e.Reason
}

// TypeOf returns the category of the first recognized error in err's chain.
func TypeOf(err error) ErrorType {
	var (
		delimErr  *DelimiterError
		cleanErr  *CleaningError
		missErr   *MissingArgumentError
		syntaxErr *SyntaxError
		transErr  *TranslationError
		intErr    *InternalError
	)

	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &cleanErr), stderrors.As(err, &missErr):
		return ErrorTypeCleaning
	case stderrors.As(err, &delimErr):
		return ErrorTypeDelimiter
	case stderrors.As(err, &syntaxErr):
		return ErrorTypeSyntax
	case stderrors.As(err, &transErr):
		return ErrorTypeTranslation
	case stderrors.As(err, &intErr):
		return ErrorTypeInternal
	default:
		return ErrorTypeUnknown
	}
}
