package ltp

import (
	"errors"
	"fmt"

	"mercator-hq/texsolve/pkg/ltp/ast"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// Error is the single user-facing failure returned by Convert. Message is
// safe to show to end users; Cause holds the stage error for diagnostics.
type Error struct {
	Type     ltpErrors.ErrorType
	Message  string
	Cause    error
	Position int      // Byte offset of the failure, -1 if unknown
	Node     ast.Node // Offending node for translation failures
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the stage error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// genericMessage is shown for failures that must not leak detail.
const genericMessage = "Error."

// Normalize converts any pipeline error into an *Error. text is the input of
// the failing stage and is used for the syntax error context window. An
// *Error is returned unchanged; nil yields nil.
func Normalize(err error, text string) *Error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	out := &Error{
		Type:     ltpErrors.TypeOf(err),
		Cause:    err,
		Position: -1,
	}

	var (
		delimErr  *ltpErrors.DelimiterError
		cleanErr  *ltpErrors.CleaningError
		syntaxErr *ltpErrors.SyntaxError
		transErr  *ltpErrors.TranslationError
	)

	switch out.Type {
	case ltpErrors.ErrorTypeCleaning:
		if errors.As(err, &cleanErr) {
			out.Position = cleanErr.Position
		}
		out.Message = "Error: " + err.Error()

	case ltpErrors.ErrorTypeDelimiter:
		if errors.As(err, &delimErr) {
			out.Position = delimErr.Position
		}
		out.Message = "Error: " + err.Error()

	case ltpErrors.ErrorTypeSyntax:
		errors.As(err, &syntaxErr)
		out.Position = syntaxErr.Start
		out.Message = fmt.Sprintf("Error: Unexpected token \"%s\" at line %d, column %d, within context: %s",
			syntaxErr.Found, syntaxErr.Line, syntaxErr.Column, syntaxContext(text, syntaxErr))

	case ltpErrors.ErrorTypeTranslation:
		if errors.As(err, &transErr) {
			out.Node = transErr.Node
			if transErr.Node != nil && transErr.Node.Pos().IsValid() {
				out.Position = transErr.Node.Pos().Start
			}
		}
		out.Message = "Error: " + err.Error()

	default:
		out.Message = genericMessage
	}

	return out
}

// syntaxContext returns the text from the start of the offending token to
// ContextLength characters past its end.
func syntaxContext(text string, err *ltpErrors.SyntaxError) string {
	start := err.Start
	end := err.End + ltpErrors.ContextLength + 1
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}
