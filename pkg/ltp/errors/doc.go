// Package errors provides the failure types shared by the cleaning, parsing
// and translation stages.
//
// # Error Types
//
// ErrorTypeDelimiter: a bracket scan started on a non-bracket or ran off the
// end of the text
//
// ErrorTypeCleaning: a macro is missing one of its required arguments
//
// ErrorTypeSyntax: the parser met a token it cannot accept
//
// ErrorTypeTranslation: the tree contains an unknown node kind, function
// name, environment type, a determinant of unsupported order, or a function
// with the wrong number of arguments
//
// ErrorTypeInternal: a safety limit was hit (cleaning did not converge,
// nesting too deep)
//
// Every concrete error unwraps to one of the sentinel values (ErrDelimiterStart,
// ErrUnbalancedDelimiter, ErrMissingArgument, ...) so callers can match with
// errors.Is, and TypeOf maps any error in a chain to its ErrorType.
//
// # Context
//
// Positional errors carry up to ContextLength characters of the text starting
// at the failing position:
//
//	err := &errors.DelimiterError{
//	    Reason:   errors.ErrUnbalancedDelimiter,
//	    Position: 4,
//	    Context:  errors.ContextAt(text, 4),
//	}
//	fmt.Println(err) // Missing closing brace: {2x+3
//
// # Suggestions
//
// Unknown names get a "did you mean" hint built with fuzzy matching:
//
//	errors.SuggestName("fractoin", []string{"fraction", "sqrt"})
//	// Returns: "Did you mean 'fraction'?"
package errors
