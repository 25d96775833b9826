// Package ltp converts LaTeX-like math markup into flat solver syntax.
//
// Conversion runs three stages and stops at the first failure:
//
//	source --cleaner--> cleaned text --parser--> syntax tree --translator--> output
//
// The cleaner (package cleaner) strips presentation markup and canonicalizes
// operators, the parser (package parser) builds the tree defined in package
// ast, and the translator (package translator) emits the solver syntax.
//
// # Basic Usage
//
//	out, err := ltp.Convert(`\frac{2}{3}`)
//	if err != nil {
//	    fmt.Println(err) // user-facing message, e.g. "Error: Missing arguments:\textcolor"
//	    return
//	}
//	fmt.Println(out) // {{2}/{3}}
//
// # Errors
//
// Every failure is normalized into a single *Error. Delimiter, cleaning,
// syntax and translation failures get a message starting with "Error: ";
// syntax errors also show the offending token, its line and column and a
// window of the cleaned text. Internal failures and anything unrecognized
// get the generic message "Error." with the cause kept in Error.Cause.
package ltp
