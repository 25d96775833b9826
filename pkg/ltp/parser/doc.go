// Package parser turns cleaned markup into the syntax tree defined by
// package ast.
//
// The parser is a hand-written scanner and recursive-descent parser. It
// expects input that has already been through the cleaner: operators are
// plain characters, decorative macros are gone and & only appears inside
// matrix environments. Whitespace is insignificant.
//
// # Recognized Constructs
//
// Groups: {...}, (...) and [...] become bracketed expressions; |...| is abs.
//
// Fractions: \frac{a}{b} (also \dfrac, \tfrac); \frac{d}{dx} followed by an
// operand is a derivative.
//
// Roots: \sqrt{x} and \sqrt[n]{x}.
//
// Integrals: \int body dx and \int_a^b body dx.
//
// Limits: \lim_{x \to c} operand.
//
// Logarithms: \log_b x, \log x, \lg x and \ln x.
//
// Named functions: \sin, \cos, \tan (\tg), \cot (\ctg), \sec, \csc, the
// inverse and hyperbolic variants and \exp, each with an optional exponent
// such as \sin^2 x.
//
// Degrees: a value followed by ^\circ or ^{\circ}.
//
// Definitions: f(x)=... and f^{-1}(x)=... at the start of an expression.
//
// Environments: cases, align, aligned, gather, array and system become
// systems of equations; the matrix family becomes a determinant.
//
// # Basic Usage
//
//	root, err := parser.Parse(`\frac{2}{3}`)
//	if err != nil {
//	    var synErr *errors.SyntaxError
//	    if errors.As(err, &synErr) {
//	        fmt.Printf("line %d, column %d\n", synErr.Line, synErr.Column)
//	    }
//	    return err
//	}
//
// Anything else is rejected with a *errors.SyntaxError carrying byte offsets,
// line and column, the offending token and, for unknown commands, a
// "did you mean" suggestion.
package parser
