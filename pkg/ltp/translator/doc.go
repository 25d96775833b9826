// Package translator emits solver syntax for a syntax tree.
//
// Translation is a post-order walk. Literal text is copied unchanged,
// bracketed expressions are re-wrapped in their brackets, and functions are
// formatted from their translated arguments through a fixed rule per
// function name:
//
//	fraction               {{a}/{b}}
//	sqrt                   root2(x) or root(n, x)
//	integral               integral(f, x) or definiteintegral(a, b, f, x)
//	logarithm              log(b, x)
//	logarithm_10           log10(x)
//	logarithm_ln           ln(x)
//	regular                name(x)
//	abs                    abs(x)
//	derivative             derivation(x, f)
//	latex_function         function(f, x)=body
//	latex_function_inverse function_inverse(f, x)=body
//	binomial               choose(n, k)
//	limit                  lim(x, c, f)
//	mean                   mean(x)
//	degrees                deg(x)
//
// A translated argument starting with { or [ loses one layer of brackets
// before formatting. A function with an exponent becomes {base}^exponent.
//
// Systems of equations become system(e1,e2,...). Matrices become det2(...)
// with four cells or det3(...) with nine; any other cell count is an error.
//
// # Basic Usage
//
//	out, err := translator.Translate(root)
//
// Unknown function names, environment types, wrong argument counts and
// unsupported determinant sizes fail with a *errors.TranslationError holding
// the offending node.
package translator
