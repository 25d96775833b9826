// Package ast defines the syntax tree produced by the parser and consumed by
// the translator.
//
// The tree is a closed tagged variant: every node implements Node and reports
// its Kind. The set of node types is fixed:
//
// Root: the whole input, a sequence of top-level expressions
//
// Expression: a run of nodes, optionally wrapped in a bracket pair
//
// Function: a registered construct (fraction, root, logarithm...) with
// arguments and an optional exponent
//
// Calcunit: literal text that needs no structural translation
//
// Character: a single literal character
//
// Environment: a \begin{...}\end{...} block (system of equations, matrix)
//
// # Basic Usage
//
//	root, err := parser.Parse(`\frac{2}{3}`)
//	if err != nil {
//	    return err
//	}
//
//	err = ast.Walk(root, func(n ast.Node) error {
//	    if fn, ok := n.(*ast.Function); ok {
//	        fmt.Println("function:", fn.Name)
//	    }
//	    return nil
//	})
//
// Nodes record the byte span they were parsed from so diagnostics can point
// back into the cleaned text. Hand-built trees may leave spans zero.
package ast
