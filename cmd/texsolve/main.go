// Texsolve converts LaTeX-style math markup into solver syntax.
//
// Usage:
//
//	# Convert expressions given as arguments
//	texsolve convert '\frac{2}{3}' 'x^2+1'
//
//	# Convert markup files or standard input
//	texsolve convert --file problem.tex
//	echo '\sqrt{x}' | texsolve convert --stdin
//
//	# Run the HTTP API
//	texsolve serve --config texsolve.yaml
//
//	# Convert .tex files as they change
//	texsolve watch ./problems
//
//	# Inspect the conversion history
//	texsolve history list --status error --since 24h
package main

import "os"

func main() {
	os.Exit(Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
