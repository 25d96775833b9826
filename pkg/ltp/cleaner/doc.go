// Package cleaner strips presentation-only markup from LaTeX-like input and
// canonicalizes operators so the parser only sees constructs it understands.
//
// Cleaning applies an ordered rule set to the whole text and repeats until a
// pass leaves the text unchanged. Later rules see the effect of earlier ones,
// and any rule may expose text that an earlier rule handles on the next
// pass; for example the \text inside \textcolor{primary}{5\text{in}} only
// becomes visible once \textcolor has been replaced by its second argument.
//
// # Rules
//
// Macro rules match whole names only: \text does not touch \textbf.
//
//  1. \textcolor{c}{x} is replaced by x
//  2. \cdot and \times become *, \div becomes /, \leq \lt \geq \gt become
//     <= < >= > (case-insensitive)
//  3. \left and \right are removed
//  4. \text{...} is removed together with its argument
//  5. spacing hints such as [6pt] are removed
//  6. & becomes a space, except inside matrix environments
//  7. , is removed, except in the spacing command \,
//
// # Basic Usage
//
//	cleaned, err := cleaner.Clean(`\textcolor{primary}{2x+3}\leq 5`)
//	// cleaned == "2x+3<= 5"
//
// The number of passes is bounded; text that keeps changing fails with an
// internal non-convergence error instead of looping forever.
package cleaner
