package cleaner

import (
	"fmt"

	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// DefaultMaxIterations bounds the number of full rule passes.
const DefaultMaxIterations = 64

// Rule is a single text rewrite. Apply must be pure.
type Rule struct {
	Name  string
	Apply func(text string) (string, error)
}

// Cleaner applies the rule set until the text reaches a fixpoint.
// A Cleaner is immutable after configuration and safe for concurrent use.
type Cleaner struct {
	maxIterations int
	rules         []Rule
}

// New creates a cleaner with the default rule set and iteration bound.
func New() *Cleaner {
	return &Cleaner{
		maxIterations: DefaultMaxIterations,
		rules:         defaultRules(),
	}
}

// WithMaxIterations sets the maximum number of full rule passes.
// Values below 1 are ignored.
func (c *Cleaner) WithMaxIterations(n int) *Cleaner {
	if n > 0 {
		c.maxIterations = n
	}
	return c
}

// MaxIterations returns the configured pass bound.
func (c *Cleaner) MaxIterations() int {
	return c.maxIterations
}

// RuleNames returns the names of the rules in application order.
func (c *Cleaner) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Clean returns the fixpoint of the rule set applied to text.
func (c *Cleaner) Clean(text string) (string, error) {
	cleaned, _, err := c.CleanWithPasses(text)
	return cleaned, err
}

// CleanWithPasses is like Clean and also reports how many full passes ran,
// including the final pass that confirmed the fixpoint.
func (c *Cleaner) CleanWithPasses(text string) (string, int, error) {
	current := text
	for pass := 1; pass <= c.maxIterations; pass++ {
		next, err := c.applyRules(current)
		if err != nil {
			return "", pass, err
		}
		if next == current {
			return next, pass, nil
		}
		current = next
	}

	return "", c.maxIterations, &ltpErrors.InternalError{
		Reason: ltpErrors.ErrNonConvergence,
		Detail: fmt.Sprintf("text still changing after %d passes", c.maxIterations),
	}
}

// applyRules runs every rule once, in order.
func (c *Cleaner) applyRules(text string) (string, error) {
	var err error
	for _, rule := range c.rules {
		text, err = rule.Apply(text)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

var defaultCleaner = New()

// Clean cleans text with the default cleaner.
func Clean(text string) (string, error) {
	return defaultCleaner.Clean(text)
}
