package parser

import (
	"fmt"
	"sort"

	"mercator-hq/texsolve/pkg/ltp/ast"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// environments maps markup environment names to environment types.
var environments = map[string]ast.EnvironmentType{
	"cases":    ast.EnvSystem,
	"align":    ast.EnvSystem,
	"align*":   ast.EnvSystem,
	"aligned":  ast.EnvSystem,
	"gather":   ast.EnvSystem,
	"gather*":  ast.EnvSystem,
	"gathered": ast.EnvSystem,
	"array":    ast.EnvSystem,
	"system":   ast.EnvSystem,

	"matrix":      ast.EnvDeterminant,
	"pmatrix":     ast.EnvDeterminant,
	"bmatrix":     ast.EnvDeterminant,
	"Bmatrix":     ast.EnvDeterminant,
	"vmatrix":     ast.EnvDeterminant,
	"Vmatrix":     ast.EnvDeterminant,
	"smallmatrix": ast.EnvDeterminant,
}

func environmentNames() []string {
	names := make([]string, 0, len(environments))
	for name := range environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseEnvironment parses \begin{name} ... \end{name}. Systems yield one
// expression per row; determinants yield one expression per cell in
// row-major order. Empty rows are dropped.
func (s *state) parseEnvironment() (*ast.Environment, error) {
	begin := s.next()

	name, nameStart, err := s.parseEnvironmentName()
	if err != nil {
		return nil, err
	}
	envType, ok := environments[name]
	if !ok {
		synErr := newSyntaxError(s.text, nameStart, s.lastEnd(), name, fmt.Sprintf("unsupported environment %q", name))
		synErr.Suggestion = ltpErrors.SuggestName(name, environmentNames())
		return nil, synErr
	}

	// Column specification, as in \begin{array}{cc}.
	if name == "array" && s.peek().Kind == tokLBrace {
		if _, err := s.parseGroup(); err != nil {
			return nil, err
		}
	}

	matrix := envType == ast.EnvDeterminant
	stop := func(s *state) bool {
		k := s.peek().Kind
		return k == tokRowBreak || (matrix && k == tokAmpersand) || s.isMacro(0, "end")
	}

	env := &ast.Environment{EnvType: envType}
	var row []*ast.Expression
	for {
		start := s.peek().Start
		nodes, err := s.parseSequence(stop, !matrix)
		if err != nil {
			if synErr, ok := err.(*ltpErrors.SyntaxError); ok && s.peek().Kind == tokEOF {
				synErr.Message = fmt.Sprintf(`missing \end{%s}`, name)
			}
			return nil, err
		}
		row = append(row, &ast.Expression{
			BracketType: ast.BracketNone,
			Nodes:       nodes,
			Span:        ast.Span{Start: start, End: s.peek().Start},
		})

		sep := s.next()
		if sep.Kind == tokAmpersand {
			continue
		}
		if !(len(row) == 1 && len(row[0].Nodes) == 0) {
			env.Expressions = append(env.Expressions, row...)
		}
		row = nil
		if sep.Kind == tokMacro {
			break
		}
	}

	endName, endStart, err := s.parseEnvironmentName()
	if err != nil {
		return nil, err
	}
	if endName != name {
		return nil, newSyntaxError(s.text, endStart, s.lastEnd(), endName,
			fmt.Sprintf(`\begin{%s} ended by \end{%s}`, name, endName))
	}

	env.Span = ast.Span{Start: begin.Start, End: s.lastEnd()}
	return env, nil
}

// parseEnvironmentName parses {name} after \begin or \end.
func (s *state) parseEnvironmentName() (string, int, error) {
	if _, err := s.expect(tokLBrace); err != nil {
		return "", 0, err
	}
	start := s.peek().Start
	var name string
	for s.peek().Kind == tokChar {
		name += s.next().Text
	}
	if _, err := s.expect(tokRBrace); err != nil {
		return "", 0, err
	}
	return name, start, nil
}
