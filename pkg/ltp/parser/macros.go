package parser

import (
	"fmt"
	"sort"

	"mercator-hq/texsolve/pkg/ltp/ast"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// regularFunctions maps named function macros to the name emitted in the
// output. Aliases map to their canonical name.
var regularFunctions = map[string]string{
	"sin":    "sin",
	"cos":    "cos",
	"tan":    "tan",
	"tg":     "tan",
	"cot":    "cot",
	"ctg":    "cot",
	"sec":    "sec",
	"csc":    "csc",
	"arcsin": "arcsin",
	"arccos": "arccos",
	"arctan": "arctan",
	"sinh":   "sinh",
	"cosh":   "cosh",
	"tanh":   "tanh",
	"exp":    "exp",
}

// constants are macros that stand for a literal name.
var constants = map[string]string{
	"pi":      "pi",
	"infty":   "infty",
	"alpha":   "alpha",
	"beta":    "beta",
	"gamma":   "gamma",
	"delta":   "delta",
	"epsilon": "epsilon",
	"theta":   "theta",
	"lambda":  "lambda",
	"mu":      "mu",
	"sigma":   "sigma",
	"phi":     "phi",
	"omega":   "omega",
	"Delta":   "Delta",
}

// ignored macros only affect presentation.
var ignored = map[string]bool{
	"displaystyle": true,
	"textstyle":    true,
	"limits":       true,
	"quad":         true,
	"qquad":        true,
	",":            true,
	";":            true,
	":":            true,
	"!":            true,
	" ":            true,
}

// knownMacros returns every macro the parser accepts, for suggestions.
func knownMacros() []string {
	names := []string{
		"frac", "dfrac", "tfrac", "sqrt", "int", "lim", "log", "lg", "ln",
		"binom", "overline", "bar", "begin", "end", "circ", "to",
	}
	for name := range regularFunctions {
		names = append(names, name)
	}
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseMacro parses the construct introduced by the macro at the cursor.
// It returns a nil node for macros that produce no output.
func (s *state) parseMacro() (ast.Node, error) {
	t := s.peek()
	name := t.Text

	switch {
	case ignored[name]:
		s.next()
		return nil, nil

	case constants[name] != "":
		s.next()
		return newUnit(constants[name], ast.Span{Start: t.Start, End: t.End}), nil

	case regularFunctions[name] != "":
		return s.parseRegular()
	}

	switch name {
	case "frac", "dfrac", "tfrac":
		return s.parseFraction()
	case "sqrt":
		return s.parseSqrt()
	case "int":
		return s.parseIntegral()
	case "lim":
		return s.parseLimit()
	case "log", "lg", "ln":
		return s.parseLogarithm()
	case "binom":
		return s.parseFixed(ast.FuncBinomial, 2)
	case "overline", "bar":
		return s.parseFixed(ast.FuncMean, 1)
	case "begin":
		return s.parseEnvironment()
	}

	err := newSyntaxError(s.text, t.Start, t.End, t.display(), fmt.Sprintf("unsupported command %s", t.display()))
	err.Suggestion = ltpErrors.SuggestName(name, knownMacros())
	return nil, err
}

// parseFixed parses a macro followed by n script-style arguments.
func (s *state) parseFixed(name ast.FunctionName, n int) (*ast.Function, error) {
	macro := s.next()
	fn := &ast.Function{Name: name}
	for i := 0; i < n; i++ {
		arg, err := s.parseScriptArg()
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)
	}
	fn.Span = ast.Span{Start: macro.Start, End: s.lastEnd()}
	return fn, nil
}

// parseRegular parses \sin x, \cos^2{x} and similar named functions.
func (s *state) parseRegular() (*ast.Function, error) {
	macro := s.next()

	exponent, err := s.parseExponent()
	if err != nil {
		return nil, err
	}
	operand, err := s.parseOperand()
	if err != nil {
		return nil, err
	}

	return &ast.Function{
		Name: ast.FuncRegular,
		Args: []ast.Node{
			newUnit(regularFunctions[macro.Text], ast.Span{Start: macro.Start, End: macro.End}),
			operand,
		},
		Exponent: exponent,
		Span:     ast.Span{Start: macro.Start, End: s.lastEnd()},
	}, nil
}

// parseExponent parses an optional ^arg directly after a function name.
func (s *state) parseExponent() (ast.Node, error) {
	if s.peek().Kind != tokCaret {
		return nil, nil
	}
	s.next()
	return s.parseScriptArg()
}

// parseFraction parses \frac{a}{b}, and \frac{d}{dx} followed by an
// operand as a derivative.
func (s *state) parseFraction() (*ast.Function, error) {
	macro := s.next()

	if s.peekAt(0).Kind == tokLBrace && s.isChar(1, "d") && s.peekAt(2).Kind == tokRBrace &&
		s.peekAt(3).Kind == tokLBrace && s.isChar(4, "d") && s.peekAt(5).isLetter() &&
		s.peekAt(6).Kind == tokRBrace {
		d := s.peekAt(1)
		variable := s.peekAt(5)
		for i := 0; i < 7; i++ {
			s.next()
		}
		operand, err := s.parseOperand()
		if err != nil {
			return nil, err
		}
		return &ast.Function{
			Name: ast.FuncDerivative,
			Args: []ast.Node{
				newUnit(d.Text, ast.Span{Start: d.Start, End: d.End}),
				newUnit(variable.Text, ast.Span{Start: variable.Start, End: variable.End}),
				operand,
			},
			Span: ast.Span{Start: macro.Start, End: s.lastEnd()},
		}, nil
	}

	numerator, err := s.parseScriptArg()
	if err != nil {
		return nil, err
	}
	denominator, err := s.parseScriptArg()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Name: ast.FuncFraction,
		Args: []ast.Node{numerator, denominator},
		Span: ast.Span{Start: macro.Start, End: s.lastEnd()},
	}, nil
}

// parseSqrt parses \sqrt{x} and \sqrt[n]{x}.
func (s *state) parseSqrt() (*ast.Function, error) {
	macro := s.next()
	fn := &ast.Function{Name: ast.FuncSqrt}

	if s.peek().Kind == tokLBracket {
		degree, err := s.parseGroup()
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, degree)
	}

	radicand, err := s.parseScriptArg()
	if err != nil {
		return nil, err
	}
	fn.Args = append(fn.Args, radicand)
	fn.Span = ast.Span{Start: macro.Start, End: s.lastEnd()}
	return fn, nil
}

// parseIntegral parses \int body dx and \int_a^b body dx. The body is
// either a braced group or everything up to the differential.
func (s *state) parseIntegral() (*ast.Function, error) {
	macro := s.next()

	var lower, upper ast.Node
	for {
		if s.isMacro(0, "limits") {
			s.next()
			continue
		}
		t := s.peek()
		if t.Kind == tokUnderscore && lower == nil {
			s.next()
			arg, err := s.parseScriptArg()
			if err != nil {
				return nil, err
			}
			lower = arg
			continue
		}
		if t.Kind == tokCaret && upper == nil {
			s.next()
			arg, err := s.parseScriptArg()
			if err != nil {
				return nil, err
			}
			upper = arg
			continue
		}
		break
	}
	if (lower == nil) != (upper == nil) {
		t := s.peek()
		return nil, newSyntaxError(s.text, macro.Start, t.Start, macro.display(), "integral needs both bounds or neither")
	}

	var body ast.Node
	if s.peek().Kind == tokLBrace {
		group, err := s.parseGroup()
		if err != nil {
			return nil, err
		}
		body = group
	} else {
		start := s.peek().Start
		nodes, err := s.parseSequence(stopAtDifferential, false)
		if err != nil {
			return nil, err
		}
		body = argument(nodes, ast.Span{Start: start, End: s.peek().Start})
	}

	if !s.isChar(0, "d") || !s.peekAt(1).isLetter() {
		return nil, s.unexpected(s.peek(), "differential")
	}
	s.next()
	variable := s.next()
	variableUnit := newUnit(variable.Text, ast.Span{Start: variable.Start, End: variable.End})

	fn := &ast.Function{
		Name: ast.FuncIntegral,
		Span: ast.Span{Start: macro.Start, End: variable.End},
	}
	if lower != nil {
		fn.Args = []ast.Node{lower, upper, body, variableUnit}
	} else {
		fn.Args = []ast.Node{body, variableUnit}
	}
	return fn, nil
}

// stopAtDifferential ends an unbraced integral body at "d" followed by a
// letter, or at the end of the input so the caller reports it.
func stopAtDifferential(s *state) bool {
	if s.peek().Kind == tokEOF {
		return true
	}
	return s.isChar(0, "d") && s.peekAt(1).isLetter()
}

// parseLimit parses \lim_{x \to c} operand.
func (s *state) parseLimit() (*ast.Function, error) {
	macro := s.next()

	if _, err := s.expect(tokUnderscore); err != nil {
		return nil, err
	}
	open, err := s.expect(tokLBrace)
	if err != nil {
		return nil, err
	}

	variable, err := s.parseSequence(func(s *state) bool {
		return s.isMacro(0, "to", "rightarrow") || s.peek().Kind == tokRBrace
	}, false)
	if err != nil {
		return nil, err
	}
	arrow := s.peek()
	if !s.isMacro(0, "to", "rightarrow") {
		return nil, s.unexpected(arrow, `\to`)
	}
	s.next()

	target, err := s.parseSequence(stopAt(tokRBrace), false)
	if err != nil {
		return nil, err
	}
	end, err := s.expect(tokRBrace)
	if err != nil {
		return nil, err
	}

	operand, err := s.parseOperand()
	if err != nil {
		return nil, err
	}

	return &ast.Function{
		Name: ast.FuncLimit,
		Args: []ast.Node{
			argument(variable, ast.Span{Start: open.End, End: arrow.Start}),
			argument(target, ast.Span{Start: arrow.End, End: end.Start}),
			operand,
		},
		Span: ast.Span{Start: macro.Start, End: s.lastEnd()},
	}, nil
}

// parseLogarithm parses \log_b x, \log x, \lg x and \ln x. An exponent may
// follow the name or the base.
func (s *state) parseLogarithm() (*ast.Function, error) {
	macro := s.next()

	var base, exponent ast.Node
	for {
		t := s.peek()
		if t.Kind == tokUnderscore && base == nil && macro.Text == "log" {
			s.next()
			arg, err := s.parseScriptArg()
			if err != nil {
				return nil, err
			}
			base = arg
			continue
		}
		if t.Kind == tokCaret && exponent == nil {
			s.next()
			arg, err := s.parseScriptArg()
			if err != nil {
				return nil, err
			}
			exponent = arg
			continue
		}
		break
	}

	operand, err := s.parseOperand()
	if err != nil {
		return nil, err
	}

	fn := &ast.Function{
		Exponent: exponent,
		Span:     ast.Span{Start: macro.Start, End: s.lastEnd()},
	}
	switch {
	case base != nil:
		fn.Name = ast.FuncLogarithm
		fn.Args = []ast.Node{base, operand}
	case macro.Text == "ln":
		fn.Name = ast.FuncLogarithmLn
		fn.Args = []ast.Node{operand}
	default:
		fn.Name = ast.FuncLogarithm10
		fn.Args = []ast.Node{operand}
	}
	return fn, nil
}

// lastEnd returns the end offset of the most recently consumed token.
func (s *state) lastEnd() int {
	if s.pos == 0 {
		return 0
	}
	return s.tokens[s.pos-1].End
}
