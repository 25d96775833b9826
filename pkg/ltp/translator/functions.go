package translator

import (
	"fmt"
	"strings"

	"mercator-hq/texsolve/pkg/ltp/ast"
	"mercator-hq/texsolve/pkg/ltp/bracket"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// arities lists the accepted argument counts of every registered function.
var arities = map[ast.FunctionName][]int{
	ast.FuncRegular:              {2},
	ast.FuncAbs:                  {1},
	ast.FuncSqrt:                 {1, 2},
	ast.FuncIntegral:             {2, 4},
	ast.FuncFraction:             {2},
	ast.FuncDerivative:           {3},
	ast.FuncLatexFunction:        {3},
	ast.FuncLatexFunctionInverse: {3},
	ast.FuncBinomial:             {2},
	ast.FuncLogarithm:            {2},
	ast.FuncLogarithm10:          {1},
	ast.FuncLogarithmLn:          {1},
	ast.FuncLimit:                {3},
	ast.FuncMean:                 {1},
	ast.FuncDegrees:              {1},
}

// Arity returns the accepted argument counts for name, or nil if name is
// not registered.
func Arity(name ast.FunctionName) []int {
	return append([]int(nil), arities[name]...)
}

// format applies the formatting rule registered for fn.Name to the
// translated arguments.
func format(fn *ast.Function, args []string) (string, error) {
	if err := checkArity(fn, len(args)); err != nil {
		return "", err
	}

	switch fn.Name {
	case ast.FuncRegular:
		return fmt.Sprintf("%s(%s)", args[0], args[1]), nil
	case ast.FuncAbs:
		return fmt.Sprintf("abs(%s)", args[0]), nil
	case ast.FuncSqrt:
		if len(args) == 2 {
			return fmt.Sprintf("root(%s, %s)", args[0], args[1]), nil
		}
		return fmt.Sprintf("root2(%s)", args[0]), nil
	case ast.FuncIntegral:
		if len(args) == 2 {
			return fmt.Sprintf("integral(%s, %s)", args[0], args[1]), nil
		}
		return fmt.Sprintf("definiteintegral(%s, %s, %s, %s)", args[0], args[1], args[2], args[3]), nil
	case ast.FuncFraction:
		return fmt.Sprintf("{{%s}/{%s}}", args[0], args[1]), nil
	case ast.FuncDerivative:
		return fmt.Sprintf("derivation(%s, %s)", args[1], args[2]), nil
	case ast.FuncLatexFunction:
		variable, err := unwrap(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("function(%s, %s)=%s", args[0], variable, args[2]), nil
	case ast.FuncLatexFunctionInverse:
		variable, err := unwrap(args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("function_inverse(%s, %s)=%s", args[0], variable, args[2]), nil
	case ast.FuncBinomial:
		return fmt.Sprintf("choose(%s, %s)", args[0], args[1]), nil
	case ast.FuncLogarithm:
		return fmt.Sprintf("log(%s, %s)", args[0], args[1]), nil
	case ast.FuncLogarithm10:
		return fmt.Sprintf("log10(%s)", args[0]), nil
	case ast.FuncLogarithmLn:
		return fmt.Sprintf("ln(%s)", args[0]), nil
	case ast.FuncLimit:
		return fmt.Sprintf("lim(%s, %s, %s)", args[0], args[1], args[2]), nil
	case ast.FuncMean:
		return fmt.Sprintf("mean(%s)", args[0]), nil
	case ast.FuncDegrees:
		return fmt.Sprintf("deg(%s)", args[0]), nil
	}

	// checkArity rejects unregistered names, so this is only reached if a
	// name is added to the arity table without a rule.
	return "", unknownFunction(fn)
}

// checkArity verifies that fn is registered and has an accepted number of
// arguments.
func checkArity(fn *ast.Function, n int) error {
	accepted, ok := arities[fn.Name]
	if !ok {
		return unknownFunction(fn)
	}
	for _, a := range accepted {
		if a == n {
			return nil
		}
	}

	counts := make([]string, len(accepted))
	for i, a := range accepted {
		counts[i] = fmt.Sprint(a)
	}
	return &ltpErrors.TranslationError{
		Reason: ltpErrors.ErrArityMismatch,
		Node:   fn,
		Detail: fmt.Sprintf("%s takes %s arguments, got %d", fn.Name, strings.Join(counts, " or "), n),
	}
}

func unknownFunction(fn *ast.Function) error {
	names := ast.FunctionNames()
	valid := make([]string, len(names))
	for i, name := range names {
		valid[i] = string(name)
	}
	return &ltpErrors.TranslationError{
		Reason:     ltpErrors.ErrUnknownFunctionName,
		Node:       fn,
		Detail:     fmt.Sprintf("function %q", fn.Name),
		Suggestion: ltpErrors.SuggestName(string(fn.Name), valid),
	}
}

// unwrap strips the bracket pair around a function definition's variable.
// A variable that is not bracketed is returned unchanged.
func unwrap(s string) (string, error) {
	if s == "" || !bracket.IsOpening(s[0]) {
		return s, nil
	}
	return bracket.Get(s, 0)
}
