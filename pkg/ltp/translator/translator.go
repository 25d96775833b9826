package translator

import (
	"fmt"
	"strings"

	"mercator-hq/texsolve/pkg/ltp/ast"
	"mercator-hq/texsolve/pkg/ltp/bracket"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// DefaultMaxDepth bounds the recursion depth of a translation.
const DefaultMaxDepth = 256

// Translator turns a syntax tree into solver syntax.
// A Translator is immutable after configuration and safe for concurrent use.
type Translator struct {
	maxDepth int
}

// New creates a translator with the default depth limit.
func New() *Translator {
	return &Translator{
		maxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth sets the maximum recursion depth. Values below 1 are ignored.
func (t *Translator) WithMaxDepth(depth int) *Translator {
	if depth > 0 {
		t.maxDepth = depth
	}
	return t
}

// MaxDepth returns the configured depth limit.
func (t *Translator) MaxDepth() int {
	return t.maxDepth
}

// Translate returns the solver syntax for the tree rooted at n.
// The tree is not modified.
func (t *Translator) Translate(n ast.Node) (string, error) {
	return t.translate(n, 1)
}

var defaultTranslator = New()

// Translate translates n with the default translator.
func Translate(n ast.Node) (string, error) {
	return defaultTranslator.Translate(n)
}

func (t *Translator) translate(n ast.Node, depth int) (string, error) {
	if depth > t.maxDepth {
		return "", &ltpErrors.InternalError{
			Reason: ltpErrors.ErrDepthLimit,
			Detail: fmt.Sprintf("translation nesting exceeds %d", t.maxDepth),
		}
	}

	if isNil(n) {
		return "", &ltpErrors.TranslationError{
			Reason: ltpErrors.ErrUnknownNodeKind,
			Detail: fmt.Sprintf("nil node of type %T", n),
		}
	}

	switch v := n.(type) {
	case *ast.Root:
		return t.translateRoot(v, depth)
	case *ast.Expression:
		return t.translateExpression(v, depth)
	case *ast.Function:
		return t.translateFunction(v, depth)
	case *ast.Calcunit:
		return v.Text(), nil
	case *ast.Character:
		return string(v.Value), nil
	case *ast.Environment:
		return t.translateEnvironment(v, depth)
	default:
		return "", &ltpErrors.TranslationError{
			Reason: ltpErrors.ErrUnknownNodeKind,
			Node:   n,
			Detail: fmt.Sprintf("node of type %T", n),
		}
	}
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n ast.Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *ast.Root:
		return v == nil
	case *ast.Expression:
		return v == nil
	case *ast.Function:
		return v == nil
	case *ast.Calcunit:
		return v == nil
	case *ast.Character:
		return v == nil
	case *ast.Environment:
		return v == nil
	}
	return false
}

func (t *Translator) translateRoot(root *ast.Root, depth int) (string, error) {
	var sb strings.Builder
	for _, expr := range root.Expressions {
		if expr == nil {
			return "", &ltpErrors.TranslationError{
				Reason: ltpErrors.ErrUnknownNodeKind,
				Node:   root,
				Detail: "nil expression in root",
			}
		}
		s, err := t.translate(expr, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (t *Translator) translateExpression(expr *ast.Expression, depth int) (string, error) {
	open, close := expr.BracketType.Delimiters()

	var sb strings.Builder
	sb.WriteString(open)
	for _, child := range expr.Nodes {
		s, err := t.translate(child, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	sb.WriteString(close)
	return sb.String(), nil
}

// translateFunction translates the arguments, strips one layer of curly or
// square brackets from each, formats the function and applies the exponent.
func (t *Translator) translateFunction(fn *ast.Function, depth int) (string, error) {
	args := make([]string, len(fn.Args))
	for i, arg := range fn.Args {
		s, err := t.translate(arg, depth+1)
		if err != nil {
			return "", err
		}
		if len(s) > 0 && (s[0] == '{' || s[0] == '[') {
			s, err = bracket.Get(s, 0)
			if err != nil {
				return "", err
			}
		}
		args[i] = s
	}

	base, err := format(fn, args)
	if err != nil {
		return "", err
	}

	if fn.Exponent == nil {
		return base, nil
	}
	exponent, err := t.translate(fn.Exponent, depth+1)
	if err != nil {
		return "", err
	}
	return "{" + base + "}^" + exponent, nil
}

func (t *Translator) translateEnvironment(env *ast.Environment, depth int) (string, error) {
	if !env.EnvType.IsValid() {
		return "", &ltpErrors.TranslationError{
			Reason:     ltpErrors.ErrUnknownEnvironmentType,
			Node:       env,
			Detail:     fmt.Sprintf("environment type %q", env.EnvType),
			Suggestion: ltpErrors.SuggestName(string(env.EnvType), []string{string(ast.EnvSystem), string(ast.EnvDeterminant)}),
		}
	}

	parts := make([]string, 0, len(env.Expressions))
	for _, expr := range env.Expressions {
		if expr == nil {
			return "", &ltpErrors.TranslationError{
				Reason: ltpErrors.ErrUnknownNodeKind,
				Node:   env,
				Detail: "nil expression in environment",
			}
		}
		s, err := t.translate(expr, depth+1)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	switch env.EnvType {
	case ast.EnvSystem:
		return "system(" + strings.Join(parts, ",") + ")", nil

	case ast.EnvDeterminant:
		switch len(parts) {
		case 4:
			return "det2(" + strings.Join(parts, ",") + ")", nil
		case 9:
			return "det3(" + strings.Join(parts, ",") + ")", nil
		}
		return "", &ltpErrors.TranslationError{
			Reason: ltpErrors.ErrUnsupportedDeterminantOrder,
			Node:   env,
			Detail: fmt.Sprintf("determinant with %d cells, want 4 or 9", len(parts)),
		}
	}

	// Unreachable while IsValid and the switch above agree.
	return "", &ltpErrors.TranslationError{
		Reason: ltpErrors.ErrUnknownEnvironmentType,
		Node:   env,
		Detail: fmt.Sprintf("environment type %q", env.EnvType),
	}
}
