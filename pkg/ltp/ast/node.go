package ast

import "fmt"

// Kind is the discriminant of a syntax tree node.
type Kind string

const (
	KindRoot        Kind = "root"
	KindExpression  Kind = "expression"
	KindFunction    Kind = "function"
	KindCalcunit    Kind = "calcunit"
	KindCharacter   Kind = "char"
	KindEnvironment Kind = "environment"
)

// Span is the half-open byte range [Start, End) a node was parsed from.
type Span struct {
	Start int
	End   int
}

// String returns "start:end".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// IsValid returns true if the span covers at least one byte.
func (s Span) IsValid() bool {
	return s.End > s.Start && s.Start >= 0
}

// Node is implemented by every syntax tree node. The interface is sealed:
// only types in this package can satisfy it.
type Node interface {
	// Kind returns the node's discriminant.
	Kind() Kind

	// Children returns the node's direct children in order. The returned
	// slice is a copy; the caller may modify it.
	Children() []Node

	// Pos returns the source span of the node.
	Pos() Span

	sealed()
}

// Root is the top of every parsed tree.
type Root struct {
	Expressions []*Expression
	Span        Span
}

// Expression is a sequence of nodes, optionally wrapped in a bracket pair.
type Expression struct {
	BracketType BracketType
	Nodes       []Node
	Span        Span
}

// Function is a registered construct such as a fraction or a logarithm.
// Argument count is not validated here; the translator checks it against
// the function's registered arity.
type Function struct {
	Name     FunctionName
	Args     []Node
	Exponent Node // nil if the function is not raised to a power
	Span     Span
}

// Calcunit is a maximal run of literal characters.
type Calcunit struct {
	Chars []*Character
	Span  Span
}

// Character is a single literal character.
type Character struct {
	Value rune
	Span  Span
}

// Environment is a \begin{...}\end{...} block. For systems each expression is
// one equation; for determinants each expression is one matrix cell in
// row-major order.
type Environment struct {
	EnvType     EnvironmentType
	Expressions []*Expression
	Span        Span
}

func (*Root) Kind() Kind        { return KindRoot }
func (*Expression) Kind() Kind  { return KindExpression }
func (*Function) Kind() Kind    { return KindFunction }
func (*Calcunit) Kind() Kind    { return KindCalcunit }
func (*Character) Kind() Kind   { return KindCharacter }
func (*Environment) Kind() Kind { return KindEnvironment }

func (n *Root) Pos() Span        { return n.Span }
func (n *Expression) Pos() Span  { return n.Span }
func (n *Function) Pos() Span    { return n.Span }
func (n *Calcunit) Pos() Span    { return n.Span }
func (n *Character) Pos() Span   { return n.Span }
func (n *Environment) Pos() Span { return n.Span }

func (*Root) sealed()        {}
func (*Expression) sealed()  {}
func (*Function) sealed()    {}
func (*Calcunit) sealed()    {}
func (*Character) sealed()   {}
func (*Environment) sealed() {}

// Children returns the top-level expressions.
func (n *Root) Children() []Node {
	out := make([]Node, 0, len(n.Expressions))
	for _, e := range n.Expressions {
		out = append(out, e)
	}
	return out
}

// Children returns the wrapped nodes.
func (n *Expression) Children() []Node {
	return append([]Node{}, n.Nodes...)
}

// Children returns the arguments followed by the exponent, if any.
func (n *Function) Children() []Node {
	out := append([]Node{}, n.Args...)
	if n.Exponent != nil {
		out = append(out, n.Exponent)
	}
	return out
}

// Children returns the characters of the unit.
func (n *Calcunit) Children() []Node {
	out := make([]Node, 0, len(n.Chars))
	for _, c := range n.Chars {
		out = append(out, c)
	}
	return out
}

// Children returns nil; characters are leaves.
func (n *Character) Children() []Node {
	return nil
}

// Children returns the environment's expressions.
func (n *Environment) Children() []Node {
	out := make([]Node, 0, len(n.Expressions))
	for _, e := range n.Expressions {
		out = append(out, e)
	}
	return out
}

// Text returns the literal text of the unit.
func (n *Calcunit) Text() string {
	runes := make([]rune, len(n.Chars))
	for i, c := range n.Chars {
		runes[i] = c.Value
	}
	return string(runes)
}

// NewCalcunit builds a calcunit from a string, one Character per rune.
func NewCalcunit(text string) *Calcunit {
	unit := &Calcunit{}
	for _, r := range text {
		unit.Chars = append(unit.Chars, &Character{Value: r})
	}
	return unit
}

// Describe returns a short description of the node for diagnostics.
func Describe(n Node) string {
	switch v := n.(type) {
	case nil:
		return "<nil>"
	case *Function:
		return fmt.Sprintf("function %q (%d args)", v.Name, len(v.Args))
	case *Environment:
		return fmt.Sprintf("environment %q (%d expressions)", v.EnvType, len(v.Expressions))
	case *Calcunit:
		return fmt.Sprintf("calcunit %q", v.Text())
	case *Character:
		return fmt.Sprintf("char %q", v.Value)
	case *Expression:
		return fmt.Sprintf("expression (%s, %d nodes)", v.BracketType, len(v.Nodes))
	default:
		return string(n.Kind())
	}
}
