package parser

import (
	"errors"
	"testing"

	"mercator-hq/texsolve/pkg/ltp/ast"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// top returns the nodes of the single top-level expression.
func top(t *testing.T, text string) []ast.Node {
	t.Helper()
	root, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", text, err)
	}
	if len(root.Expressions) != 1 {
		t.Fatalf("len(Expressions) = %d, want 1", len(root.Expressions))
	}
	return root.Expressions[0].Nodes
}

func single[T ast.Node](t *testing.T, text string) T {
	t.Helper()
	nodes := top(t, text)
	if len(nodes) != 1 {
		t.Fatalf("Parse(%q) produced %d nodes, want 1", text, len(nodes))
	}
	n, ok := nodes[0].(T)
	if !ok {
		t.Fatalf("Parse(%q) node = %s, want %T", text, ast.Describe(nodes[0]), *new(T))
	}
	return n
}

func TestParse_Calcunit(t *testing.T) {
	u := single[*ast.Calcunit](t, "2x+3<=5")
	if u.Text() != "2x+3<=5" {
		t.Errorf("Text = %q, want %q", u.Text(), "2x+3<=5")
	}
	if u.Span != (ast.Span{Start: 0, End: 7}) {
		t.Errorf("Span = %v, want 0:7", u.Span)
	}
}

func TestParse_WhitespaceIgnored(t *testing.T) {
	u := single[*ast.Calcunit](t, "2 x +  3")
	if u.Text() != "2x+3" {
		t.Errorf("Text = %q, want %q", u.Text(), "2x+3")
	}
}

func TestParse_Groups(t *testing.T) {
	nodes := top(t, "(a)[b]{c}")
	want := []ast.BracketType{ast.BracketRound, ast.BracketSquare, ast.BracketCurly}
	if len(nodes) != len(want) {
		t.Fatalf("len(nodes) = %d, want %d", len(nodes), len(want))
	}
	for i, n := range nodes {
		expr, ok := n.(*ast.Expression)
		if !ok {
			t.Fatalf("node %d = %s, want expression", i, ast.Describe(n))
		}
		if expr.BracketType != want[i] {
			t.Errorf("node %d BracketType = %s, want %s", i, expr.BracketType, want[i])
		}
	}
}

func TestParse_Functions(t *testing.T) {
	tests := []struct {
		input string
		name  ast.FunctionName
		args  int
	}{
		{`\frac{2}{3}`, ast.FuncFraction, 2},
		{`\dfrac12`, ast.FuncFraction, 2},
		{`\sqrt{x}`, ast.FuncSqrt, 1},
		{`\sqrt[5]{2x+3}`, ast.FuncSqrt, 2},
		{`\int x^2dx`, ast.FuncIntegral, 2},
		{`\int_a^b{x}dx`, ast.FuncIntegral, 4},
		{`\int\limits_{0}^{1}xdx`, ast.FuncIntegral, 4},
		{`\lim_{x \to c}{a}`, ast.FuncLimit, 3},
		{`\lim_{n \rightarrow \infty}n`, ast.FuncLimit, 3},
		{`\log_2{x}`, ast.FuncLogarithm, 2},
		{`\log{100}`, ast.FuncLogarithm10, 1},
		{`\lg 100`, ast.FuncLogarithm10, 1},
		{`\ln{e}`, ast.FuncLogarithmLn, 1},
		{`\sin x`, ast.FuncRegular, 2},
		{`\tg{x}`, ast.FuncRegular, 2},
		{`\binom{n}{k}`, ast.FuncBinomial, 2},
		{`\overline{x}`, ast.FuncMean, 1},
		{`|x-1|`, ast.FuncAbs, 1},
		{`\frac{d}{dx}{x^2}`, ast.FuncDerivative, 3},
		{`f(x)=2x`, ast.FuncLatexFunction, 3},
		{`f^{-1}(x)=2x`, ast.FuncLatexFunctionInverse, 3},
		{`5^{\circ}`, ast.FuncDegrees, 1},
		{`5^\circ`, ast.FuncDegrees, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := single[*ast.Function](t, tt.input)
			if f.Name != tt.name {
				t.Errorf("Name = %s, want %s", f.Name, tt.name)
			}
			if len(f.Args) != tt.args {
				t.Errorf("len(Args) = %d, want %d", len(f.Args), tt.args)
			}
		})
	}
}

func TestParse_RegularAlias(t *testing.T) {
	f := single[*ast.Function](t, `\ctg^2 x`)
	name, ok := f.Args[0].(*ast.Calcunit)
	if !ok || name.Text() != "cot" {
		t.Errorf("Args[0] = %s, want calcunit \"cot\"", ast.Describe(f.Args[0]))
	}
	if f.Exponent == nil {
		t.Error("Exponent = nil, want 2")
	}
}

func TestParse_DegreesTakesTrailingOperand(t *testing.T) {
	nodes := top(t, `5x+23^\circ`)
	if len(nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(nodes))
	}
	prefix, ok := nodes[0].(*ast.Calcunit)
	if !ok || prefix.Text() != "5x+" {
		t.Errorf("nodes[0] = %s, want calcunit \"5x+\"", ast.Describe(nodes[0]))
	}
	deg, ok := nodes[1].(*ast.Function)
	if !ok || deg.Name != ast.FuncDegrees {
		t.Fatalf("nodes[1] = %s, want degrees", ast.Describe(nodes[1]))
	}
	if u, ok := deg.Args[0].(*ast.Calcunit); !ok || u.Text() != "23" {
		t.Errorf("degrees arg = %s, want calcunit \"23\"", ast.Describe(deg.Args[0]))
	}
}

func TestParse_DefinitionOnlyAtStart(t *testing.T) {
	nodes := top(t, `2f(x)=1`)
	for _, n := range nodes {
		if f, ok := n.(*ast.Function); ok && f.Name == ast.FuncLatexFunction {
			t.Errorf("unexpected definition in %q", `2f(x)=1`)
		}
	}
}

func TestParse_Environments(t *testing.T) {
	tests := []struct {
		input   string
		envType ast.EnvironmentType
		exprs   int
	}{
		{`\begin{cases} 2x+3=7\\ 5+\log_2{x}x=16 \end{cases}`, ast.EnvSystem, 2},
		{`\begin{align}2x+3y  = 7\\4x+7y  = 1\\\end{align}`, ast.EnvSystem, 2},
		{`\begin{array}{cc}x=1\\y=2\end{array}`, ast.EnvSystem, 2},
		{`\begin{bmatrix} 5 & -3 \\ -1 & 0 \end{bmatrix}`, ast.EnvDeterminant, 4},
		{`\begin{vmatrix}1&2&3\\4&5&6\\7&8&9\\\end{vmatrix}`, ast.EnvDeterminant, 9},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env := single[*ast.Environment](t, tt.input)
			if env.EnvType != tt.envType {
				t.Errorf("EnvType = %s, want %s", env.EnvType, tt.envType)
			}
			if len(env.Expressions) != tt.exprs {
				t.Errorf("len(Expressions) = %d, want %d", len(env.Expressions), tt.exprs)
			}
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		start  int
		found  string
		column int
	}{
		{"unknown command", `2+\foo{x}`, 2, `\foo`, 3},
		{"unclosed group", `{2x+3`, 5, "end of input", 6},
		{"mismatched closer", `(x]`, 2, "]", 3},
		{"stray closer", `x)`, 1, ")", 2},
		{"missing fraction argument", `\frac{1}`, 8, "end of input", 9},
		{"integral without differential", `\int{x}`, 7, "end of input", 8},
		{"limit without arrow", `\lim_{x}{a}`, 7, "}", 8},
		{"unknown environment", `\begin{tabular}x\end{tabular}`, 7, "tabular", 8},
		{"mismatched end", `\begin{cases}x\end{align}`, 19, "align", 20},
		{"dangling backslash", `x\`, 1, `\`, 2},
		{"stray row break", `a\\b`, 1, `\\`, 2},
		{"degree without value", `^\circ`, 0, `^\circ`, 1},
		{"one integral bound", `\int_0 x dx`, 0, `\int`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var synErr *ltpErrors.SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("Parse(%q) error = %v, want *SyntaxError", tt.input, err)
			}
			if synErr.Start != tt.start {
				t.Errorf("Start = %d, want %d", synErr.Start, tt.start)
			}
			if synErr.Found != tt.found {
				t.Errorf("Found = %q, want %q", synErr.Found, tt.found)
			}
			if synErr.Line != 1 || synErr.Column != tt.column {
				t.Errorf("Line:Column = %d:%d, want 1:%d", synErr.Line, synErr.Column, tt.column)
			}
		})
	}
}

func TestParse_UnknownCommandSuggestion(t *testing.T) {
	_, err := Parse(`\fracc{1}{2}`)
	var synErr *ltpErrors.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if synErr.Suggestion != "Did you mean 'frac'?" {
		t.Errorf("Suggestion = %q, want %q", synErr.Suggestion, "Did you mean 'frac'?")
	}
}

func TestParse_LineColumn(t *testing.T) {
	_, err := Parse("x+1\n+\\foo")
	var synErr *ltpErrors.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if synErr.Line != 2 || synErr.Column != 2 {
		t.Errorf("Line:Column = %d:%d, want 2:2", synErr.Line, synErr.Column)
	}
}

func TestParse_DepthLimit(t *testing.T) {
	input := ""
	for i := 0; i < 50; i++ {
		input += "{"
	}
	input += "x"
	for i := 0; i < 50; i++ {
		input += "}"
	}

	_, err := New().WithMaxDepth(20).Parse(input)
	if !errors.Is(err, ltpErrors.ErrDepthLimit) {
		t.Fatalf("error = %v, want ErrDepthLimit", err)
	}
	if _, err := Parse(input); err != nil {
		t.Errorf("default parser error: %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	if nodes := top(t, ""); len(nodes) != 0 {
		t.Errorf("len(nodes) = %d, want 0", len(nodes))
	}
}

func TestParse_RunArgumentsAreCurly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		arg   int
		nodes int
	}{
		{"abs", `|\frac{1}{2}x-1|`, 0, 2},
		{"function body", `f(x)=\frac{1}{2}x+3`, 2, 2},
		{"integral body", `\int \frac{1}{2}x dx`, 0, 2},
		{"definite integral body", `\int_0^1 \frac{1}{2}x+1 dx`, 2, 2},
		{"limit target", `\lim_{x \to \frac{1}{2}+1}{x}`, 1, 2},
		{"parenthesized operand", `\sin(\frac{1}{2}x)`, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := single[*ast.Function](t, tt.input)
			if tt.arg >= len(fn.Args) {
				t.Fatalf("len(Args) = %d, want more than %d", len(fn.Args), tt.arg)
			}
			expr, ok := fn.Args[tt.arg].(*ast.Expression)
			if !ok {
				t.Fatalf("Args[%d] = %s, want expression", tt.arg, ast.Describe(fn.Args[tt.arg]))
			}
			if expr.BracketType != ast.BracketCurly {
				t.Errorf("Args[%d].BracketType = %s, want %s", tt.arg, expr.BracketType, ast.BracketCurly)
			}
			if len(expr.Nodes) != tt.nodes {
				t.Errorf("len(Args[%d].Nodes) = %d, want %d", tt.arg, len(expr.Nodes), tt.nodes)
			}
		})
	}
}
