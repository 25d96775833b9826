package parser

import (
	"fmt"

	"mercator-hq/texsolve/pkg/ltp/ast"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// DefaultMaxDepth bounds the nesting of groups, arguments and environments.
const DefaultMaxDepth = 256

// Parser turns cleaned markup into a syntax tree.
// A Parser is immutable after configuration and safe for concurrent use.
type Parser struct {
	maxDepth int
}

// New creates a parser with the default nesting limit.
func New() *Parser {
	return &Parser{
		maxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth sets the maximum nesting depth. Values below 1 are ignored.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// MaxDepth returns the configured nesting limit.
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// Parse parses cleaned text into a Root holding a single top-level
// expression. Malformed input yields a *errors.SyntaxError; input nested
// deeper than the limit yields an internal depth-limit error.
func (p *Parser) Parse(text string) (*ast.Root, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	s := &state{
		text:     text,
		tokens:   tokens,
		maxDepth: p.maxDepth,
	}

	nodes, err := s.parseSequence(stopAtEOF, true)
	if err != nil {
		return nil, err
	}

	expr := &ast.Expression{
		BracketType: ast.BracketNone,
		Nodes:       nodes,
		Span:        ast.Span{Start: 0, End: len(text)},
	}
	return &ast.Root{
		Expressions: []*ast.Expression{expr},
		Span:        expr.Span,
	}, nil
}

var defaultParser = New()

// Parse parses text with the default parser.
func Parse(text string) (*ast.Root, error) {
	return defaultParser.Parse(text)
}

// state is the cursor of a single parse.
type state struct {
	text     string
	tokens   []token
	pos      int
	depth    int
	maxDepth int
}

// stopFunc reports whether the sequence being parsed ends at the cursor.
// The terminating token is left for the caller to consume.
type stopFunc func(s *state) bool

func stopAtEOF(s *state) bool {
	return s.peek().Kind == tokEOF
}

func stopAt(kind tokenKind) stopFunc {
	return func(s *state) bool {
		return s.peek().Kind == kind
	}
}

func (s *state) peek() token {
	return s.peekAt(0)
}

func (s *state) peekAt(n int) token {
	if s.pos+n >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos+n]
}

func (s *state) next() token {
	t := s.tokens[s.pos]
	if t.Kind != tokEOF {
		s.pos++
	}
	return t
}

// isMacro reports whether the token at offset n is the macro \name.
func (s *state) isMacro(n int, names ...string) bool {
	t := s.peekAt(n)
	if t.Kind != tokMacro {
		return false
	}
	for _, name := range names {
		if t.Text == name {
			return true
		}
	}
	return false
}

// isChar reports whether the token at offset n is the literal character c.
func (s *state) isChar(n int, c string) bool {
	t := s.peekAt(n)
	return t.Kind == tokChar && t.Text == c
}

func (s *state) expect(kind tokenKind) (token, error) {
	t := s.peek()
	if t.Kind != kind {
		return t, s.unexpected(t, kind.String())
	}
	return s.next(), nil
}

func (s *state) enter() error {
	s.depth++
	if s.depth > s.maxDepth {
		return &ltpErrors.InternalError{
			Reason: ltpErrors.ErrDepthLimit,
			Detail: fmt.Sprintf("parser nesting exceeds %d", s.maxDepth),
		}
	}
	return nil
}

func (s *state) leave() {
	s.depth--
}

// unexpected builds a syntax error for token t.
func (s *state) unexpected(t token, expected ...string) *ltpErrors.SyntaxError {
	msg := fmt.Sprintf("unexpected %s", t.Kind)
	if t.Kind == tokEOF {
		msg = "unexpected end of input"
	}
	err := newSyntaxError(s.text, t.Start, t.End, t.display(), msg)
	err.Expected = expected
	return err
}

// newSyntaxError builds a SyntaxError for the byte range [start, end).
func newSyntaxError(text string, start, end int, found, message string) *ltpErrors.SyntaxError {
	line, column := lineColumn(text, start)
	return &ltpErrors.SyntaxError{
		Message: message,
		Start:   start,
		End:     end,
		Line:    line,
		Column:  column,
		Found:   found,
	}
}

// parseSequence parses nodes until stop reports true. When allowDefinition
// is set, a leading f(x)=... or f^{-1}(x)=... becomes a function definition
// that absorbs the rest of the sequence.
func (s *state) parseSequence(stop stopFunc, allowDefinition bool) ([]ast.Node, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	b := &sequenceBuilder{}

	if allowDefinition {
		def, err := s.parseDefinition(stop)
		if err != nil {
			return nil, err
		}
		if def != nil {
			b.add(def)
		}
	}

	for !stop(s) {
		t := s.peek()
		switch t.Kind {
		case tokEOF:
			return nil, s.unexpected(t)

		case tokChar, tokUnderscore:
			s.next()
			b.addToken(t)

		case tokLBrace, tokLParen, tokLBracket:
			expr, err := s.parseGroup()
			if err != nil {
				return nil, err
			}
			b.add(expr)

		case tokPipe:
			fn, err := s.parseAbs()
			if err != nil {
				return nil, err
			}
			b.add(fn)

		case tokCaret:
			if err := s.parseCaret(b); err != nil {
				return nil, err
			}

		case tokMacro:
			node, err := s.parseMacro()
			if err != nil {
				return nil, err
			}
			if node != nil {
				b.add(node)
			}

		default:
			return nil, s.unexpected(t)
		}
	}

	return b.finish(), nil
}

// parseGroup parses a bracketed group starting at the cursor.
func (s *state) parseGroup() (*ast.Expression, error) {
	open := s.next()

	var (
		closeKind   tokenKind
		bracketType ast.BracketType
	)
	switch open.Kind {
	case tokLBrace:
		closeKind, bracketType = tokRBrace, ast.BracketCurly
	case tokLParen:
		closeKind, bracketType = tokRParen, ast.BracketRound
	case tokLBracket:
		closeKind, bracketType = tokRBracket, ast.BracketSquare
	default:
		return nil, s.unexpected(open, "{", "(", "[")
	}

	nodes, err := s.parseSequence(stopAt(closeKind), false)
	if err != nil {
		return nil, err
	}
	end, err := s.expect(closeKind)
	if err != nil {
		return nil, err
	}

	return &ast.Expression{
		BracketType: bracketType,
		Nodes:       nodes,
		Span:        ast.Span{Start: open.Start, End: end.End},
	}, nil
}

// parseAbs parses |...| into an abs function.
func (s *state) parseAbs() (*ast.Function, error) {
	open := s.next()
	nodes, err := s.parseSequence(stopAt(tokPipe), false)
	if err != nil {
		return nil, err
	}
	end, err := s.expect(tokPipe)
	if err != nil {
		return nil, err
	}

	span := ast.Span{Start: open.Start, End: end.End}
	return &ast.Function{
		Name: ast.FuncAbs,
		Args: []ast.Node{argument(nodes, ast.Span{Start: open.End, End: end.Start})},
		Span: span,
	}, nil
}

// parseCaret handles a superscript in running text. A degree sign (^\circ
// or ^{\circ}) turns the preceding operand into a degrees function; any
// other superscript is kept as literal text.
func (s *state) parseCaret(b *sequenceBuilder) error {
	caret := s.peek()

	var consumed int
	switch {
	case s.isMacro(1, "circ"):
		consumed = 2
	case s.peekAt(1).Kind == tokLBrace && s.isMacro(2, "circ") && s.peekAt(3).Kind == tokRBrace:
		consumed = 4
	default:
		s.next()
		b.addToken(caret)
		return nil
	}

	last := s.peekAt(consumed - 1)
	operand := b.popOperand()
	if operand == nil {
		return newSyntaxError(s.text, caret.Start, last.End, `^\circ`, "degree sign without a preceding value")
	}
	for i := 0; i < consumed; i++ {
		s.next()
	}

	b.add(&ast.Function{
		Name: ast.FuncDegrees,
		Args: []ast.Node{operand},
		Span: ast.Span{Start: operand.Pos().Start, End: last.End},
	})
	return nil
}

// parseDefinition recognizes f(x)=body and f^{-1}(x)=body at the cursor.
// It returns nil without consuming anything when the pattern does not match.
func (s *state) parseDefinition(stop stopFunc) (*ast.Function, error) {
	nameTok := s.peek()
	if !nameTok.isLetter() {
		return nil, nil
	}

	name := ast.FuncLatexFunction
	paren := 1
	if s.peekAt(1).Kind == tokCaret &&
		s.peekAt(2).Kind == tokLBrace &&
		s.isChar(3, "-") && s.isChar(4, "1") &&
		s.peekAt(5).Kind == tokRBrace {
		name = ast.FuncLatexFunctionInverse
		paren = 6
	}
	if s.peekAt(paren).Kind != tokLParen {
		return nil, nil
	}

	closeAt := s.matchingToken(paren, tokLParen, tokRParen)
	if closeAt == -1 || !s.isChar(closeAt+1, "=") {
		return nil, nil
	}

	for i := 0; i < paren; i++ {
		s.next()
	}
	variable, err := s.parseGroup()
	if err != nil {
		return nil, err
	}
	eq := s.next()

	body, err := s.parseSequence(stop, false)
	if err != nil {
		return nil, err
	}

	end := s.peek().Start
	return &ast.Function{
		Name: name,
		Args: []ast.Node{
			newUnit(nameTok.Text, ast.Span{Start: nameTok.Start, End: nameTok.End}),
			variable,
			argument(body, ast.Span{Start: eq.End, End: end}),
		},
		Span: ast.Span{Start: nameTok.Start, End: end},
	}, nil
}

// matchingToken returns the offset from the cursor of the close token that
// balances the open token at offset from, or -1.
func (s *state) matchingToken(from int, open, close tokenKind) int {
	depth := 0
	for i := from; s.pos+i < len(s.tokens); i++ {
		switch s.peekAt(i).Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		case tokEOF:
			return -1
		}
	}
	return -1
}

// parseOperand parses the argument of a named function such as \sin or \ln:
// a braced or bracketed group, a parenthesized group (parentheses dropped), an abs
// group, a macro, or a run of letters and digits.
func (s *state) parseOperand() (ast.Node, error) {
	t := s.peek()
	switch t.Kind {
	case tokLBrace, tokLBracket:
		return s.parseGroup()

	case tokLParen:
		expr, err := s.parseGroup()
		if err != nil {
			return nil, err
		}
		expr.BracketType = ast.BracketCurly
		return expr, nil

	case tokPipe:
		return s.parseAbs()

	case tokMacro:
		node, err := s.parseMacro()
		if err != nil {
			return nil, err
		}
		if node == nil {
			// Spacing macro; the operand follows it.
			return s.parseOperand()
		}
		return wrapCurly(node), nil

	case tokChar:
		if !t.isAlnum() {
			return nil, s.unexpected(t, "operand")
		}
		start := t.Start
		var text string
		for s.peek().isAlnum() {
			text += s.next().Text
		}
		return newUnit(text, ast.Span{Start: start, End: start + len(text)}), nil

	default:
		return nil, s.unexpected(t, "operand")
	}
}

// parseScriptArg parses a single sub/superscript style argument: a braced
// group, or a single character or macro.
func (s *state) parseScriptArg() (ast.Node, error) {
	t := s.peek()
	switch t.Kind {
	case tokLBrace:
		return s.parseGroup()
	case tokChar:
		s.next()
		return newUnit(t.Text, ast.Span{Start: t.Start, End: t.End}), nil
	case tokMacro:
		node, err := s.parseMacro()
		if err != nil {
			return nil, err
		}
		if node == nil {
			return s.parseScriptArg()
		}
		return wrapCurly(node), nil
	default:
		return nil, s.unexpected(t, "{", "character")
	}
}

// argument groups a run of nodes into one function argument. The curly
// wrapper is what the translator strips, so a run that starts with its own
// brackets, such as a fraction, is kept whole.
func argument(nodes []ast.Node, span ast.Span) *ast.Expression {
	return &ast.Expression{
		BracketType: ast.BracketCurly,
		Nodes:       nodes,
		Span:        span,
	}
}

// wrapCurly wraps a single node in a curly expression so that argument
// unwrapping in the translator strips the wrapper and not the node's own
// brackets.
func wrapCurly(n ast.Node) *ast.Expression {
	return &ast.Expression{
		BracketType: ast.BracketCurly,
		Nodes:       []ast.Node{n},
		Span:        n.Pos(),
	}
}

func newUnit(text string, span ast.Span) *ast.Calcunit {
	unit := &ast.Calcunit{Span: span}
	offset := span.Start
	for _, r := range text {
		size := len(string(r))
		unit.Chars = append(unit.Chars, &ast.Character{
			Value: r,
			Span:  ast.Span{Start: offset, End: offset + size},
		})
		offset += size
	}
	return unit
}
