package parser

import (
	"mercator-hq/texsolve/pkg/ltp/ast"
)

// sequenceBuilder collects the nodes of a sequence, merging adjacent
// literal characters into a single Calcunit.
type sequenceBuilder struct {
	nodes   []ast.Node
	pending *ast.Calcunit
}

// addToken appends the characters of a literal token to the pending unit.
func (b *sequenceBuilder) addToken(t token) {
	b.addText(t.Text, t.Start)
}

// addText appends literal text starting at byte offset start.
func (b *sequenceBuilder) addText(text string, start int) {
	if b.pending == nil {
		b.pending = &ast.Calcunit{Span: ast.Span{Start: start, End: start}}
	}
	offset := start
	for _, r := range text {
		size := len(string(r))
		b.pending.Chars = append(b.pending.Chars, &ast.Character{
			Value: r,
			Span:  ast.Span{Start: offset, End: offset + size},
		})
		offset += size
	}
	b.pending.Span.End = offset
}

// add appends a structural node.
func (b *sequenceBuilder) add(n ast.Node) {
	b.flush()
	b.nodes = append(b.nodes, n)
}

func (b *sequenceBuilder) flush() {
	if b.pending != nil && len(b.pending.Chars) > 0 {
		b.nodes = append(b.nodes, b.pending)
	}
	b.pending = nil
}

// finish returns the collected nodes.
func (b *sequenceBuilder) finish() []ast.Node {
	b.flush()
	return b.nodes
}

// popOperand removes and returns the operand immediately before the cursor:
// the trailing run of letters and digits of the pending text, or the last
// structural node. It returns nil if there is none.
func (b *sequenceBuilder) popOperand() ast.Node {
	if b.pending != nil && len(b.pending.Chars) > 0 {
		chars := b.pending.Chars
		i := len(chars)
		for i > 0 && isOperandRune(chars[i-1].Value) {
			i--
		}
		if i == len(chars) {
			return nil
		}

		operand := &ast.Calcunit{
			Chars: append([]*ast.Character{}, chars[i:]...),
			Span:  ast.Span{Start: chars[i].Span.Start, End: b.pending.Span.End},
		}
		b.pending.Chars = chars[:i]
		if i > 0 {
			b.pending.Span.End = chars[i-1].Span.End
		}
		return operand
	}

	if len(b.nodes) == 0 {
		return nil
	}
	last := b.nodes[len(b.nodes)-1]
	b.nodes = b.nodes[:len(b.nodes)-1]
	// A unit flushed before the last node may receive more text.
	if unit, ok := last.(*ast.Calcunit); ok {
		b.pending = unit
		return b.popOperand()
	}
	return last
}

func isOperandRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.'
}
