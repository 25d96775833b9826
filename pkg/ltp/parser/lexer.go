package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// tokenKind classifies lexer output.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokChar
	tokMacro
	tokRowBreak // \\
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokPipe
	tokCaret
	tokUnderscore
	tokAmpersand
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokChar:
		return "character"
	case tokMacro:
		return "macro"
	case tokRowBreak:
		return `\\`
	case tokLBrace:
		return "{"
	case tokRBrace:
		return "}"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokLBracket:
		return "["
	case tokRBracket:
		return "]"
	case tokPipe:
		return "|"
	case tokCaret:
		return "^"
	case tokUnderscore:
		return "_"
	case tokAmpersand:
		return "&"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// token is a lexeme with its byte range in the cleaned text. For macros Text
// is the name without the backslash; for characters it is the character.
type token struct {
	Kind  tokenKind
	Text  string
	Start int
	End   int
}

// display returns the token as it appeared in the input.
func (t token) display() string {
	switch t.Kind {
	case tokEOF:
		return "end of input"
	case tokMacro:
		return `\` + t.Text
	default:
		return t.Text
	}
}

// isLetter reports whether the token is a single ASCII letter.
func (t token) isLetter() bool {
	return t.Kind == tokChar && len(t.Text) == 1 && isASCIILetter(t.Text[0])
}

// isAlnum reports whether the token is a single ASCII letter, digit or dot.
func (t token) isAlnum() bool {
	return t.Kind == tokChar && len(t.Text) == 1 && (isASCIILetter(t.Text[0]) || isDigit(t.Text[0]) || t.Text[0] == '.')
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// lex splits cleaned text into tokens. Whitespace is insignificant and
// dropped; a terminating tokEOF is always appended.
func lex(text string) ([]token, error) {
	tokens := make([]token, 0, len(text)+1)
	i := 0
	for i < len(text) {
		c := text[i]
		start := i

		switch {
		case isSpace(c):
			i++
			continue

		case c == '\\':
			i++
			if i >= len(text) {
				return nil, newSyntaxError(text, start, i, `\`, "dangling backslash")
			}
			switch {
			case text[i] == '\\':
				i++
				tokens = append(tokens, token{Kind: tokRowBreak, Text: `\\`, Start: start, End: i})
			case isASCIILetter(text[i]):
				for i < len(text) && isASCIILetter(text[i]) {
					i++
				}
				tokens = append(tokens, token{Kind: tokMacro, Text: text[start+1 : i], Start: start, End: i})
			default:
				// Control symbols such as \{ or \%.
				i++
				tokens = append(tokens, token{Kind: tokMacro, Text: text[start+1 : i], Start: start, End: i})
			}
			continue
		}

		kind := tokChar
		switch c {
		case '{':
			kind = tokLBrace
		case '}':
			kind = tokRBrace
		case '(':
			kind = tokLParen
		case ')':
			kind = tokRParen
		case '[':
			kind = tokLBracket
		case ']':
			kind = tokRBracket
		case '|':
			kind = tokPipe
		case '^':
			kind = tokCaret
		case '_':
			kind = tokUnderscore
		case '&':
			kind = tokAmpersand
		}

		// Keep multi-byte runes whole.
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
		tokens = append(tokens, token{Kind: kind, Text: text[start:i], Start: start, End: i})
	}

	tokens = append(tokens, token{Kind: tokEOF, Start: len(text), End: len(text)})
	return tokens, nil
}

// lineColumn converts a byte offset to 1-based line and column numbers.
func lineColumn(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	column := offset - strings.LastIndex(prefix, "\n")
	return line, column
}
