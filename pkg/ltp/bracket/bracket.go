// Package bracket locates matching delimiters in markup text.
//
// Only repeats of the opening delimiter's own kind are counted while
// scanning: in "{(}" the round bracket is transparent and the match for the
// curly brace is found at index 2. Other delimiter kinds are never validated.
package bracket

import (
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

// pairs maps every recognized opening delimiter to its closing delimiter.
var pairs = map[byte]byte{
	'(': ')',
	'{': '}',
	'[': ']',
}

// Closing returns the closing delimiter for open and whether open is a
// recognized opening delimiter.
func Closing(open byte) (byte, bool) {
	c, ok := pairs[open]
	return c, ok
}

// IsOpening returns true if c is a recognized opening delimiter.
func IsOpening(c byte) bool {
	_, ok := pairs[c]
	return ok
}

// FindEnd returns the index of the delimiter closing the one at text[pos].
func FindEnd(text string, pos int) (int, error) {
	if pos < 0 || pos >= len(text) {
		return 0, &ltpErrors.DelimiterError{
			Reason:   ltpErrors.ErrDelimiterStart,
			Position: pos,
		}
	}

	opening := text[pos]
	closing, ok := pairs[opening]
	if !ok {
		return 0, &ltpErrors.DelimiterError{
			Reason:   ltpErrors.ErrDelimiterStart,
			Position: pos,
			Context:  ltpErrors.ContextAt(text, pos),
		}
	}

	depth := 1
	for i := pos + 1; i < len(text); i++ {
		switch text[i] {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}

	return 0, &ltpErrors.DelimiterError{
		Reason:   ltpErrors.ErrUnbalancedDelimiter,
		Position: pos,
		Context:  ltpErrors.ContextAt(text, pos),
	}
}

// Get returns the text enclosed by the delimiter at text[pos] and its match,
// excluding both delimiters.
func Get(text string, pos int) (string, error) {
	end, err := FindEnd(text, pos)
	if err != nil {
		return "", err
	}
	return text[pos+1 : end], nil
}
