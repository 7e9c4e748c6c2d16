// Package bracket is the parser-independent fast path for delimiter
// matching: a lexer that only sees ( ) [ ] { } and a tolerant stack
// resolver that turns the token stream into well-nested pairs.
//
// The lexer is deliberately not string- or comment-aware. Brackets inside
// literals are tokenized like any other. Callers that need exact results
// use the tree-derived pairs from the highlight package instead.
package bracket

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Kind is the delimiter family of a token or pair.
type Kind uint8

const (
	Paren Kind = iota
	Square
	Brace
)

func (k Kind) String() string {
	switch k {
	case Paren:
		return "paren"
	case Square:
		return "bracket"
	case Brace:
		return "brace"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "paren":
		*k = Paren
	case "bracket":
		*k = Square
	case "brace":
		*k = Brace
	default:
		return fmt.Errorf("unknown bracket kind %q", text)
	}
	return nil
}

// Position locates a delimiter both as a byte offset and as an editor
// code-unit (UTF-16) offset.
type Position struct {
	Byte int `json:"byte"`
	Unit int `json:"unit"`
}

// Token is a single delimiter found by Lex.
type Token struct {
	Kind Kind
	Open bool
	Pos  Position
}

// Lex scans text for the six delimiter characters and returns them in
// order. All other characters are skipped. It never fails.
func Lex(text string) []Token {
	var tokens []Token
	unit := 0
	for i := 0; i < len(text); {
		c := text[i]
		if c < utf8.RuneSelf {
			if tok, ok := delimiter(c); ok {
				tok.Pos = Position{Byte: i, Unit: unit}
				tokens = append(tokens, tok)
			}
			i++
			unit++
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		n := 1
		if r != utf8.RuneError || size > 1 {
			if l := utf16.RuneLen(r); l > 0 {
				n = l
			}
		}
		i += size
		unit += n
	}
	return tokens
}

func delimiter(c byte) (Token, bool) {
	switch c {
	case '(':
		return Token{Kind: Paren, Open: true}, true
	case ')':
		return Token{Kind: Paren}, true
	case '[':
		return Token{Kind: Square, Open: true}, true
	case ']':
		return Token{Kind: Square}, true
	case '{':
		return Token{Kind: Brace, Open: true}, true
	case '}':
		return Token{Kind: Brace}, true
	}
	return Token{}, false
}
