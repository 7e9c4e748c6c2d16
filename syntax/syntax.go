// Package syntax defines the contract between hilite and whatever produces
// syntax trees: a closed enumeration of normalized node kinds, a minimal
// Node interface, and the Tag vocabulary that highlight spans carry.
//
// Tree producers (the treesitter and fallback packages) map their native
// node types onto Kind. Everything downstream only ever switches on Kind,
// so every node has a defined outcome even when the producer does not
// recognize it (KindOther).
package syntax

// Range is a half-open byte interval [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether off lies within [Start, End).
func (r Range) Contains(off int) bool { return r.Start <= off && off < r.End }

// Node is one node of an externally supplied syntax tree.
type Node interface {
	Kind() Kind
	Range() Range
	// Children returns the ordered child nodes. Leaves return nil.
	Children() []Node
}

// Kind is the normalized kind of a syntax node.
type Kind uint8

const (
	KindOther Kind = iota
	KindLeftParen
	KindRightParen
	KindLeftBracket
	KindRightBracket
	KindLeftBrace
	KindRightBrace
	KindComment
	KindString
	KindEscape
	KindNumber
	KindKeyword
	KindConstant
	KindOperator
	KindPunctuation
	KindIdentifier
	KindFunction
	KindType
	KindProperty
	KindLabel
	KindError
	kindCount
)

var kindNames = [kindCount]string{
	KindOther:        "other",
	KindLeftParen:    "left-paren",
	KindRightParen:   "right-paren",
	KindLeftBracket:  "left-bracket",
	KindRightBracket: "right-bracket",
	KindLeftBrace:    "left-brace",
	KindRightBrace:   "right-brace",
	KindComment:      "comment",
	KindString:       "string",
	KindEscape:       "escape",
	KindNumber:       "number",
	KindKeyword:      "keyword",
	KindConstant:     "constant",
	KindOperator:     "operator",
	KindPunctuation:  "punctuation",
	KindIdentifier:   "identifier",
	KindFunction:     "function",
	KindType:         "type",
	KindProperty:     "property",
	KindLabel:        "label",
	KindError:        "error",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "other"
}

// IsGrouping reports whether k is one of the six delimiter kinds.
func (k Kind) IsGrouping() bool {
	return k >= KindLeftParen && k <= KindRightBrace
}

// IsOpen reports whether k is an opening delimiter.
func (k Kind) IsOpen() bool {
	return k == KindLeftParen || k == KindLeftBracket || k == KindLeftBrace
}

// KindForDelimiter maps a delimiter character to its grouping kind.
func KindForDelimiter(c byte) (Kind, bool) {
	switch c {
	case '(':
		return KindLeftParen, true
	case ')':
		return KindRightParen, true
	case '[':
		return KindLeftBracket, true
	case ']':
		return KindRightBracket, true
	case '{':
		return KindLeftBrace, true
	case '}':
		return KindRightBrace, true
	}
	return KindOther, false
}
