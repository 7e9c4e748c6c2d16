package syntax

import "strings"

// Classifier assigns a highlight tag to a node. It must be total: every node
// yields either a tag or ok == false, and never panics.
type Classifier interface {
	TagFor(n Node) (Tag, bool)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(n Node) (Tag, bool)

// TagFor calls f(n).
func (f ClassifierFunc) TagFor(n Node) (Tag, bool) { return f(n) }

// KindClassifier classifies purely by node kind.
type KindClassifier struct{}

// TagFor implements Classifier.
func (KindClassifier) TagFor(n Node) (Tag, bool) {
	if n == nil {
		return TagNone, false
	}
	return TagForKind(n.Kind())
}

// TagForKind is the total mapping from Kind to Tag. Grouping kinds return
// false: delimiters are tagged through bracket matching instead.
func TagForKind(k Kind) (Tag, bool) {
	switch k {
	case KindComment:
		return TagComment, true
	case KindString:
		return TagString, true
	case KindEscape:
		return TagEscape, true
	case KindNumber:
		return TagNumber, true
	case KindKeyword:
		return TagKeyword, true
	case KindConstant:
		return TagConstant, true
	case KindOperator:
		return TagOperator, true
	case KindPunctuation:
		return TagPunctuation, true
	case KindFunction:
		return TagFunction, true
	case KindType:
		return TagType, true
	case KindProperty:
		return TagProperty, true
	case KindLabel:
		return TagLabel, true
	case KindError:
		return TagError, true
	case KindLeftParen, KindRightParen,
		KindLeftBracket, KindRightBracket,
		KindLeftBrace, KindRightBrace:
		return TagNone, false
	case KindIdentifier, KindOther:
		return TagNone, false
	default:
		return TagNone, false
	}
}

// TagForCapture maps a tree-sitter highlight capture name such as
// "keyword.function" or "string.special" onto a Tag. Only the first
// dotted component matters.
func TagForCapture(name string) (Tag, bool) {
	head, _, _ := strings.Cut(name, ".")
	switch head {
	case "comment":
		return TagComment, true
	case "string", "character":
		if strings.HasPrefix(name, "string.escape") {
			return TagEscape, true
		}
		return TagString, true
	case "escape":
		return TagEscape, true
	case "number", "float":
		return TagNumber, true
	case "keyword", "conditional", "repeat", "include", "exception":
		return TagKeyword, true
	case "constant", "boolean":
		return TagConstant, true
	case "operator":
		return TagOperator, true
	case "punctuation":
		return TagPunctuation, true
	case "function", "method", "constructor":
		return TagFunction, true
	case "type":
		return TagType, true
	case "property", "field", "attribute":
		return TagProperty, true
	case "label":
		return TagLabel, true
	case "error":
		return TagError, true
	}
	return TagNone, false
}
