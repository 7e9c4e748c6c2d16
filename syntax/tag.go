package syntax

import "fmt"

// Tag is the semantic classification of a highlighted range. Hosts map tags
// to styles; hilite never interprets them beyond equality.
type Tag uint8

const (
	TagNone Tag = iota
	TagComment
	TagString
	TagEscape
	TagNumber
	TagKeyword
	TagConstant
	TagOperator
	TagPunctuation
	TagFunction
	TagType
	TagProperty
	TagLabel
	TagError

	// Delimiter tags are assigned to matched bracket pairs, never by a
	// Classifier.
	TagParen
	TagBracket
	TagBrace

	// TagEnclosing marks the delimiters of the pair enclosing the cursor.
	TagEnclosing
	tagCount
)

var tagNames = [tagCount]string{
	TagNone:        "none",
	TagComment:     "comment",
	TagString:      "string",
	TagEscape:      "escape",
	TagNumber:      "number",
	TagKeyword:     "keyword",
	TagConstant:    "constant",
	TagOperator:    "operator",
	TagPunctuation: "punctuation",
	TagFunction:    "function",
	TagType:        "type",
	TagProperty:    "property",
	TagLabel:       "label",
	TagError:       "error",
	TagParen:       "paren",
	TagBracket:     "bracket",
	TagBrace:       "brace",
	TagEnclosing:   "enclosing",
}

func (t Tag) String() string {
	if t < tagCount {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// IsDelimiter reports whether t is one of the bracket-pair tags.
func (t Tag) IsDelimiter() bool {
	return t == TagParen || t == TagBracket || t == TagBrace
}

// MarshalText encodes the tag as its name so change sets are readable on
// the wire.
func (t Tag) MarshalText() ([]byte, error) {
	if t >= tagCount {
		return nil, fmt.Errorf("unknown tag %d", uint8(t))
	}
	return []byte(tagNames[t]), nil
}

// UnmarshalText decodes a tag name.
func (t *Tag) UnmarshalText(text []byte) error {
	tag, ok := ParseTag(string(text))
	if !ok {
		return fmt.Errorf("unknown tag %q", text)
	}
	*t = tag
	return nil
}

// ParseTag returns the tag with the given name.
func ParseTag(name string) (Tag, bool) {
	for i, n := range tagNames {
		if n == name {
			return Tag(i), true
		}
	}
	return TagNone, false
}

// TagNames returns every tag name except "none", in tag order.
func TagNames() []string {
	return append([]string(nil), tagNames[TagNone+1:]...)
}
