// Package fallback builds a flat syntax tree from chroma tokens. It serves
// documents for which no tree-sitter grammar is registered: the result is a
// root node whose children are classified token leaves, so the highlight
// extractor still sees string and comment boundaries and only matches the
// delimiters that sit outside them.
package fallback

import (
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/lexers"

	"github.com/gossip-lsp/hilite/syntax"
)

// Tree is a flat token tree over one text.
type Tree struct {
	src   []byte
	root  *node
	lexer string
}

// New tokenises text. The lexer is chosen by languageID, then by filename,
// then by content analysis, and finally chroma's plain-text fallback.
func New(text, filename, languageID string) *Tree {
	l := pick(text, filename, languageID)
	t := &Tree{
		src:   []byte(text),
		lexer: l.Config().Name,
		root:  &node{kind: syntax.KindOther, r: syntax.Range{End: len(text)}},
	}
	t.root.kids = leaves(chroma.Coalesce(l), text)
	return t
}

func pick(text, filename, languageID string) chroma.Lexer {
	if languageID != "" {
		if l := lexers.Get(languageID); l != nil {
			return l
		}
	}
	if filename != "" {
		if l := lexers.Match(filename); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}

// Root returns the root node. It is never nil.
func (t *Tree) Root() syntax.Node { return t.root }

// Text returns the tokenised source.
func (t *Tree) Text() []byte { return t.src }

// Classifier classifies leaves by kind.
func (t *Tree) Classifier() syntax.Classifier { return syntax.KindClassifier{} }

// Lexer returns the name of the chroma lexer that produced the tree.
func (t *Tree) Lexer() string { return t.lexer }

// leaves converts the token stream into leaf nodes. Tokens are laid end to
// end from offset zero; a token that does not match the text at its offset
// ends the stream, since some lexers normalise the input they are given.
func leaves(l chroma.Lexer, text string) []syntax.Node {
	it, err := l.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return nil
	}
	var (
		out []syntax.Node
		off int
	)
	for tok := it(); tok != chroma.EOF; tok = it() {
		if off >= len(text) || !strings.HasPrefix(text[off:], tok.Value) {
			break
		}
		start := off
		off += len(tok.Value)
		kind := kindFor(tok.Type)
		if opaque(tok.Type) {
			out = appendLeaf(out, kind, start, off)
			continue
		}
		out = splitDelimiters(out, kind, text, start, off)
	}
	return out
}

// splitDelimiters emits every delimiter byte in text[start:end] as its own
// grouping leaf and the runs between them with kind.
func splitDelimiters(out []syntax.Node, kind syntax.Kind, text string, start, end int) []syntax.Node {
	run := start
	for i := start; i < end; i++ {
		dk, ok := syntax.KindForDelimiter(text[i])
		if !ok {
			continue
		}
		out = appendLeaf(out, kind, run, i)
		out = append(out, &node{kind: dk, r: syntax.Range{Start: i, End: i + 1}})
		run = i + 1
	}
	return appendLeaf(out, kind, run, end)
}

// appendLeaf drops empty leaves and leaves that could never be tagged.
func appendLeaf(out []syntax.Node, kind syntax.Kind, start, end int) []syntax.Node {
	if end <= start || kind == syntax.KindOther || kind == syntax.KindIdentifier {
		return out
	}
	return append(out, &node{kind: kind, r: syntax.Range{Start: start, End: end}})
}

// opaque reports whether delimiters inside a token of type t are text.
func opaque(t chroma.TokenType) bool {
	return t.InCategory(chroma.Comment) || t.InSubCategory(chroma.LiteralString)
}

func kindFor(t chroma.TokenType) syntax.Kind {
	switch {
	case t.InCategory(chroma.Comment):
		return syntax.KindComment
	case t == chroma.LiteralStringEscape:
		return syntax.KindEscape
	case t.InSubCategory(chroma.LiteralString):
		return syntax.KindString
	case t.InSubCategory(chroma.LiteralNumber):
		return syntax.KindNumber
	case t == chroma.KeywordConstant:
		return syntax.KindConstant
	case t == chroma.KeywordType:
		return syntax.KindType
	case t.InCategory(chroma.Keyword):
		return syntax.KindKeyword
	case t == chroma.NameFunction, t == chroma.NameFunctionMagic, t == chroma.NameBuiltin:
		return syntax.KindFunction
	case t == chroma.NameClass:
		return syntax.KindType
	case t == chroma.NameAttribute, t == chroma.NameProperty, t == chroma.NameTag:
		return syntax.KindProperty
	case t == chroma.NameLabel:
		return syntax.KindLabel
	case t == chroma.NameConstant:
		return syntax.KindConstant
	case t.InCategory(chroma.Name):
		return syntax.KindIdentifier
	case t.InCategory(chroma.Operator):
		return syntax.KindOperator
	case t.InCategory(chroma.Punctuation):
		return syntax.KindPunctuation
	case t == chroma.Error:
		return syntax.KindError
	}
	return syntax.KindOther
}

type node struct {
	kind syntax.Kind
	r    syntax.Range
	kids []syntax.Node
}

func (n *node) Kind() syntax.Kind       { return n.kind }
func (n *node) Range() syntax.Range     { return n.r }
func (n *node) Children() []syntax.Node { return n.kids }
