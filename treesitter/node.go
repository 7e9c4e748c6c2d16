package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/hilite/syntax"
)

// node adapts a tree-sitter node to syntax.Node.
type node struct {
	raw  *tree_sitter.Node
	lang *Language
	kind syntax.Kind
}

func newNode(raw *tree_sitter.Node, lang *Language) *node {
	return &node{raw: raw, lang: lang, kind: kindOf(raw, lang)}
}

func (n *node) Kind() syntax.Kind { return n.kind }

func (n *node) Range() syntax.Range {
	return syntax.Range{Start: int(n.raw.StartByte()), End: int(n.raw.EndByte())}
}

func (n *node) Children() []syntax.Node {
	count := n.raw.ChildCount()
	if count == 0 {
		return nil
	}
	kids := make([]syntax.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if c := n.raw.Child(i); c != nil {
			kids = append(kids, newNode(c, n.lang))
		}
	}
	return kids
}

// kindOf normalizes a tree-sitter node. The language table wins; after that
// error and missing nodes, then anonymous tokens by their spelling.
func kindOf(raw *tree_sitter.Node, lang *Language) syntax.Kind {
	if raw.IsMissing() {
		return syntax.KindOther
	}
	if raw.IsError() {
		return syntax.KindError
	}
	t := raw.Kind()
	if lang != nil {
		if k, ok := lang.Kinds[t]; ok {
			return k
		}
	}
	if raw.IsNamed() {
		return syntax.KindOther
	}
	return tokenKind(t)
}

// tokenKind classifies an anonymous token by its text.
func tokenKind(t string) syntax.Kind {
	if len(t) == 1 {
		if k, ok := syntax.KindForDelimiter(t[0]); ok {
			return k
		}
	}
	switch {
	case t == "":
		return syntax.KindOther
	case isWord(t):
		return syntax.KindKeyword
	case allIn(t, ",;.:"):
		return syntax.KindPunctuation
	case allIn(t, "+-*/%=<>!&|^~?@"):
		return syntax.KindOperator
	}
	return syntax.KindOther
}

func isWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

func allIn(s, set string) bool {
	for i := 0; i < len(s); i++ {
		found := false
		for j := 0; j < len(set); j++ {
			if s[i] == set[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
