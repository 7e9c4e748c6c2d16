// Package treesitter supplies hilite with syntax trees. A Manager keeps one
// parser per open document, reparses incrementally on every edit and hands
// out Trees that satisfy the syntax.Node contract, classified by each
// language's highlight query.
package treesitter

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/hilite/syntax"
)

// Config configures the tree-sitter integration.
type Config struct {
	// Matchers are evaluated in order; see Registry.LanguageForURI.
	Matchers []LanguageMatcher
}

// DefaultConfig registers every built-in language.
func DefaultConfig() Config {
	return Config{Matchers: BuiltinMatchers()}
}

// Tree is one parse of a document. It is immutable; a reparse produces a
// new Tree and closes the old one.
type Tree struct {
	raw   *tree_sitter.Tree
	src   []byte
	lang  *Language
	query *tree_sitter.Query
	Diff  *TreeDiff

	classifyOnce sync.Once
	classifier   syntax.Classifier
}

// TreeDiff describes what changed between the previous parse and this one.
type TreeDiff struct {
	// ChangedRanges are the byte ranges whose syntactic structure changed.
	ChangedRanges []syntax.Range

	// IsFullReparse is true on initial open.
	IsFullReparse bool
}

// Raw returns the underlying tree-sitter Tree.
func (t *Tree) Raw() *tree_sitter.Tree {
	if t == nil {
		return nil
	}
	return t.raw
}

// Language returns the language the tree was parsed with.
func (t *Tree) Language() *Language {
	if t == nil {
		return nil
	}
	return t.lang
}

// Text returns the source the tree was parsed from.
func (t *Tree) Text() []byte {
	if t == nil {
		return nil
	}
	return t.src
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() syntax.Node {
	if t == nil || t.raw == nil {
		return nil
	}
	root := t.raw.RootNode()
	if root == nil {
		return nil
	}
	return newNode(root, t.lang)
}

// Classifier returns the tag classifier for this tree. Highlight query
// captures take precedence over the language's kind table. The query runs
// once per tree, on first use.
func (t *Tree) Classifier() syntax.Classifier {
	if t == nil {
		return syntax.KindClassifier{}
	}
	t.classifyOnce.Do(func() {
		t.classifier = newQueryClassifier(t.raw, t.query, t.src)
	})
	return t.classifier
}

// Close releases the tree-sitter tree resources.
func (t *Tree) Close() {
	if t != nil && t.raw != nil {
		t.raw.Close()
	}
}
