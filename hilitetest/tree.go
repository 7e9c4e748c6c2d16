package hilitetest

import (
	"testing"

	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/treesitter"
)

// ParseString parses src with lang outside any document lifecycle. The tree
// is closed when the test completes.
func ParseString(t testing.TB, lang *treesitter.Language, src string) *treesitter.Tree {
	t.Helper()
	mgr := treesitter.NewManager(treesitter.DefaultConfig(), document.NewStore())
	t.Cleanup(mgr.Close)

	tree, err := mgr.Parse(lang, src)
	if err != nil {
		t.Fatalf("parsing %s: %v", lang.Name, err)
	}
	t.Cleanup(tree.Close)
	return tree
}

// Snapshot parses src and extracts its byte-offset snapshot.
func Snapshot(t testing.TB, lang *treesitter.Language, src string) highlight.Snapshot {
	t.Helper()
	tree := ParseString(t, lang, src)
	return highlight.Extract(tree.Root(), tree.Classifier())
}

// AssertNoErrors asserts that the parse tree contains no ERROR nodes.
func AssertNoErrors(t testing.TB, tree *treesitter.Tree) {
	t.Helper()
	if tree.Raw() == nil {
		t.Fatal("tree is nil")
	}
	if tree.Raw().RootNode().HasError() {
		t.Error("parse tree contains errors")
	}
}
