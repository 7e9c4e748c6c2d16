package treesitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/syntax"
	"github.com/gossip-lsp/hilite/treesitter"
)

func open(t *testing.T, uri, languageID, text string) (*document.Store, *treesitter.Manager, protocol.DocumentURI) {
	t.Helper()
	store := document.NewStore()
	mgr := treesitter.NewManager(treesitter.DefaultConfig(), store)
	t.Cleanup(mgr.Close)
	u := protocol.DocumentURI(uri)
	store.Open(&protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: u, LanguageID: languageID, Version: 1, Text: text},
	})
	return store, mgr, u
}

func hasSpan(spans []highlight.Span, start, end int, tag syntax.Tag) bool {
	for _, s := range spans {
		if s.Range.Start == start && s.Range.End == end && s.Tag == tag {
			return true
		}
	}
	return false
}

func TestRegistryLanguageFor(t *testing.T) {
	r := treesitter.NewRegistry(treesitter.DefaultConfig())
	tests := []struct {
		uri, languageID string
		want            string
	}{
		{"file:///a/main.go", "", "go"},
		{"file:///a/data.json", "", "json"},
		{"file:///a/.prettierrc", "", "json"},
		{"file:///a/x.txt", "python", "python"},
		{"file:///a/ci.yml", "", "yaml"},
		{"file:///a/script.pyi", "", "python"},
	}
	for _, tt := range tests {
		lang, err := r.LanguageForURI(tt.uri, tt.languageID)
		if err != nil {
			t.Errorf("LanguageForURI(%q, %q): %v", tt.uri, tt.languageID, err)
			continue
		}
		if lang.Name != tt.want {
			t.Errorf("LanguageForURI(%q, %q) = %s, want %s", tt.uri, tt.languageID, lang.Name, tt.want)
		}
	}

	if _, err := r.LanguageForURI("file:///notes.md", "markdown"); err == nil {
		t.Error("expected no language for markdown")
	}
	assert.Equal(t, []string{"go", "json", "python", "yaml"}, r.Names())
}

func TestRegistryPattern(t *testing.T) {
	r := treesitter.NewRegistry(treesitter.Config{})
	r.RegisterMatcher(treesitter.LanguageMatcher{Language: treesitter.YAML(), Pattern: "*.hilite"})
	lang, err := r.LanguageForURI("file:///x/.hilite", "")
	require.NoError(t, err)
	assert.Equal(t, "yaml", lang.Name)
}

func TestGoPairsIgnoreStrings(t *testing.T) {
	src := "package p\n\nfunc f() { g(\"(]\", []int{1}) }\n"
	_, mgr, uri := open(t, "file:///p.go", "go", src)
	tree := mgr.GetTree(uri)
	require.NotNil(t, tree)

	snap := highlight.Extract(tree.Root(), tree.Classifier())
	got := map[bracket.Kind]int{}
	for _, p := range snap.Pairs {
		got[p.Kind]++
		assert.Less(t, p.Open.Byte, p.Close.Byte)
	}
	// f() g(...) and the brace of the body and the composite literal.
	assert.Equal(t, 2, got[bracket.Paren])
	assert.Equal(t, 1, got[bracket.Square])
	assert.Equal(t, 2, got[bracket.Brace])

	lexed := bracket.FindPairs(src)
	assert.NotEqual(t, len(lexed), len(snap.Pairs), "the lexer is fooled by the string")
}

func TestGoHighlights(t *testing.T) {
	src := "package p\n\n// doc\nfunc f() int { return g(42) }\n"
	_, mgr, uri := open(t, "file:///p.go", "go", src)
	tree := mgr.GetTree(uri)
	snap := highlight.Extract(tree.Root(), tree.Classifier())

	at := func(s string) int { return indexOf(src, s) }
	assert.True(t, hasSpan(snap.Spans, at("// doc"), at("// doc")+6, syntax.TagComment), "comment")
	assert.True(t, hasSpan(snap.Spans, at("func"), at("func")+4, syntax.TagKeyword), "keyword")
	assert.True(t, hasSpan(snap.Spans, at("f()"), at("f()")+1, syntax.TagFunction), "declared function")
	assert.True(t, hasSpan(snap.Spans, at("g("), at("g(")+1, syntax.TagFunction), "called function")
	assert.True(t, hasSpan(snap.Spans, at("42"), at("42")+2, syntax.TagNumber), "number")
	assert.True(t, hasSpan(snap.Spans, at("int"), at("int")+3, syntax.TagType), "type")
}

func TestJSONPropertyKeys(t *testing.T) {
	src := `{"k": [true, "v"]}`
	_, mgr, uri := open(t, "file:///d.json", "json", src)
	tree := mgr.GetTree(uri)
	snap := highlight.Extract(tree.Root(), tree.Classifier())

	assert.True(t, hasSpan(snap.Spans, 1, 4, syntax.TagProperty), "key is a property")
	assert.True(t, hasSpan(snap.Spans, 13, 16, syntax.TagString), "value is a string")
	assert.True(t, hasSpan(snap.Spans, 7, 11, syntax.TagConstant), "true is a constant")
	assert.Len(t, snap.Pairs, 2)
}

func TestIncrementalReparse(t *testing.T) {
	store, mgr, uri := open(t, "file:///d.json", "json", `{"a": 1}`)
	var updates []*treesitter.Tree
	mgr.OnTreeUpdate(func(u protocol.DocumentURI, tree *treesitter.Tree) {
		updates = append(updates, tree)
	})

	store.Change(&protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: `{"a": [1]}`}},
	})

	require.Len(t, updates, 1)
	tree := mgr.GetTree(uri)
	assert.Same(t, updates[0], tree)
	assert.False(t, tree.Diff.IsFullReparse)
	assert.Equal(t, `{"a": [1]}`, string(tree.Text()))
	assert.Len(t, highlight.Extract(tree.Root(), tree.Classifier()).Pairs, 2)
}

func TestSyntaxErrorsStillProducePairs(t *testing.T) {
	_, mgr, uri := open(t, "file:///broken.go", "go", "package p\nfunc f( { x := [1, 2] }\n")
	tree := mgr.GetTree(uri)
	snap := highlight.Extract(tree.Root(), tree.Classifier())
	for i, a := range snap.Pairs {
		for _, b := range snap.Pairs[i+1:] {
			assert.True(t, a.Disjoint(b) || a.Contains(b) || b.Contains(a), "pairs %v and %v cross", a, b)
		}
	}
}

func TestCloseReleasesTree(t *testing.T) {
	store, mgr, uri := open(t, "file:///p.py", "python", "print((1))\n")
	require.NotNil(t, mgr.GetTree(uri))
	store.Close(&protocol.DidCloseTextDocumentParams{TextDocument: protocol.TextDocumentIdentifier{URI: uri}})
	assert.Nil(t, mgr.GetTree(uri))
}

func TestUnknownLanguageHasNoTree(t *testing.T) {
	_, mgr, uri := open(t, "file:///notes.md", "markdown", "# hi")
	assert.Nil(t, mgr.GetTree(uri))
}

func TestQueryCache(t *testing.T) {
	qc := treesitter.NewQueryCache()
	defer qc.Close()

	q1, err := qc.Get(treesitter.Go())
	require.NoError(t, err)
	require.NotNil(t, q1)
	q2, _ := qc.Get(treesitter.Go())
	assert.Same(t, q1, q2)

	bad := &treesitter.Language{Name: "bad", Grammar: treesitter.Go().Grammar, Highlights: "(no_such_node) @x"}
	_, err = qc.Get(bad)
	assert.Error(t, err)
	assert.Equal(t, 2, qc.Len())

	q, err := qc.Get(&treesitter.Language{Name: "plain"})
	assert.NoError(t, err)
	assert.Nil(t, q)
}

func TestParseStandalone(t *testing.T) {
	mgr := treesitter.NewManager(treesitter.DefaultConfig(), document.NewStore())
	defer mgr.Close()
	tree, err := mgr.Parse(treesitter.YAML(), "a: [1, {b: 2}]\n")
	require.NoError(t, err)
	defer tree.Close()

	snap := highlight.Extract(tree.Root(), tree.Classifier())
	assert.Len(t, snap.Pairs, 2)
	assert.True(t, hasSpan(snap.Spans, 0, 1, syntax.TagProperty))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
