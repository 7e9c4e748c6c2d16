package fallback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/fallback"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/syntax"
)

func TestJavaScriptPairsSkipStringsAndComments(t *testing.T) {
	src := "f(\"(]\", [1]) // )\n"
	tree := fallback.New(src, "", "javascript")
	assert.Equal(t, "JavaScript", tree.Lexer())
	assert.Equal(t, src, string(tree.Text()))

	snap := highlight.Extract(tree.Root(), tree.Classifier())
	require.Len(t, snap.Pairs, 2)
	assert.Equal(t, bracket.Paren, snap.Pairs[0].Kind)
	assert.Equal(t, 1, snap.Pairs[0].Open.Byte)
	assert.Equal(t, 11, snap.Pairs[0].Close.Byte)
	assert.Equal(t, bracket.Square, snap.Pairs[1].Kind)
	assert.Equal(t, 1, snap.Pairs[1].Depth)

	assert.Contains(t, snap.Spans, highlight.Span{Range: syntax.Range{Start: 2, End: 6}, Tag: syntax.TagString})
	assert.Contains(t, snap.Spans, highlight.Span{Range: syntax.Range{Start: 9, End: 10}, Tag: syntax.TagNumber})
	assert.Contains(t, snap.Spans, highlight.Span{Range: syntax.Range{Start: 13, End: 18}, Tag: syntax.TagComment})
}

func TestLexerSelection(t *testing.T) {
	tests := []struct {
		name, filename, languageID string
		want                       string
	}{
		{"by language id", "", "js", "JavaScript"},
		{"by filename", "main.rs", "", "Rust"},
		{"unknown id falls through to filename", "x.js", "no-such-language", "JavaScript"},
		{"plain text", "notes.txt", "", "plaintext"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fallback.New("x", tt.filename, tt.languageID).Lexer())
		})
	}
}

func TestPlainTextStillMatchesBrackets(t *testing.T) {
	tree := fallback.New("a (b [c] d) e", "notes.txt", "")
	snap := highlight.Extract(tree.Root(), tree.Classifier())
	assert.Equal(t, bracket.FindPairs("a (b [c] d) e"), snap.Pairs)
	assert.Empty(t, snap.Spans)
}

func TestEmptyText(t *testing.T) {
	tree := fallback.New("", "", "go")
	require.NotNil(t, tree.Root())
	assert.Empty(t, tree.Root().Children())
	snap := highlight.Extract(tree.Root(), tree.Classifier())
	assert.Empty(t, snap.Pairs)
	assert.Empty(t, snap.Spans)
}

func TestLeavesStayInsideText(t *testing.T) {
	src := "def f(x):\n    return {'a': [x]}  # (\n"
	tree := fallback.New(src, "", "python")
	prev := 0
	for _, c := range tree.Root().Children() {
		r := c.Range()
		assert.GreaterOrEqual(t, r.Start, prev, "leaves are ordered and disjoint")
		assert.LessOrEqual(t, r.End, len(src))
		prev = r.End
	}
	snap := highlight.Extract(tree.Root(), tree.Classifier())
	assert.Len(t, snap.Pairs, 3)
}
