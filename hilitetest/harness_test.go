package hilitetest_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gossip-lsp/hilite"
	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/hilitetest"
	"github.com/gossip-lsp/hilite/jsonrpc"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/syntax"
	"github.com/gossip-lsp/hilite/treesitter"
)

const jsonDoc = `{"a": [1, 2]}`

func newClient(t *testing.T) *hilitetest.Client {
	t.Helper()
	return hilitetest.NewClient(t, hilite.NewServer("test-server", "0.1.0"))
}

func TestClientHighlightsMirror(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)

	c.MustHighlights(uri, 0, 7)
	got := c.Decorations(uri)
	hilitetest.AssertHasEntry(t, got, hilitetest.E(0, 1, syntax.TagBrace))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(12, 13, syntax.TagBrace))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(6, 7, syntax.TagBracket))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(11, 12, syntax.TagBracket))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(6, 7, syntax.TagEnclosing))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(11, 12, syntax.TagEnclosing))

	// Nothing moved: only the enclosing decoration is cycled.
	cs := c.MustHighlights(uri, 0, 7)
	enclosing := []highlight.Entry{hilitetest.E(6, 7, syntax.TagEnclosing), hilitetest.E(11, 12, syntax.TagEnclosing)}
	assert.Equal(t, enclosing, cs.Adds)
	assert.Equal(t, enclosing, cs.Removes)
	assert.Equal(t, got, c.Decorations(uri))
}

func TestClientEditKeepsMirrorInSync(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)
	c.MustHighlights(uri, 0, 7)

	c.ChangeIncremental(uri, hilitetest.Rng(0, 6, 0, 12), "1")
	res, err := c.Highlights(uri, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), res.Version)

	got := c.Decorations(uri)
	hilitetest.AssertTagCount(t, got, syntax.TagBracket, 0)
	hilitetest.AssertHasEntry(t, got, hilitetest.E(7, 8, syntax.TagBrace))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(7, 8, syntax.TagEnclosing))
	hilitetest.AssertNoEntry(t, got, hilitetest.E(12, 13, syntax.TagBrace))

	// A fresh baseline reports exactly what the mirror already shows.
	require.NoError(t, c.Reset(uri))
	fresh := c.MustHighlights(uri, 0, 3)
	assert.Empty(t, fresh.Removes)
	assert.Equal(t, got, fresh.Adds)
}

func TestClientRegionStart(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)

	c.MustHighlights(uri, 100, 107)
	got := c.Decorations(uri)
	hilitetest.AssertHasEntry(t, got, hilitetest.E(106, 107, syntax.TagBracket))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(106, 107, syntax.TagEnclosing))

	pair, err := c.EnclosingBracket(uri, 107)
	require.NoError(t, err)
	hilitetest.AssertPairAt(t, pair, 106, 111)
}

func TestClientEnclosingBracket(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)

	pair, err := c.EnclosingBracket(uri, 7)
	require.NoError(t, err)
	assert.Nil(t, pair, "no pairs before the first highlights")

	c.MustHighlights(uri, 0, 0)
	pair, err = c.EnclosingBracket(uri, 7)
	require.NoError(t, err)
	hilitetest.AssertPairAt(t, pair, 6, 11)
	assert.Equal(t, bracket.Square, pair.Kind)

	pair, err = c.EnclosingBracket(uri, 12)
	require.NoError(t, err)
	hilitetest.AssertPairAt(t, pair, 0, 12)

	pair, err = c.EnclosingBracket(uri, 13)
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestClientUnknownDocument(t *testing.T) {
	c := newClient(t)

	_, err := c.Highlights(hilitetest.FileURI("missing.json"), 0, 0)
	assert.True(t, jsonrpc.HasCode(err, jsonrpc.CodeUnknownDocument), "got %v", err)
}

func TestClientClosedDocument(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)
	c.Close(uri)

	_, err := c.EnclosingBracket(uri, 0)
	assert.Error(t, err)
}

func TestClientFallbackLexer(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("a.js")
	c.Open(uri, "javascript", `f("(]", [1])`)

	c.MustHighlights(uri, 0, 1)
	got := c.Decorations(uri)
	hilitetest.AssertHasEntry(t, got, hilitetest.E(1, 2, syntax.TagParen))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(11, 12, syntax.TagParen))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(1, 2, syntax.TagEnclosing))
	hilitetest.AssertHasEntry(t, got, hilitetest.E(2, 6, syntax.TagString))
	hilitetest.AssertTagCount(t, got, syntax.TagBracket, 2)

	c.Configure(map[string]any{"fallbackLexer": false})
	c.MustHighlights(uri, 0, 1)
	assert.Empty(t, c.Decorations(uri))
}

func TestClientSettingsToggles(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)
	c.MustHighlights(uri, 0, 7)

	c.Configure(map[string]any{"syntaxHighlight": false, "enclosingBracket": false})
	c.MustHighlights(uri, 0, 7)
	got := c.Decorations(uri)
	for _, e := range got {
		assert.True(t, e.Tag.IsDelimiter(), "unexpected entry %v", e)
	}
	hilitetest.AssertTagCount(t, got, syntax.TagBrace, 2)
	hilitetest.AssertTagCount(t, got, syntax.TagBracket, 2)

	// Editor settings replace, not accumulate.
	c.Configure(map[string]any{"syntaxHighlight": false, "enclosingBracket": false, "bracketHighlight": false})
	c.MustHighlights(uri, 0, 7)
	assert.Empty(t, c.Decorations(uri))
}

func TestClientMaxDocumentBytes(t *testing.T) {
	c := newClient(t)
	uri := hilitetest.FileURI("doc.json")
	c.Open(uri, "json", jsonDoc)
	c.MustHighlights(uri, 0, 7)
	before := c.Decorations(uri)

	c.Configure(map[string]any{"maxDocumentBytes": 4})
	hilitetest.AssertEmptyChanges(t, c.MustHighlights(uri, 0, 0))
	assert.Equal(t, before, c.Decorations(uri))
}

func TestClientRejectsInvalidSettings(t *testing.T) {
	s := hilite.NewServer("test-server", "0.1.0")
	c := hilitetest.NewClient(t, s)

	c.Configure(map[string]any{"maxDocumentBytes": -1})
	c.BracketPairs("")
	assert.Equal(t, hilite.DefaultSettings(), s.Settings())
	assert.Eventually(t, func() bool {
		return len(c.Notifications(protocol.MethodShowMessage)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestClientBracketPairs(t *testing.T) {
	c := newClient(t)

	pairs := c.BracketPairs("a(b[c]d)e)")
	require.Len(t, pairs, 2)
	assert.Equal(t, bracket.Paren, pairs[0].Kind)
	assert.Equal(t, 1, pairs[0].Open.Byte)
	assert.Equal(t, 7, pairs[0].Close.Byte)
	assert.Equal(t, bracket.Square, pairs[1].Kind)

	assert.NotNil(t, c.BracketPairs("no brackets"))
}

func TestClientCodeBlocks(t *testing.T) {
	c := newClient(t)

	blocks := c.CodeBlocks("# t\n\n```go\nx := (1)\n```\n")
	require.Len(t, blocks, 1)
	assert.Equal(t, "go", blocks[0].Language)
	assert.Equal(t, "x := (1)", blocks[0].Content)
	assert.Equal(t, 11, blocks[0].Start)
}

func TestClientStats(t *testing.T) {
	c := newClient(t)
	c.BracketPairs("()")
	c.BracketPairs("[]")

	stats := c.Stats()
	require.Contains(t, stats, protocol.MethodBracketPairs)
	assert.Equal(t, int64(2), stats[protocol.MethodBracketPairs].Count)
	assert.Equal(t, int64(0), stats[protocol.MethodBracketPairs].Errors)
}

func TestClientCustomHandler(t *testing.T) {
	s := hilite.NewServer("test-server", "0.1.0")
	s.HandleRequest("custom/depth", func(ctx *hilite.Context, params json.RawMessage) (any, error) {
		var text string
		if err := json.Unmarshal(params, &text); err != nil {
			return nil, err
		}
		depth := 0
		for _, p := range bracket.FindPairs(text) {
			depth = max(depth, p.Depth+1)
		}
		return depth, nil
	})
	c := hilitetest.NewClient(t, s)

	var depth int
	require.NoError(t, c.Call("custom/depth", "(([]))", &depth))
	assert.Equal(t, 3, depth)

	res := c.Initialize(nil)
	require.NotNil(t, res.Capabilities.Experimental)
	assert.Contains(t, res.Capabilities.Experimental.Methods, "custom/depth")
	assert.Contains(t, res.Capabilities.Experimental.Methods, protocol.MethodHighlights)
	assert.Contains(t, res.Capabilities.Experimental.Tags, "enclosing")
	assert.Contains(t, res.Capabilities.Experimental.Languages, "json")

	err := c.Call("custom/missing", nil, nil)
	var rpcErr *jsonrpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, jsonrpc.CodeMethodNotFound, rpcErr.Code)
}

func TestClientShutdown(t *testing.T) {
	c := newClient(t)
	assert.NoError(t, c.Shutdown())
}

func TestParseString(t *testing.T) {
	tree := hilitetest.ParseString(t, treesitter.Go(), "package main\n\nfunc main() { f(1) }\n")
	hilitetest.AssertNoErrors(t, tree)

	snap := hilitetest.Snapshot(t, treesitter.Go(), "package main\n\nfunc main() { f(1) }\n")
	assert.Len(t, snap.Pairs, 3)
}
