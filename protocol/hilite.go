package protocol

import (
	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/highlight"
)

// BracketPairsParams asks for the lexer-only pairs of a piece of text.
// No document needs to be open.
type BracketPairsParams struct {
	Text string `json:"text"`
}

// BracketPairsResult lists pairs sorted by open offset.
type BracketPairsResult struct {
	Pairs []bracket.Pair `json:"pairs"`
}

// HighlightsParams requests the change set for an open document. Offsets
// are editor code units; RegionStart shifts every emitted entry.
type HighlightsParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	RegionStart  int                    `json:"regionStart"`
	Cursor       int                    `json:"cursor"`
}

// HighlightsResult is the change set plus the document version it was
// computed against.
type HighlightsResult struct {
	Version int32               `json:"version"`
	Changes highlight.ChangeSet `json:"changes"`
}

type EnclosingBracketParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Cursor       int                    `json:"cursor"`
}

// EnclosingBracketResult holds the innermost pair, or nil.
type EnclosingBracketResult struct {
	Pair *bracket.Pair `json:"pair"`
}

type ResetParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// CodeBlocksParams asks for the fenced code blocks of a markdown text.
type CodeBlocksParams struct {
	Text string `json:"text"`
}

// CodeBlock is one code region. Start and End bound the content in
// editor code units; the fences are outside.
type CodeBlock struct {
	Language string `json:"language"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Content  string `json:"content"`
}

type CodeBlocksResult struct {
	Blocks []CodeBlock `json:"blocks"`
}

// StatsResult reports per-method request counters.
type StatsResult struct {
	Methods map[string]MethodStat `json:"methods"`
}

// MethodStat is the telemetry of one method.
type MethodStat struct {
	Count   int64   `json:"count"`
	Errors  int64   `json:"errors"`
	TotalMs float64 `json:"totalMs"`
	MaxMs   float64 `json:"maxMs"`
}
