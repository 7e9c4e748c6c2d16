package hilite

import (
	"log/slog"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/syntax"
)

// TreeSource is the syntax tree an Engine highlights. *treesitter.Tree and
// *fallback.Tree implement it.
type TreeSource interface {
	Root() syntax.Node
	Text() []byte
	Classifier() syntax.Classifier
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEnclosing turns the enclosing-bracket decoration on or off
// (default on).
func WithEnclosing(on bool) EngineOption {
	return func(e *Engine) { e.enclosing = on }
}

// WithSyntaxHighlight turns classifier spans on or off (default on). With
// it off only bracket entries are emitted.
func WithSyntaxHighlight(on bool) EngineOption {
	return func(e *Engine) { e.syntax = on }
}

// WithBracketHighlight turns the per-pair delimiter entries on or off
// (default on). The enclosing decoration is governed by WithEnclosing.
func WithBracketHighlight(on bool) EngineOption {
	return func(e *Engine) { e.brackets = on }
}

// WithMaxBytes bounds the size of text the engine highlights. Larger texts
// yield an empty change set and leave the diff baseline alone, but drop the
// pair set so EnclosingBracket does not answer for older text. Zero means
// no limit.
func WithMaxBytes(n int) EngineOption {
	return func(e *Engine) { e.maxBytes = n }
}

// WithEngineLogger sets the logger for dropped entries and skipped texts.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// Engine binds one document's syntax tree to one diff baseline. It exposes
// the four operations a host drives per keystroke or cursor move.
//
// An Engine is not safe for concurrent use. Calls on one instance must be
// serialized, since each ComputeHighlights replaces the baseline the next
// one diffs against.
type Engine struct {
	src TreeSource
	tr  *document.Translator

	differ highlight.Differ
	pairs  []bracket.Pair

	enclosing bool
	syntax    bool
	brackets  bool
	maxBytes  int
	logger    *slog.Logger
}

// NewEngine creates an engine over src, which may be nil until SetSource.
func NewEngine(src TreeSource, opts ...EngineOption) *Engine {
	e := &Engine{
		src:       src,
		enclosing: true,
		syntax:    true,
		brackets:  true,
		logger:    slog.Default(),
	}
	e.Configure(opts...)
	return e
}

// Configure applies options to an existing engine. The baseline is kept:
// entries a changed option suppresses are removed by the next diff.
func (e *Engine) Configure(opts ...EngineOption) {
	for _, o := range opts {
		o(e)
	}
}

// SetSource replaces the tree. It is called after every reparse.
func (e *Engine) SetSource(src TreeSource) {
	if src == e.src {
		return
	}
	e.src = src
	e.tr = nil
}

// FindBracketPairs returns the lexer-only pairs of text, sorted by open
// offset. It ignores the engine's tree and state.
func (e *Engine) FindBracketPairs(text string) []bracket.Pair {
	return bracket.FindPairs(text)
}

// ComputeHighlights extracts a snapshot from the current tree, projects it
// to editor units shifted by regionStart, and returns what changed since the
// previous call. cursor is in the same coordinates as the emitted entries,
// so it already includes regionStart.
func (e *Engine) ComputeHighlights(regionStart, cursor int) highlight.ChangeSet {
	var snap highlight.Snapshot
	if e.src != nil {
		text := e.src.Text()
		if e.maxBytes > 0 && len(text) > e.maxBytes {
			e.logger.Debug("text too large to highlight", "bytes", len(text), "limit", e.maxBytes)
			e.pairs = nil
			return highlight.ChangeSet{Adds: []highlight.Entry{}, Removes: []highlight.Entry{}}
		}
		snap = highlight.Extract(e.src.Root(), e.classifier())
	}

	proj, dropped := snap.Project(e.translator(), regionStart)
	if dropped > 0 {
		e.logger.Debug("entries dropped by offset translation", "count", dropped)
	}
	e.pairs = proj.Pairs

	var enc *bracket.Pair
	if e.enclosing {
		if p, ok := bracket.Enclosing(proj.Pairs, cursor); ok {
			enc = &p
		}
	}
	if !e.brackets {
		proj.Pairs = nil
	}
	return e.differ.Diff(proj, enc)
}

// EnclosingBracket returns the innermost pair around cursor among the pairs
// of the last ComputeHighlights.
func (e *Engine) EnclosingBracket(cursor int) (bracket.Pair, bool) {
	return bracket.Enclosing(e.pairs, cursor)
}

// Reset discards the baseline and the last pair set. The next
// ComputeHighlights reports everything as added.
func (e *Engine) Reset() {
	e.differ.Reset()
	e.pairs = nil
}

// Retained returns how many entries the host is assumed to show.
func (e *Engine) Retained() int { return e.differ.Retained() }

func (e *Engine) classifier() syntax.Classifier {
	if !e.syntax {
		return syntax.ClassifierFunc(func(syntax.Node) (syntax.Tag, bool) { return syntax.TagNone, false })
	}
	return e.src.Classifier()
}

func (e *Engine) translator() highlight.Translator {
	if e.src == nil {
		return highlight.Identity{}
	}
	if e.tr == nil {
		e.tr = document.NewTranslator(string(e.src.Text()))
	}
	return e.tr
}
