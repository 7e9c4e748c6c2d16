package treesitter

import (
	"log/slog"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/syntax"
)

// TreeUpdateFunc is called after a tree is parsed or re-parsed.
type TreeUpdateFunc func(uri protocol.DocumentURI, tree *Tree)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for parse failures.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// Manager manages tree-sitter parsers and trees for all open documents.
// It is tied to a document.Store and automatically parses on open and re-parses
// incrementally on change.
type Manager struct {
	registry *Registry
	store    *document.Store
	queries  *QueryCache
	logger   *slog.Logger

	mu      sync.RWMutex
	parsers map[protocol.DocumentURI]*tree_sitter.Parser
	trees   map[protocol.DocumentURI]*Tree

	onTreeUpdate TreeUpdateFunc
}

// NewManager creates a new tree-sitter manager tied to a document store.
func NewManager(cfg Config, store *document.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: NewRegistry(cfg),
		store:    store,
		queries:  NewQueryCache(),
		logger:   slog.Default(),
		parsers:  make(map[protocol.DocumentURI]*tree_sitter.Parser),
		trees:    make(map[protocol.DocumentURI]*Tree),
	}
	for _, o := range opts {
		o(m)
	}

	store.OnOpen(m.handleOpen)
	store.OnClose(m.handleClose)

	return m
}

// OnTreeUpdate registers a callback that fires after every parse/reparse.
func (m *Manager) OnTreeUpdate(fn TreeUpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTreeUpdate = fn
}

// Registry returns the language registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// GetTree returns the current tree for the given document URI, or nil when
// the document has no registered language.
func (m *Manager) GetTree(uri protocol.DocumentURI) *Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trees[uri]
}

// Parse parses text with lang outside any document lifecycle. The caller
// owns the returned tree and must Close it.
func (m *Manager) Parse(lang *Language, text string) (*Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang.Grammar); err != nil {
		return nil, err
	}
	src := []byte(text)
	raw := parser.Parse(src, nil)
	return m.wrap(raw, src, lang, &TreeDiff{IsFullReparse: true}), nil
}

func (m *Manager) wrap(raw *tree_sitter.Tree, src []byte, lang *Language, diff *TreeDiff) *Tree {
	q, err := m.queries.Get(lang)
	if err != nil {
		m.logger.Warn("highlight query unavailable", "language", lang.Name, "error", err)
	}
	return &Tree{raw: raw, src: src, lang: lang, query: q, Diff: diff}
}

// handleOpen creates a parser for a newly opened document and performs the
// initial full parse. A reopened document starts from scratch.
func (m *Manager) handleOpen(doc *document.Document) {
	uri := doc.URI()
	m.handleClose(uri)

	lang, err := m.registry.LanguageForURI(string(uri), doc.LanguageID())
	if err != nil {
		m.logger.Debug("no grammar for document", "uri", uri, "languageId", doc.LanguageID())
		return
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang.Grammar); err != nil {
		parser.Close()
		m.logger.Error("setting parser language", "language", lang.Name, "error", err)
		return
	}

	src := []byte(doc.Text())
	wrapped := m.wrap(parser.Parse(src, nil), src, lang, &TreeDiff{
		IsFullReparse: true,
		ChangedRanges: []syntax.Range{{Start: 0, End: len(src)}},
	})

	m.mu.Lock()
	m.parsers[uri] = parser
	m.trees[uri] = wrapped
	cb := m.onTreeUpdate
	m.mu.Unlock()

	doc.SetOnTreeEdit(func(edits []document.EditRange) {
		m.handleEdits(uri, edits)
	})

	if cb != nil {
		cb(uri, wrapped)
	}
}

// handleClose releases the parser and tree of a closed document.
func (m *Manager) handleClose(uri protocol.DocumentURI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if parser, ok := m.parsers[uri]; ok {
		parser.Close()
		delete(m.parsers, uri)
	}
	if tree, ok := m.trees[uri]; ok {
		tree.Close()
		delete(m.trees, uri)
	}
}

// handleEdits applies the edits to the old tree and reparses incrementally.
func (m *Manager) handleEdits(uri protocol.DocumentURI, edits []document.EditRange) {
	doc := m.store.Get(uri)
	if doc == nil {
		return
	}

	m.mu.Lock()
	parser, ok := m.parsers[uri]
	oldTree := m.trees[uri]
	if !ok || oldTree == nil || oldTree.raw == nil {
		m.mu.Unlock()
		return
	}

	for _, edit := range edits {
		oldTree.raw.Edit(&tree_sitter.InputEdit{
			StartByte:      uint(edit.StartByte),
			OldEndByte:     uint(edit.OldEndByte),
			NewEndByte:     uint(edit.NewEndByte),
			StartPosition:  point(edit.StartPoint),
			OldEndPosition: point(edit.OldEndPoint),
			NewEndPosition: point(edit.NewEndPoint),
		})
	}

	src := []byte(doc.Text())
	newRaw := parser.Parse(src, oldTree.raw)
	wrapped := m.wrap(newRaw, src, oldTree.lang, computeTreeDiff(oldTree.raw, newRaw))
	oldTree.Close()
	m.trees[uri] = wrapped
	cb := m.onTreeUpdate
	m.mu.Unlock()

	if cb != nil {
		cb(uri, wrapped)
	}
}

func point(p document.Point) tree_sitter.Point {
	return tree_sitter.Point{Row: p.Row, Column: p.Column}
}

// computeTreeDiff builds a TreeDiff from the old (edited) and new (reparsed) trees.
func computeTreeDiff(oldRaw, newRaw *tree_sitter.Tree) *TreeDiff {
	ranges := oldRaw.ChangedRanges(newRaw)
	diff := &TreeDiff{ChangedRanges: make([]syntax.Range, len(ranges))}
	for i, r := range ranges {
		diff.ChangedRanges[i] = syntax.Range{Start: int(r.StartByte), End: int(r.EndByte)}
	}
	return diff
}

// Close releases all parsers, trees and compiled queries.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uri, parser := range m.parsers {
		parser.Close()
		delete(m.parsers, uri)
	}
	for uri, tree := range m.trees {
		tree.Close()
		delete(m.trees, uri)
	}
	m.queries.Close()
}
