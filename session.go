package hilite

import (
	"sync"

	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/fallback"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/treesitter"
)

// session is the per-document highlight state. Its mutex serializes the
// calls on the engine.
type session struct {
	mu     sync.Mutex
	uri    protocol.DocumentURI
	engine *Engine

	// fb caches the chroma tree of documents without a grammar.
	fb        *fallback.Tree
	fbVersion int32
}

func (s *Server) handleOpen(doc *document.Document) {
	uri := doc.URI()
	sess := &session{uri: uri, engine: NewEngine(nil, s.settings.store.Get().EngineOptions(s.logger)...)}
	s.mu.Lock()
	s.sessions[uri] = sess
	s.mu.Unlock()
	s.logger.Debug("document opened", "uri", uri, "languageId", doc.LanguageID(), "bytes", doc.Len())
}

func (s *Server) handleClose(uri protocol.DocumentURI) {
	s.mu.Lock()
	delete(s.sessions, uri)
	s.mu.Unlock()
	s.logger.Debug("document closed", "uri", uri)
}

// handleTreeUpdate points the session's engine at a reparsed tree as soon as
// it exists. The manager closes the previous tree right after a reparse, so
// the engine must not keep it until the next highlight request.
func (s *Server) handleTreeUpdate(uri protocol.DocumentURI, tree *treesitter.Tree) {
	if tree.Diff != nil {
		changed := 0
		for _, r := range tree.Diff.ChangedRanges {
			changed += r.Len()
		}
		s.logger.Debug("tree updated",
			"uri", uri,
			"full", tree.Diff.IsFullReparse,
			"changedRanges", len(tree.Diff.ChangedRanges),
			"changedBytes", changed,
		)
	}

	sess := s.sessionFor(uri)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.SetSource(tree)
	sess.fb = nil
}

func (s *Server) sessionFor(uri protocol.DocumentURI) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[uri]
}

// source picks the tree the session's engine reads: the tree-sitter tree
// when the document has a grammar, otherwise a chroma tree if the fallback
// lexer is enabled. It returns nil when neither applies.
func (s *Server) source(sess *session, doc *document.Document, settings *Settings) TreeSource {
	if tree := s.trees.GetTree(sess.uri); tree != nil {
		sess.fb = nil
		return tree
	}
	if !settings.FallbackLexer {
		sess.fb = nil
		return nil
	}
	version, text, _ := doc.Snapshot()
	if sess.fb == nil || sess.fbVersion != version {
		sess.fb = fallback.New(text, uriToPath(string(sess.uri)), doc.LanguageID())
		sess.fbVersion = version
		s.logger.Debug("fallback tree built", "uri", sess.uri, "lexer", sess.fb.Lexer())
	}
	return sess.fb
}
