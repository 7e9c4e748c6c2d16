package hilite

import (
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/syntax"
)

// buildCapabilities reports incremental sync, UTF-16 offsets and the
// hilite/* surface, including any custom methods registered so far.
func (s *Server) buildCapabilities() protocol.ServerCapabilities {
	methods := append([]string(nil), protocol.HiliteMethods...)
	s.mu.RLock()
	for m := range s.handlers {
		methods = append(methods, m)
	}
	s.mu.RUnlock()

	return protocol.ServerCapabilities{
		PositionEncoding: "utf-16",
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.SyncIncremental,
		},
		Experimental: &protocol.HiliteCapabilities{
			Methods:   methods,
			Tags:      syntax.TagNames(),
			Languages: s.trees.Registry().Names(),
		},
	}
}
