package hilite

import (
	"encoding/json"
	"time"

	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/jsonrpc"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/region"
)

// RawHandler processes a JSON-RPC request with raw params. Use
// HandleRequest to register one for a custom method.
type RawHandler func(ctx *Context, params json.RawMessage) (any, error)

type builtinHandler func(s *Server, ctx *Context, params json.RawMessage) (any, error)

var builtins = map[string]builtinHandler{
	protocol.MethodBracketPairs:     (*Server).bracketPairs,
	protocol.MethodHighlights:       (*Server).highlights,
	protocol.MethodEnclosingBracket: (*Server).enclosingBracket,
	protocol.MethodReset:            (*Server).reset,
	protocol.MethodCodeBlocks:       (*Server).codeBlocks,
	protocol.MethodStats:            (*Server).stats,
}

func decode[T any](params json.RawMessage) (*T, error) {
	p := new(T)
	if len(params) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(params, p); err != nil {
		return nil, jsonrpc.Errorf(jsonrpc.CodeInvalidParams, "%v", err)
	}
	return p, nil
}

func (s *Server) bracketPairs(_ *Context, params json.RawMessage) (any, error) {
	p, err := decode[protocol.BracketPairsParams](params)
	if err != nil {
		return nil, err
	}
	pairs := bracket.FindPairs(p.Text)
	if pairs == nil {
		pairs = []bracket.Pair{}
	}
	return &protocol.BracketPairsResult{Pairs: pairs}, nil
}

func (s *Server) highlights(ctx *Context, params json.RawMessage) (any, error) {
	p, err := decode[protocol.HighlightsParams](params)
	if err != nil {
		return nil, err
	}
	sess, doc, err := s.lookup(p.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	settings := ctx.Settings()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.Configure(settings.EngineOptions(nil)...)
	sess.engine.SetSource(s.source(sess, doc, settings))
	cs := sess.engine.ComputeHighlights(p.RegionStart, p.Cursor)
	return &protocol.HighlightsResult{Version: doc.Version(), Changes: cs}, nil
}

func (s *Server) enclosingBracket(_ *Context, params json.RawMessage) (any, error) {
	p, err := decode[protocol.EnclosingBracketParams](params)
	if err != nil {
		return nil, err
	}
	sess, _, err := s.lookup(p.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	res := &protocol.EnclosingBracketResult{}
	if pair, ok := sess.engine.EnclosingBracket(p.Cursor); ok {
		res.Pair = &pair
	}
	return res, nil
}

func (s *Server) reset(_ *Context, params json.RawMessage) (any, error) {
	p, err := decode[protocol.ResetParams](params)
	if err != nil {
		return nil, err
	}
	sess, _, err := s.lookup(p.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.Reset()
	return nil, nil
}

func (s *Server) codeBlocks(_ *Context, params json.RawMessage) (any, error) {
	p, err := decode[protocol.CodeBlocksParams](params)
	if err != nil {
		return nil, err
	}
	blocks := region.Find(p.Text)
	res := &protocol.CodeBlocksResult{Blocks: make([]protocol.CodeBlock, len(blocks))}
	for i, b := range blocks {
		res.Blocks[i] = protocol.CodeBlock{
			Language: b.Language,
			Start:    b.Start,
			End:      b.End,
			Content:  b.Content,
		}
	}
	return res, nil
}

func (s *Server) stats(_ *Context, _ json.RawMessage) (any, error) {
	snap := s.metrics.Snapshot()
	res := &protocol.StatsResult{Methods: make(map[string]protocol.MethodStat, len(snap))}
	for method, m := range snap {
		res.Methods[method] = protocol.MethodStat{
			Count:   m.Count,
			Errors:  m.Errors,
			TotalMs: ms(m.TotalTime),
			MaxMs:   ms(m.MaxTime),
		}
	}
	return res, nil
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// lookup returns the session and document of an open URI.
func (s *Server) lookup(uri protocol.DocumentURI) (*session, *document.Document, error) {
	doc := s.docs.Get(uri)
	sess := s.sessionFor(uri)
	if doc == nil || sess == nil {
		return nil, nil, jsonrpc.Errorf(jsonrpc.CodeUnknownDocument, "document not open: %s", uri)
	}
	return sess, doc, nil
}
