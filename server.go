package hilite

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/jsonrpc"
	mw "github.com/gossip-lsp/hilite/middleware"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/treesitter"
)

// ErrExitWithoutShutdown is returned by Serve when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Server hosts highlight engines for the documents an editor opens and
// answers the hilite/* requests over JSON-RPC.
type Server struct {
	name    string
	version string
	logger  *slog.Logger

	// connection and client proxy (set during Serve)
	conn   *jsonrpc.Conn
	client *ClientProxy

	docs     *document.Store
	trees    *treesitter.Manager
	settings *settingsHolder
	metrics  *mw.Metrics

	middlewares []mw.Middleware

	mu       sync.RWMutex
	sessions map[protocol.DocumentURI]*session
	handlers map[string]RawHandler

	// workspace state (populated during initialize)
	rootURI          *protocol.DocumentURI
	workspaceFolders []protocol.WorkspaceFolder

	tsConfig treesitter.Config

	// lifecycle state, touched only from the dispatch goroutine
	initialized bool
	shutdown    bool
	exited      bool
}

// NewServer creates a server with the built-in grammars and default
// settings.
func NewServer(name, version string, opts ...Option) *Server {
	s := &Server{
		name:     name,
		version:  version,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		docs:     document.NewStore(),
		metrics:  mw.NewMetrics(),
		sessions: make(map[protocol.DocumentURI]*session),
		handlers: make(map[string]RawHandler),
		tsConfig: treesitter.DefaultConfig(),
	}
	defaults := DefaultSettings()
	s.settings = newSettingsHolder(defaults)
	for _, o := range opts {
		o(s)
	}

	s.trees = treesitter.NewManager(s.tsConfig, s.docs, treesitter.WithManagerLogger(s.logger))
	s.trees.OnTreeUpdate(s.handleTreeUpdate)
	s.docs.OnOpen(s.handleOpen)
	s.docs.OnClose(s.handleClose)
	s.settings.store.OnChange(func(old, next *Settings) {
		s.logger.Info("settings changed",
			"syntaxHighlight", next.SyntaxHighlight,
			"enclosingBracket", next.EnclosingBracket,
			"bracketHighlight", next.BracketHighlight,
			"maxDocumentBytes", next.MaxDocumentBytes,
			"fallbackLexer", next.FallbackLexer,
		)
	})
	return s
}

// --- Accessor methods ---

// Documents returns the document store.
func (s *Server) Documents() *document.Store { return s.docs }

// TreeSitter returns the tree-sitter manager.
func (s *Server) TreeSitter() *treesitter.Manager { return s.trees }

// Settings returns the settings currently in effect.
func (s *Server) Settings() Settings { return *s.settings.store.Get() }

// Metrics returns the per-method request metrics.
func (s *Server) Metrics() *mw.Metrics { return s.metrics }

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// Conn returns the JSON-RPC connection, or nil before Serve is called.
func (s *Server) Conn() *jsonrpc.Conn { return s.conn }

// HandleRequest registers a raw handler for a method the server does not
// know. Built-in methods cannot be overridden.
func (s *Server) HandleRequest(method string, h RawHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// dispatch is the JSON-RPC request callback.
func (s *Server) dispatch(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
	hctx := newContext(ctx, s)

	switch method {
	case protocol.MethodInitialize:
		return s.handleInitialize(hctx, params)
	case protocol.MethodShutdown:
		s.shutdown = true
		s.logger.Info("server shutting down")
		return nil, nil
	}

	if !s.initialized {
		return nil, jsonrpc.Errorf(jsonrpc.CodeServerNotInitialized, "server not initialized")
	}
	if s.shutdown {
		return nil, jsonrpc.Errorf(jsonrpc.CodeInvalidRequest, "server is shutting down")
	}

	if h, ok := builtins[method]; ok {
		return h(s, hctx, params)
	}

	s.mu.RLock()
	rh, ok := s.handlers[method]
	s.mu.RUnlock()
	if ok {
		return rh(hctx, params)
	}
	return nil, jsonrpc.Errorf(jsonrpc.CodeMethodNotFound, "method not found: %s", method)
}

// dispatchNotification is the JSON-RPC notification callback.
func (s *Server) dispatchNotification(ctx context.Context, method string, params jsonrpc.RawMessage) {
	switch method {
	case protocol.MethodInitialized:
		s.logger.Info("client initialized")
		return
	case protocol.MethodExit:
		s.logger.Info("received exit notification")
		s.exited = true
		if s.conn != nil {
			s.conn.Close()
		}
		return
	case protocol.MethodSetTrace:
		return
	}

	if !s.initialized {
		return
	}

	switch method {
	case protocol.MethodDidOpen:
		var p protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("malformed didOpen", "error", err)
			return
		}
		s.docs.Open(&p)
	case protocol.MethodDidChange:
		var p protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("malformed didChange", "error", err)
			return
		}
		if !s.docs.Change(&p) {
			s.logger.Debug("change for unknown document", "uri", p.TextDocument.URI)
		}
	case protocol.MethodDidClose:
		var p protocol.DidCloseTextDocumentParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("malformed didClose", "error", err)
			return
		}
		s.docs.Close(&p)
	case protocol.MethodDidChangeConfiguration:
		var p protocol.DidChangeConfigurationParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("malformed didChangeConfiguration", "error", err)
			return
		}
		if err := s.settings.apply(p.Settings); err != nil {
			s.logger.Warn("rejected editor settings", "error", err)
			if s.client != nil {
				_ = s.client.ShowMessage(ctx, protocol.MessageWarning, "hilite: "+err.Error())
			}
		}
	default:
		s.logger.Debug("ignoring notification", "method", method)
	}
}

func (s *Server) handleInitialize(ctx *Context, params jsonrpc.RawMessage) (any, error) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, jsonrpc.Errorf(jsonrpc.CodeInvalidParams, "%v", err)
	}

	s.mu.Lock()
	s.rootURI = p.RootURI
	s.workspaceFolders = p.WorkspaceFolders
	if len(s.workspaceFolders) == 0 && s.rootURI != nil {
		s.workspaceFolders = []protocol.WorkspaceFolder{
			{URI: *s.rootURI, Name: uriBasename(string(*s.rootURI))},
		}
	}
	folders := s.workspaceFolders
	s.mu.Unlock()

	if len(p.InitializationOptions) > 0 {
		if err := s.settings.apply(p.InitializationOptions); err != nil {
			s.logger.Warn("rejected initialization options", "error", err)
		}
	}

	rootDir := "."
	if len(folders) > 0 {
		if dir := uriToPath(string(folders[0].URI)); dir != "" {
			rootDir = dir
		}
	}
	s.settings.start(s.logger, rootDir)

	s.initialized = true
	s.logger.Info("server initialized",
		"name", s.name,
		"version", s.version,
		"workspaceFolders", len(folders),
	)

	return &protocol.InitializeResult{
		Capabilities: s.buildCapabilities(),
		ServerInfo: &protocol.ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
	}, nil
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}

func uriBasename(uri string) string {
	s := strings.TrimRight(uri, "/")
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// Close releases trees, sessions and the settings watcher.
func (s *Server) Close() {
	s.settings.close()
	s.trees.Close()
	s.mu.Lock()
	clear(s.sessions)
	s.mu.Unlock()
}
