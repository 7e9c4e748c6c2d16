package hilite

import (
	"context"
	"log/slog"

	"github.com/gossip-lsp/hilite/document"
	"github.com/gossip-lsp/hilite/protocol"
)

// Context wraps context.Context with accessors for the server's services.
type Context struct {
	context.Context

	Client    *ClientProxy
	Documents *document.Store
	server    *Server
}

func newContext(ctx context.Context, s *Server) *Context {
	return &Context{
		Context:   ctx,
		Client:    s.client,
		Documents: s.docs,
		server:    s,
	}
}

// Server returns the underlying Server.
func (c *Context) Server() *Server {
	return c.server
}

// Logger returns the server's logger.
func (c *Context) Logger() *slog.Logger {
	return c.server.logger
}

// Settings returns the settings in effect for this request. The value is
// shared and must not be modified.
func (c *Context) Settings() *Settings {
	return c.server.settings.store.Get()
}

// WorkspaceRoot returns the first workspace folder, or the rootUri from
// initialize if no folders were sent.
func (c *Context) WorkspaceRoot() protocol.DocumentURI {
	c.server.mu.RLock()
	defer c.server.mu.RUnlock()
	if len(c.server.workspaceFolders) > 0 {
		return c.server.workspaceFolders[0].URI
	}
	if c.server.rootURI != nil {
		return *c.server.rootURI
	}
	return ""
}
