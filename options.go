package hilite

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/gossip-lsp/hilite/middleware"
	"github.com/gossip-lsp/hilite/transport"
	"github.com/gossip-lsp/hilite/treesitter"
)

// Option configures a Server during construction.
type Option func(*Server)

// ServeOption configures how the server is served.
type ServeOption func(*serveConfig)

type serveConfig struct {
	transport        transport.Transport
	transportFactory func(ctx context.Context) (transport.Transport, error)
	ctx              context.Context
}

// WithLogger sets a custom slog logger on the server.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithTreeSitter replaces the grammar set. The default is
// treesitter.DefaultConfig.
func WithTreeSitter(cfg treesitter.Config) Option {
	return func(s *Server) {
		s.tsConfig = cfg
	}
}

// WithSettings sets the settings used when no file or editor settings
// override them.
func WithSettings(defaults Settings) Option {
	return func(s *Server) {
		s.settings.setDefaults(defaults)
	}
}

// WithSettingsFile reads settings from path instead of searching the
// workspace root for SettingsFiles.
func WithSettingsFile(path string) Option {
	return func(s *Server) {
		s.settings.file = path
	}
}

// WithMiddleware adds middleware to the server's dispatch chain.
// Middleware is applied in order: the first middleware is outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mws...)
	}
}

// WithTracer wraps every request in an OpenTelemetry span.
func WithTracer(tracer trace.Tracer) Option {
	return WithMiddleware(middleware.Tracing(tracer))
}

// WithStdio configures the server to communicate over stdin/stdout.
func WithStdio() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.Stdio()
	}
}

// WithTransport configures the server to use a specific transport.
func WithTransport(t transport.Transport) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = t
	}
}

// WithTarget opens the transport named by target when serving. See
// transport.Open for the accepted forms.
func WithTarget(target string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func(ctx context.Context) (transport.Transport, error) {
			return transport.Open(ctx, target)
		}
	}
}

// WithTCP configures the server to accept one TCP client on addr.
func WithTCP(addr string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func(ctx context.Context) (transport.Transport, error) {
			return transport.ListenTCP(ctx, addr)
		}
	}
}

// WithSocket configures the server to accept one client on a Unix socket.
func WithSocket(path string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func(ctx context.Context) (transport.Transport, error) {
			return transport.ListenSocket(ctx, path)
		}
	}
}

// WithWebSocket configures the server to accept one WebSocket client.
func WithWebSocket(addr, path string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func(ctx context.Context) (transport.Transport, error) {
			return transport.ListenWebSocket(ctx, addr, path)
		}
	}
}

// WithContext bounds the server's lifetime. Cancelling ctx stops waiting
// for a client and ends the read loop.
func WithContext(ctx context.Context) ServeOption {
	return func(cfg *serveConfig) {
		cfg.ctx = ctx
	}
}
