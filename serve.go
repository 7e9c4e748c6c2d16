package hilite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/gossip-lsp/hilite/jsonrpc"
	mw "github.com/gossip-lsp/hilite/middleware"
	"github.com/gossip-lsp/hilite/transport"
)

// Serve runs the server until the client disconnects, sends exit, or the
// serve context is cancelled. Stdio is used when no transport is given.
func Serve(s *Server, opts ...ServeOption) error {
	cfg := &serveConfig{ctx: context.Background()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.transport == nil && cfg.transportFactory != nil {
		var err error
		cfg.transport, err = cfg.transportFactory(cfg.ctx)
		if err != nil {
			return fmt.Errorf("creating transport: %w", err)
		}
	}
	if cfg.transport == nil {
		cfg.transport = transport.Stdio()
	}
	defer cfg.transport.Close()
	defer s.Close()

	codec := jsonrpc.NewCodec(cfg.transport, cfg.transport)

	// Telemetry sits innermost so the recorded time is the handler's own.
	mws := append(slices.Clone(s.middlewares), mw.Telemetry(s.metrics))
	chain := mw.Chain(mws...)
	handler := jsonrpc.Handler(chain(s.dispatch))
	notif := chain(func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
		s.dispatchNotification(ctx, method, params)
		return nil, nil
	})

	conn := jsonrpc.NewConn(codec, handler, func(ctx context.Context, method string, params jsonrpc.RawMessage) {
		_, _ = notif(ctx, method, params)
	})
	s.conn = conn
	s.client = newClientProxy(conn)

	s.logger.Info("hilite server starting",
		"name", s.name,
		"version", s.version,
	)

	// Closing the transport unblocks the read loop after exit.
	go func() {
		<-conn.Done()
		cfg.transport.Close()
	}()

	err := conn.Run(cfg.ctx)
	switch {
	case s.exited && !s.shutdown:
		return ErrExitWithoutShutdown
	case s.exited:
		return nil
	case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF):
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
