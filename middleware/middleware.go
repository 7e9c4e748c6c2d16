// Package middleware provides composable wrappers around the JSON-RPC
// dispatch layer of a hilite server: logging, panic recovery, request
// metrics and OpenTelemetry tracing.
package middleware

import (
	"context"

	"github.com/gossip-lsp/hilite/jsonrpc"
)

// Handler processes a JSON-RPC method call and returns a result.
type Handler func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error)

// Middleware wraps a Handler to add cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain composes multiple middleware into a single middleware.
// The first middleware in the slice is the outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				next = mws[i](next)
			}
		}
		return next
	}
}
