package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gossip-lsp/hilite/jsonrpc"
)

// Recovery returns middleware that turns a handler panic into an
// internal-error response. The stack is logged; the client only sees the
// panic value. A nil logger uses slog.Default.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, method string, params jsonrpc.RawMessage) (result any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered in handler",
						"method", method,
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
					result = nil
					err = jsonrpc.Errorf(jsonrpc.CodeInternalError, "internal error: %v", r)
				}
			}()
			return next(ctx, method, params)
		}
	}
}
