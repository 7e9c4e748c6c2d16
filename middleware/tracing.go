package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gossip-lsp/hilite/jsonrpc"
)

// AttrMethod is the span attribute carrying the JSON-RPC method.
const AttrMethod = "rpc.method"

// Tracing returns middleware that wraps each request in a server span named
// after the method. A nil tracer makes it a pass-through.
func Tracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		return func(next Handler) Handler { return next }
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
			ctx, span := tracer.Start(ctx, method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(AttrMethod, method),
					attribute.Int("rpc.params.bytes", len(params)),
				),
			)
			defer span.End()

			result, err := next(ctx, method, params)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return result, err
		}
	}
}
