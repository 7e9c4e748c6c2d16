package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gossip-lsp/hilite/jsonrpc"
)

func okHandler(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
	return "ok", nil
}

func failHandler(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
	return nil, errors.New("boom")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
				order = append(order, name)
				return next(ctx, method, params)
			}
		}
	}
	h := Chain(mark("outer"), nil, mark("inner"))(okHandler)
	_, err := h(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recovery(logger)(func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
		panic("kaboom")
	})

	result, err := h(context.Background(), "hilite/highlights", nil)
	assert.Nil(t, result)
	var rpcErr *jsonrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, jsonrpc.CodeInternalError, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "kaboom")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestLoggingSlowRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slow := func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return nil, nil
	}

	_, _ = Logging(logger, WithSlowThreshold(time.Millisecond))(slow)(context.Background(), "hilite/highlights", nil)
	assert.Contains(t, buf.String(), "slow request")

	buf.Reset()
	_, _ = Logging(logger)(failHandler)(context.Background(), "hilite/reset", nil)
	out := buf.String()
	assert.True(t, strings.Contains(out, "request failed") && strings.Contains(out, "boom"), out)
}

func TestTelemetry(t *testing.T) {
	m := NewMetrics()
	_, _ = Telemetry(m)(okHandler)(context.Background(), "a", nil)
	_, _ = Telemetry(m)(okHandler)(context.Background(), "a", nil)
	_, _ = Telemetry(m)(failHandler)(context.Background(), "b", nil)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap["a"].Count)
	assert.Zero(t, snap["a"].Errors)
	assert.Equal(t, int64(1), snap["b"].Errors)
	assert.GreaterOrEqual(t, snap["a"].MaxTime, snap["a"].Mean())
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := tp.Tracer("test")

	_, _ = Tracing(tracer)(okHandler)(context.Background(), "hilite/highlights", jsonrpc.RawMessage(`{}`))
	_, _ = Tracing(tracer)(failHandler)(context.Background(), "hilite/reset", nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "hilite/highlights", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1, "the error is recorded as an event")
}

func TestTracingNilTracer(t *testing.T) {
	result, err := Tracing(nil)(okHandler)(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}
