package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gossip-lsp/hilite/jsonrpc"
)

// LoggingOption configures Logging.
type LoggingOption func(*loggingConfig)

type loggingConfig struct {
	slow time.Duration
}

// WithSlowThreshold logs requests that take longer than d at Warn.
// Highlight requests sit on the keystroke path, so a slow one is worth
// seeing without enabling debug output.
func WithSlowThreshold(d time.Duration) LoggingOption {
	return func(c *loggingConfig) { c.slow = d }
}

// Logging returns middleware that logs each request's method, duration, and errors.
func Logging(logger *slog.Logger, opts ...LoggingOption) Middleware {
	var cfg loggingConfig
	for _, o := range opts {
		o(&cfg)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
			start := time.Now()
			result, err := next(ctx, method, params)
			duration := time.Since(start)

			attrs := []slog.Attr{
				slog.String("method", method),
				slog.Duration("duration", duration),
			}
			switch {
			case err != nil:
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
			case cfg.slow > 0 && duration > cfg.slow:
				logger.LogAttrs(ctx, slog.LevelWarn, "slow request", attrs...)
			default:
				logger.LogAttrs(ctx, slog.LevelDebug, "request handled", attrs...)
			}

			return result, err
		}
	}
}
