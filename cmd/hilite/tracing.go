package main

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracerProvider owns the SDK provider behind the --trace flag.
type tracerProvider struct {
	provider *sdktrace.TracerProvider
}

// newTracerProvider exports spans as pretty-printed JSON to w. Stdout
// carries the protocol when serving over stdio, so callers pass stderr or
// a file.
func newTracerProvider(w io.Writer) (*tracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "hilite"),
		attribute.String("service.version", version),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	return &tracerProvider{provider: provider}, nil
}

func (p *tracerProvider) Tracer() trace.Tracer {
	return p.provider.Tracer("github.com/gossip-lsp/hilite")
}

// Shutdown flushes pending spans.
func (p *tracerProvider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
