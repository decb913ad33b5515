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
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "toponame"

// tracing owns the tracer provider installed for one command run.
type tracing struct {
	provider *sdktrace.TracerProvider
}

// setupTracing installs the global tracer provider. When disabled the no-op
// provider is installed and Shutdown does nothing. Spans are written to w as
// pretty-printed JSON.
func setupTracing(enabled bool, w io.Writer) (*tracing, error) {
	if !enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &tracing{}, nil
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(provider)
	return &tracing{provider: provider}, nil
}

// Shutdown flushes pending spans.
func (t *tracing) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}
