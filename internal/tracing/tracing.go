// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tracing configures the OpenTelemetry tracer provider used by every span in the process.
package tracing

import (
	"context"
	"fmt"
	"io"

	"github.com/azure/foundry-github-agent/internal/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "foundry-github-agent"

type Options struct {
	// Enabled exports spans. When false the global no-op provider stays in place.
	Enabled bool
	// Writer receives exported spans as JSON. Required when Enabled.
	Writer io.Writer
}

// ShutdownFunc flushes pending spans and restores the previous global provider.
type ShutdownFunc func(ctx context.Context) error

// Setup installs a tracer provider exporting to opts.Writer.
func Setup(opts Options) (ShutdownFunc, error) {
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	if opts.Writer == nil {
		return nil, fmt.Errorf("tracing: a writer is required when tracing is enabled")
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(opts.Writer),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource()),
	)

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		defer otel.SetTracerProvider(previous)
		return tp.Shutdown(ctx)
	}, nil
}

func newResource() *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version.Version),
	)
}
