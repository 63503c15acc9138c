package otel

import (
	"context"
	"fmt"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var InternalOptions = trace.WithSpanKind(trace.SpanKindInternal)

const InstrumentationName = "github.com/GlintPay/helmfile-reporter"

func GetTracer(ctx context.Context) trace.Tracer {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return newTracer(span.TracerProvider())
	}
	return newTracer(otel.GetTracerProvider())
}

func newTracer(tp trace.TracerProvider) trace.Tracer {
	return tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion("semver:1.0"))
}

var emptyShutdown = func() {}

// Setup installs an OTLP/HTTP tracer provider when tracing is enabled. The returned func flushes and stops it.
func Setup(ctx context.Context, cfg config.Tracing, serviceName string) (func(), error) {
	if !cfg.Enabled {
		return emptyShutdown, nil
	}

	if cfg.Endpoint == "" {
		return emptyShutdown, fmt.Errorf("missing tracing endpoint")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
		),
	)
	if err != nil {
		return emptyShutdown, fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	)
	if err != nil {
		return emptyShutdown, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	fraction := cfg.SamplerFraction
	if fraction <= 0 {
		fraction = 1
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(fraction)),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Info().Msgf("OpenTelemetry export is enabled, to: %s", cfg.Endpoint)

	return func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to shutdown TracerProvider")
		}
	}, nil
}
