// Package telemetry는 OpenTelemetry 트레이스/로그 프로바이더와 계측 헬퍼를 제공합니다.
package telemetry

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the instrumentation scope used by Tracer
const ServiceName = "fieldops-service"

// Config holds the exporter settings
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string  // host:port of the collector gRPC receiver
	SamplingRatio  float64 // 1 samples everything, 0 nothing
	Enabled        bool
}

// DefaultConfig reads the standard OTEL_* variables
func DefaultConfig(serviceName string) *Config {
	cfg := &Config{
		ServiceName:    serviceName,
		ServiceVersion: envOr("SERVICE_VERSION", "1.0.0"),
		Environment:    envOr("DEPLOYMENT_ENV", "development"),
		OTLPEndpoint:   envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		SamplingRatio:  1.0,
		Enabled:        os.Getenv("OTEL_SDK_DISABLED") != "true",
	}
	if v, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64); err == nil {
		cfg.SamplingRatio = v
	}
	return cfg
}

// ShutdownFunc flushes and stops the installed providers
type ShutdownFunc func(context.Context) error

type shutdowns []ShutdownFunc

func (s shutdowns) run(ctx context.Context) error {
	var err error
	for i := len(s) - 1; i >= 0; i-- {
		err = errors.Join(err, s[i](ctx))
	}
	return err
}

// InitProvider installs the global propagator, tracer provider and log provider.
// With Enabled=false nothing is installed and the returned shutdown is a no-op.
func InitProvider(ctx context.Context, cfg *Config) (ShutdownFunc, error) {
	if cfg == nil {
		return nil, errors.New("telemetry config is required")
	}
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var installed shutdowns

	tp, err := newTraceProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}
	installed = append(installed, tp.Shutdown)
	otel.SetTracerProvider(tp)

	lp, err := newLoggerProvider(ctx, cfg, res)
	if err != nil {
		return nil, errors.Join(err, installed.run(ctx))
	}
	installed = append(installed, lp.Shutdown)
	global.SetLoggerProvider(lp)

	return installed.run, nil
}

func newResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
	)
}

// newSampler: ratio >= 1 is AlwaysOn, <= 0 AlwaysOff, otherwise parent based
func newSampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	if ratio <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func newTraceProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRatio)),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
	), nil
}

func newLoggerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	exporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	), nil
}

// Tracer returns the service tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
