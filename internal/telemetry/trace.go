package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 로그와 트레이스를 연결하는 필드 이름
const (
	fieldTraceID      = "trace_id"
	fieldSpanID       = "span_id"
	fieldTraceSampled = "trace_sampled"
)

// TraceFields returns the trace and span ids of ctx as zap fields, nil without a span
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String(fieldTraceID, sc.TraceID().String()),
		zap.String(fieldSpanID, sc.SpanID().String()),
		zap.Bool(fieldTraceSampled, sc.IsSampled()),
	}
}

// WithTraceContext tags logger with the trace of ctx
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if fields := TraceFields(ctx); fields != nil {
		return logger.With(fields...)
	}
	return logger
}

// StartSpan starts a child span on the service tracer
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// SetSpanError marks the span of ctx as failed. A nil err is ignored.
func SetSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the trace id of ctx, or ""
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
