package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEnableGORMTracing_TagsSpansWithNamespace(t *testing.T) {
	// Given: 전역 프로바이더에 span recorder 연결
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// When
	require.NoError(t, EnableGORMTracing(db, "fieldops"))
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)

	// Then
	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	assert.Contains(t, spans[len(spans)-1].Attributes(), semconv.DBNamespace("fieldops"))
}
