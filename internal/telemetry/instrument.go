package telemetry

import (
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// EnableGORMTracing registers the OpenTelemetry plugin on the DB.
// Every span carries db.namespace; query variables are not recorded since assignee lists carry user ids.
func EnableGORMTracing(db *gorm.DB, dbName string) error {
	return db.Use(tracing.NewPlugin(
		tracing.WithAttributes(semconv.DBNamespace(dbName)),
		tracing.WithoutMetrics(),
		tracing.WithoutQueryVariables(),
	))
}

// EnableRedisTracing wraps every Redis command with a span
func EnableRedisTracing(client *redis.Client) error {
	return redisotel.InstrumentTracing(client)
}
