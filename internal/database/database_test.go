package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_SQLite(t *testing.T) {
	db, err := New(Config{
		Driver:       DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	assert.NoError(t, Close(db))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewWithRetry(t *testing.T) {
	t.Run("logs every failed attempt", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)

		_, err := NewWithRetry(context.Background(), Config{Driver: "oracle"}, time.Millisecond, 3, zap.New(core))

		assert.ErrorContains(t, err, "after 3 retries")
		assert.Equal(t, 3, logs.FilterMessage("Database connection attempt failed").Len())
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewWithRetry(ctx, Config{Driver: "oracle"}, time.Hour, 5, zap.NewNop())

		assert.ErrorIs(t, err, context.Canceled)
	})
}
