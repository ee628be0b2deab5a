// Package database opens the GORM connection and the optional Redis client.
package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fieldops-service/internal/domain"
)

// Supported drivers. sqlite is meant for local runs and tests.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSlowThreshold = 200 * time.Millisecond

// Config holds database configuration
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowThreshold is the query duration above which GORM logs a warning
	SlowThreshold time.Duration
	Logger        *zap.Logger
}

func dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// gormLogger routes GORM's slow-query and error logs through zap.
// Record-not-found is expected on lookups and is not logged.
func gormLogger(cfg Config) gormlogger.Interface {
	if cfg.Logger == nil {
		return gormlogger.Default.LogMode(gormlogger.Silent)
	}
	threshold := cfg.SlowThreshold
	if threshold <= 0 {
		threshold = defaultSlowThreshold
	}
	return gormlogger.New(
		zap.NewStdLog(cfg.Logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             threshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// New creates a new database connection
func New(cfg Config) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger(cfg)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// NewWithRetry keeps trying to connect until it succeeds, maxRetries is
// reached or ctx is done. Useful while the database pod is still starting.
func NewWithRetry(ctx context.Context, cfg Config, interval time.Duration, maxRetries int, log *zap.Logger) (*gorm.DB, error) {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var db *gorm.DB
		if db, err = New(cfg); err == nil {
			return db, nil
		}
		log.Warn("Database connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection aborted: %w", ctx.Err())
		case <-time.After(interval):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", maxRetries, err)
}

// AutoMigrate creates or updates the staff, activity and audit tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Activity{},
		&domain.AuditLog{},
	)
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
