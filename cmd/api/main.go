package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fieldops-service/internal/config"
	"fieldops-service/internal/database"
	"fieldops-service/internal/job"
	"fieldops-service/internal/logger"
	"fieldops-service/internal/metrics"
	"fieldops-service/internal/permission"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/router"
	"fieldops-service/internal/service"
	"fieldops-service/internal/telemetry"
)

const serviceName = "fieldops-service"

// @title           Field Operations API
// @version         1.0
// @description     현장 철거/이전/COW 활동과 탭 권한을 관리하는 API 서버입니다.

// @BasePath  /api
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT 토큰을 입력하세요. 형식: Bearer {token}

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewWithConfig(&logger.Config{
		Level:       cfg.Logger.Level,
		OutputPath:  cfg.Logger.OutputPath,
		Encoding:    cfg.Logger.Encoding,
		ServiceName: serviceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize OpenTelemetry
	otelCfg := telemetry.DefaultConfig(serviceName)
	otelShutdown, err := telemetry.InitProvider(context.Background(), otelCfg)
	if err != nil {
		log.Warn("Failed to initialize OpenTelemetry, continuing without tracing", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()
		log.Info("OpenTelemetry initialized",
			zap.String("service.name", otelCfg.ServiceName),
			zap.String("otel.endpoint", otelCfg.OTLPEndpoint),
		)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting application",
		zap.String("mode", cfg.Server.Mode),
		zap.String("port", cfg.Server.Port),
		zap.String("base_path", cfg.Server.BasePath),
	)

	// Connect to database
	dbConfig := database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          log.Logger,
	}

	db, err := database.NewWithRetry(context.Background(), dbConfig, 5*time.Second, 30, log.Logger)
	if err != nil {
		log.Fatal("Failed to connect to database after retries", zap.Error(err))
	}
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	if err := telemetry.EnableGORMTracing(db, cfg.Database.DBName); err != nil {
		log.Warn("Failed to enable GORM tracing, continuing without DB tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		log.Info("Running database migrations (DB_AUTO_MIGRATE=true)")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("Failed to run database migrations", zap.Error(err))
		}
		log.Info("Database migrations completed")
	} else {
		log.Info("Database auto-migration disabled (DB_AUTO_MIGRATE=false)")
	}

	// Redis is optional: without it the permission cache and rate limiting are off
	if err := database.InitRedis(cfg.Redis, log.Logger); err != nil {
		log.Warn("Continuing without Redis", zap.Error(err))
	}
	redisClient := database.GetRedis()
	if redisClient != nil {
		if err := telemetry.EnableRedisTracing(redisClient); err != nil {
			log.Warn("Failed to enable Redis tracing", zap.Error(err))
		}
	}

	var permissionCache permission.Cache
	if cfg.PermissionCache.Enabled && redisClient != nil {
		permissionCache = permission.NewRedisCache(redisClient, cfg.PermissionCache.TTL)
		log.Info("Permission cache enabled", zap.Duration("ttl", cfg.PermissionCache.TTL))
	}

	// Initialize metrics
	m := metrics.New(log.Logger)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	businessCollector := metrics.NewBusinessCollector(
		repository.NewActivityRepository(db),
		repository.NewUserRepository(db),
		sqlDB,
		m,
		log.Logger,
	)
	periodicCollector := metrics.NewPeriodicCollector(
		cfg.Metrics.CollectInterval,
		cfg.Metrics.CollectTimeout,
		log.Logger,
		businessCollector,
	)
	periodicCollector.Start()
	log.Info("Business metrics collector started")

	// Audit log retention
	auditService := service.NewAuditLogService(repository.NewAuditLogRepository(db), m, log.Logger)
	purgeJob := job.NewAuditPurgeJob(auditService, cfg.Audit.RetentionDays, log.Logger)

	c := cron.New()
	if purgeJob.Enabled() {
		if _, err := purgeJob.Schedule(c, cfg.Audit.PurgeSchedule); err != nil {
			log.Fatal("Failed to schedule audit purge job", zap.Error(err))
		}
		log.Info("Audit purge job scheduled",
			zap.String("schedule", cfg.Audit.PurgeSchedule),
			zap.Int("retention_days", cfg.Audit.RetentionDays),
		)
	}
	c.Start()

	// Setup router with dependency injection
	r := router.Setup(router.Config{
		DB:              db,
		Logger:          log.Logger,
		JWTSecret:       cfg.JWT.Secret,
		IstioJWTMode:    cfg.JWT.IstioMode,
		BasePath:        cfg.Server.BasePath,
		CORSOrigins:     cfg.CORS.Origins(),
		Metrics:         m,
		RedisClient:     redisClient,
		RateLimitConfig: cfg.RateLimit,
		PermissionCache: permissionCache,
		ServiceName:     serviceName,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	} else {
		log.Info("Server shutdown completed")
	}

	periodicCollector.Stop()

	cronCtx := c.Stop()
	<-cronCtx.Done()
	log.Info("Audit purge scheduler stopped")

	if err := database.CloseRedis(); err != nil {
		log.Error("Failed to close Redis connection", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("Failed to close database connection", zap.Error(err))
	}

	log.Info("Application stopped")
}
