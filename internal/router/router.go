package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fieldops-service/internal/config"
	"fieldops-service/internal/handler"
	"fieldops-service/internal/health"
	"fieldops-service/internal/metrics"
	"fieldops-service/internal/middleware"
	"fieldops-service/internal/permission"
	"fieldops-service/internal/ratelimit"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/service"
)

// Config holds router configuration
type Config struct {
	DB              *gorm.DB
	Logger          *zap.Logger
	JWTSecret       string
	IstioJWTMode    bool
	BasePath        string
	CORSOrigins     []string
	Metrics         *metrics.Metrics
	RedisClient     *redis.Client
	RateLimitConfig config.RateLimitConfig
	// RateLimiter overrides the Redis limiter built from RedisClient
	RateLimiter ratelimit.Limiter
	// PermissionCache memoizes resolved permission sets. nil disables caching.
	PermissionCache permission.Cache
	ServiceName     string
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.New(cfg.Logger)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "fieldops-service"
	}

	// Middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.OTELTracing(serviceName))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(m, cfg.BasePath))

	// Prometheus metrics endpoint, also under the base path for ingress routing
	promHandler := gin.WrapH(metricsHandler(m))
	r.GET("/metrics", promHandler)
	if cfg.BasePath != "" {
		r.GET(cfg.BasePath+"/metrics", promHandler)
	}

	// Health check routes
	healthChecker := health.NewChecker().Require("database", health.DBPinger(cfg.DB))
	if cfg.RedisClient != nil {
		client := cfg.RedisClient
		healthChecker.Optional("redis", health.RedisPinger(func() *redis.Client { return client }))
	}
	healthChecker.RegisterRoutes(r, cfg.BasePath)

	// Initialize repositories
	userRepo := repository.NewUserRepository(cfg.DB)
	activityRepo := repository.NewActivityRepository(cfg.DB)
	auditRepo := repository.NewAuditLogRepository(cfg.DB)

	// Initialize services
	resolver := permission.NewCachedResolver(cfg.PermissionCache, m, cfg.Logger)
	auditService := service.NewAuditLogService(auditRepo, m, cfg.Logger)
	userService := service.NewUserService(userRepo, auditService, cfg.Logger)
	activityService := service.NewActivityService(activityRepo, resolver, auditService, m, cfg.Logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	activityHandler := handler.NewActivityHandler(activityService)
	auditHandler := handler.NewAuditHandler(auditService)

	var authMiddleware gin.HandlerFunc
	if cfg.IstioJWTMode {
		authMiddleware = middleware.IstioAuthMiddleware(middleware.NewJWTParser(cfg.Logger))
		cfg.Logger.Info("Using Istio JWT mode (parse only)")
	} else {
		authMiddleware = middleware.Auth(cfg.JWTSecret)
		cfg.Logger.Info("Using JWT validation mode")
	}

	// 인증 뒤에 rate limit을 걸어야 user_id 기준으로 버킷이 나뉨
	api := r.Group(cfg.BasePath, authMiddleware)
	if rl := rateLimitMiddleware(cfg); rl != nil {
		api.Use(rl)
	}

	// ============================================================
	// Staff routes (any active staff user)
	// ============================================================
	users := api.Group("/users")
	users.Use(middleware.RequireStaff(userService, cfg.Logger))
	{
		users.GET("/me", userHandler.GetMe)
	}

	staff := api.Group("/activities")
	staff.Use(middleware.RequireStaff(userService, cfg.Logger))
	{
		staff.GET("/mine", activityHandler.Mine)
		staff.GET("/:id", activityHandler.Detail)
		staff.GET("/:id/permissions", activityHandler.Permissions)
		staff.POST("/:id/navigate", activityHandler.Navigate)
		staff.PUT("/:id/tasks", activityHandler.UpdateTasks)
		staff.PUT("/:id/survey", activityHandler.UpdateSurvey)
		staff.PUT("/:id/dismantling", activityHandler.UpdateDismantling)
		staff.PUT("/:id/dispatch", activityHandler.UpdateDispatch)
		staff.PUT("/:id/status", activityHandler.UpdateStatus)
	}

	// ============================================================
	// Manager routes (admin or manager)
	// ============================================================
	managers := api.Group("/activities")
	managers.Use(middleware.RequireAdminOrManager(userService, cfg.Logger))
	{
		managers.GET("", activityHandler.List)
		managers.POST("", activityHandler.Create)
		managers.PUT("/:id/assignment", activityHandler.UpdateAssignment)
	}

	// ============================================================
	// Admin routes (requires admin role)
	// ============================================================
	adminActivities := api.Group("/activities")
	adminActivities.Use(middleware.RequireAdmin(userService, cfg.Logger))
	{
		adminActivities.DELETE("/:id", activityHandler.Delete)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(userService, cfg.Logger))
	{
		// User management
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.GetByID)
		admin.POST("/users", userHandler.Create)
		admin.PUT("/users/:id/role", userHandler.UpdateRole)
		admin.POST("/users/:id/deactivate", userHandler.Deactivate)
		admin.POST("/users/:id/reactivate", userHandler.Reactivate)

		// Audit logs
		admin.GET("/audit-logs", auditHandler.List)
		admin.GET("/audit-logs/:id", auditHandler.GetByID)
	}

	return r
}

// rateLimitMiddleware returns nil when limiting is disabled or has no backend
func rateLimitMiddleware(cfg Config) gin.HandlerFunc {
	if !cfg.RateLimitConfig.Enabled {
		return nil
	}
	rlConfig := ratelimit.FromAppConfig(cfg.RateLimitConfig)
	limiter := cfg.RateLimiter
	if limiter == nil {
		if cfg.RedisClient == nil {
			return nil
		}
		limiter = ratelimit.NewRedisLimiter(cfg.RedisClient, rlConfig, cfg.Logger)
	}
	cfg.Logger.Info("Rate limiting middleware enabled",
		zap.Int("requests_per_minute", rlConfig.RequestsPerMinute),
		zap.Int("burst_size", rlConfig.BurstSize))
	return ratelimit.Middleware(limiter, ratelimit.UserKey, rlConfig, cfg.Logger)
}

// metricsHandler serves the registry the metrics were created on
func metricsHandler(m *metrics.Metrics) http.Handler {
	if gatherer, ok := m.Registerer().(prometheus.Gatherer); ok && gatherer != prometheus.DefaultGatherer {
		return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
