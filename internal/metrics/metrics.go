// Package metrics는 fieldops-service의 Prometheus 메트릭을 제공합니다.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "fieldops_service"

// Metrics holds HTTP, database and business metrics of the service
type Metrics struct {
	registry prometheus.Registerer
	logger   *zap.Logger

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database connection pool
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBConnectionsMax   prometheus.Gauge
	DBConnectionWaits  prometheus.Gauge

	// 권한 계산
	PermissionResolutions *prometheus.CounterVec
	PermissionCache       *prometheus.CounterVec
	TabNavigations        *prometheus.CounterVec

	// 비즈니스 메트릭
	ActivitiesTotal      *prometheus.GaugeVec
	StaffActiveTotal     prometheus.Gauge
	ActivityCreatedTotal *prometheus.CounterVec
	AuditLogsPurgedTotal prometheus.Counter
}

// New registers every metric on the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewForTest creates metrics on an isolated registry.
// 테스트에서 "duplicate metrics collector registration" 에러를 방지합니다.
func NewForTest() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// NewWithRegistry registers every metric on the given registerer
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(registerer)

	return &Metrics{
		registry: registerer,
		logger:   logger,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "endpoint"}),

		DBConnectionsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Current number of open database connections",
		}),
		DBConnectionsInUse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Current number of in-use database connections",
		}),
		DBConnectionsIdle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Current number of idle database connections",
		}),
		DBConnectionsMax: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_max",
			Help:      "Maximum number of open database connections configured",
		}),
		DBConnectionWaits: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connection_waits",
			Help:      "Cumulative number of waits for a database connection",
		}),

		PermissionResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_resolutions_total",
			Help:      "Total number of tab permission resolutions by outcome",
		}, []string{"outcome"}),
		PermissionCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_cache_total",
			Help:      "Total number of permission cache lookups by result",
		}, []string{"result"}),
		TabNavigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tab_navigation_total",
			Help:      "Total number of detail view tab navigations by result",
		}, []string{"result"}),

		ActivitiesTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activities_total",
			Help:      "Total number of activities by type",
		}, []string{"type"}),
		StaffActiveTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "staff_active_total",
			Help:      "Total number of active staff users",
		}),
		ActivityCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_created_total",
			Help:      "Total number of activity creation events by type",
		}, []string{"type"}),
		AuditLogsPurgedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_logs_purged_total",
			Help:      "Total number of audit log entries removed by retention",
		}),
	}
}

// Registerer returns the registerer the metrics were created on
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registry
}

// safeExecute는 메트릭 기록 중 panic이 요청 처리로 번지지 않도록 합니다.
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
