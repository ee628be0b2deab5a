package metrics

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"fieldops-service/internal/domain"
)

// Collector gathers metrics. Called periodically by PeriodicCollector.
type Collector interface {
	Collect(ctx context.Context) error
}

// CollectorFunc adapts a function to Collector
type CollectorFunc func(ctx context.Context) error

// Collect calls f(ctx)
func (f CollectorFunc) Collect(ctx context.Context) error {
	return f(ctx)
}

// PeriodicCollector runs collectors at a fixed interval with a per-run timeout
type PeriodicCollector struct {
	collectors []Collector
	interval   time.Duration
	timeout    time.Duration
	logger     *zap.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPeriodicCollector creates a collector; zero durations fall back to 60s / 5s
func NewPeriodicCollector(interval, timeout time.Duration, logger *zap.Logger, collectors ...Collector) *PeriodicCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodicCollector{
		collectors: collectors,
		interval:   interval,
		timeout:    timeout,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start collects once immediately and then on every tick until Stop
func (p *PeriodicCollector) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.collectAll()
		for {
			select {
			case <-ticker.C:
				p.collectAll()
			case <-p.done:
				return
			}
		}
	}()
}

// Stop ends the collection goroutine and waits for it. Safe to call twice.
func (p *PeriodicCollector) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

func (p *PeriodicCollector) collectAll() {
	for _, c := range p.collectors {
		p.collectOne(c)
	}
}

func (p *PeriodicCollector) collectOne(c Collector) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic in metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := c.Collect(ctx); err != nil {
		p.logger.Error("Failed to collect metrics", zap.Error(err))
	}
}

// ActivityCounter counts activities per type
type ActivityCounter interface {
	CountByType(ctx context.Context) (map[domain.ActivityType]int64, error)
}

// StaffCounter counts active staff users
type StaffCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// BusinessCollector는 활동/직원 수와 DB 커넥션 풀 상태를 주기적으로 수집합니다.
type BusinessCollector struct {
	activities ActivityCounter
	staff      StaffCounter
	sqlDB      *sql.DB
	metrics    *Metrics
	logger     *zap.Logger
}

// NewBusinessCollector creates a collector. sqlDB may be nil.
func NewBusinessCollector(activities ActivityCounter, staff StaffCounter, sqlDB *sql.DB, m *Metrics, logger *zap.Logger) *BusinessCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusinessCollector{
		activities: activities,
		staff:      staff,
		sqlDB:      sqlDB,
		metrics:    m,
		logger:     logger,
	}
}

// Collect never fails as a whole; each query error is logged and skipped.
func (c *BusinessCollector) Collect(ctx context.Context) error {
	if c.sqlDB != nil {
		c.metrics.UpdateDBStats(c.sqlDB.Stats())
	}

	if c.activities != nil {
		counts, err := c.activities.CountByType(ctx)
		if err != nil {
			c.logger.Error("활동 수 조회 실패", zap.Error(err))
		} else {
			byType := make(map[string]int64, len(counts))
			for activityType, n := range counts {
				byType[string(activityType)] = n
			}
			c.metrics.SetActivitiesTotal(byType)
		}
	}

	if c.staff != nil {
		count, err := c.staff.CountActive(ctx)
		if err != nil {
			c.logger.Error("활성 직원 수 조회 실패", zap.Error(err))
		} else {
			c.metrics.SetStaffActiveTotal(count)
		}
	}

	return nil
}
