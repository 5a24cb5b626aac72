// Package health runs readiness checks against the dependencies of the service.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Report is the outcome of one round of checks
type Report struct {
	Ready      bool                        `json:"ready"`
	Timestamp  time.Time                   `json:"timestamp"`
	Duration   time.Duration               `json:"duration"`
	Components map[string]*ComponentHealth `json:"components"`
}

// CheckFunc returns nil when the component is usable
type CheckFunc func(ctx context.Context) error

// Checker manages readiness checks. Reports are cached for cacheDuration.
type Checker struct {
	logger        *zap.Logger
	timeout       time.Duration
	cacheDuration time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
	last   *Report
}

// NewChecker creates a checker without any registered checks
func NewChecker(logger *zap.Logger, timeout, cacheDuration time.Duration) *Checker {
	return &Checker{
		logger:        logger,
		timeout:       timeout,
		cacheDuration: cacheDuration,
		checks:        make(map[string]CheckFunc),
	}
}

// Register adds a named check, replacing any check with the same name
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
	c.last = nil
}

// Check runs every registered check concurrently
func (c *Checker) Check(ctx context.Context) *Report {
	c.mu.RLock()
	if c.last != nil && time.Since(c.last.Timestamp) < c.cacheDuration {
		defer c.mu.RUnlock()
		return c.last
	}
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	start := time.Now()
	report := &Report{
		Ready:      true,
		Components: make(map[string]*ComponentHealth, len(checks)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			begin := time.Now()
			err := check(checkCtx)
			health := &ComponentHealth{Status: StatusUp, Duration: time.Since(begin)}
			if err != nil {
				health.Status = StatusDown
				health.Error = err.Error()
				c.logger.Warn("Readiness check failed", zap.String("component", name), zap.Error(err))
			}

			mu.Lock()
			report.Components[name] = health
			if err != nil {
				report.Ready = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	report.Timestamp = time.Now()
	report.Duration = time.Since(start)

	c.mu.Lock()
	c.last = report
	c.mu.Unlock()
	return report
}

// DatabaseCheck pings the SQL connection pool behind db
func DatabaseCheck(db *gorm.DB) CheckFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		return nil
	}
}

// RedisCheck pings the redis server
func RedisCheck(client redis.UniversalClient) CheckFunc {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		return nil
	}
}
