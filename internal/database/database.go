// Package database opens the SQL database behind the gorm store and exports pool metrics.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Aidin1998/usersapi/internal/infrastructure/config"
	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/Aidin1998/usersapi/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open connects to the configured SQL database and migrates the users table when enabled.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormLogger := NewGormLogger(logger, cfg.LogLevel)

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = NewPostgresDB(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, gormLogger)
	case "sqlite":
		db, err = NewSQLiteDB(cfg.DSN, gormLogger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CollectPoolStats exports connection pool gauges every interval until ctx is done.
func CollectPoolStats(ctx context.Context, db *gorm.DB, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			RecordPoolStats(db, name)
		case <-ctx.Done():
			return
		}
	}
}

// RecordPoolStats samples the pool once.
func RecordPoolStats(db *gorm.DB, name string) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	metrics.DBOpenConns.WithLabelValues(name).Set(float64(stats.OpenConnections))
	metrics.DBIdleConns.WithLabelValues(name).Set(float64(stats.Idle))
	metrics.DBInUseConns.WithLabelValues(name).Set(float64(stats.InUse))
}
