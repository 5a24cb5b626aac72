package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aidin1998/usersapi/api"
	"github.com/Aidin1998/usersapi/internal/cache"
	"github.com/Aidin1998/usersapi/internal/database"
	"github.com/Aidin1998/usersapi/internal/health"
	"github.com/Aidin1998/usersapi/internal/infrastructure/config"
	"github.com/Aidin1998/usersapi/internal/messaging"
	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/Aidin1998/usersapi/internal/users/seed"
	"github.com/Aidin1998/usersapi/internal/users/store"
	"github.com/Aidin1998/usersapi/pkg/logger"
	"github.com/Aidin1998/usersapi/pkg/telemetry"
	"github.com/Aidin1998/usersapi/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if code := exitCode(zapLogger, run(cfg, zapLogger)); code != 0 {
		os.Exit(code)
	}
}

// exitCode logs the outcome of run and flushes the logger, since os.Exit skips deferred calls.
func exitCode(zapLogger *zap.Logger, err error) int {
	defer zapLogger.Sync()

	if err != nil {
		zapLogger.Error("Server failed", zap.Error(err))
		return 1
	}
	zapLogger.Info("Server exited properly")
	return 0
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			zapLogger.Error("Failed to shut down tracing", zap.Error(err))
		}
	}()

	checker := health.NewChecker(zapLogger, 2*time.Second, 5*time.Second)

	// Storage backend
	userStore, closeStore, err := openStore(ctx, cfg, zapLogger, checker)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			zapLogger.Error("Failed to close store", zap.Error(err))
		}
	}()

	v := validation.NewValidator(zapLogger)
	if cfg.Seed.File != "" {
		f, err := seed.Load(cfg.Seed.File, v)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, zapLogger, userStore, f); err != nil {
			return err
		}
	}

	// Optional Redis cache
	var userCache users.Cache
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		checker.Register("redis", health.RedisCheck(client))
		userCache = cache.NewUserCache(client, cfg.Redis.TTL)
		zapLogger.Info("User cache enabled", zap.String("address", cfg.Redis.Address))
	}

	// Optional Kafka publisher
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaCfg := messaging.DefaultKafkaConfig()
		kafkaCfg.Brokers = cfg.Kafka.Brokers
		kafkaCfg.Topic = cfg.Kafka.Topic
		producer, err := messaging.NewKafkaProducer(kafkaCfg, zapLogger)
		if err != nil {
			return err
		}
		publisher = producer
		zapLogger.Info("User events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Error("Failed to close publisher", zap.Error(err))
		}
	}()

	userService := users.NewService(zapLogger, userStore, userCache, publisher, v)

	gin.SetMode(cfg.Server.Mode)
	apiServer := api.NewServer(zapLogger, userService, api.Options{
		ServiceName:  cfg.Tracing.ServiceName,
		Swagger:      cfg.Server.Swagger,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Checker:      checker,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting API server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt to shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		zapLogger.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured backend and returns a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger, checker *health.Checker) (store.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case "badger":
		s, err := store.NewBadgerStore(cfg.Storage.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		zapLogger.Info("Using badger store", zap.String("path", cfg.Storage.BadgerPath))
		return s, s.Close, nil
	case "memory":
		zapLogger.Warn("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), func() error { return nil }, nil
	default:
		db, err := database.Open(cfg.Database, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		// Schedule DB pool metrics collection every 30s
		go database.CollectPoolStats(ctx, db, cfg.Database.Driver, 30*time.Second)
		checker.Register("database", health.DatabaseCheck(db))
		zapLogger.Info("Using SQL store", zap.String("driver", cfg.Database.Driver))
		return store.NewGormStore(zapLogger, db), func() error { return database.Close(db) }, nil
	}
}
