package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailydiet/internal/app"
	"dailydiet/internal/cache"
	"dailydiet/internal/config"
	"dailydiet/internal/database"
	"dailydiet/internal/storage"
	"dailydiet/internal/telemetry"
	"dailydiet/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg := config.LoadConfig()
	cfg.ConfigureLogger()

	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}

	// --- Avatar storage ---
	avatars, err := newAvatarStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize avatar storage")
	}

	deps := app.Deps{
		DB:            db,
		Avatars:       avatars,
		BcryptCost:    cfg.BcryptCost,
		SessionMaxAge: cfg.SessionMaxAge,
		Telemetry:     telemetry.New(),
	}

	// --- Metrics cache (optional) ---
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("redis unreachable, metrics cache errors will be ignored")
		}
		deps.Cache = cache.NewRedisMetricsCache(rdb, cfg.MetricsCacheTTL)
		logrus.WithField("addr", cfg.RedisAddr).Info("metrics cache enabled")
	}

	// --- Diet events (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			logrus.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		if err := mqClient.ConsumeDietEvents(rabbitmq.LogDietEvent); err != nil {
			logrus.WithError(err).Error("failed to start diet events consumer")
		}
	}

	application, err := app.New(deps)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build application")
	}

	// --- Start HTTP Server ---
	logrus.WithField("port", cfg.AppPort).Info("starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Listen(cfg.AppPort); err != nil {
			logrus.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	logrus.Info("shutting down server...")

	if err := application.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Error("error during server shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("server gracefully stopped")
}

// newAvatarStore selects the blob store named by AVATAR_STORAGE.
func newAvatarStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.AvatarStorage {
	case "", "local":
		return storage.NewLocalStore(cfg.AvatarDir)
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unsupported avatar storage %q", cfg.AvatarStorage)
	}
}
