package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/rental-booking-backend/internal/app"
	"github.com/nekogravitycat/rental-booking-backend/internal/config"
	"github.com/nekogravitycat/rental-booking-backend/internal/db"
	"github.com/nekogravitycat/rental-booking-backend/internal/event"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.WithError(err).Fatal("failed to migrate db")
	}

	// Optional Redis for token state shared across instances
	var redisClient redis.UniversalClient
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		log.WithField("addr", cfg.RedisAddr).Info("using redis token store")
	}

	// Optional AMQP broker for domain events
	var publisher event.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to amqp")
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.WithField("exchange", cfg.AMQPExchange).Info("publishing events to amqp")
	}

	// Photo storage
	var store storage.Storage
	switch cfg.StorageDriver {
	case "minio":
		store, err = storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		store, err = storage.NewLocalStorage(cfg.StoragePath)
	}
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StorageDriver).Fatal("failed to init storage")
	}

	container := app.NewContainer(app.Config{
		IsProduction:       cfg.IsProduction(),
		ProdOrigins:        cfg.Origins(),
		Log:                log,
		DBPool:             pool,
		JWTSecret:          cfg.JWTSecret,
		JWTTTL:             cfg.JWTAccessTokenTTL,
		RefreshTTL:         cfg.JWTRefreshTokenTTL,
		BcryptCost:         cfg.BcryptCost,
		Redis:              redisClient,
		Events:             publisher,
		Storage:            store,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
	})

	// Drop idle rate limiter entries until shutdown
	go container.AuthLimiter.Run(time.Minute, ctx.Done())

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
