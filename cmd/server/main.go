// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Mohit-R-04/FarmToMarket/internal/config"
	"github.com/Mohit-R-04/FarmToMarket/internal/database"
	"github.com/Mohit-R-04/FarmToMarket/internal/events"
	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/middleware"
	"github.com/Mohit-R-04/FarmToMarket/internal/router"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

func setupLogging(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.Environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := setupLogging(cfg)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedAdmin(db, cfg.Admin.UserID, cfg.Admin.Email); err != nil {
		log.WithError(err).Fatal("Failed to seed admin user")
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.Issuer)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		log.WithField("brokers", cfg.Kafka.Brokers).Info("Publishing domain events to Kafka")
	}
	emitter := events.NewEmitter(publisher, log)

	var idempotency middleware.IdempotencyStore
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, idempotency keys will be checked once it recovers")
		}
		cancel()
		idempotency = middleware.NewRedisIdempotencyStore(client, "farmtomarket")
	} else {
		log.Warn("REDIS_HOST not set, Idempotency-Key headers are ignored")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := router.NewRateLimiter(cfg.RateLimit)
	go limiter.Run(ctx)

	r := router.Initialize(cfg, router.Dependencies{
		DB:          db,
		Emitter:     emitter,
		Idempotency: idempotency,
		RateLimiter: limiter,
		Log:         log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := emitter.Close(); err != nil {
		log.WithError(err).Warn("Failed to close event publisher")
	}

	log.Info("Server exited")
}
