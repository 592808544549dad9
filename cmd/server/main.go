package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/team-task-api/internal/cache"
	"github.com/yukikurage/team-task-api/internal/config"
	"github.com/yukikurage/team-task-api/internal/database"
	"github.com/yukikurage/team-task-api/internal/events"
	"github.com/yukikurage/team-task-api/internal/router"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run owns every resource of the process so deferred cleanup happens on
// both the error and the shutdown path.
func run() error {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	if cfg.UsesDefaultJWTSecret() && cfg.GinMode == gin.ReleaseMode {
		slog.Warn("JWT_SECRET_KEY is not set, tokens are signed with the built-in development secret")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Run migrations
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Response cache
	var store cache.Cache = cache.Noop{}
	if cfg.CacheEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, response cache disabled", "addr", cfg.RedisAddr(), "error", err)
		} else {
			store = cache.NewRedisCache(client, cfg.CachePrefix)
		}
	}

	// Lifecycle events
	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.RabbitMQURL, cfg.EventExchange)
		if err != nil {
			slog.Warn("rabbitmq unavailable, events disabled", "error", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
		}
	}

	r, err := router.New(router.Deps{
		Config:    cfg,
		DB:        db,
		Cache:     store,
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	// Start server
	slog.Info("server starting", "addr", server.Addr, "db_driver", cfg.DBDriver, "cache", cfg.CacheEnabled)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	<-drained
	slog.Info("server stopped")
	return nil
}
