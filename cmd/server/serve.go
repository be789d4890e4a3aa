package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/cache"
	"github.com/Tarun62689/gdrive-backend/internal/database"
	"github.com/Tarun62689/gdrive-backend/internal/events"
	"github.com/Tarun62689/gdrive-backend/internal/handlers"
	"github.com/Tarun62689/gdrive-backend/internal/middleware"
	"github.com/Tarun62689/gdrive-backend/internal/router"
	"github.com/Tarun62689/gdrive-backend/internal/services"
	"github.com/Tarun62689/gdrive-backend/internal/storage"
	"github.com/Tarun62689/gdrive-backend/pkg/logger"
	"github.com/Tarun62689/gdrive-backend/pkg/utils"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DB)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		logger.Info("migrations_applied", map[string]interface{}{
			"driver": cfg.DB.Driver,
		})
		return nil
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	storageClient, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed ensuring bucket: %w", err)
	}

	var urlCache cache.URLCache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisClient.Close()
		urlCache = cache.NewRedisCache(redisClient)
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	accessService := services.NewAccessService(db)
	hierarchyService := services.NewHierarchyService(db, storageClient, accessService)
	hierarchyService.URLCache = urlCache
	sharingService := services.NewSharingService(db, accessService, hierarchyService, storageClient, urlCache, cfg.Share.SignedURLTTL, cfg.Share.BasePath)
	authService := services.NewAuthService(db)
	activityService := services.NewActivityService(db, publisher)
	// Drain activity before the publisher it forwards to is closed.
	defer activityService.Close()

	app := router.New(cfg.Server, router.Handlers{
		Auth:     handlers.NewAuthHandler(authService, hierarchyService, activityService, cfg.Server.CookieSecure),
		Drive:    handlers.NewDriveHandler(hierarchyService),
		Folders:  handlers.NewFoldersHandler(hierarchyService, activityService),
		Files:    handlers.NewFilesHandler(hierarchyService, sharingService, activityService),
		Shares:   handlers.NewSharesHandler(sharingService, activityService),
		Activity: handlers.NewActivityHandler(activityService),
	}, middleware.NewAuthMiddleware(authService))

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server_starting", map[string]interface{}{
		"address":        listenAddr,
		"db_driver":      cfg.DB.Driver,
		"storage":        cfg.Storage.Backend,
		"body_limit_mb":  cfg.Server.BodyLimitMB,
		"redis_enabled":  urlCache != nil,
		"kafka_brokers":  len(cfg.Kafka.Brokers),
		"signed_url_ttl": cfg.Share.SignedURLTTL.String(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("server_shutdown", map[string]interface{}{"signal": sig.String()})
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("server_shutdown_failed", err, nil)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
