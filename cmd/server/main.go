// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/api"
	"github.com/andresuchdata/workshop-dashboard/internal/cache"
	"github.com/andresuchdata/workshop-dashboard/internal/config"
	"github.com/andresuchdata/workshop-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/workshop-dashboard/internal/service"
	"github.com/andresuchdata/workshop-dashboard/internal/storage"
	"github.com/andresuchdata/workshop-dashboard/internal/view"
	"github.com/andresuchdata/workshop-dashboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	recordsCache, err := cache.NewRecordsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Records cache unavailable, continuing without cache")
		recordsCache = cache.NewNoopRecordsCache()
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize services
	records := service.NewRecordService(postgres.NewRecordRepository(db), recordsCache)
	queue := service.NewQueueService(postgres.NewQueueRepository(db), newLinker(ctx, cfg))
	sessions := service.NewSessionManager(service.SessionOptions{
		Records:     records,
		Queue:       queue,
		Notifier:    view.LogNotifier{},
		Money:       view.NewCurrencyFormatter(cfg.View.CurrencyLocale, cfg.View.CurrencySymbol),
		TTL:         cfg.View.SessionTTL(),
		Invalidator: records,
	})
	go sessions.Run(ctx, time.Minute)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Sessions: sessions,
		Records:  records,
		Queue:    queue,
	}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// newLinker wires the media link resolvers that are configured; keys the
// missing ones would handle are passed through unchanged.
func newLinker(ctx context.Context, cfg *config.Config) storage.Linker {
	router := &storage.Router{}

	if cfg.Storage.Endpoint != "" {
		objects, err := storage.NewMinioLinker(storage.MinioConfig{
			Endpoint:   cfg.Storage.Endpoint,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Bucket:     cfg.Storage.Bucket,
			UseSSL:     cfg.Storage.UseSSL,
			PresignTTL: time.Duration(cfg.Storage.PresignTTLSeconds) * time.Second,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage links disabled")
		} else {
			router.Objects = objects
		}
	}

	if cfg.Drive.CredentialsFile != "" {
		creds, err := os.ReadFile(cfg.Drive.CredentialsFile)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Drive links disabled")
			return router
		}
		drive, err := storage.NewDriveLinker(ctx, creds)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Drive links disabled")
			return router
		}
		router.Drive = drive
	}

	return router
}
