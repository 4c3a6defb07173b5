package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/scheduler"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/logger"
	redisstore "github.com/ikkim/storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	store := repository.NewStore(database)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	orderOpts := []service.OrderServiceOption{service.WithEventPublisher(hub)}
	if cfg.Redis.Enabled {
		client, err := redisstore.Connect(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer client.Close()
		orderOpts = append(orderOpts, service.WithIdempotency(redisstore.NewIdempotencyStore(client, cfg.Idempotency.TTL)))
	} else {
		logger.Warn("Redis disabled, Idempotency-Key headers are ignored", nil)
	}

	// Initialize services
	productService := service.NewProductService(store)
	reviewService := service.NewReviewService(store)
	orderService := service.NewOrderService(store, orderOpts...)
	auditService := service.NewAuditService(store)
	reportService := service.NewReportService(store)

	var uploader scheduler.ReportUploader
	if cfg.S3.Bucket != "" {
		uploader = storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
	}
	jobs := scheduler.NewScheduler(auditService, reportService, uploader, cfg.Scheduler.AuditSchedule, cfg.Scheduler.ReportSchedule)
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}

	// Setup router
	r := router.NewRouter(
		controller.NewProductController(productService),
		controller.NewReviewController(reviewService),
		controller.NewOrderController(orderService),
		controller.NewReportController(reportService),
		controller.NewEventController(hub, cfg.CORS.AllowedOrigins),
		controller.NewHealthController(database),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	jobs.Stop()
	stop()

	logger.Info("Server stopped successfully")
}
