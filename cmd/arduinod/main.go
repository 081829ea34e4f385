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

	"github.com/SherClockHolmes/webpush-go"

	"github.com/ginxFromYt/ARDUINO-API/config"
	"github.com/ginxFromYt/ARDUINO-API/internal/api"
	"github.com/ginxFromYt/ARDUINO-API/internal/db"
	"github.com/ginxFromYt/ARDUINO-API/internal/notification"
	"github.com/ginxFromYt/ARDUINO-API/internal/retention"
	"github.com/ginxFromYt/ARDUINO-API/internal/store"
	"github.com/ginxFromYt/ARDUINO-API/internal/waterquality"
)

func main() {
	logger := log.New(os.Stdout, "arduinod ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Device.APIKey == "" {
		logger.Fatalf("device.api_key must be configured; embedded clients cannot authenticate without it")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Alert notifications are only wired up when VAPID keys exist; the
	// ingest path works without them.
	var ingestor *waterquality.Ingestor
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
		workerPool.Start(ctx)
		ingestor = waterquality.NewIngestor(appStore, workerPool)
		logger.Printf("alert notification pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		ingestor = waterquality.NewIngestor(appStore, nil)
		logger.Println("VAPID keys not configured; alert notifications disabled")
	}

	sweeper := retention.NewSweeper(&cfg.Retention, appStore)
	go sweeper.Run(ctx)

	router := api.NewRouter(cfg, appStore, ingestor, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
