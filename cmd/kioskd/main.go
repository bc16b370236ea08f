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

	"carwash-kiosk-backend/config"
	"carwash-kiosk-backend/internal/api"
	"carwash-kiosk-backend/internal/auth"
	"carwash-kiosk-backend/internal/db"
	"carwash-kiosk-backend/internal/devicelink"
	"carwash-kiosk-backend/internal/notification"
	"carwash-kiosk-backend/internal/session"
	"carwash-kiosk-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "kiosk-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Push.Enabled && (cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "") {
		logger.Fatalf("VAPID keys must be configured when push is enabled. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rehydrate or seed the catalog store
	appStore := store.New(store.NewGormPersister(gormDB))
	defaultHash, err := auth.HashPassword("admin123")
	if err != nil {
		logger.Fatalf("failed to hash default password: %v", err)
	}
	if err := appStore.Init(ctx, defaultHash); err != nil {
		logger.Fatalf("failed to initialize app state: %v", err)
	}
	logger.Println("catalog store initialized")

	// Device link poll loop
	link := devicelink.NewLink(&cfg.Device)
	go link.Run(ctx)

	// Notification worker pool
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	workerPool.Start(ctx)

	// Session coordinator
	var notifier session.Notifier
	if cfg.Push.Enabled {
		notifier = workerPool
	}
	sessions := session.New(appStore, link, notifier, session.NewGormRecorder(gormDB))
	go sessions.Run(ctx)

	// Admin gate
	verifier := auth.NewVerifier(appStore, cfg.Admin.MaxLoginAttempts, cfg.Admin.Lockout, cfg.Admin.TokenTTL)

	// Initialize router
	handler := api.NewHandler(appStore, link, sessions, verifier, &webpushOptions, gormDB)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
