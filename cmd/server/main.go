// Package main is the entry point for the QuadCast 2 LED server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/KarimImran/quadcast2-go/internal/api"
	"github.com/KarimImran/quadcast2-go/internal/config"
	"github.com/KarimImran/quadcast2-go/internal/database"
	"github.com/KarimImran/quadcast2-go/internal/database/models"
	"github.com/KarimImran/quadcast2-go/internal/database/repositories"
	"github.com/KarimImran/quadcast2-go/internal/logging"
	"github.com/KarimImran/quadcast2-go/internal/services/controller"
	"github.com/KarimImran/quadcast2-go/internal/services/effects"
	"github.com/KarimImran/quadcast2-go/internal/services/pubsub"
	"github.com/KarimImran/quadcast2-go/internal/services/settings"
	"github.com/KarimImran/quadcast2-go/internal/services/usb"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, perr := zapcore.ParseLevel(cfg.LogLevel); perr == nil {
		logging.SetAllLevels(level)
	} else {
		log.Printf("Warning: unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}

	logger := logging.New("main")
	defer func() { _ = logger.Sync() }()

	// Print startup banner
	printBanner(cfg)

	// Connect to database
	db, err := database.Connect(database.Config{
		URL:         cfg.DatabaseURL,
		MaxIdleConn: 5,
		MaxOpenConn: 10,
		Debug:       cfg.IsDevelopment(),
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	// Auto-migrate database schema
	if err := db.AutoMigrate(&models.Preset{}); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	presetRepo := repositories.NewPresetRepository(db)

	// Event bus feeding the WebSocket clients
	events := pubsub.New()

	// Settings store, published on every accepted write
	store := settings.NewStore()
	store.OnChange(func(view settings.View) {
		events.Publish(pubsub.TopicSettingsChanged, view)
	})

	engine := effects.NewEngine()

	openDevice := func() (controller.Device, error) {
		h, err := usb.Open()
		if err != nil {
			return nil, err
		}
		return h, nil
	}

	// Create and start the LED control loop
	ctrl := controller.NewController(store, engine, openDevice, controller.Config{
		Enabled:      cfg.USBEnabled,
		TickInterval: cfg.TickInterval,
		FaultBackoff: cfg.FaultBackoff,
	})
	ctrl.OnStatus(func(status controller.Status) {
		events.Publish(pubsub.TopicControllerStatus, status)
	})
	ctrl.OnLevels(func(lower, upper int) {
		events.Publish(pubsub.TopicLEDLevels, pubsub.LevelsEvent{Lower: lower, Upper: upper})
	})

	if err := ctrl.Start(); err != nil {
		logger.Warnf("LED controller not running: %v", err)
		// Continue anyway - the API stays up without the device
	}

	// HTTP surface
	server := api.NewServer(store, ctrl, presetRepo, events, api.Config{
		CORSOrigin: cfg.CORSOrigin,
		DebugCORS:  cfg.IsDevelopment(),
		Version:    Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server listening on http://localhost:%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Cleanup services in reverse order
	ctrl.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatalf("Server shutdown error: %v", err)
	}

	logger.Info("Server stopped")
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println("============================================")
	fmt.Println("  QuadCast 2 LED Server")
	fmt.Printf("  Version: %s\n", Version)
	fmt.Printf("  Build:   %s\n", BuildTime)
	fmt.Printf("  Commit:  %s\n", GitCommit)
	fmt.Println("============================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Port:        %s\n", cfg.Port)
	fmt.Printf("  Database:    %s\n", cfg.DatabaseURL)
	fmt.Printf("  USB:         %v\n", cfg.USBEnabled)
	fmt.Println("============================================")
}
