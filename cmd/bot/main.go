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

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/archiver"
	"github.com/tinyrobots/robot-archive-bot/internal/config"
	"github.com/tinyrobots/robot-archive-bot/internal/notifications"
	"github.com/tinyrobots/robot-archive-bot/internal/scheduler"
	"github.com/tinyrobots/robot-archive-bot/internal/storage"
	"github.com/tinyrobots/robot-archive-bot/internal/store"
	"github.com/tinyrobots/robot-archive-bot/internal/upstream"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateService(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Robot Archive Bot")

	db, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	backend, err := newStorageBackend(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	client := upstream.NewAPIClient(cfg.UpstreamBaseURL, cfg.UpstreamToken)
	notificationService := notifications.NewService(cfg)

	archiverService := archiver.NewService(cfg, db, client, backend, notificationService)

	schedulerService := scheduler.NewService(cfg, archiverService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// HTTP server for health checks and manual triggers
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(archiverService)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(archiverService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// newStorageBackend picks Azure Blob Storage when an account is
// configured, otherwise a local image directory.
func newStorageBackend(cfg *config.Config) (storage.Interface, error) {
	if cfg.StorageAccount != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
	}

	dir := cfg.ImageDir
	if dir == "" {
		dir = "images"
	}
	return storage.NewLocalStorage(dir)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(archiverService *archiver.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(archiverService.GetMetrics()))
	}
}

func triggerHandler(archiverService *archiver.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := archiverService.RunArchive(); err != nil {
				logrus.Errorf("Manual archive trigger failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Archive run triggered"}`))
	}
}
