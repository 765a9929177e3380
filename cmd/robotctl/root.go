package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tinyrobots/robot-archive-bot/internal/config"
	"github.com/tinyrobots/robot-archive-bot/internal/storage"
	"github.com/tinyrobots/robot-archive-bot/internal/store"
	"github.com/tinyrobots/robot-archive-bot/internal/upstream"
)

var verbose bool

// newRootCmd creates the robotctl root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "robotctl",
		Short: "Manage the robot archive from the command line",
		Long: `robotctl drives the robot archive pipeline by hand.

It reads the same environment configuration as the bot service, so a
.env file or exported variables work for both.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{})
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress while working")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newTimelineCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newImagesCmd())

	return cmd
}

// loadConfig loads the environment configuration shared with the bot.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore connects to the database and applies pending migrations.
func openStore(cfg *config.Config) (*store.PostgresStore, error) {
	db, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func newUpstreamClient(cfg *config.Config) *upstream.APIClient {
	return upstream.NewAPIClient(cfg.UpstreamBaseURL, cfg.UpstreamToken)
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
