package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Database configuration
	DatabaseURL string

	// Upstream API configuration
	UpstreamBaseURL string
	UpstreamToken   string

	// The user whose timeline announces new robots
	ArchiveUser string

	// Timeline crawl configuration
	PageLength    int // posts per timeline page, up to 200
	Pages         int // pages per crawl
	CrawlSchedule string
	Verbose       bool

	// Image archival configuration
	ThumbSize        int
	StorageAccount   string
	StorageContainer string
	ImageDir         string

	// Notification configuration
	WebhookURL        string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	DigestSchedule    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://api.twitter.com/1.1"),
		UpstreamToken:   getEnv("UPSTREAM_BEARER_TOKEN", ""),

		ArchiveUser: getEnv("ARCHIVE_USER", "smolrobots"),

		PageLength:    getIntEnv("PAGE_LENGTH", 200),
		Pages:         getIntEnv("PAGES", 1),
		CrawlSchedule: getEnv("CRAWL_SCHEDULE", "0 */30 * * * *"),
		Verbose:       getBoolEnv("VERBOSE", false),

		ThumbSize:        getIntEnv("THUMB_SIZE", 128),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "robot-images"),
		ImageDir:         getEnv("IMAGE_DIR", ""),

		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		DigestSchedule:    getEnv("DIGEST_SCHEDULE", "0 0 9 * * *"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.PageLength < 1 || c.PageLength > 200 {
		return fmt.Errorf("PAGE_LENGTH must be between 1 and 200")
	}

	if c.ArchiveUser == "" {
		return fmt.Errorf("ARCHIVE_USER must not be empty")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// ValidateService enforces the extra requirements of the long-running
// service binary. The CLI works without any notification channel; the
// service needs at least one so scheduled crawls have somewhere to report.
func (c *Config) ValidateService() error {
	if c.WebhookURL == "" && c.NotificationEmail == "" {
		return fmt.Errorf("at least one notification method must be configured (WEBHOOK_URL or NOTIFICATION_EMAIL)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
