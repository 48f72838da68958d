package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	Debug          bool
	MaxUploadBytes int64

	// Schedule configuration
	AnalysisSchedule string // cron spec with seconds field
	TimeZone         string

	// Storage configuration
	StorageAccount   string
	StorageContainer string
	LocalStorageDir  string
	TranscriptPrefix string
	ReportPrefix     string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Analysis defaults
	PolicyFile       string
	AnonymizeReports bool
	DefaultSections  []string
	RemoteTimeout    time.Duration

	Policy Policy
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Debug:          getBoolEnv("DEBUG", false),
		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 32<<20)),

		AnalysisSchedule: getEnv("ANALYSIS_SCHEDULE", "0 0 9 * * *"),
		TimeZone:         getEnv("TIMEZONE", "UTC"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "chat-analyzer"),
		LocalStorageDir:  getEnv("LOCAL_STORAGE_DIR", "data"),
		TranscriptPrefix: getEnv("TRANSCRIPT_PREFIX", "transcripts/"),
		ReportPrefix:     getEnv("REPORT_PREFIX", "reports/"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		PolicyFile:       getEnv("POLICY_FILE", ""),
		AnonymizeReports: getBoolEnv("ANONYMIZE_REPORTS", false),
		DefaultSections:  getSliceEnv("DEFAULT_SECTIONS", nil),
		RemoteTimeout:    getDurationEnv("REMOTE_TIMEOUT", 30*time.Second),
	}

	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis policy: %w", err)
	}
	policy.PositiveThreshold = getFloatEnv("SENTIMENT_POSITIVE_THRESHOLD", policy.PositiveThreshold)
	policy.NegativeThreshold = getFloatEnv("SENTIMENT_NEGATIVE_THRESHOLD", policy.NegativeThreshold)
	policy.GapCeiling = getDurationEnv("GAP_CEILING", policy.GapCeiling)
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis policy: %w", err)
	}
	cfg.Policy = policy

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.AnalysisSchedule); err != nil {
		return fmt.Errorf("ANALYSIS_SCHEDULE is not a valid cron spec: %w", err)
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a known location: %w", c.TimeZone, err)
	}

	if c.StorageAccount == "" && c.LocalStorageDir == "" {
		return fmt.Errorf("either AZURE_STORAGE_ACCOUNT or LOCAL_STORAGE_DIR must be set")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return nil
}

// NotificationsEnabled reports whether at least one digest channel is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TeamsWebhookURL != "" || c.NotificationEmail != ""
}

// Location returns the configured time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
