package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// Retention
	AutoDeleteDays  int
	AutoDeleteCodes bool
	AutoDeletePromo bool
	CodeExpiryHours int
	SweepInterval   time.Duration

	// Backup
	BackupDir         string
	AutoBackupEnabled bool
	BackupInterval    time.Duration

	// Daily summary
	SummaryEnabled  bool
	SummaryInterval time.Duration

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 2525); err != nil {
		return nil, err
	}

	// Retention settings. AUTO_DELETE_DAYS=0 disables the global age cutoff.
	if cfg.AutoDeleteDays, err = intEnv("AUTO_DELETE_DAYS", 0); err != nil {
		return nil, err
	}
	if cfg.AutoDeleteCodes, err = boolEnv("AUTO_DELETE_CODES", true); err != nil {
		return nil, err
	}
	if cfg.AutoDeletePromo, err = boolEnv("AUTO_DELETE_PROMO", false); err != nil {
		return nil, err
	}
	if cfg.CodeExpiryHours, err = intEnv("CODE_EXPIRY_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	// Backup settings
	cfg.BackupDir = os.Getenv("BACKUP_DIR")
	if cfg.BackupDir == "" {
		cfg.BackupDir = "./backups"
	}
	if cfg.AutoBackupEnabled, err = boolEnv("AUTO_BACKUP_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.BackupInterval, err = durationEnv("BACKUP_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}

	// Daily summary settings
	if cfg.SummaryEnabled, err = boolEnv("DAILY_SUMMARY_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.SummaryInterval, err = durationEnv("DAILY_SUMMARY_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.AutoDeleteDays < 0 {
		return fmt.Errorf("AutoDeleteDays cannot be negative")
	}
	if c.CodeExpiryHours <= 0 {
		return fmt.Errorf("CodeExpiryHours must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SweepInterval must be positive")
	}
	if c.BackupDir == "" {
		return fmt.Errorf("BackupDir cannot be empty")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Int("smtp_port", c.SMTPPort),
		slog.Int("auto_delete_days", c.AutoDeleteDays),
		slog.Bool("auto_delete_codes", c.AutoDeleteCodes),
		slog.Bool("auto_delete_promo", c.AutoDeletePromo),
		slog.Int("code_expiry_hours", c.CodeExpiryHours),
		slog.Duration("sweep_interval", c.SweepInterval),
		slog.String("backup_dir", c.BackupDir),
		slog.Bool("auto_backup", c.AutoBackupEnabled),
		slog.Bool("daily_summary", c.SummaryEnabled),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return v, nil
}
