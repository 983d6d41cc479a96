// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for optional settings.
const (
	DefaultPort              = 8080
	DefaultUploadDir         = "./uploads"
	DefaultMaxFileSizeMB     = 10
	DefaultTopPercentage     = 15.0
	DefaultMinScoreThreshold = 60.0
	DefaultScreeningTimeout  = 120 * time.Second
)

// Config holds runtime configuration. Values come from environment variables;
// missing optional values use defaults.
type Config struct {
	Port        int    // PORT
	DatabaseURL string // DATABASE_URL (required)
	APIKey      string // GEMINI_API_KEY (required for serve)
	UploadDir   string // UPLOAD_DIR

	MaxFileSizeMB     int           // MAX_FILE_SIZE_MB, upload ceiling per document
	TopPercentage     float64       // TOP_CANDIDATE_PERCENTAGE, e.g. 15 for top 15%
	MinScoreThreshold float64       // MIN_SCORE_THRESHOLD for top-performer queries
	ScreeningTimeout  time.Duration // SCREENING_TIMEOUT_SECONDS for the remote scoring call

	LogJSON  bool // LOG_JSON
	LogDebug bool // LOG_DEBUG
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset. It does not validate; call Validate before use.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              DefaultPort,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIKey:            os.Getenv("GEMINI_API_KEY"),
		UploadDir:         DefaultUploadDir,
		MaxFileSizeMB:     DefaultMaxFileSizeMB,
		TopPercentage:     DefaultTopPercentage,
		MinScoreThreshold: DefaultMinScoreThreshold,
		ScreeningTimeout:  DefaultScreeningTimeout,
		LogJSON:           os.Getenv("LOG_JSON") == "true",
		LogDebug:          os.Getenv("LOG_DEBUG") == "true",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}

	if v := os.Getenv("MAX_FILE_SIZE_MB"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid MAX_FILE_SIZE_MB %q: %w", v, err)
		}
		cfg.MaxFileSizeMB = size
	}

	if v := os.Getenv("TOP_CANDIDATE_PERCENTAGE"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid TOP_CANDIDATE_PERCENTAGE %q: %w", v, err)
		}
		cfg.TopPercentage = pct
	}

	if v := os.Getenv("MIN_SCORE_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid MIN_SCORE_THRESHOLD %q: %w", v, err)
		}
		cfg.MinScoreThreshold = threshold
	}

	if v := os.Getenv("SCREENING_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid SCREENING_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.ScreeningTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("config error: max file size must be positive")
	}
	if c.TopPercentage <= 0 || c.TopPercentage > 100 {
		return fmt.Errorf("config error: top candidate percentage must be in (0, 100]")
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 100 {
		return fmt.Errorf("config error: min score threshold must be in [0, 100]")
	}
	if c.ScreeningTimeout <= 0 {
		return fmt.Errorf("config error: screening timeout must be positive")
	}
	return nil
}

// MaxFileSizeBytes returns the upload ceiling in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}
