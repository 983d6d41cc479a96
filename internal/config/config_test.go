package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/screener")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultUploadDir, cfg.UploadDir)
	assert.Equal(t, DefaultMaxFileSizeMB, cfg.MaxFileSizeMB)
	assert.Equal(t, DefaultTopPercentage, cfg.TopPercentage)
	assert.Equal(t, DefaultMinScoreThreshold, cfg.MinScoreThreshold)
	assert.Equal(t, DefaultScreeningTimeout, cfg.ScreeningTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/screener")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_FILE_SIZE_MB", "25")
	t.Setenv("TOP_CANDIDATE_PERCENTAGE", "20")
	t.Setenv("MIN_SCORE_THRESHOLD", "70")
	t.Setenv("SCREENING_TIMEOUT_SECONDS", "30")
	t.Setenv("LOG_JSON", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 25, cfg.MaxFileSizeMB)
	assert.Equal(t, 20.0, cfg.TopPercentage)
	assert.Equal(t, 70.0, cfg.MinScoreThreshold)
	assert.Equal(t, 30*time.Second, cfg.ScreeningTimeout)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, int64(25*1024*1024), cfg.MaxFileSizeBytes())
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/screener")
	t.Setenv("PORT", "not-a-number")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:              8080,
			DatabaseURL:       "postgres://localhost/screener",
			UploadDir:         "./uploads",
			MaxFileSizeMB:     10,
			TopPercentage:     15,
			MinScoreThreshold: 60,
			ScreeningTimeout:  time.Minute,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing database URL", func(t *testing.T) {
		cfg := base()
		cfg.DatabaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero file size", func(t *testing.T) {
		cfg := base()
		cfg.MaxFileSizeMB = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("percentage out of range", func(t *testing.T) {
		cfg := base()
		cfg.TopPercentage = 150
		assert.Error(t, cfg.Validate())
	})

	t.Run("threshold out of range", func(t *testing.T) {
		cfg := base()
		cfg.MinScoreThreshold = -1
		assert.Error(t, cfg.Validate())
	})
}
