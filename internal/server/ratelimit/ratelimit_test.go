package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strictConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/applicants/upload", Method: "POST", Limit: 2, Window: time.Hour, Burst: 2},
			{Path: "/applicants/", Method: "DELETE", Limit: 5, Window: time.Minute, Burst: 5},
		},
	}
}

func TestLimiter_EnforcesBurst(t *testing.T) {
	l := NewLimiter(strictConfig())
	defer l.Stop()

	allowed, _ := l.Allow("1.2.3.4", "/applicants/upload", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/applicants/upload", "POST")
	assert.True(t, allowed)

	allowed, info := l.Allow("1.2.3.4", "/applicants/upload", "POST")
	require.False(t, allowed)
	assert.Equal(t, 2, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(strictConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/applicants/upload", "POST")
	l.Allow("1.2.3.4", "/applicants/upload", "POST")

	allowed, _ := l.Allow("5.6.7.8", "/applicants/upload", "POST")
	assert.True(t, allowed)
}

func TestLimiter_PrefixMatch(t *testing.T) {
	l := NewLimiter(strictConfig())
	defer l.Stop()

	_, info := l.Allow("1.2.3.4", "/applicants/abc-123", "DELETE")
	assert.Equal(t, 5, info.Limit)
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	l := NewLimiter(strictConfig())
	defer l.Stop()

	for range 50 {
		allowed, _ := l.Allow("1.2.3.4", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for range 10 {
		allowed, _ := l.Allow("1.2.3.4", "/applicants/upload", "POST")
		require.True(t, allowed)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1000, cfg.DefaultLimit)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}
