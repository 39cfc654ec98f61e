package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.GoEnv)
	assert.Equal(t, 3001, cfg.HTTPPort)
	assert.Equal(t, "0.0.0.0:3001", cfg.HTTPAddr())
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CacheEnabled())
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.CacheEnabled())
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_PORT":       "not-a-number",
		"JWT_EXPIRY":      "forever",
		"METRICS_ENABLED": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(key, value)

			_, err := LoadConfig()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GoEnv:          "development",
			HTTPPort:       3001,
			DBMaxOpenConns: 20,
			DBMaxIdleConns: 10,
			JWTSecret:      "short",
			JWTExpiry:      time.Hour,
			BcryptCost:     10,
			LogLevel:       "info",
			LogFormat:      "text",
		}
	}

	t.Run("valid development config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("short secret rejected in production", func(t *testing.T) {
		cfg := valid()
		cfg.GoEnv = "production"
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("collects every problem", func(t *testing.T) {
		cfg := valid()
		cfg.HTTPPort = 0
		cfg.LogLevel = "verbose"
		cfg.LogFormat = "xml"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP_PORT")
		assert.Contains(t, err.Error(), "LOG_LEVEL")
		assert.Contains(t, err.Error(), "LOG_FORMAT")
	})

	t.Run("idle connections bounded by open connections", func(t *testing.T) {
		cfg := valid()
		cfg.DBMaxIdleConns = 50
		assert.ErrorContains(t, cfg.Validate(), "DB_MAX_IDLE_CONNS")
	})
}
