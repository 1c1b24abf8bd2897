package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Recognition.Timeout)
	assert.Equal(t, 0.4, cfg.Catalog.MinConfidence)
	assert.Equal(t, 4, cfg.Catalog.Workers)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PHARMACY_SERVER_PORT", "9090")
	t.Setenv("PHARMACY_CATALOG_MIN_CONFIDENCE", "0.6")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.6, cfg.Catalog.MinConfidence)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("PHARMACY_CATALOG_MIN_SCORE", "1.5")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
