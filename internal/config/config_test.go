package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "streetlight-dispatch", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, float64(10000), cfg.Dispatch.SearchRadiusMeters)
	assert.Equal(t, 10*time.Minute, cfg.Dispatch.LocationTTL())
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DISPATCH_SEARCH_RADIUS_METERS", "2500")
	t.Setenv("DISPATCH_LOCATION_TTL_MINUTES", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, float64(2500), cfg.Dispatch.SearchRadiusMeters)
	assert.Equal(t, 3*time.Minute, cfg.Dispatch.LocationTTL())
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadRejectsBadRadius(t *testing.T) {
	t.Setenv("DISPATCH_SEARCH_RADIUS_METERS", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
