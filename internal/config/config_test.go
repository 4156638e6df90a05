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

	assert.Equal(t, 4.0, cfg.ServiceFeePercent)
	assert.Equal(t, time.Hour, cfg.CancellationCutoff)
	assert.Equal(t, 15*time.Minute, cfg.SweeperInterval)
	assert.Equal(t, 3, cfg.SweeperMaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.PaymentLinkTTL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "dev", cfg.AppEnv)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_FEE_PERCENT", "7.5")
	t.Setenv("CANCELLATION_CUTOFF", "2h")
	t.Setenv("SWEEPER_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7.5, cfg.ServiceFeePercent)
	assert.Equal(t, 2*time.Hour, cfg.CancellationCutoff)
	assert.Equal(t, 5*time.Minute, cfg.SweeperInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SERVICE_FEE_PERCENT", "150")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsDefaultJWTSecretInProd(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	_, err := Load()
	assert.Error(t, err)
}
