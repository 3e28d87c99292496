package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost/wholesale_test",
		"REDIS_URL":    "redis://localhost:6379/1",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "GBP", cfg.CurrencyCode)
	require.Equal(t, 550, cfg.FeeRateBps)
	require.Equal(t, int64(50), cfg.FeeFixedMinor)
	require.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	require.Equal(t, int64(800), cfg.ShippingFlatRate)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/1",
	})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/wholesale_test",
		"REDIS_URL":            "redis://localhost:6379/1",
		"PORT":                 "9090",
		"PRICING_FEE_RATE_BPS": "300",
		"PRICING_FEE_FIXED":    "1.25",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 300, cfg.FeeRateBps)
	require.Equal(t, int64(125), cfg.FeeFixedMinor)
}
