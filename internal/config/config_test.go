package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Development())
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, NotifyOutbox, cfg.NotifyMode)
	assert.Equal(t, 5, cfg.Receiving.Concurrency)
	assert.Equal(t, "USD", cfg.Receiving.Rules.CurrencyUnit)
	assert.Equal(t, 5*time.Second, cfg.Receiving.NotifyTimeout)
	assert.Error(t, cfg.RequireDatabase())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"APP_ENV":                           "production",
		"DATABASE_URL":                      "postgres://localhost/stock",
		"JWT_SECRET":                        "s3cret",
		"RECEIVING_CONCURRENCY":             "2",
		"RECEIVING_CURRENCY":                "EUR",
		"RECEIVING_DEFAULT_WAREHOUSE":       "wh-main",
		"RECEIVING_NOTIFY_TIMEOUT":          "750ms",
		"RECEIVING_DISABLE_CREATE_FALLBACK": "true",
		"NOTIFY_MODE":                       "Redis",
		"REDIS_DB":                          "3",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Development())
	assert.True(t, cfg.AuthEnabled())
	assert.NoError(t, cfg.RequireDatabase())
	assert.Equal(t, 2, cfg.Receiving.Concurrency)
	assert.Equal(t, "EUR", cfg.Receiving.Rules.CurrencyUnit)
	assert.Equal(t, "wh-main", cfg.Receiving.DefaultWarehouseRef)
	assert.Equal(t, 750*time.Millisecond, cfg.Receiving.NotifyTimeout)
	assert.True(t, cfg.Receiving.DisableCreateFallback)
	assert.Equal(t, NotifyRedis, cfg.NotifyMode)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"non-numeric concurrency", map[string]string{"RECEIVING_CONCURRENCY": "five"}, "RECEIVING_CONCURRENCY"},
		{"zero concurrency", map[string]string{"RECEIVING_CONCURRENCY": "0"}, "at least 1"},
		{"bad duration", map[string]string{"RECEIVING_NOTIFY_TIMEOUT": "soon"}, "not a duration"},
		{"unknown notify mode", map[string]string{"NOTIFY_MODE": "kafka"}, "NOTIFY_MODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
