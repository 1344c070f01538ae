package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BARBERPOS_AUTH_JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "55 23 * * *", cfg.Scheduler.ClosingSpec)
	assert.Equal(t, "Asia/Jakarta", cfg.App.Timezone)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BARBERPOS_AUTH_JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("BARBERPOS_SERVER_PORT", "9090")
	t.Setenv("BARBERPOS_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BARBERPOS_DATABASE_MAX_CONNS", "25")
	t.Setenv("BARBERPOS_LOG_FORMAT", "console")
	t.Setenv("BARBERPOS_SCHEDULER_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0123456789abcdef0123", cfg.Auth.JWTSecret)
}

func TestLoad_CORSOrigins(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"single origin replaces default", "https://kasir.example", []string{"https://kasir.example"}},
		{"blanks trimmed", " https://a.example , https://b.example ,", []string{"https://a.example", "https://b.example"}},
		{"three origins", "https://a.example,https://b.example,http://localhost:3000", []string{"https://a.example", "https://b.example", "http://localhost:3000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BARBERPOS_AUTH_JWT_SECRET", "0123456789abcdef0123")
			t.Setenv("BARBERPOS_SERVER_CORS_ORIGINS", tt.value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Server.CORSOrigins)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a,,b"))
	assert.Empty(t, splitList(" , "))
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("BARBERPOS_AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("BARBERPOS_AUTH_JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("BARBERPOS_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
}

func TestLocation_Fallback(t *testing.T) {
	cfg := &Config{App: AppConfig{Timezone: "Nowhere/Invalid"}}
	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 7*60*60, offset)
}
