package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "HTTP_ADDR", "SESSION_STORE", "SESSION_TTL", "LOG_LEVEL", "LOG_FORMAT", "RUN_MIGRATIONS"} {
		t.Setenv(k, "")
	}

	c, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, "redis", c.Session.Store)
	assert.Equal(t, 24*time.Hour, c.Session.TTL)
	assert.Equal(t, slog.LevelInfo, c.Log.Level)
	assert.False(t, c.Postgres.RunMigrations)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_STORE", "Memory")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RUN_MIGRATIONS", "true")
	t.Setenv("REDIS_DB", "3")

	c, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.HTTP.Addr)
	assert.Equal(t, "memory", c.Session.Store)
	assert.Equal(t, 2*time.Hour, c.Session.TTL)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, slog.LevelDebug, c.Log.Level)
	assert.True(t, c.Postgres.RunMigrations)
	assert.Equal(t, 3, c.Redis.DB)
	assert.Equal(t, time.Minute, c.HTTP.IdleTimeout)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "log_format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "log_level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "session_store", env: map[string]string{"SESSION_STORE": "disk"}},
		{name: "session_ttl", env: map[string]string{"SESSION_TTL": "-1s"}},
		{name: "default_secret_in_prod", env: map[string]string{"APP_ENV": "prod", "JWT_SECRET": ""}},
		{name: "bad_duration", env: map[string]string{"HTTP_IDLE_TIMEOUT": "not-a-duration"}},
		{name: "bad_int", env: map[string]string{"REDIS_DB": "three"}},
		{name: "bad_bool", env: map[string]string{"RUN_MIGRATIONS": "maybe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv_ProdWithSecret(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "prod", c.Env)
}

func TestLoadFromEnv_ReportsEveryBadValue(t *testing.T) {
	t.Setenv("REDIS_DB", "three")
	t.Setenv("SESSION_TTL", "soon")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.ErrorContains(t, err, "REDIS_DB")
	assert.ErrorContains(t, err, "SESSION_TTL")
}
