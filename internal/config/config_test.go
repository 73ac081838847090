package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "public", cfg.Server.StaticDir)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 90*24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "@every 1h", cfg.Jobs.ResetTokenCleanupSchedule)
	assert.Equal(t, 5.0, cfg.SMTP.MaxPerSecond)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "NODE_ENV=production\nPORT=9000\nDATABASE=postgres://app:<PASSWORD>@db:5432/jobs\nDATABASE_PASSWORD=fromfile\nJWT_SECRET=s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PORT", "9100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://app:fromfile@db:5432/jobs", cfg.Database.DatabaseURL())

	backend, err := cfg.Database.Backend()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, backend)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "ninety days")

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{URL: "mongodb+srv://user:<PASSWORD>@cluster", Password: "pw"},
			JWT:       JWTConfig{Secret: "s", ExpiresIn: time.Hour},
			RateLimit: RateLimitConfig{Max: 100, Window: time.Hour},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing database", func(c *Config) { c.Database.URL = "" }, false},
		{"missing password", func(c *Config) { c.Database.Password = "" }, false},
		{"unknown scheme", func(c *Config) { c.Database.URL = "mysql://db" }, false},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, false},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }, false},
		{"production without smtp", func(c *Config) { c.Server.Environment = EnvProduction }, false},
		{"production with smtp", func(c *Config) {
			c.Server.Environment = EnvProduction
			c.SMTP.Host = "smtp.example.com"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
