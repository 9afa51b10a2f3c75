package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("SESSION_STORE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, HasherBcrypt, cfg.Auth.PasswordHasher)
	assert.Equal(t, "session_token", cfg.Auth.CookieName)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_SESSION_TTL_DAYS", "7")
	t.Setenv("AUTH_PASSWORD_HASHER", "ARGON2")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("APP_PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []byte("s3cret"), []byte(cfg.Auth.JWTSecret))
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL())
	assert.Equal(t, HasherArgon2, cfg.Auth.PasswordHasher)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, "0.0.0.0:9000", cfg.App.Addr())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:     AppConfig{Env: "development"},
			Auth:    AuthConfig{JWTSecret: "x", SessionTTLDays: 30, PasswordHasher: HasherBcrypt},
			Session: SessionConfig{Store: SessionStoreRedis},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Session.Store = "etcd"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Session.Store = SessionStorePostgres
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.App.Env = "production"
	cfg.Auth.JWTSecret = "dev-secret"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.PasswordHasher = "md5"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.AdminUsername = "root"
	assert.Error(t, cfg.Validate())
	cfg.Auth.AdminPassword = "hunter2"
	assert.NoError(t, cfg.Validate())
}
