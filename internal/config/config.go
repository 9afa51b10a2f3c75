package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

// Password hashing schemes.
const (
	HasherBcrypt = "bcrypt"
	HasherArgon2 = "argon2"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Session  SessionConfig
	Proxy    ProxyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret      string
	SessionTTLDays int
	BcryptCost     int
	PasswordHasher string
	PasswordKey    string
	CookieName     string
	CookieSecure   bool
	SingleSession  bool
	AdminUsername  string
	AdminPassword  string
}

// SessionConfig selects the revocation store backend.
type SessionConfig struct {
	Store                string
	KeyPrefix            string
	PurgeIntervalSeconds int
}

// ProxyConfig points at the downstream service guarded by the cookie gate.
type ProxyConfig struct {
	UpstreamURL    string
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "session-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3030"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: getEnv("APP_NAME", "session-gateway"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLDays: getEnvAsInt("AUTH_SESSION_TTL_DAYS", 30),
			BcryptCost:     getEnvAsInt("AUTH_BCRYPT_COST", 12),
			PasswordHasher: strings.ToLower(getEnv("AUTH_PASSWORD_HASHER", HasherBcrypt)),
			PasswordKey:    os.Getenv("AUTH_PASSWORD_KEY"),
			CookieName:     getEnv("AUTH_COOKIE_NAME", "session_token"),
			CookieSecure:   getEnvAsBool("AUTH_COOKIE_SECURE", false),
			SingleSession:  getEnvAsBool("AUTH_SINGLE_SESSION", true),
			AdminUsername:  os.Getenv("AUTH_ADMIN_USERNAME"),
			AdminPassword:  os.Getenv("AUTH_ADMIN_PASSWORD"),
		},
		Session: SessionConfig{
			Store:                strings.ToLower(getEnv("SESSION_STORE", SessionStoreRedis)),
			KeyPrefix:            getEnv("SESSION_KEY_PREFIX", "session:"),
			PurgeIntervalSeconds: getEnvAsInt("SESSION_PURGE_INTERVAL_SECONDS", 300),
		},
		Proxy: ProxyConfig{
			UpstreamURL:    getEnv("PROXY_UPSTREAM_URL", "http://127.0.0.1:3031"),
			TimeoutSeconds: getEnvAsInt("PROXY_TIMEOUT_SECONDS", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.App.Env == "production" && c.Auth.JWTSecret == "dev-secret" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be set in production"))
	}
	if c.Auth.SessionTTLDays <= 0 {
		errs = append(errs, fmt.Errorf("invalid AUTH_SESSION_TTL_DAYS: %d", c.Auth.SessionTTLDays))
	}
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		errs = append(errs, errors.New("AUTH_ADMIN_USERNAME and AUTH_ADMIN_PASSWORD must be set together"))
	}
	switch c.Auth.PasswordHasher {
	case HasherBcrypt, HasherArgon2:
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PASSWORD_HASHER %q", c.Auth.PasswordHasher))
	}
	switch c.Session.Store {
	case SessionStoreRedis, SessionStoreMemory:
	case SessionStorePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("SESSION_STORE=postgres requires POSTGRES_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL is the lifetime shared by token expiry and the session marker.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLDays) * 24 * time.Hour
}

// PurgeInterval returns how often expired markers are swept.
func (s SessionConfig) PurgeInterval() time.Duration {
	if s.PurgeIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(s.PurgeIntervalSeconds) * time.Second
}

// Timeout returns the upstream timeout.
func (p ProxyConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
