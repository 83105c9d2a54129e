package config

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Analytics AnalyticsConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	LogLevel         string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	MigrationsPath  string
	SeedDatabase    bool
	SeedsPath       string
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
	// TrustProxy takes the client address from X-Forwarded-For when the hop
	// that added it is a private or loopback address
	TrustProxy bool
}

// AnalyticsConfig controls how calendar months are cut and how listings are read.
type AnalyticsConfig struct {
	Location        *time.Location
	DefaultCurrency string
	PageIsolation   sql.IsolationLevel
}

// Load reads the configuration from the environment. It fails only when
// token keys are missing or unreadable.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:             env("SERVER_PORT", "8080"),
			Host:             env("SERVER_HOST", "localhost"),
			Environment:      env("APP_ENV", "development"),
			LogLevel:         env("LOG_LEVEL", "info"),
			ReadTimeout:      envOr("SERVER_READ_TIMEOUT", 15*time.Second, time.ParseDuration),
			WriteTimeout:     envOr("SERVER_WRITE_TIMEOUT", 15*time.Second, time.ParseDuration),
			ShutdownTimeout:  envOr("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second, time.ParseDuration),
			CORSAllowOrigins: envOr("CORS_ALLOW_ORIGINS", []string{"*"}, parseList),
		},
		Database: DatabaseConfig{
			Host:            env("DB_HOST", "localhost"),
			Port:            env("DB_PORT", "5432"),
			User:            env("DB_USER", "expense_user"),
			Password:        env("DB_PASSWORD", "expense_password"),
			Name:            env("DB_NAME", "expense_db"),
			SSLMode:         env("DB_SSL_MODE", "disable"),
			MaxConnections:  envOr("DB_MAX_CONNECTIONS", 25, strconv.Atoi),
			MaxIdleConns:    envOr("DB_MAX_IDLE_CONNS", 5, strconv.Atoi),
			ConnMaxLifetime: envOr("DB_CONN_MAX_LIFETIME", time.Hour, time.ParseDuration),
			AutoMigrate:     envOr("AUTO_MIGRATE", false, strconv.ParseBool),
			MigrationsPath:  env("MIGRATIONS_PATH", "db/migrations"),
			SeedDatabase:    envOr("SEED_DATABASE", false, strconv.ParseBool),
			SeedsPath:       env("SEEDS_PATH", "db/seeds"),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: envOr("RATE_LIMIT_PER_SECOND", 10, strconv.Atoi),
			RateLimitBurst:     envOr("RATE_LIMIT_BURST", 20, strconv.Atoi),
			TrustProxy:         envOr("TRUST_PROXY", false, strconv.ParseBool),
		},
		JWT: JWTConfig{
			AccessTokenDuration: envOr("JWT_ACCESS_TOKEN_DURATION", 24*time.Hour, time.ParseDuration),
			Issuer:              env("JWT_ISSUER", "expense-tracker"),
		},
		Analytics: AnalyticsConfig{
			Location:        envOr("ANALYTICS_TIMEZONE", time.UTC, time.LoadLocation),
			DefaultCurrency: strings.ToUpper(env("DEFAULT_CURRENCY", "INR")),
			PageIsolation:   envOr("PAGE_TX_ISOLATION", sql.LevelRepeatableRead, parseIsolation),
		},
	}

	if cfg.IsProduction() && os.Getenv("CORS_ALLOW_ORIGINS") == "" {
		slog.Warn("CORS_ALLOW_ORIGINS not set in production, allowing every origin")
	}

	if err := cfg.JWT.loadKeys(cfg.IsProduction()); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

// SlogLevel maps LOG_LEVEL onto a slog level, falling back to info
func (c *ServerConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func env(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envOr parses the variable with parse; unset or unparsable values yield defaultValue
func envOr[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := parse(value)
	if err != nil {
		slog.Warn("ignoring invalid environment value", "key", key, "value", value, "error", err)
		return defaultValue
	}
	return parsed
}

func parseList(value string) ([]string, error) {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty list %q", value)
	}
	return items, nil
}

func parseIsolation(value string) (sql.IsolationLevel, error) {
	switch strings.ToLower(value) {
	case "default":
		return sql.LevelDefault, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unknown isolation level %q", value)
	}
}
