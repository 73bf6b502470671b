package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"

	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Session  SessionConfig
	SQLite   SQLiteConfig
	Engine   EngineConfig
	Cron     CronConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Mode        string
	FrontendURL []string
	// Workers bounds the per-employee fan-out of reports and batch jobs.
	Workers int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type SessionConfig struct {
	Store string
}

type SQLiteConfig struct {
	Path string
}

type EngineConfig struct {
	// PolicyFile is an optional YAML file with the default policy. Stored
	// settings take precedence once an admin saves them.
	PolicyFile string
}

type CronConfig struct {
	Enabled        bool
	CloseOut       bool
	Recalculate    bool
	SessionCleanup bool
	Interval       time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using environment only")
	}

	config := &Config{}
	var err error

	// Application configuration
	config.App = AppConfig{
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Mode:        getEnv("APP_MODE", ModeLocal),
		FrontendURL: getEnvSlice("FRONTEND_URL"),
	}
	if config.App.Port, err = getEnvInt("APP_PORT", 8080); err != nil {
		return nil, err
	}
	if config.App.Workers, err = getEnvInt("WORKERS", 4); err != nil {
		return nil, err
	}

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
	if config.Database.Port, err = getEnvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 0)
	if err != nil {
		return nil, err
	}
	config.Database.MaxConns, config.Database.MinConns = int32(maxConns), int32(minConns)
	if config.Database.MaxConnLifetime, err = getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour); err != nil {
		return nil, err
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	defaultStore := SessionStoreMemory
	if config.App.Mode == ModeRemote {
		defaultStore = SessionStorePostgres
	}
	config.Session = SessionConfig{Store: getEnv("SESSION_STORE", defaultStore)}
	config.SQLite = SQLiteConfig{Path: getEnv("SQLITE_PATH", "timeclock.db")}
	config.Engine = EngineConfig{PolicyFile: getEnv("POLICY_FILE", "")}

	// Cron configuration
	config.Cron = CronConfig{
		Enabled:        getEnvBool("CRON_ENABLED", true),
		CloseOut:       getEnvBool("CRON_CLOSE_OUT", true),
		Recalculate:    getEnvBool("CRON_RECALCULATE", true),
		SessionCleanup: getEnvBool("CRON_SESSION_CLEANUP", true),
	}
	if config.Cron.Interval, err = getEnvDuration("CRON_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	switch c.App.Mode {
	case ModeLocal:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required in local mode")
		}
	case ModeRemote:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required in remote mode")
		}
	default:
		return fmt.Errorf("APP_MODE must be %s or %s, got %q", ModeLocal, ModeRemote, c.App.Mode)
	}
	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if c.App.Mode != ModeRemote {
			return fmt.Errorf("SESSION_STORE=postgres requires APP_MODE=remote")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %s or %s, got %q", SessionStoreMemory, SessionStorePostgres, c.Session.Store)
	}
	if c.App.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1")
	}
	if c.Cron.Interval <= 0 {
		return fmt.Errorf("CRON_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func getEnvInt(key string, fallback int) (int, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
