package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jaekwang-park/task-api/internal/model"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	ServerPort       string
	AppEnv           string
	AuthDevMode      bool
	LogLevel         string
	Storage          string
	SQLitePath       string
	StatsDefaultDays int
	DB               DBConfig
	Cognito          CognitoConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.AuthDevMode && c.AppEnv != "local" {
		return fmt.Errorf("AUTH_DEV_MODE must not be enabled in %s environment", c.AppEnv)
	}
	switch c.Storage {
	case StoragePostgres:
	case StorageSQLite:
		if c.AppEnv != "local" {
			return fmt.Errorf("STORAGE=sqlite is only supported in local environment, got %s", c.AppEnv)
		}
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORAGE %q: must be postgres or sqlite", c.Storage)
	}
	if c.StatsDefaultDays < 0 || c.StatsDefaultDays > model.MaxStatsDays {
		return fmt.Errorf("invalid STATS_DEFAULT_DAYS %d: must be between 0 and %d", c.StatsDefaultDays, model.MaxStatsDays)
	}
	if !c.AuthDevMode {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_DEV_MODE is disabled")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_DEV_MODE is disabled")
		}
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

func Load() Config {
	return Config{
		ServerPort:       envOrDefault("SERVER_PORT", "8080"),
		AppEnv:           envOrDefault("APP_ENV", "local"),
		AuthDevMode:      strings.EqualFold(envOrDefault("AUTH_DEV_MODE", "false"), "true"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		Storage:          strings.ToLower(envOrDefault("STORAGE", StoragePostgres)),
		SQLitePath:       envOrDefault("SQLITE_PATH", "tasks.db"),
		StatsDefaultDays: intOrDefault("STATS_DEFAULT_DAYS", 7),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "tasks"),
			Password: envOrDefault("DB_PASSWORD", "tasks"),
			Name:     envOrDefault("DB_NAME", "tasks"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// intOrDefault returns -1 for unparsable values so Validate rejects them
// instead of silently falling back.
func intOrDefault(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
