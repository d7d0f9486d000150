package database

import (
	"fmt"
	"os"
	"strconv"

	"marketplace-console/internal/config"
)

// Supported database types
const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
	TypeMemory   = "memory"
)

// ResolveType picks the configured type, then DB_TYPE, then mysql
func ResolveType(cfg config.DatabaseConfig) string {
	if cfg.Type != "" {
		return cfg.Type
	}
	return getEnv("DB_TYPE", TypeMySQL)
}

// Open connects to the configured SQL database. Environment variables win
// over empty config fields. The memory type has no SQL handle.
func Open(cfg config.DatabaseConfig) (*GormDB, error) {
	switch t := ResolveType(cfg); t {
	case TypeMySQL:
		c := cfg.MySQL
		return NewGormDB(
			getEnvOrConfig(c.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portString(c.Port), "DB_PORT", "3306"),
			getEnvOrConfig(c.User, "DB_USER", "marketplace_user"),
			getEnvOrConfig(c.Password, "DB_PASSWORD", "marketplace_pass"),
			getEnvOrConfig(c.Database, "DB_NAME", "marketplace_db"),
		)
	case TypePostgres:
		c := cfg.Postgres
		return NewPostgresDB(
			getEnvOrConfig(c.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(c.Port), "DB_PORT", "5432"),
			getEnvOrConfig(c.User, "DB_USER", "marketplace_user"),
			getEnvOrConfig(c.Password, "DB_PASSWORD", "marketplace_pass"),
			getEnvOrConfig(c.Database, "DB_NAME", "marketplace_db"),
			getEnvOrConfig(c.SSLMode, "DB_SSLMODE", "disable"),
		)
	case TypeMemory:
		return nil, fmt.Errorf("database type %q has no SQL connection", t)
	default:
		return nil, fmt.Errorf("unsupported database type %q", t)
	}
}

// port 0 means unset
func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return strconv.Itoa(port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
