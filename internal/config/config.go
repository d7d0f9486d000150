package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Backend   BackendConfig   `yaml:"backend"`
	Sync      SyncConfig      `yaml:"sync"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Queue     QueueConfig     `yaml:"queue"`
	SEO       SEOConfig       `yaml:"seo"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// BackendConfig points at the hosted backend's server-side functions
type BackendConfig struct {
	FunctionsURL   string `yaml:"functions_url"`
	ServiceKey     string `yaml:"service_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SyncConfig controls the location sync procedure
type SyncConfig struct {
	DailyRunEnabled         bool   `yaml:"daily_run_enabled"`
	DailyRunTime            string `yaml:"daily_run_time"`
	DefaultMode             string `yaml:"default_mode"`
	BreakerFailureThreshold int    `yaml:"breaker_failure_threshold"`
	BreakerResetSeconds     int    `yaml:"breaker_reset_seconds"`
}

// RateLimitConfig contains rate limiting settings for mutation routes
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// CacheConfig contains query cache settings
type CacheConfig struct {
	TTLSeconds     int `yaml:"ttl_seconds"`
	CleanupSeconds int `yaml:"cleanup_seconds"`
}

// CleanupConfig contains error log retention settings
type CleanupConfig struct {
	DailyRunEnabled  bool   `yaml:"daily_run_enabled"`
	DailyRunTime     string `yaml:"daily_run_time"`
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
}

// QueueConfig contains offline operation queue settings
type QueueConfig struct {
	Enabled             bool `yaml:"enabled"`
	PollIntervalSeconds int  `yaml:"poll_interval_seconds"`
	BatchSize           int  `yaml:"batch_size"`
}

// SEOConfig contains SEO audit settings
type SEOConfig struct {
	SiteURL        string `yaml:"site_url"`
	Renderer       string `yaml:"renderer"` // http or chrome
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8084",
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Type: "mysql",
		},
		Backend: BackendConfig{
			TimeoutSeconds: 60,
		},
		Sync: SyncConfig{
			DailyRunEnabled:         false,
			DailyRunTime:            "03:00",
			DefaultMode:             "full",
			BreakerFailureThreshold: 3,
			BreakerResetSeconds:     600,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			RequestsPerHour:   3000,
			RequestsPerDay:    20000,
		},
		Cache: CacheConfig{
			TTLSeconds:     300,
			CleanupSeconds: 600,
		},
		Cleanup: CleanupConfig{
			DailyRunEnabled:  false,
			DailyRunTime:     "04:00",
			RetentionDays:    30,
			MaxDeletionCount: 10000,
		},
		Queue: QueueConfig{
			Enabled:             true,
			PollIntervalSeconds: 30,
			BatchSize:           20,
		},
		SEO: SEOConfig{
			Renderer:       "http",
			TimeoutSeconds: 20,
			UserAgent:      "Mozilla/5.0 (compatible; MarketplaceSEOAudit/1.0)",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Timezone: "Asia/Jakarta",
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetTimeout returns the backend function timeout as a duration
func (c *BackendConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetResetTimeout returns how long the sync circuit breaker stays open
func (c *SyncConfig) GetResetTimeout() time.Duration {
	return time.Duration(c.BreakerResetSeconds) * time.Second
}

// GetTTL returns the cache entry lifetime
func (c *CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// GetCleanupInterval returns the cache janitor interval
func (c *CacheConfig) GetCleanupInterval() time.Duration {
	return time.Duration(c.CleanupSeconds) * time.Second
}

// GetPollInterval returns the queue worker poll interval
func (c *QueueConfig) GetPollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// GetTimeout returns the SEO audit fetch timeout
func (c *SEOConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
