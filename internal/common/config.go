// Package common provides shared utilities for finsight
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for finsight
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Cache       CacheConfig     `toml:"cache"`
	Directory   DirectoryConfig `toml:"directory"`
	Query       QueryConfig     `toml:"query"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
	Retries   int    `toml:"retries"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration for the optional assistant
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// CacheConfig holds TTLs for the ephemeral cache
type CacheConfig struct {
	DefaultTTL string `toml:"default_ttl"`
	QuoteTTL   string `toml:"quote_ttl"`
	HistoryTTL string `toml:"history_ttl"`
}

// GetDefaultTTL parses the default TTL, falling back to 5 minutes
func (c *CacheConfig) GetDefaultTTL() time.Duration {
	return parseDuration(c.DefaultTTL, 5*time.Minute)
}

// GetQuoteTTL parses the quote TTL, falling back to 5 minutes
func (c *CacheConfig) GetQuoteTTL() time.Duration {
	return parseDuration(c.QuoteTTL, 5*time.Minute)
}

// GetHistoryTTL parses the history TTL, falling back to 15 minutes
func (c *CacheConfig) GetHistoryTTL() time.Duration {
	return parseDuration(c.HistoryTTL, 15*time.Minute)
}

// DirectoryConfig holds company-directory refresh configuration
type DirectoryConfig struct {
	Universe        []string `toml:"universe"` // tracked symbols; empty uses the built-in list
	RefreshInterval string   `toml:"refresh_interval"`
	RefreshCron     string   `toml:"refresh_cron"` // 6-field cron spec with seconds
	TopSize         int      `toml:"top_size"`
	Workers         int      `toml:"workers"` // concurrent refresh fetches
}

// GetRefreshInterval parses the staleness interval, falling back to 6 hours
func (c *DirectoryConfig) GetRefreshInterval() time.Duration {
	return parseDuration(c.RefreshInterval, 6*time.Hour)
}

// QueryConfig holds interpreter and composer tuning. The thresholds are
// hand-picked conventions, kept configurable rather than scattered as
// literals.
type QueryConfig struct {
	MinLength     int     `toml:"min_length"`     // shortest accepted question
	HistoryRange  string  `toml:"history_range"`  // window fetched for technical reports
	RSIOverbought float64 `toml:"rsi_overbought"` // label boundary, default 70
	RSIOversold   float64 `toml:"rsi_oversold"`   // label boundary, default 30
	MoodMildPct   float64 `toml:"mood_mild_pct"`  // |change%| beyond this reads as notable
	MoodStrongPct float64 `toml:"mood_strong_pct"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
				Retries:   1,
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Cache: CacheConfig{
			DefaultTTL: "5m",
			QuoteTTL:   "5m",
			HistoryTTL: "15m",
		},
		Directory: DirectoryConfig{
			RefreshInterval: "6h",
			RefreshCron:     "0 0 */6 * * *",
			TopSize:         100,
			Workers:         10,
		},
		Query: QueryConfig{
			MinLength:     3,
			HistoryRange:  "6mo",
			RSIOverbought: 70,
			RSIOversold:   30,
			MoodMildPct:   1.0,
			MoodStrongPct: 2.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	// Clamp tuning values to workable ranges
	validateConfig(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINSIGHT_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINSIGHT_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINSIGHT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINSIGHT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if ttl := os.Getenv("FINSIGHT_CACHE_TTL"); ttl != "" {
		config.Cache.DefaultTTL = ttl
	}

	if iv := os.Getenv("FINSIGHT_REFRESH_INTERVAL"); iv != "" {
		config.Directory.RefreshInterval = iv
	}

	if base := os.Getenv("FINSIGHT_YAHOO_BASE_URL"); base != "" {
		config.Clients.Yahoo.BaseURL = base
	}

	if key := ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey); key != "" {
		config.Clients.Gemini.APIKey = key
	}
}

// ResolveAPIKey resolves an API key from environment variables with a fallback
func ResolveAPIKey(name string, fallback string) string {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "FINSIGHT_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue
			}
		}
	}

	return fallback
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func validateConfig(config *Config) {
	if config.Directory.TopSize <= 0 {
		config.Directory.TopSize = 100
	}
	if config.Directory.Workers <= 0 {
		config.Directory.Workers = 10
	}
	if config.Query.MinLength <= 0 {
		config.Query.MinLength = 3
	}
	if config.Clients.Yahoo.RateLimit <= 0 {
		config.Clients.Yahoo.RateLimit = 5
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
