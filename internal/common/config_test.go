package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("FINSIGHT_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_GeminiKeyEnvOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Gemini.APIKey != "gem-from-env" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Clients.Gemini.APIKey, "gem-from-env")
	}
}

func TestConfig_GeminiKeyGoogleEnvFallback(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "google-fallback")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Gemini.APIKey != "google-fallback" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Clients.Gemini.APIKey, "google-fallback")
	}
}

func TestConfig_RefreshIntervalEnvOverride(t *testing.T) {
	t.Setenv("FINSIGHT_REFRESH_INTERVAL", "2h")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if got := cfg.Directory.GetRefreshInterval(); got != 2*time.Hour {
		t.Errorf("GetRefreshInterval() = %v after env override, want 2h", got)
	}
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finsight.toml")
	body := `
environment = "production"

[server]
port = 9999

[cache]
default_ttl = "90s"

[directory]
universe = ["AAPL", "MSFT"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if got := cfg.Cache.GetDefaultTTL(); got != 90*time.Second {
		t.Errorf("GetDefaultTTL() = %v, want 90s", got)
	}
	if len(cfg.Directory.Universe) != 2 {
		t.Errorf("Directory.Universe = %v, want 2 symbols", cfg.Directory.Universe)
	}
	// Untouched sections keep defaults
	if cfg.Clients.Yahoo.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Yahoo.BaseURL = %q, default lost on partial file", cfg.Clients.Yahoo.BaseURL)
	}
}

func TestConfig_LoadSkipsMissingFiles(t *testing.T) {
	cfg, err := LoadConfig("does/not/exist.toml", "")
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestYahooConfig_GetTimeout_InvalidFallsBack(t *testing.T) {
	cfg := &YahooConfig{Timeout: "not-a-duration"}
	if d := cfg.GetTimeout(); d != 30*time.Second {
		t.Errorf("GetTimeout() = %v, want 30s fallback", d)
	}
}

func TestCacheConfig_TTLDefaults(t *testing.T) {
	cfg := &CacheConfig{}
	if d := cfg.GetDefaultTTL(); d != 5*time.Minute {
		t.Errorf("GetDefaultTTL() = %v, want 5m", d)
	}
	if d := cfg.GetHistoryTTL(); d != 15*time.Minute {
		t.Errorf("GetHistoryTTL() = %v, want 15m", d)
	}
}

func TestConfig_ValidateClampsZeroValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Directory.TopSize = 0
	cfg.Directory.Workers = -1
	cfg.Query.MinLength = 0
	cfg.Clients.Yahoo.RateLimit = 0

	validateConfig(cfg)

	if cfg.Directory.TopSize != 100 {
		t.Errorf("TopSize = %d, want 100", cfg.Directory.TopSize)
	}
	if cfg.Directory.Workers != 10 {
		t.Errorf("Workers = %d, want 10", cfg.Directory.Workers)
	}
	if cfg.Query.MinLength != 3 {
		t.Errorf("MinLength = %d, want 3", cfg.Query.MinLength)
	}
	if cfg.Clients.Yahoo.RateLimit != 5 {
		t.Errorf("RateLimit = %d, want 5", cfg.Clients.Yahoo.RateLimit)
	}
}

func TestResolveAPIKey_Fallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("FINSIGHT_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	if got := ResolveAPIKey("gemini_api_key", "fallback-key"); got != "fallback-key" {
		t.Errorf("ResolveAPIKey = %q, want fallback", got)
	}
	if got := ResolveAPIKey("unknown_key", "x"); got != "x" {
		t.Errorf("ResolveAPIKey unknown name = %q, want fallback", got)
	}
}
