// Package app wires configuration, clients, and services into the shared
// application core used by the server entry point and by tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"finsight/internal/cache"
	"finsight/internal/clients/gemini"
	"finsight/internal/clients/yahoo"
	"finsight/internal/common"
	"finsight/internal/indicators"
	"finsight/internal/interfaces"
	"finsight/internal/services/assistant"
	"finsight/internal/services/directory"
	"finsight/internal/services/market"
	"finsight/internal/services/query"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Cache            *cache.Cache
	YahooClient      interfaces.MarketDataClient
	GeminiClient     interfaces.AssistantClient
	DirectoryService interfaces.DirectoryService
	MarketService    interfaces.MarketService
	AssistantService interfaces.AssistantService
	QueryService     interfaces.QueryService
	StartupTime      time.Time

	refreshCron     *cron.Cron
	schedulerCancel context.CancelFunc
	warmCancel      context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes all services and clients.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, FINSIGHT_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FINSIGHT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finsight.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finsight.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level, config.Logging.Format)

	store := cache.New(config.Cache.GetDefaultTTL())

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithRetries(config.Clients.Yahoo.Retries),
		yahoo.WithLogger(logger),
	)

	var geminiClient *gemini.Client
	if key := config.Clients.Gemini.APIKey; key != "" {
		geminiClient, err = gemini.NewClient(context.Background(), key,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - general questions get static answers")
	}

	engine := indicators.NewEngine()
	engine.Overbought = config.Query.RSIOverbought
	engine.Oversold = config.Query.RSIOversold

	directoryService, err := directory.NewService(yahooClient, config.Directory, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize directory: %w", err)
	}

	marketService := market.NewService(yahooClient, store, engine, config, logger)

	// A nil *gemini.Client must not be assigned straight to the interface
	// field, or the nil check inside the assistant service never fires.
	var assistantClient interfaces.AssistantClient
	if geminiClient != nil {
		assistantClient = geminiClient
	}
	assistantService := assistant.NewService(assistantClient, logger)

	queryService := query.NewService(directoryService, marketService, assistantService, config, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Cache:            store,
		YahooClient:      yahooClient,
		GeminiClient:     assistantClient,
		DirectoryService: directoryService,
		MarketService:    marketService,
		AssistantService: assistantService,
		QueryService:     queryService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases background work held by the App.
// Shutdown order: stop the cron scheduler, cancel any running refresh.
func (a *App) Close() {
	if a.refreshCron != nil {
		a.refreshCron.Stop()
		a.refreshCron = nil
	}
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCancel != nil {
		a.warmCancel()
		a.warmCancel = nil
	}
}
