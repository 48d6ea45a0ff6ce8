// Package market answers quote, history and technical-report requests,
// consulting the ephemeral cache before the market-data gateway.
package market

import (
	"context"
	"strings"
	"time"

	"finsight/internal/cache"
	"finsight/internal/common"
	"finsight/internal/indicators"
	"finsight/internal/interfaces"
	"finsight/internal/models"
)

// DefaultHistoryRange is the window fetched for technical reports when config
// leaves it unset.
const DefaultHistoryRange = "6mo"

// Service fronts the market-data gateway with a TTL cache. Quotes and history
// cache under separate TTLs; technical reports are derived per request from
// the cached history.
type Service struct {
	client       interfaces.MarketDataClient
	store        *cache.Cache
	engine       *indicators.Engine
	logger       *common.Logger
	quoteTTL     time.Duration
	historyTTL   time.Duration
	historyRange string
}

// NewService creates a market service. TTLs come from the cache config and
// the report window from the query config.
func NewService(client interfaces.MarketDataClient, store *cache.Cache, engine *indicators.Engine, cfg *common.Config, logger *common.Logger) *Service {
	if cfg == nil {
		cfg = common.NewDefaultConfig()
	}
	if logger == nil {
		logger = common.NewDefaultLogger()
	}
	if engine == nil {
		engine = indicators.NewEngine()
	}

	historyRange := strings.TrimSpace(cfg.Query.HistoryRange)
	if historyRange == "" {
		historyRange = DefaultHistoryRange
	}

	return &Service{
		client:       client,
		store:        store,
		engine:       engine,
		logger:       logger,
		quoteTTL:     cfg.Cache.GetQuoteTTL(),
		historyTTL:   cfg.Cache.GetHistoryTTL(),
		historyRange: historyRange,
	}
}

// GetQuote returns the current quote for ticker, served from cache when a
// fresh entry exists.
func (s *Service) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	key := quoteKey(ticker)
	if cached, ok := s.store.Get(key); ok {
		if quote, ok := cached.(*models.Quote); ok {
			s.logger.Debug().Str("ticker", ticker).Msg("Quote served from cache")
			return quote, nil
		}
	}

	quote, err := s.client.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	s.store.SetTTL(key, quote, s.quoteTTL)
	return quote, nil
}

// GetHistory returns daily bars for ticker over rng, served from cache when a
// fresh entry exists. An empty rng uses the configured report window.
func (s *Service) GetHistory(ctx context.Context, ticker string, rng string) (models.PriceSeries, error) {
	if rng == "" {
		rng = s.historyRange
	}

	key := historyKey(ticker, rng)
	if cached, ok := s.store.Get(key); ok {
		if series, ok := cached.(models.PriceSeries); ok {
			s.logger.Debug().Str("ticker", ticker).Str("range", rng).Msg("History served from cache")
			return series, nil
		}
	}

	series, err := s.client.GetHistory(ctx, ticker, rng)
	if err != nil {
		return nil, err
	}

	s.store.SetTTL(key, series, s.historyTTL)
	return series, nil
}

// GetTechnicalReport fetches the configured history window and derives the
// indicator snapshot plus a price summary. The change figures need the prior
// session, so fewer than two bars is an upstream data failure.
func (s *Service) GetTechnicalReport(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
	series, err := s.GetHistory(ctx, ticker, s.historyRange)
	if err != nil {
		return nil, err
	}
	if len(series) < 2 {
		return nil, common.Upstreamf("insufficient history for %s: %d sessions", ticker, len(series))
	}

	result, err := s.engine.Compute(series)
	if err != nil {
		return nil, common.Upstreamf("indicators for %s: %v", ticker, err)
	}

	last := series[len(series)-1]
	prev := series[len(series)-2]

	change := last.Close - prev.Close
	var changePct float64
	if prev.Close != 0 {
		changePct = change / prev.Close * 100
	}

	periodHigh, periodLow, avgVolume := priceSummary(series)

	report := &models.TechnicalReport{
		Ticker:            strings.ToUpper(strings.TrimSpace(ticker)),
		Price:             last.Close,
		Change:            change,
		ChangePct:         changePct,
		Indicators:        result,
		BollingerPosition: indicators.BollingerPosition(last.Close, result.Bollinger),
		PeriodHigh:        periodHigh,
		PeriodLow:         periodLow,
		AvgVolume:         avgVolume,
		Sessions:          len(series),
		AsOf:              last.Date,
	}

	s.logger.Debug().
		Str("ticker", report.Ticker).
		Int("sessions", report.Sessions).
		Msg("Technical report computed")

	return report, nil
}

// priceSummary scans the series for the period high, low and average volume.
// Bars with a missing high or low fall back to the close so a partially null
// session cannot zero the range.
func priceSummary(series models.PriceSeries) (high, low float64, avgVolume int64) {
	var volumeSum int64
	for _, bar := range series {
		barHigh := bar.High
		if barHigh == 0 {
			barHigh = bar.Close
		}
		barLow := bar.Low
		if barLow == 0 {
			barLow = bar.Close
		}

		if barHigh > high {
			high = barHigh
		}
		if low == 0 || (barLow > 0 && barLow < low) {
			low = barLow
		}
		volumeSum += bar.Volume
	}

	if n := int64(len(series)); n > 0 {
		avgVolume = volumeSum / n
	}
	return high, low, avgVolume
}

func quoteKey(ticker string) string {
	return "quote:" + strings.ToUpper(strings.TrimSpace(ticker))
}

func historyKey(ticker, rng string) string {
	return "history:" + strings.ToUpper(strings.TrimSpace(ticker)) + ":" + rng
}

// Ensure Service implements the MarketService interface
var _ interfaces.MarketService = (*Service)(nil)
