package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/common"
	"finsight/internal/models"
)

// mockMarketService implements interfaces.MarketService with overridable
// functions. Unset functions behave like a symbol with no market data.
type mockMarketService struct {
	getQuote    func(ctx context.Context, ticker string) (*models.Quote, error)
	getHistory  func(ctx context.Context, ticker, rng string) (models.PriceSeries, error)
	getReport   func(ctx context.Context, ticker string) (*models.TechnicalReport, error)
	renderChart func(ctx context.Context, ticker string) ([]byte, error)
}

func (m *mockMarketService) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	if m.getQuote != nil {
		return m.getQuote(ctx, ticker)
	}
	return nil, common.NotFoundf("no quote data for %s", ticker)
}

func (m *mockMarketService) GetHistory(ctx context.Context, ticker string, rng string) (models.PriceSeries, error) {
	if m.getHistory != nil {
		return m.getHistory(ctx, ticker, rng)
	}
	return nil, common.NotFoundf("no history for %s", ticker)
}

func (m *mockMarketService) GetTechnicalReport(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
	if m.getReport != nil {
		return m.getReport(ctx, ticker)
	}
	return nil, common.NotFoundf("no history for %s", ticker)
}

func (m *mockMarketService) RenderPriceChart(ctx context.Context, ticker string) ([]byte, error) {
	if m.renderChart != nil {
		return m.renderChart(ctx, ticker)
	}
	return nil, common.NotFoundf("no history for %s", ticker)
}

func floatPtr(v float64) *float64 { return &v }

func sampleReport(ticker string) *models.TechnicalReport {
	return &models.TechnicalReport{
		Ticker:    ticker,
		Price:     192.50,
		Change:    1.25,
		ChangePct: 0.65,
		Indicators: models.IndicatorResult{
			RSI:    models.RSISnapshot{Value: floatPtr(72.5), Label: "overbought"},
			SMA20:  floatPtr(188.1),
			SMA50:  floatPtr(180.4),
			EMA12:  floatPtr(190.2),
			EMA26:  floatPtr(186.7),
			Bollinger: &models.BollingerBands{
				Upper:  201.3,
				Middle: 188.1,
				Lower:  174.9,
			},
			Volatility: floatPtr(0.22),
			Trend:      "bullish",
		},
		BollingerPosition: "within bands",
		PeriodHigh:        199.6,
		PeriodLow:         164.1,
		AvgVolume:         58_000_000,
		Sessions:          63,
		AsOf:              time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
	}
}

// appleDirectory resolves "apple" and "AAPL" and nothing else.
func appleDirectory() *mockDirectoryService {
	return &mockDirectoryService{
		lookup: func(term string) (*models.CompanyRecord, error) {
			switch term {
			case "apple", "Apple", "AAPL":
				return &models.CompanyRecord{Rank: 1, Name: "Apple", Ticker: "AAPL"}, nil
			}
			return nil, common.NotFoundf("no company matching %q", term)
		},
	}
}

// --- resolveTicker tests ---

func TestResolveTicker_DirectoryHit(t *testing.T) {
	srv := newTestServer(appleDirectory(), nil, nil)

	ticker, ok := srv.resolveTicker("apple")
	require.True(t, ok)
	assert.Equal(t, "AAPL", ticker)
}

func TestResolveTicker_SymbolPassthrough(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	// Terms the directory doesn't know still pass when they look like symbols.
	for term, want := range map[string]string{
		"shop":  "SHOP",
		"SHOP":  "SHOP",
		"brk-a": "BRK-A",
		"RDS.A": "RDS.A",
		" tsla": "TSLA",
	} {
		ticker, ok := srv.resolveTicker(term)
		require.True(t, ok, "term %q", term)
		assert.Equal(t, want, ticker, "term %q", term)
	}
}

func TestResolveTicker_Garbage(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	for _, term := range []string{"not a ticker", "ABCDEFGH", "123", "AA--B", ""} {
		if _, ok := srv.resolveTicker(term); ok {
			t.Errorf("expected %q to fail resolution", term)
		}
	}
}

// --- report endpoint tests ---

func TestHandleTechnicalReport(t *testing.T) {
	market := &mockMarketService{
		getReport: func(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
			return sampleReport(ticker), nil
		},
	}
	srv := newTestServer(appleDirectory(), market, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/apple", nil)
	rec := httptest.NewRecorder()
	srv.handleTechnicalReport(rec, req, "apple")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.TechnicalReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "AAPL", report.Ticker)
	assert.Equal(t, 192.50, report.Price)
	assert.Equal(t, 63, report.Sessions)
	require.NotNil(t, report.Indicators.RSI.Value)
	assert.Equal(t, 72.5, *report.Indicators.RSI.Value)
}

func TestHandleTechnicalReport_UnresolvedTerm(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, &mockMarketService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/not%20a%20ticker", nil)
	rec := httptest.NewRecorder()
	srv.handleTechnicalReport(rec, req, "not a ticker")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Contains(t, errResp.Error, "Could not resolve")
}

func TestHandleTechnicalReport_NotFound(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, &mockMarketService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/ZZZZ", nil)
	rec := httptest.NewRecorder()
	srv.handleTechnicalReport(rec, req, "ZZZZ")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTechnicalReport_UpstreamError(t *testing.T) {
	market := &mockMarketService{
		getReport: func(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
			return nil, common.Upstreamf("yahoo returned status 502")
		},
	}
	srv := newTestServer(appleDirectory(), market, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/AAPL", nil)
	rec := httptest.NewRecorder()
	srv.handleTechnicalReport(rec, req, "AAPL")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// --- sub-endpoint tests ---

func TestHandleRSI(t *testing.T) {
	market := &mockMarketService{
		getReport: func(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
			return sampleReport(ticker), nil
		},
	}
	srv := newTestServer(appleDirectory(), market, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/AAPL/rsi", nil)
	rec := httptest.NewRecorder()
	srv.handleRSI(rec, req, "AAPL")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "AAPL", resp["ticker"])
	assert.Equal(t, 72.5, resp["rsi"])
	assert.Equal(t, "overbought", resp["label"])
}

func TestHandleBollingerBands(t *testing.T) {
	market := &mockMarketService{
		getReport: func(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
			return sampleReport(ticker), nil
		},
	}
	srv := newTestServer(appleDirectory(), market, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/AAPL/bollinger-bands", nil)
	rec := httptest.NewRecorder()
	srv.handleBollingerBands(rec, req, "AAPL")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Ticker   string                 `json:"ticker"`
		Price    float64                `json:"price"`
		Bands    *models.BollingerBands `json:"bollinger_bands"`
		Position string                 `json:"position"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, 192.50, resp.Price)
	require.NotNil(t, resp.Bands)
	assert.Equal(t, 201.3, resp.Bands.Upper)
	assert.Equal(t, 174.9, resp.Bands.Lower)
	assert.Equal(t, "within bands", resp.Position)
}

func TestHandleMovingAverages(t *testing.T) {
	market := &mockMarketService{
		getReport: func(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
			return sampleReport(ticker), nil
		},
	}
	srv := newTestServer(appleDirectory(), market, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/AAPL/moving-averages", nil)
	rec := httptest.NewRecorder()
	srv.handleMovingAverages(rec, req, "AAPL")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Ticker string             `json:"ticker"`
		MAs    map[string]float64 `json:"moving_averages"`
		Trend  string             `json:"trend"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, 188.1, resp.MAs["sma_20"])
	assert.Equal(t, 180.4, resp.MAs["sma_50"])
	assert.Equal(t, 190.2, resp.MAs["ema_12"])
	assert.Equal(t, 186.7, resp.MAs["ema_26"])
	assert.Equal(t, "bullish", resp.Trend)
}

// --- chart endpoint tests ---

func TestHandlePriceChart(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0xAB}, 64)...)
	market := &mockMarketService{
		renderChart: func(ctx context.Context, ticker string) ([]byte, error) {
			return png, nil
		},
	}
	srv := newTestServer(appleDirectory(), market, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/AAPL/chart", nil)
	rec := httptest.NewRecorder()
	srv.handlePriceChart(rec, req, "AAPL")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "72", rec.Header().Get("Content-Length"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHandlePriceChart_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(appleDirectory(), &mockMarketService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/technical-analysis/AAPL/chart", nil)
	rec := httptest.NewRecorder()
	srv.handlePriceChart(rec, req, "AAPL")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
