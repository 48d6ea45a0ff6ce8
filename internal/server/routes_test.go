package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/models"
)

type stubAssistantService struct{ enabled bool }

func (s *stubAssistantService) Answer(ctx context.Context, question string) string {
	if s.enabled {
		return "stub answer"
	}
	return ""
}

func (s *stubAssistantService) Enabled() bool { return s.enabled }

// --- system handlers ---

func TestHandleRoot(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.handleRoot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Welcome to Finsight API", resp.Message)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestHandleRoot_UnknownPath(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	// The mux sends every unmatched path to the root handler.
	req := httptest.NewRequest(http.MethodGet, "/api/v2/whatever", nil)
	rec := httptest.NewRecorder()
	srv.handleRoot(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string            `json:"status"`
		Version  string            `json:"version"`
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Version)
	assert.Equal(t, "active", resp.Services["yahoo_finance"])
	assert.Equal(t, "active", resp.Services["directory"])
	assert.Equal(t, "active", resp.Services["cache"])
	assert.Equal(t, "disabled", resp.Services["assistant"])
}

func TestHandleHealth_AssistantActive(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)
	srv.app.AssistantService = &stubAssistantService{enabled: true}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "active", resp.Services["assistant"])
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	srv.handleVersion(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["version"])
	assert.Contains(t, resp, "build")
	assert.Contains(t, resp, "commit")
}

func TestHandleShutdown_Production(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)
	srv.app.Config.Environment = "production"

	req := httptest.NewRequest(http.MethodPost, "/api/shutdown", nil)
	rec := httptest.NewRecorder()
	srv.handleShutdown(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleShutdown_SignalsChannel(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, nil, nil)
	shutdownChan := make(chan struct{}, 1)
	srv.SetShutdownChannel(shutdownChan)

	req := httptest.NewRequest(http.MethodPost, "/api/shutdown", nil)
	rec := httptest.NewRecorder()
	srv.handleShutdown(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Shutting down")

	select {
	case <-shutdownChan:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown signal on channel")
	}
}

// --- technical-analysis dispatch ---

func TestRouteTechnical_MissingTicker(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, &mockMarketService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/", nil)
	rec := httptest.NewRecorder()
	srv.routeTechnical(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "ticker is required in path", errResp.Error)
}

func TestRouteTechnical_UnknownSubpath(t *testing.T) {
	srv := newTestServer(&mockDirectoryService{}, &mockMarketService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technical-analysis/AAPL/bogus", nil)
	rec := httptest.NewRecorder()
	srv.routeTechnical(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteTechnical_Dispatch(t *testing.T) {
	market := &mockMarketService{
		getReport: func(ctx context.Context, ticker string) (*models.TechnicalReport, error) {
			return sampleReport(ticker), nil
		},
		renderChart: func(ctx context.Context, ticker string) ([]byte, error) {
			return []byte("\x89PNG\r\n\x1a\n"), nil
		},
	}
	srv := newTestServer(&mockDirectoryService{}, market, nil)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.routeTechnical(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	// Bare ticker and trailing slash both serve the full report.
	for _, target := range []string{"/api/v1/technical-analysis/AAPL", "/api/v1/technical-analysis/AAPL/"} {
		rec := get(target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "bollinger_position")
	}

	rec := get("/api/v1/technical-analysis/AAPL/rsi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "overbought")

	rec = get("/api/v1/technical-analysis/AAPL/moving-averages")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sma_20")

	rec = get("/api/v1/technical-analysis/AAPL/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

// --- mux precedence ---

func TestRegisterRoutes_CompanyRoutePrecedence(t *testing.T) {
	var topCalled, lookupCalled, statsCalled bool
	dir := &mockDirectoryService{
		top: func(n int) []models.CompanyRecord {
			topCalled = true
			return nil
		},
		lookup: func(term string) (*models.CompanyRecord, error) {
			lookupCalled = true
			return &models.CompanyRecord{Name: "Apple", Ticker: "AAPL"}, nil
		},
		stats: func() models.DirectoryStats {
			statsCalled = true
			return models.DirectoryStats{}
		},
	}
	srv := newTestServer(dir, nil, nil)
	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	// Exact patterns win over the catch-all lookup route.
	rec := get("/api/v1/companies/top")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, topCalled)
	assert.False(t, lookupCalled)

	rec = get("/api/v1/companies/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, statsCalled)
	assert.False(t, lookupCalled)

	rec = get("/api/v1/companies/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, lookupCalled)

	// Unmatched paths fall through to the root handler's guard.
	rec = get("/api/v2/whatever")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
