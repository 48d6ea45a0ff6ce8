package server

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// symbolPattern matches plain ticker symbols, including class and exchange
// forms like BRK-A and RDS.A.
var symbolPattern = regexp.MustCompile(`^[A-Z]{1,6}([.-][A-Z0-9]{1,2})?$`)

// resolveTicker maps a path term to an uppercase ticker. The directory is
// consulted first so company names work in URLs; an unknown term still passes
// through when it looks like a plain symbol, since the universe upstream is
// far larger than the directory.
func (s *Server) resolveTicker(term string) (string, bool) {
	if company, err := s.app.DirectoryService.Lookup(term); err == nil {
		return company.Ticker, true
	}
	symbol := strings.ToUpper(strings.TrimSpace(term))
	if symbolPattern.MatchString(symbol) {
		return symbol, true
	}
	return "", false
}

// handleTechnicalReport handles GET /api/v1/technical-analysis/{ticker}.
func (s *Server) handleTechnicalReport(w http.ResponseWriter, r *http.Request, term string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker, ok := s.resolveTicker(term)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Could not resolve %q to a ticker", term))
		return
	}

	report, err := s.app.MarketService.GetTechnicalReport(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// handleRSI handles GET /api/v1/technical-analysis/{ticker}/rsi.
func (s *Server) handleRSI(w http.ResponseWriter, r *http.Request, term string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker, ok := s.resolveTicker(term)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Could not resolve %q to a ticker", term))
		return
	}

	report, err := s.app.MarketService.GetTechnicalReport(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": report.Ticker,
		"rsi":    report.Indicators.RSI.Value,
		"label":  report.Indicators.RSI.Label,
	})
}

// handleBollingerBands handles GET /api/v1/technical-analysis/{ticker}/bollinger-bands.
func (s *Server) handleBollingerBands(w http.ResponseWriter, r *http.Request, term string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker, ok := s.resolveTicker(term)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Could not resolve %q to a ticker", term))
		return
	}

	report, err := s.app.MarketService.GetTechnicalReport(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":          report.Ticker,
		"price":           report.Price,
		"bollinger_bands": report.Indicators.Bollinger,
		"position":        report.BollingerPosition,
	})
}

// handleMovingAverages handles GET /api/v1/technical-analysis/{ticker}/moving-averages.
func (s *Server) handleMovingAverages(w http.ResponseWriter, r *http.Request, term string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker, ok := s.resolveTicker(term)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Could not resolve %q to a ticker", term))
		return
	}

	report, err := s.app.MarketService.GetTechnicalReport(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": report.Ticker,
		"moving_averages": map[string]interface{}{
			"sma_20": report.Indicators.SMA20,
			"sma_50": report.Indicators.SMA50,
			"ema_12": report.Indicators.EMA12,
			"ema_26": report.Indicators.EMA26,
		},
		"trend": report.Indicators.Trend,
	})
}

// handlePriceChart handles GET /api/v1/technical-analysis/{ticker}/chart.
// Responds with a PNG, not JSON.
func (s *Server) handlePriceChart(w http.ResponseWriter, r *http.Request, term string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker, ok := s.resolveTicker(term)
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Could not resolve %q to a ticker", term))
		return
	}

	png, err := s.app.MarketService.RenderPriceChart(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
