package server

import (
	"net/http"
	"strings"
	"time"

	"finsight/internal/common"
	"finsight/internal/models"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Natural-language queries
	mux.HandleFunc("/api/v1/query/examples", s.handleQueryExamples)
	mux.HandleFunc("/api/v1/query", s.handleQuery)

	// Company directory
	mux.HandleFunc("/api/v1/companies/top", s.handleCompaniesTop)
	mux.HandleFunc("/api/v1/companies/search", s.handleCompanySearch)
	mux.HandleFunc("/api/v1/companies/sector/", s.handleCompaniesBySector)
	mux.HandleFunc("/api/v1/companies/industry/", s.handleCompaniesByIndustry)
	mux.HandleFunc("/api/v1/companies/cache/refresh", s.handleCacheRefresh)
	mux.HandleFunc("/api/v1/companies/cache/stats", s.handleCacheStats)
	mux.HandleFunc("/api/v1/companies/", s.handleCompanyLookup)

	// Technical analysis
	mux.HandleFunc("/api/v1/technical-analysis/", s.routeTechnical)
}

// routeTechnical dispatches /api/v1/technical-analysis/{ticker}/* to the
// appropriate handler.
func (s *Server) routeTechnical(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/technical-analysis/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	term := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleTechnicalReport(w, r, term)
	case "rsi":
		s.handleRSI(w, r, term)
	case "bollinger-bands":
		s.handleBollingerBands(w, r, term)
	case "moving-averages":
		s.handleMovingAverages(w, r, term)
	case "chart":
		s.handlePriceChart(w, r, term)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

// handleRoot serves the welcome message on / only; the mux routes every
// otherwise unmatched path here.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, models.Envelope{
		Success:   true,
		Message:   "Welcome to Finsight API",
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	assistant := "disabled"
	if s.app.AssistantService != nil && s.app.AssistantService.Enabled() {
		assistant = "active"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": common.GetVersion(),
		"services": map[string]string{
			"yahoo_finance": "active",
			"directory":     "active",
			"cache":         "active",
			"assistant":     assistant,
		},
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
