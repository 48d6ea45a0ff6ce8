package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// handleCompaniesTop handles GET /api/v1/companies/top?limit=N.
func (s *Server) handleCompaniesTop(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid limit %q", l))
			return
		}
		limit = v
	}
	if limit > 100 {
		limit = 100
	}

	companies := s.app.DirectoryService.Top(limit)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"companies": companies,
		"count":     len(companies),
	})
}

// handleCompanySearch handles GET /api/v1/companies/search?q=term.
func (s *Server) handleCompanySearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		WriteError(w, http.StatusBadRequest, "q is required")
		return
	}

	companies := s.app.DirectoryService.Search(q)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":     q,
		"companies": companies,
		"count":     len(companies),
	})
}

// handleCompaniesBySector handles GET /api/v1/companies/sector/{sector}.
func (s *Server) handleCompaniesBySector(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sector := PathParam(r, "/api/v1/companies/sector/", "")
	if sector == "" {
		WriteError(w, http.StatusBadRequest, "sector is required in path")
		return
	}

	companies := s.app.DirectoryService.BySector(sector)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sector":    sector,
		"companies": companies,
		"count":     len(companies),
	})
}

// handleCompaniesByIndustry handles GET /api/v1/companies/industry/{industry}.
func (s *Server) handleCompaniesByIndustry(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	industry := PathParam(r, "/api/v1/companies/industry/", "")
	if industry == "" {
		WriteError(w, http.StatusBadRequest, "industry is required in path")
		return
	}

	companies := s.app.DirectoryService.ByIndustry(industry)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"industry":  industry,
		"companies": companies,
		"count":     len(companies),
	})
}

// handleCompanyLookup handles GET /api/v1/companies/{ticker_or_name}.
// Tickers resolve first, then name substrings.
func (s *Server) handleCompanyLookup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	term := strings.TrimPrefix(r.URL.Path, "/api/v1/companies/")
	if term == "" {
		WriteError(w, http.StatusBadRequest, "company is required in path")
		return
	}
	if strings.Contains(term, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	company, err := s.app.DirectoryService.Lookup(term)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, company)
}

// handleCacheRefresh handles POST /api/v1/companies/cache/refresh to rebuild
// the directory from live market caps.
func (s *Server) handleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	count, err := s.app.DirectoryService.Refresh(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"companies_loaded": count,
	})
}

// handleCacheStats handles GET /api/v1/companies/cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"directory": s.app.DirectoryService.Stats(),
		"cache":     s.app.Cache.Stats(),
	})
}
