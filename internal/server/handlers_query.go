package server

import (
	"net/http"
)

// handleQuery handles POST /api/v1/query, answering a natural-language question.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := s.app.QueryService.Process(r.Context(), req.Query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// handleQueryExamples handles GET /api/v1/query/examples.
func (s *Server) handleQueryExamples(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.QueryService.Examples())
}
