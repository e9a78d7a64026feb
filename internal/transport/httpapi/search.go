package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/keepson/keepson/internal/domain/search/request"
)

// handleSearch handles GET /api/v1/search?q=...&limit=...
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
		return
	}

	req, err := request.NewNatural(r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res, err := s.search.Resolve(r.Context(), owner, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:    res.Query(),
		Strategy: res.Tier().String(),
		Patterns: res.Patterns(),
		Hints:    hintsToDTO(res.OracleHints()),
		Items:    recordsToDTO(res.Records()),
		Total:    res.Count(),
	})
}

// handleAdvancedSearch handles POST /api/v1/search/advanced.
func (s *Server) handleAdvancedSearch(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	var req advancedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	var from, to *time.Time
	if req.DateFrom != nil {
		t := req.DateFrom.Time
		from = &t
	}
	if req.DateTo != nil {
		// Date-only bounds are inclusive: extend to the end of that day.
		t := req.DateTo.Time.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &t
	}

	areq, err := request.NewAdvanced(
		req.Keywords, req.Types, from, to, req.Tags,
		req.Page, req.Limit, req.SortBy, req.SortOrder,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res, err := s.search.ResolveAdvanced(r.Context(), owner, &areq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, advancedSearchResponse{
		Items:      recordsToDTO(res.Records()),
		Pagination: pageToDTO(res.Page()),
	})
}
