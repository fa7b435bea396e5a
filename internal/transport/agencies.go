package transport

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opencivic/govcontacts/internal/domain/agency"
)

const (
	agenciesDefaultLimit = 10
	agenciesMaxLimit     = 100
)

type agencyListResponse struct {
	Success    bool            `json:"success"`
	Data       []agency.Agency `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

type agencyResponse struct {
	Success bool           `json:"success"`
	Data    *agency.Agency `json:"data"`
}

func (s *Server) handleListAgencies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, ok := parsePagination(q.Get("page"), q.Get("limit"), agenciesDefaultLimit, agenciesMaxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid pagination parameters",
			"Page and limit must be >= 1, limit <= 100")
		return
	}

	req := agency.ListRequest{
		Page:      page,
		Limit:     limit,
		State:     q.Get("state"),
		Type:      q.Get("type"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	result, err := s.agencies.List(r.Context(), req)
	if err != nil {
		s.logger.Error("listing agencies failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	data := result.Agencies
	if data == nil {
		data = []agency.Agency{}
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = (result.Total + result.Limit - 1) / result.Limit
	}

	writeJSON(w, http.StatusOK, agencyListResponse{
		Success: true,
		Data:    data,
		Pagination: Pagination{
			Page:            result.Page,
			Limit:           result.Limit,
			Total:           result.Total,
			TotalPages:      totalPages,
			HasNextPage:     result.Page < totalPages,
			HasPreviousPage: result.Page > 1,
		},
	})
}

func (s *Server) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := s.agencies.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, agency.ErrAgencyNotFound) {
			writeError(w, http.StatusNotFound, "Agency not found", "")
			return
		}
		s.logger.Error("getting agency failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, agencyResponse{Success: true, Data: a})
}
