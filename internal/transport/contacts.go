package transport

import (
	"net/http"
	"strconv"

	"github.com/opencivic/govcontacts/internal/domain/contact"
)

const (
	contactsDefaultLimit = 10
	contactsMaxLimit     = 50
)

type contactListResponse struct {
	Success       bool              `json:"success"`
	LimitExceeded bool              `json:"limitExceeded"`
	ViewedToday   int               `json:"viewedToday"`
	Remaining     int               `json:"remaining"`
	Message       string            `json:"message,omitempty"`
	Data          []contact.Contact `json:"data"`
	Pagination    Pagination        `json:"pagination"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	q := r.URL.Query()
	page, limit, ok := parsePagination(q.Get("page"), q.Get("limit"), contactsDefaultLimit, contactsMaxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid pagination parameters",
			"Page and limit must be >= 1, limit <= 50")
		return
	}

	req := contact.ListRequest{
		Page:       page,
		Limit:      limit,
		AgencyName: q.Get("agencyName"),
		Search:     q.Get("search"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}

	result, err := s.contacts.List(r.Context(), userID, req)
	if err != nil {
		// Storage detail stays in the logs, not the response body.
		s.logger.Error("listing contacts failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	data := result.Contacts
	if data == nil {
		data = []contact.Contact{}
	}

	writeJSON(w, http.StatusOK, contactListResponse{
		Success:       true,
		LimitExceeded: result.LimitExceeded,
		ViewedToday:   result.ViewedToday,
		Remaining:     result.Remaining,
		Message:       result.Message,
		Data:          data,
		Pagination: Pagination{
			Page:            result.Page,
			Limit:           result.Limit,
			Total:           result.Total,
			TotalPages:      result.TotalPages(),
			HasNextPage:     result.HasNextPage(),
			HasPreviousPage: result.Page > 1,
		},
	})
}

type resetLimitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleResetLimit(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	if err := s.contacts.ResetLimit(r.Context(), userID); err != nil {
		s.logger.Error("resetting contact limit failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	writeJSON(w, http.StatusOK, resetLimitResponse{
		Success: true,
		Message: "Daily limit has been reset.",
	})
}

// parsePagination validates page and limit query values. Absent values
// take defaults; anything non-numeric or out of bounds is rejected.
func parsePagination(pageStr, limitStr string, defaultLimit, maxLimit int) (int, int, bool) {
	page := 1
	limit := defaultLimit

	if pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil {
			return 0, 0, false
		}
		page = n
	}
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, false
		}
		limit = n
	}

	if page < 1 || limit < 1 || limit > maxLimit {
		return 0, 0, false
	}
	return page, limit, true
}
