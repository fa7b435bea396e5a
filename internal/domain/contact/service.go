package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sort fields accepted by the contacts listing. Anything else falls
// back to sorting by last name.
var validSortFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"phone":      true,
	"title":      true,
	"created_at": true,
}

// Service handles quota-aware contact listing.
type Service struct {
	repo   Repository
	quota  Admitter
	logger *slog.Logger
}

// NewService creates a new contact service.
func NewService(repo Repository, admitter Admitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, quota: admitter, logger: logger}
}

// ListRequest defines contact listing inputs. Page and Limit are assumed
// to be validated by the caller.
type ListRequest struct {
	Page       int
	Limit      int
	AgencyName string
	Search     string
	SortBy     string
	SortOrder  string
}

// ListResult is one admitted page of contacts plus quota state.
type ListResult struct {
	Contacts      []Contact
	Total         int
	Page          int
	Limit         int
	ViewedToday   int
	Remaining     int
	LimitExceeded bool
	Message       string
}

// HasNextPage reports whether the client should be offered another
// page. It is suppressed once the quota is exhausted, even when more
// raw records exist, so the client does not page into a denied result.
func (r *ListResult) HasNextPage() bool {
	return r.Page < r.TotalPages() && r.Remaining > 0
}

// TotalPages returns the page count for the raw (pre-quota) total.
func (r *ListResult) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return (r.Total + r.Limit - 1) / r.Limit
}

// List fetches a filtered, sorted page of contacts and passes its ids
// through quota admission. Returned contacts are restricted to the
// admitted set, preserving page order.
func (s *Service) List(ctx context.Context, userID string, req ListRequest) (*ListResult, error) {
	sortBy := req.SortBy
	if !validSortFields[sortBy] {
		sortBy = "last_name"
	}

	opts := ListOptions{
		AgencyName: strings.TrimSpace(req.AgencyName),
		Search:     strings.TrimSpace(req.Search),
		SortBy:     sortBy,
		Desc:       strings.EqualFold(req.SortOrder, "desc"),
		Limit:      req.Limit,
		Offset:     (req.Page - 1) * req.Limit,
	}

	page, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}

	ids := make([]string, len(page))
	for i, c := range page {
		ids[i] = c.ID
	}

	admission, err := s.quota.Admit(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("admitting contact page: %w", err)
	}

	admitted := make(map[string]struct{}, len(admission.Admitted))
	for _, id := range admission.Admitted {
		admitted[id] = struct{}{}
	}

	served := make([]Contact, 0, len(admission.Admitted))
	for _, c := range page {
		if _, ok := admitted[c.ID]; ok {
			served = append(served, c)
		}
	}

	result := &ListResult{
		Contacts:      served,
		Total:         total,
		Page:          req.Page,
		Limit:         req.Limit,
		ViewedToday:   admission.ViewedToday,
		Remaining:     admission.Remaining,
		LimitExceeded: admission.LimitExceeded,
	}
	if result.Remaining == 0 {
		result.Message = fmt.Sprintf(
			"You have reached your daily limit of %d contacts. Upgrade your plan to view more.",
			s.quota.Limit())
	}

	return result, nil
}

// ResetLimit restores the caller's full quota for the current day.
func (s *Service) ResetLimit(ctx context.Context, userID string) error {
	if err := s.quota.Reset(ctx, userID); err != nil {
		return fmt.Errorf("resetting contact limit: %w", err)
	}
	s.logger.Info("contact view limit reset", "user", userID)
	return nil
}

// ViewedToday returns the user's current-day view counter.
func (s *Service) ViewedToday(ctx context.Context, userID string) (int, error) {
	return s.quota.ViewedToday(ctx, userID)
}
