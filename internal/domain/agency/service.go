package agency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opencivic/govcontacts/internal/repository"
)

// Sort fields accepted by the agencies listing. Anything else falls back
// to sorting by name.
var validSortFields = map[string]bool{
	"name":       true,
	"state":      true,
	"population": true,
	"created_at": true,
	"type":       true,
}

// Service handles agency listing operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new agency service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ListRequest defines agency listing inputs. Page and Limit are assumed
// to be validated by the caller.
type ListRequest struct {
	Page      int
	Limit     int
	State     string
	Type      string
	Search    string
	SortBy    string
	SortOrder string
}

// ListResult is a single page of agencies plus pagination totals.
type ListResult struct {
	Agencies []Agency
	Total    int
	Page     int
	Limit    int
}

// List returns a filtered, sorted page of agencies.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	sortBy := req.SortBy
	if !validSortFields[sortBy] {
		sortBy = "name"
	}

	opts := ListOptions{
		State:  strings.ToUpper(strings.TrimSpace(req.State)),
		Type:   strings.TrimSpace(req.Type),
		Search: strings.TrimSpace(req.Search),
		SortBy: sortBy,
		Desc:   strings.EqualFold(req.SortOrder, "desc"),
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	}

	agencies, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing agencies: %w", err)
	}

	return &ListResult{
		Agencies: agencies,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	}, nil
}

// Get fetches a single agency by ID.
func (s *Service) Get(ctx context.Context, id string) (*Agency, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, fmt.Errorf("getting agency: %w", err)
	}
	return a, nil
}
