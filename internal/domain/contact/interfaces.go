package contact

import (
	"context"

	"github.com/opencivic/govcontacts/internal/quota"
)

// Repository provides persistence for contacts. List must return the
// page in a deterministic order (sort key plus id tiebreak) so that
// quota truncation is stable across repeated requests.
type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Contact, int, error)
	Upsert(ctx context.Context, c *Contact) error
}

// Admitter decides which contact ids a user may view under the daily
// quota.
type Admitter interface {
	Admit(ctx context.Context, userID string, candidates []string) (quota.Admission, error)
	ViewedToday(ctx context.Context, userID string) (int, error)
	Remaining(ctx context.Context, userID string) (int, error)
	Reset(ctx context.Context, userID string) error
	Limit() int
}
