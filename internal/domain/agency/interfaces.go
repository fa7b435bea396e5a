package agency

import "context"

// Repository provides persistence for agencies.
type Repository interface {
	Get(ctx context.Context, id string) (*Agency, error)
	List(ctx context.Context, opts ListOptions) ([]Agency, int, error)
	Upsert(ctx context.Context, a *Agency) error
}
