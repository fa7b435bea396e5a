package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDailyLimit is the daily ceiling on unique contacts a user may
// view unless configured otherwise.
const DefaultDailyLimit = 50

// Admission is the engine's decision for one candidate page.
type Admission struct {
	// Admitted holds every candidate id allowed through, in the
	// candidates' original order: already-marked ids plus the newly
	// charged slice.
	Admitted []string
	// CountedNew holds only the ids charged against quota by this call.
	CountedNew []string
	// ViewedToday is the counter value after the charge.
	ViewedToday int
	// Remaining is how much quota is left after the charge.
	Remaining int
	// LimitExceeded is true when new ids were proposed but none could be
	// charged because the quota was already exhausted. A response that
	// admitted at least one new id never sets it.
	LimitExceeded bool
}

// Engine decides which candidate contact ids a user may view without
// exceeding the daily quota, and commits those decisions to the store.
type Engine struct {
	store  Store
	limit  int
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a quota engine over the given store.
func NewEngine(store Store, limit int, logger *slog.Logger, opts ...Option) *Engine {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{store: store, limit: limit, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limit returns the configured daily limit.
func (e *Engine) Limit() int {
	return e.limit
}

// Admit partitions candidates into already-marked (free, always served)
// and new ids, charges as many new ids as still fit under the daily
// limit, and returns the combined admitted set. Marks and counter are
// updated as a single unit at the store, so concurrent calls for the
// same user can never jointly exceed the limit. Any storage failure
// fails the whole call; no admission is ever guessed from a failed read.
func (e *Engine) Admit(ctx context.Context, userID string, candidates []string) (Admission, error) {
	day := DayKey(e.now())

	marks, err := e.store.Marks(ctx, userID, day)
	if err != nil {
		return Admission{}, fmt.Errorf("reading view marks: %w", err)
	}

	// Dedupe preserving first occurrence so one page cannot charge the
	// same contact twice.
	seen := make(map[string]struct{}, len(candidates))
	var ordered, fresh []string
	for _, id := range candidates {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
		if _, marked := marks[id]; !marked {
			fresh = append(fresh, id)
		}
	}

	if len(fresh) == 0 {
		count, err := e.store.Count(ctx, userID, day)
		if err != nil {
			return Admission{}, fmt.Errorf("reading view count: %w", err)
		}
		return Admission{
			Admitted:    ordered,
			ViewedToday: count,
			Remaining:   e.remaining(count),
		}, nil
	}

	charged, alreadyMarked, count, err := e.store.Charge(ctx, userID, day, fresh, e.limit)
	if err != nil {
		return Admission{}, fmt.Errorf("charging views: %w", err)
	}

	// Ids the store found already marked were counted by a concurrent
	// request for the same user; they are served free like any other
	// marked id.
	servable := make(map[string]struct{}, len(charged)+len(alreadyMarked))
	for _, id := range charged {
		servable[id] = struct{}{}
	}
	for _, id := range alreadyMarked {
		servable[id] = struct{}{}
	}

	admitted := make([]string, 0, len(ordered)-len(fresh)+len(charged)+len(alreadyMarked))
	for _, id := range ordered {
		if _, marked := marks[id]; marked {
			admitted = append(admitted, id)
			continue
		}
		if _, ok := servable[id]; ok {
			admitted = append(admitted, id)
		}
	}

	limitExceeded := len(charged) == 0 && count >= e.limit
	if limitExceeded {
		e.logger.Info("daily contact limit reached", "user", userID, "viewed", count)
	}

	return Admission{
		Admitted:      admitted,
		CountedNew:    charged,
		ViewedToday:   count,
		Remaining:     e.remaining(count),
		LimitExceeded: limitExceeded,
	}, nil
}

// ViewedToday returns the user's counter for the current day.
func (e *Engine) ViewedToday(ctx context.Context, userID string) (int, error) {
	count, err := e.store.Count(ctx, userID, DayKey(e.now()))
	if err != nil {
		return 0, fmt.Errorf("reading view count: %w", err)
	}
	return count, nil
}

// Remaining returns how much quota the user has left today.
func (e *Engine) Remaining(ctx context.Context, userID string) (int, error) {
	count, err := e.ViewedToday(ctx, userID)
	if err != nil {
		return 0, err
	}
	return e.remaining(count), nil
}

// Reset restores the user's full quota for the remainder of the day.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	if err := e.store.Reset(ctx, userID, DayKey(e.now())); err != nil {
		return fmt.Errorf("resetting quota: %w", err)
	}
	return nil
}

func (e *Engine) remaining(count int) int {
	if count >= e.limit {
		return 0
	}
	return e.limit - count
}
