package quota

import (
	"context"
	"time"
)

// Store abstracts persistence for per-user daily view quota state: one
// counter and one set of already-counted contact ids per (user, day).
// The counter must always equal the size of the mark set for the same
// key; Charge is the only operation that grows either, and it does both
// as a single storage-serialized unit.
type Store interface {
	// Count returns the number of unique contacts counted for the user
	// on the given day. Missing rows read as 0.
	Count(ctx context.Context, userID, day string) (int, error)

	// Marks returns the set of contact ids already counted for the user
	// on the given day.
	Marks(ctx context.Context, userID, day string) (map[string]struct{}, error)

	// AddMarks inserts marks idempotently and returns how many were
	// newly inserted. Re-adding a marked id is a no-op, never an error.
	AddMarks(ctx context.Context, userID, day string, contactIDs []string) (int, error)

	// IncrementCount atomically adds delta to the counter and returns
	// the new value. Concurrent calls for the same key must not lose
	// updates.
	IncrementCount(ctx context.Context, userID, day string, delta int) (int, error)

	// Charge admits the longest prefix of not-yet-marked ids that fits
	// under limit, marking and counting them as one unit. It returns the
	// ids actually charged and the ids found already marked (both in
	// input order), plus the counter value after the charge. Marked ids
	// are never charged again; ids beyond capacity are left unmarked.
	Charge(ctx context.Context, userID, day string, contactIDs []string, limit int) (charged, marked []string, count int, err error)

	// Reset deletes the counter and all marks for (user, day).
	Reset(ctx context.Context, userID, day string) error
}

// DayKey formats a time as the calendar-day key used for quota state.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
