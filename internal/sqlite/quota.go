package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// QuotaStore implements quota.Store over the daily_view_counts and
// viewed_contacts tables.
type QuotaStore struct {
	db *DB
}

// NewQuotaStore creates a new QuotaStore
func NewQuotaStore(db *DB) *QuotaStore {
	return &QuotaStore{db: db}
}

// Count returns the user's view counter for the day, 0 when absent
func (s *QuotaStore) Count(ctx context.Context, userID, day string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count FROM daily_view_counts WHERE user_id = ? AND date = ?`,
		userID, day).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get view count: %w", err)
	}
	return count, nil
}

// Marks returns the contact ids already counted for the user on the day
func (s *QuotaStore) Marks(ctx context.Context, userID, day string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contact_id FROM viewed_contacts WHERE user_id = ? AND date = ?`,
		userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get view marks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan view mark: %w", err)
		}
		marks[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating view marks: %w", err)
	}
	return marks, nil
}

// AddMarks inserts marks idempotently and returns how many were new
func (s *QuotaStore) AddMarks(ctx context.Context, userID, day string, contactIDs []string) (int, error) {
	if len(contactIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, id := range contactIDs {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO viewed_contacts (user_id, contact_id, date) VALUES (?, ?, ?)`,
			userID, id, day)
		if err != nil {
			return 0, fmt.Errorf("failed to add view mark: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit view marks: %w", err)
	}
	return added, nil
}

// IncrementCount atomically adds delta to the user's counter for the
// day and returns the new value. The upsert-with-arithmetic form makes
// concurrent increments for the same key serialize at the database.
func (s *QuotaStore) IncrementCount(ctx context.Context, userID, day string, delta int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_view_counts (user_id, date, count) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET count = count + excluded.count
		RETURNING count
	`, userID, day, delta).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment view count: %w", err)
	}
	return count, nil
}

// Charge marks and counts as many of the given ids as fit under limit,
// in one transaction. The first statement is a write, so the
// transaction holds the database write lock before capacity is read;
// two concurrent charges for the same user serialize here and cannot
// jointly exceed the limit. The counter is advanced only by mark
// inserts that actually landed, which keeps it equal to the mark-set
// size even when an id was marked concurrently; ids found already
// marked are reported back so callers can serve them without charge.
func (s *QuotaStore) Charge(ctx context.Context, userID, day string, contactIDs []string, limit int) ([]string, []string, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO daily_view_counts (user_id, date, count) VALUES (?, ?, 0)
		ON CONFLICT(user_id, date) DO UPDATE SET count = count
		RETURNING count
	`, userID, day).Scan(&count)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to lock view count: %w", err)
	}

	var charged, marked []string
	for _, id := range contactIDs {
		if count >= limit {
			// No capacity left: only detect existing marks.
			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM viewed_contacts WHERE user_id = ? AND contact_id = ? AND date = ?)`,
				userID, id, day).Scan(&exists)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("failed to check view mark: %w", err)
			}
			if exists == 1 {
				marked = append(marked, id)
			}
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO viewed_contacts (user_id, contact_id, date) VALUES (?, ?, ?)`,
			userID, id, day)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to add view mark: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 1 {
			charged = append(charged, id)
			count++
		} else {
			marked = append(marked, id)
		}
	}

	if len(charged) > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE daily_view_counts SET count = count + ? WHERE user_id = ? AND date = ?`,
			len(charged), userID, day)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to update view count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to commit charge: %w", err)
	}
	return charged, marked, count, nil
}

// Reset deletes the counter and all marks for (user, day)
func (s *QuotaStore) Reset(ctx context.Context, userID, day string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM daily_view_counts WHERE user_id = ? AND date = ?`, userID, day); err != nil {
		return fmt.Errorf("failed to delete view count: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM viewed_contacts WHERE user_id = ? AND date = ?`, userID, day); err != nil {
		return fmt.Errorf("failed to delete view marks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}
