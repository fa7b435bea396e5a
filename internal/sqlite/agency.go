package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/repository"
)

// Sort keys the listing accepts, mapped to columns. Interpolated into
// ORDER BY, so only values from this map may ever be used.
var agencySortColumns = map[string]string{
	"name":       "name",
	"state":      "state",
	"population": "population",
	"created_at": "created_at",
	"type":       "type",
}

// AgencyRepository implements agency.Repository for SQLite
type AgencyRepository struct {
	db *DB
}

// NewAgencyRepository creates a new AgencyRepository
func NewAgencyRepository(db *DB) *AgencyRepository {
	return &AgencyRepository{db: db}
}

// Get retrieves an agency by ID
func (r *AgencyRepository) Get(ctx context.Context, id string) (*agency.Agency, error) {
	query := `
		SELECT id, name, state, state_code, type, population, website, county, created_at, updated_at
		FROM agencies
		WHERE id = ?
	`

	var a agency.Agency
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.Name,
		&a.State,
		&a.StateCode,
		&a.Type,
		&a.Population,
		&a.Website,
		&a.County,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agency: %w", err)
	}

	return &a, nil
}

// List returns a page of agencies matching the given filters, plus the
// total match count. Ordering is deterministic: the requested sort key
// with id as tiebreak.
func (r *AgencyRepository) List(ctx context.Context, opts agency.ListOptions) ([]agency.Agency, int, error) {
	where := "1=1"
	args := []interface{}{}

	if opts.State != "" {
		where += " AND state_code = ?"
		args = append(args, opts.State)
	}
	if opts.Type != "" {
		where += " AND LOWER(type) = LOWER(?)"
		args = append(args, opts.Type)
	}
	if opts.Search != "" {
		where += " AND (LOWER(name) LIKE LOWER(?) OR LOWER(county) LIKE LOWER(?))"
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM agencies WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count agencies: %w", err)
	}

	sortCol, ok := agencySortColumns[opts.SortBy]
	if !ok {
		sortCol = "name"
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, name, state, state_code, type, population, website, county, created_at, updated_at
		FROM agencies
		WHERE %s
		ORDER BY %s %s, id ASC
		LIMIT ? OFFSET ?
	`, where, sortCol, dir)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agencies: %w", err)
	}
	defer rows.Close()

	var agencies []agency.Agency
	for rows.Next() {
		var a agency.Agency
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.State,
			&a.StateCode,
			&a.Type,
			&a.Population,
			&a.Website,
			&a.County,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan agency: %w", err)
		}
		agencies = append(agencies, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating agency rows: %w", err)
	}

	return agencies, total, nil
}

// Upsert inserts an agency or updates it in place when the id exists
func (r *AgencyRepository) Upsert(ctx context.Context, a *agency.Agency) error {
	query := `
		INSERT INTO agencies (id, name, state, state_code, type, population, website, county, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			state_code = excluded.state_code,
			type = excluded.type,
			population = excluded.population,
			website = excluded.website,
			county = excluded.county,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.State,
		a.StateCode,
		a.Type,
		a.Population,
		a.Website,
		a.County,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert agency: %w", err)
	}

	return nil
}
