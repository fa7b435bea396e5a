package sqlite

import (
	"context"
	"fmt"

	"github.com/opencivic/govcontacts/internal/domain/contact"
)

var contactSortColumns = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
	"phone":      "phone",
	"title":      "title",
	"created_at": "created_at",
}

// ContactRepository implements contact.Repository for SQLite
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns a page of contacts matching the given filters, plus the
// total match count. The id tiebreak keeps page order stable so quota
// truncation always drops the same records for the same request.
func (r *ContactRepository) List(ctx context.Context, opts contact.ListOptions) ([]contact.Contact, int, error) {
	where := "1=1"
	args := []interface{}{}

	if opts.AgencyName != "" {
		where += " AND LOWER(agency_name) LIKE LOWER(?)"
		args = append(args, "%"+opts.AgencyName+"%")
	}
	if opts.Search != "" {
		where += " AND (LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?))"
		term := "%" + opts.Search + "%"
		args = append(args, term, term, term)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM contacts WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	sortCol, ok := contactSortColumns[opts.SortBy]
	if !ok {
		sortCol = "last_name"
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, first_name, last_name, email, phone, title, email_type,
		       contact_form_url, department, agency_name, COALESCE(agency_id, ''), firm_id,
		       created_at, updated_at
		FROM contacts
		WHERE %s
		ORDER BY %s %s, id ASC
		LIMIT ? OFFSET ?
	`, where, sortCol, dir)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []contact.Contact
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(
			&c.ID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Title,
			&c.EmailType,
			&c.ContactFormURL,
			&c.Department,
			&c.AgencyName,
			&c.AgencyID,
			&c.FirmID,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating contact rows: %w", err)
	}

	return contacts, total, nil
}

// Upsert inserts a contact or updates it in place when the id exists
func (r *ContactRepository) Upsert(ctx context.Context, c *contact.Contact) error {
	query := `
		INSERT INTO contacts (
			id, first_name, last_name, email, phone, title, email_type,
			contact_form_url, department, agency_name, agency_id, firm_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			title = excluded.title,
			email_type = excluded.email_type,
			contact_form_url = excluded.contact_form_url,
			department = excluded.department,
			agency_name = excluded.agency_name,
			agency_id = excluded.agency_id,
			firm_id = excluded.firm_id,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Title,
		c.EmailType,
		c.ContactFormURL,
		c.Department,
		c.AgencyName,
		nullIfEmpty(c.AgencyID),
		c.FirmID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}

	return nil
}

// nullIfEmpty stores "" as NULL so nullable foreign keys stay satisfiable.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
