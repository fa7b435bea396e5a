// Command seed loads agency and contact CSV exports into the directory
// database and can mint API keys for users.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/domain/contact"
	"github.com/opencivic/govcontacts/internal/sqlite"
)

func main() {
	var (
		dbPath       = flag.String("db", "govcontacts.db", "path to the SQLite database")
		agenciesCSV  = flag.String("agencies", "", "path to the agencies CSV export")
		contactsCSV  = flag.String("contacts", "", "path to the contacts CSV export")
		grantUser    = flag.String("grant", "", "user id to mint an API key for")
		grantToken   = flag.String("token", "", "token to register for -grant (generated when empty)")
		grantComment = flag.String("description", "", "description stored with the API key")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *agenciesCSV != "" {
		n, err := seedAgencies(ctx, db, *agenciesCSV)
		if err != nil {
			logger.Error("failed to seed agencies", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded agencies", "count", n)
	}

	if *contactsCSV != "" {
		n, err := seedContacts(ctx, db, *contactsCSV)
		if err != nil {
			logger.Error("failed to seed contacts", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded contacts", "count", n)
	}

	if *grantUser != "" {
		token := *grantToken
		if token == "" {
			token = uuid.NewString()
		}
		if err := grantAPIKey(ctx, db, *grantUser, token, *grantComment); err != nil {
			logger.Error("failed to grant api key", "error", err)
			os.Exit(1)
		}
		// Print the token itself so the operator can hand it out; only
		// its hash is stored.
		fmt.Printf("api key for %s: %s\n", *grantUser, token)
	}
}

func seedAgencies(ctx context.Context, db *sqlite.DB, path string) (int, error) {
	repo := sqlite.NewAgencyRepository(db)

	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		a := &agency.Agency{
			ID:         row["id"],
			Name:       row["name"],
			State:      row["state"],
			StateCode:  row["state_code"],
			Type:       row["type"],
			Population: row["population"],
			Website:    row["website"],
			County:     row["county"],
			CreatedAt:  row["created_at"],
			UpdatedAt:  row["updated_at"],
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Name == "" {
			continue
		}
		if err := repo.Upsert(ctx, a); err != nil {
			return count, fmt.Errorf("upserting agency %s: %w", a.ID, err)
		}
		count++
	}
	return count, nil
}

func seedContacts(ctx context.Context, db *sqlite.DB, path string) (int, error) {
	repo := sqlite.NewContactRepository(db)

	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		c := &contact.Contact{
			ID:             row["id"],
			FirstName:      row["first_name"],
			LastName:       row["last_name"],
			Email:          row["email"],
			Phone:          row["phone"],
			Title:          row["title"],
			EmailType:      row["email_type"],
			ContactFormURL: row["contact_form_url"],
			Department:     row["department"],
			AgencyName:     row["agency_name"],
			AgencyID:       row["agency_id"],
			FirmID:         row["firm_id"],
			CreatedAt:      row["created_at"],
			UpdatedAt:      row["updated_at"],
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if err := repo.Upsert(ctx, c); err != nil {
			return count, fmt.Errorf("upserting contact %s: %w", c.ID, err)
		}
		count++
	}
	return count, nil
}

// readCSV reads a headered CSV into one map per row, keyed by column
// name.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func grantAPIKey(ctx context.Context, db *sqlite.DB, userID, token, description string) error {
	sum := sha256.Sum256([]byte(token))
	hash := hex.EncodeToString(sum[:])

	_, err := db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, user_id, description) VALUES (?, ?, ?)
		ON CONFLICT(key_hash) DO UPDATE SET user_id = excluded.user_id, description = excluded.description
	`, hash, userID, description)
	if err != nil {
		return fmt.Errorf("inserting api key: %w", err)
	}
	return nil
}
