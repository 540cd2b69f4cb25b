package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	geography "chargemap/internal/geography/domain"
	suggestion "chargemap/internal/suggestion/domain"
)

const defaultSuggestionsTable = "suggestions"

// Store is a Postgres implementation of the suggestion list.
type Store struct {
	db    *sql.DB
	table string
}

// Option configures the store.
type Option func(*Store)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = table
		}
	}
}

// NewStore constructs a store.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, table: defaultSuggestionsTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the backing table name.
func (s *Store) Table() string {
	return s.table
}

// EnsureSchema creates the table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("suggestion store: nil db")
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY,
	plz INTEGER NOT NULL,
	address TEXT NOT NULL,
	reason TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	reviewed_by TEXT,
	review_date TIMESTAMPTZ,
	review_notes TEXT
)`, s.table))
	return err
}

// Load returns every suggestion ordered by id.
func (s *Store) Load(ctx context.Context) ([]suggestion.Suggestion, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("suggestion store: nil db")
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, plz, address, reason, submitted_at, status, reviewed_by, review_date, review_notes
FROM %s
ORDER BY id ASC`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []suggestion.Suggestion{}
	for rows.Next() {
		var (
			item        suggestion.Suggestion
			plz         int
			status      string
			reviewedBy  sql.NullString
			reviewDate  sql.NullTime
			reviewNotes sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&plz,
			&item.Address,
			&item.Reason,
			&item.Timestamp,
			&status,
			&reviewedBy,
			&reviewDate,
			&reviewNotes,
		); err != nil {
			return nil, err
		}
		item.PostalCode = geography.PostalCode(plz)
		item.Status = suggestion.Status(status)
		item.Timestamp = item.Timestamp.UTC()
		item.ReviewedBy = reviewedBy.String
		item.ReviewNotes = reviewNotes.String
		if reviewDate.Valid {
			reviewed := reviewDate.Time.UTC()
			item.ReviewDate = &reviewed
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Save upserts items and removes rows absent from items in one transaction.
func (s *Store) Save(ctx context.Context, items []suggestion.Suggestion) error {
	if s == nil || s.db == nil {
		return errors.New("suggestion store: nil db")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	keep := make(map[int]struct{}, len(items))
	for _, item := range items {
		keep[item.ID] = struct{}{}
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (
	id, plz, address, reason, submitted_at, status, reviewed_by, review_date, review_notes
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
	plz = EXCLUDED.plz,
	address = EXCLUDED.address,
	reason = EXCLUDED.reason,
	submitted_at = EXCLUDED.submitted_at,
	status = EXCLUDED.status,
	reviewed_by = EXCLUDED.reviewed_by,
	review_date = EXCLUDED.review_date,
	review_notes = EXCLUDED.review_notes`, s.table),
			item.ID, int(item.PostalCode), item.Address, item.Reason, item.Timestamp, string(item.Status),
			nullString(item.ReviewedBy), item.ReviewDate, nullString(item.ReviewNotes))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s`, s.table))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	var stale []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			_ = tx.Rollback()
			return err
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
