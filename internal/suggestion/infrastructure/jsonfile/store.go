package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	geography "chargemap/internal/geography/domain"
	suggestion "chargemap/internal/suggestion/domain"
)

// DefaultPath is the flat file used when none is configured.
const DefaultPath = "suggestions.json"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type record struct {
	ID          int                  `json:"id"`
	PostalCode  geography.PostalCode `json:"plz"`
	Address     string               `json:"address"`
	Reason      string               `json:"reason"`
	Timestamp   string               `json:"timestamp"`
	Status      suggestion.Status    `json:"status"`
	ReviewedBy  *string              `json:"reviewed_by"`
	ReviewDate  *string              `json:"review_date"`
	ReviewNotes *string              `json:"review_notes"`
}

// Store keeps suggestions in a single JSON array file. Concurrent writers
// from other processes can lose updates.
type Store struct {
	path string
}

// NewStore constructs a Store and creates an empty list when path is absent.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("suggestion file: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("suggestion file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("suggestion file: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads every suggestion.
func (s *Store) Load(ctx context.Context) ([]suggestion.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []suggestion.Suggestion{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []suggestion.Suggestion{}, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("suggestion file %s: %w", s.path, err)
	}
	items := make([]suggestion.Suggestion, 0, len(records))
	for _, rec := range records {
		item, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("suggestion file %s: id=%d: %w", s.path, rec.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Save replaces the file contents through a temp file rename.
func (s *Store) Save(ctx context.Context, items []suggestion.Suggestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, fromDomain(item))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".suggestions-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (r record) toDomain() (suggestion.Suggestion, error) {
	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return suggestion.Suggestion{}, err
	}
	item := suggestion.Suggestion{
		ID:         r.ID,
		PostalCode: r.PostalCode,
		Address:    r.Address,
		Reason:     r.Reason,
		Timestamp:  ts,
		Status:     r.Status,
	}
	if item.Status == "" {
		item.Status = suggestion.StatusPending
	}
	if r.ReviewedBy != nil {
		item.ReviewedBy = *r.ReviewedBy
	}
	if r.ReviewNotes != nil {
		item.ReviewNotes = *r.ReviewNotes
	}
	if r.ReviewDate != nil && *r.ReviewDate != "" {
		reviewed, err := parseTimestamp(*r.ReviewDate)
		if err != nil {
			return suggestion.Suggestion{}, err
		}
		item.ReviewDate = &reviewed
	}
	return item, nil
}

func fromDomain(item suggestion.Suggestion) record {
	rec := record{
		ID:         item.ID,
		PostalCode: item.PostalCode,
		Address:    item.Address,
		Reason:     item.Reason,
		Timestamp:  item.Timestamp.Format(time.RFC3339Nano),
		Status:     item.Status,
	}
	if item.ReviewedBy != "" {
		rec.ReviewedBy = &item.ReviewedBy
	}
	if item.ReviewNotes != "" {
		rec.ReviewNotes = &item.ReviewNotes
	}
	if item.ReviewDate != nil {
		date := item.ReviewDate.Format(time.RFC3339Nano)
		rec.ReviewDate = &date
	}
	return rec
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
