package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	suggestion "chargemap/internal/suggestion/domain"
)

func TestNewStore_CreatesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "suggestions.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected empty list, got %q", data)
	}
	items, err := store.Load(context.Background())
	if err != nil || len(items) != 0 {
		t.Fatalf("unexpected load %v %v", items, err)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "suggestions.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	submitted := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	reviewed := submitted.Add(2 * time.Hour)
	items := []suggestion.Suggestion{
		{ID: 1, PostalCode: 10115, Address: "Invalidenstr. 1", Reason: "Kein Lader", Timestamp: submitted, Status: suggestion.StatusPending},
		{ID: 2, PostalCode: 12043, Address: "Karl-Marx-Str. 10", Reason: "busy", Timestamp: submitted, Status: suggestion.StatusApproved,
			ReviewedBy: "anna", ReviewDate: &reviewed, ReviewNotes: "ok"},
	}
	ctx := context.Background()
	if err := store.Save(ctx, items); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ := os.ReadFile(store.Path())
	if !strings.Contains(string(data), `"review_date": null`) || !strings.Contains(string(data), `"plz": "10115"`) {
		t.Fatalf("unexpected file layout:\n%s", data)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2, got %d", len(loaded))
	}
	if loaded[1].ReviewDate == nil || !loaded[1].ReviewDate.Equal(reviewed) || loaded[1].ReviewedBy != "anna" {
		t.Fatalf("unexpected review fields %+v", loaded[1])
	}
	if !loaded[0].Timestamp.Equal(submitted) || loaded[0].ReviewDate != nil {
		t.Fatalf("unexpected pending suggestion %+v", loaded[0])
	}
}

func TestStore_LoadsNaiveTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	content := `[{"id": 1, "plz": 10245, "address": "Warschauer Str. 1", "reason": "x",
 "timestamp": "2024-03-01T09:30:00.123456", "status": "pending",
 "reviewed_by": null, "review_date": null, "review_notes": null}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	items, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 1 || items[0].PostalCode != 10245 || items[0].Timestamp.Year() != 2024 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
