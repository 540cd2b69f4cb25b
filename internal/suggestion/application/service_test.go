package application

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	suggestion "chargemap/internal/suggestion/domain"
	"chargemap/internal/suggestion/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type failingStore struct{}

func (failingStore) Load(context.Context) ([]suggestion.Suggestion, error) {
	return nil, errors.New("disk gone")
}

func (failingStore) Save(context.Context, []suggestion.Suggestion) error {
	return errors.New("disk gone")
}

func newTestService(t *testing.T, store Store, clock Clock) *Service {
	t.Helper()
	svc, err := NewService(store, WithClock(clock), WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestService_SubmitAssignsNextID(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStore(suggestion.Suggestion{ID: 7, PostalCode: 10115, Status: suggestion.StatusApproved})
	svc := newTestService(t, store, clock)

	item, err := svc.Submit(ctx, suggestion.Draft{PostalCode: 12043, Address: " Karl-Marx-Str. 10 ", Reason: "no charger"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if item.ID != 8 || item.Status != suggestion.StatusPending || item.Address != "Karl-Marx-Str. 10" {
		t.Fatalf("unexpected suggestion %+v", item)
	}
	if !item.Timestamp.Equal(clock.now) {
		t.Fatalf("unexpected timestamp %v", item.Timestamp)
	}
	stored, _ := store.Load(ctx)
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored suggestions, got %d", len(stored))
	}
}

func TestService_SubmitRejectsInvalidDraft(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, &fixedClock{})
	_, err := svc.Submit(context.Background(), suggestion.Draft{PostalCode: 14201, Address: "x", Reason: "y"})
	if !errors.Is(err, suggestion.ErrInvalidPostalCode) {
		t.Fatalf("expected ErrInvalidPostalCode, got %v", err)
	}
	stored, _ := store.Load(context.Background())
	if len(stored) != 0 {
		t.Fatalf("invalid draft must not be stored")
	}
}

func TestService_ListFilters(t *testing.T) {
	store := memory.NewStore(
		suggestion.Suggestion{ID: 3, PostalCode: 10115, Status: suggestion.StatusPending},
		suggestion.Suggestion{ID: 1, PostalCode: 10115, Status: suggestion.StatusApproved},
		suggestion.Suggestion{ID: 2, PostalCode: 12043, Status: suggestion.StatusPending},
	)
	svc := newTestService(t, store, &fixedClock{})
	ctx := context.Background()

	all, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != 1 || all[2].ID != 3 {
		t.Fatalf("unexpected order %+v", all)
	}
	pending, _ := svc.List(ctx, Filter{Status: suggestion.StatusPending})
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	byCode, _ := svc.List(ctx, Filter{PostalCode: 10115, Status: suggestion.StatusPending})
	if len(byCode) != 1 || byCode[0].ID != 3 {
		t.Fatalf("unexpected filtered list %+v", byCode)
	}
}

func TestService_Review(t *testing.T) {
	ctx := context.Background()
	clock := &fixedClock{now: time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)}
	store := memory.NewStore(suggestion.Suggestion{ID: 1, PostalCode: 10115, Status: suggestion.StatusPending})
	svc := newTestService(t, store, clock)

	if _, err := svc.Review(ctx, ReviewCommand{ID: 1, Action: "escalate", Reviewer: "anna"}); !errors.Is(err, suggestion.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := svc.Review(ctx, ReviewCommand{ID: 9, Action: suggestion.ActionApprove, Reviewer: "anna"}); !errors.Is(err, suggestion.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	item, err := svc.Review(ctx, ReviewCommand{ID: 1, Action: suggestion.ActionReject, Reviewer: "anna", Notes: "private land"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if item.Status != suggestion.StatusRejected || item.ReviewDate == nil || !item.ReviewDate.Equal(clock.now) {
		t.Fatalf("unexpected suggestion %+v", item)
	}
	stored, _ := store.Load(ctx)
	if stored[0].Status != suggestion.StatusRejected || stored[0].ReviewNotes != "private land" {
		t.Fatalf("review not persisted: %+v", stored[0])
	}
}

func TestService_StoreFailure(t *testing.T) {
	svc := newTestService(t, failingStore{}, &fixedClock{})
	if _, err := svc.List(context.Background(), Filter{}); err == nil {
		t.Fatalf("expected store error")
	}
	if _, err := svc.Submit(context.Background(), suggestion.Draft{PostalCode: 10115, Address: "a", Reason: "b"}); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestNewService_NilStore(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
