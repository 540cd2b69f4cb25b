package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/observability/metrics"
	suggestion "chargemap/internal/suggestion/domain"
)

// Store persists the full suggestion list.
type Store interface {
	Load(ctx context.Context) ([]suggestion.Suggestion, error)
	Save(ctx context.Context, items []suggestion.Suggestion) error
}

// Notifier publishes suggestion lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Event is a lifecycle update: submitted, approved or rejected.
type Event struct {
	Type       string                `json:"type"`
	Suggestion suggestion.Suggestion `json:"suggestion"`
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// EventSubmitted is emitted for new suggestions; reviews emit the new status.
const EventSubmitted = "submitted"

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Status     suggestion.Status
	PostalCode geography.PostalCode
}

// ReviewCommand carries a reviewer decision.
type ReviewCommand struct {
	ID       int
	Action   suggestion.Action
	Reviewer string
	Notes    string
}

// Service runs the suggestion workflow over a Store.
type Service struct {
	store    Store
	region   geography.Region
	clock    Clock
	logger   *log.Logger
	notifier Notifier
	mu       sync.Mutex
}

// Option configures the service.
type Option func(*Service)

// WithRegion overrides the Berlin postal window.
func WithRegion(region geography.Region) Option {
	return func(s *Service) {
		s.region = region
	}
}

// WithClock overrides the system clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithNotifier assigns a notifier.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("suggestion service: nil store")
	}
	s := &Service{
		store:  store,
		region: geography.Berlin,
		clock:  systemClock{},
		logger: log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Submit validates draft and appends it as pending.
func (s *Service) Submit(ctx context.Context, draft suggestion.Draft) (*suggestion.Suggestion, error) {
	if err := draft.Validate(s.region); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggestion store load: %w", err)
	}
	item := suggestion.Suggestion{
		ID:         suggestion.NextID(items),
		PostalCode: draft.PostalCode,
		Address:    strings.TrimSpace(draft.Address),
		Reason:     strings.TrimSpace(draft.Reason),
		Timestamp:  s.clock.Now(),
		Status:     suggestion.StatusPending,
	}
	items = append(items, item)
	if err := s.store.Save(ctx, items); err != nil {
		return nil, fmt.Errorf("suggestion store save: %w", err)
	}
	s.logger.Printf("suggestion submitted: id=%d plz=%s", item.ID, item.PostalCode)
	s.emit(ctx, EventSubmitted, item)
	return &item, nil
}

// List returns suggestions matching filter ordered by id.
func (s *Service) List(ctx context.Context, filter Filter) ([]suggestion.Suggestion, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggestion store load: %w", err)
	}
	out := make([]suggestion.Suggestion, 0, len(items))
	for _, item := range items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.PostalCode != 0 && item.PostalCode != filter.PostalCode {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Review approves or rejects a suggestion. Already reviewed suggestions
// may be reviewed again.
func (s *Service) Review(ctx context.Context, cmd ReviewCommand) (*suggestion.Suggestion, error) {
	if _, err := cmd.Action.Status(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggestion store load: %w", err)
	}
	idx := -1
	for i := range items {
		if items[i].ID == cmd.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: id=%d", suggestion.ErrNotFound, cmd.ID)
	}
	if err := items[idx].Review(cmd.Action, cmd.Reviewer, cmd.Notes, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, items); err != nil {
		return nil, fmt.Errorf("suggestion store save: %w", err)
	}
	item := items[idx]
	s.logger.Printf("suggestion reviewed: id=%d status=%s reviewer=%s", item.ID, item.Status, item.ReviewedBy)
	s.emit(ctx, string(item.Status), item)
	return &item, nil
}

func (s *Service) emit(ctx context.Context, eventType string, item suggestion.Suggestion) {
	metrics.IncSuggestionEvent(eventType)
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Event{Type: eventType, Suggestion: item})
}
