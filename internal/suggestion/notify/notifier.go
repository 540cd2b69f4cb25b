package notify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"chargemap/internal/suggestion/application"
	suggestion "chargemap/internal/suggestion/domain"
)

// Clock provides time for deduplication.
type Clock interface {
	Now() time.Time
}

type sendRecord struct {
	at   time.Time
	hash string
}

// Notifier renders suggestion events and sends them through a channel.
type Notifier struct {
	channel        Channel
	template       *Template
	events         map[string]struct{}
	reviewBaseURL  string
	clock          Clock
	logger         *log.Logger
	mu             sync.Mutex
	sent           map[string]sendRecord
	dedupeWindow   time.Duration
	requestTimeout time.Duration
}

// Option configures the notifier.
type Option func(*Notifier)

// WithEvents restricts notifications to the given event types.
func WithEvents(events ...string) Option {
	return func(n *Notifier) {
		set := make(map[string]struct{}, len(events))
		for _, event := range events {
			if event = strings.TrimSpace(event); event != "" {
				set[event] = struct{}{}
			}
		}
		if len(set) > 0 {
			n.events = set
		}
	}
}

// WithReviewBaseURL links pending suggestions to the review UI.
func WithReviewBaseURL(url string) Option {
	return func(n *Notifier) {
		n.reviewBaseURL = strings.TrimRight(url, "/")
	}
}

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *log.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithDedupeWindow suppresses identical notifications within the window.
func WithDedupeWindow(window time.Duration) Option {
	return func(n *Notifier) {
		if window > 0 {
			n.dedupeWindow = window
		}
	}
}

// WithRequestTimeout bounds a single delivery.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(n *Notifier) {
		if timeout > 0 {
			n.requestTimeout = timeout
		}
	}
}

// NewNotifier constructs a suggestion notifier.
func NewNotifier(channel Channel, template *Template, opts ...Option) (*Notifier, error) {
	if channel == nil {
		return nil, errors.New("suggestion notifier: nil channel")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	n := &Notifier{
		channel:        channel,
		template:       template,
		clock:          systemClock{},
		logger:         log.Default(),
		sent:           make(map[string]sendRecord),
		requestTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify implements application.Notifier. Delivery errors are logged.
func (n *Notifier) Notify(ctx context.Context, event application.Event) {
	if n == nil || n.channel == nil {
		return
	}
	if n.events != nil {
		if _, ok := n.events[event.Type]; !ok {
			return
		}
	}
	content, err := n.template.Render(n.templateData(event))
	if err != nil {
		n.logger.Printf("suggestion notify render failed: id=%d err=%v", event.Suggestion.ID, err)
		return
	}
	key := strconv.Itoa(event.Suggestion.ID) + "|" + event.Type
	if !n.shouldSend(key, content) {
		return
	}
	if n.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.requestTimeout)
		defer cancel()
	}
	if err := n.channel.Send(ctx, content); err != nil {
		n.logger.Printf("suggestion notify failed: id=%d event=%s err=%v", event.Suggestion.ID, event.Type, err)
		return
	}
	n.markSent(key, content)
}

func (n *Notifier) templateData(event application.Event) TemplateData {
	s := event.Suggestion
	data := TemplateData{
		ID:         s.ID,
		PostalCode: s.PostalCode.String(),
		Address:    s.Address,
		Reason:     s.Reason,
		Status:     string(s.Status),
		Reviewer:   s.ReviewedBy,
		Notes:      s.ReviewNotes,
		Submitted:  s.Timestamp.UTC().Format(time.RFC3339),
		Event:      event.Type,
		EventLabel: eventLabel(event.Type),
	}
	if n.reviewBaseURL != "" && s.Status == suggestion.StatusPending {
		data.ReviewURL = n.reviewBaseURL + "/api/v1/suggestions?status=pending&plz=" + data.PostalCode
	}
	return data
}

func eventLabel(event string) string {
	switch event {
	case application.EventSubmitted:
		return "Submitted"
	case string(suggestion.StatusApproved):
		return "Approved"
	case string(suggestion.StatusRejected):
		return "Rejected"
	default:
		return event
	}
}

func (n *Notifier) shouldSend(key, content string) bool {
	if n.dedupeWindow <= 0 {
		return true
	}
	n.mu.Lock()
	record, ok := n.sent[key]
	n.mu.Unlock()
	if !ok {
		return true
	}
	return record.hash != hashContent(content) || n.clock.Now().Sub(record.at) >= n.dedupeWindow
}

func (n *Notifier) markSent(key, content string) {
	n.mu.Lock()
	n.sent[key] = sendRecord{at: n.clock.Now().UTC(), hash: hashContent(content)}
	n.mu.Unlock()
}

func hashContent(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:8])
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
