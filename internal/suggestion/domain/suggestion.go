package suggestion

import (
	"fmt"
	"strings"
	"time"

	geography "chargemap/internal/geography/domain"
)

// Status is the moderation state of a suggestion.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a status filter.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// Action is a reviewer decision.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Status returns the status an action moves a suggestion to.
func (a Action) Status() (Status, error) {
	switch Action(strings.ToLower(strings.TrimSpace(string(a)))) {
	case ActionApprove:
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, string(a))
}

// Suggestion is a community proposal for a charging station location.
type Suggestion struct {
	ID          int                  `json:"id"`
	PostalCode  geography.PostalCode `json:"plz"`
	Address     string               `json:"address"`
	Reason      string               `json:"reason"`
	Timestamp   time.Time            `json:"timestamp"`
	Status      Status               `json:"status"`
	ReviewedBy  string               `json:"reviewed_by,omitempty"`
	ReviewDate  *time.Time           `json:"review_date,omitempty"`
	ReviewNotes string               `json:"review_notes,omitempty"`
}

// Draft is the user input of a submission.
type Draft struct {
	PostalCode geography.PostalCode `json:"plz"`
	Address    string               `json:"address"`
	Reason     string               `json:"reason"`
}

// Validate checks a draft against region, inclusive of both bounds.
func (d Draft) Validate(region geography.Region) error {
	if !region.Admits(d.PostalCode) {
		return fmt.Errorf("%w: %s", ErrInvalidPostalCode, d.PostalCode)
	}
	if strings.TrimSpace(d.Address) == "" {
		return ErrEmptyAddress
	}
	if strings.TrimSpace(d.Reason) == "" {
		return ErrEmptyReason
	}
	return nil
}

// NextID returns max(id)+1, or 1 for an empty list.
func NextID(items []Suggestion) int {
	next := 1
	for _, item := range items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	return next
}

// Review applies a decision.
func (s *Suggestion) Review(action Action, reviewer, notes string, at time.Time) error {
	status, err := action.Status()
	if err != nil {
		return err
	}
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return ErrEmptyReviewer
	}
	s.Status = status
	s.ReviewedBy = reviewer
	s.ReviewDate = &at
	s.ReviewNotes = strings.TrimSpace(notes)
	return nil
}
