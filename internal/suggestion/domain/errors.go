package suggestion

import "errors"

var (
	ErrInvalidPostalCode = errors.New("suggestion: postal code outside region")
	ErrEmptyAddress      = errors.New("suggestion: address required")
	ErrEmptyReason       = errors.New("suggestion: reason required")
	ErrUnknownAction     = errors.New("suggestion: unknown review action")
	ErrUnknownStatus     = errors.New("suggestion: unknown status")
	ErrNotFound          = errors.New("suggestion: not found")
	ErrEmptyReviewer     = errors.New("suggestion: reviewer required")
)
