package charging

import "errors"

var (
	// ErrEmptyStationID is returned when a station has no id.
	ErrEmptyStationID = errors.New("charging: empty station id")
	// ErrInvalidPower is returned when rated power is not positive.
	ErrInvalidPower = errors.New("charging: invalid power")
	// ErrInvalidPostalCode is returned when a station has no postal code.
	ErrInvalidPostalCode = errors.New("charging: invalid postal code")
)
