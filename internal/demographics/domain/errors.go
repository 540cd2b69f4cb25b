package demographics

import "errors"

var (
	// ErrDataUnavailable is returned when no strategy yields population data.
	ErrDataUnavailable = errors.New("demographics: population data unavailable")
	// ErrNegativePopulation is returned for a negative resident count.
	ErrNegativePopulation = errors.New("demographics: negative population")
)
