package geography

import (
	"fmt"
	"strconv"
	"strings"

	"chargemap/internal/tabular"
)

// PostalCode is a five digit German postal code (PLZ).
type PostalCode int

// ParsePostalCode extracts the first five digit run of value.
func ParsePostalCode(value string) (PostalCode, bool) {
	code, ok := tabular.ExtractPostalCode(value)
	if !ok {
		return 0, false
	}
	return PostalCode(code), true
}

func (p PostalCode) String() string {
	return fmt.Sprintf("%05d", int(p))
}

// MarshalText renders the zero padded form.
func (p PostalCode) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts any text holding a five digit run.
func (p *PostalCode) UnmarshalText(text []byte) error {
	code, ok := ParsePostalCode(string(text))
	if !ok {
		return fmt.Errorf("geography: invalid postal code %s", strconv.Quote(string(text)))
	}
	*p = code
	return nil
}

// UnmarshalJSON accepts the code as a JSON string or number.
func (p *PostalCode) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	if text == "null" {
		return nil
	}
	return p.UnmarshalText([]byte(text))
}

// Region is the analysed area: a state label plus a postal code window.
type Region struct {
	Name  string
	Lower PostalCode
	Upper PostalCode
}

// Berlin is the only region the service analyses.
var Berlin = Region{Name: "Berlin", Lower: 10000, Upper: 14200}

// Contains applies the exclusive bounds used by every ingestion filter.
func (r Region) Contains(code PostalCode) bool {
	return code > r.Lower && code < r.Upper
}

// Admits applies the inclusive bounds used to validate user input.
func (r Region) Admits(code PostalCode) bool {
	return code >= r.Lower && code <= r.Upper
}
