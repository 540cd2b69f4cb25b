package tabular

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	postalCodePattern   = regexp.MustCompile(`\d{5}`)
	zeroFractionPattern = regexp.MustCompile(`[.,]0$`)
	nonCountPattern     = regexp.MustCompile(`[^0-9-]`)
)

// ParseDecimal parses a number written with a comma as decimal separator.
// Dots are treated as thousands separators when a comma is present.
// It reports false for empty, malformed, NaN or infinite input.
func ParseDecimal(value string) (float64, bool) {
	value = cleanNumber(value)
	if value == "" {
		return 0, false
	}
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

// ExtractPostalCode returns the first five-digit run in value.
func ExtractPostalCode(value string) (int, bool) {
	match := postalCodePattern.FindString(value)
	if match == "" {
		return 0, false
	}
	code, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return code, true
}

// ParseCount parses an integer count such as a population total.
// A trailing single-zero fraction ("3878100.0", "28,0") is dropped; any
// other punctuation (thousands separators, footnote marks) is stripped, so
// "17.000" is seventeen thousand.
func ParseCount(value string) (int, bool) {
	value = cleanNumber(value)
	if value == "" {
		return 0, false
	}
	value = zeroFractionPattern.ReplaceAllString(value, "")
	value = nonCountPattern.ReplaceAllString(value, "")
	if value == "" || value == "-" {
		return 0, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func cleanNumber(value string) string {
	value = strings.TrimSpace(value)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, value)
}
