package charging

import (
	"math"
	"strings"

	geography "chargemap/internal/geography/domain"
)

// StationRecord is one charging point from the registry.
type StationRecord struct {
	ID            string
	PostalCode    geography.PostalCode
	State         string
	Location      geography.Coordinate
	PowerKW       float64
	ConnectorType string
	Operator      string
	Address       string
}

// Validate checks record invariants.
func (s StationRecord) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptyStationID
	}
	if s.PostalCode <= 0 {
		return ErrInvalidPostalCode
	}
	if err := s.Location.Validate(); err != nil {
		return err
	}
	if !(s.PowerKW > 0) || math.IsInf(s.PowerKW, 0) {
		return ErrInvalidPower
	}
	return nil
}

// StationCount is the number of stations in a postal area together with
// the area polygon.
type StationCount struct {
	PostalCode geography.PostalCode
	Count      int
	Polygon    geography.GeoPolygon
}
