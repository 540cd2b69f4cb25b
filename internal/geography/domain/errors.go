package geography

import "errors"

var (
	// ErrInvalidCoordinate is returned when latitude or longitude is out of range.
	ErrInvalidCoordinate = errors.New("geography: invalid coordinate")
	// ErrUnsupportedGeometry is returned for geometries that are not polygonal.
	ErrUnsupportedGeometry = errors.New("geography: unsupported geometry")
	// ErrEmptyGeometry is returned when a polygon has no coordinates.
	ErrEmptyGeometry = errors.New("geography: empty geometry")
	// ErrProjectedCRS is returned for polygons in a metric CRS; centroids
	// and containment are evaluated in degrees only.
	ErrProjectedCRS = errors.New("geography: projected crs not supported")
	// ErrNoGeometry is returned when no row of a geometry column can be decoded.
	ErrNoGeometry = errors.New("geography: no decodable geometry")
)
