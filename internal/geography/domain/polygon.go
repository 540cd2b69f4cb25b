package geography

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-geom/xy"
)

// CRS identifies a coordinate reference system by EPSG code.
type CRS int

const (
	// EPSG4326 is WGS84 longitude/latitude, the default for every source.
	EPSG4326 CRS = 4326
	// EPSG4258 is ETRS89 geographic.
	EPSG4258 CRS = 4258
	// EPSG25833 is ETRS89 / UTM zone 33N, used by the Berlin cadastre.
	EPSG25833 CRS = 25833
)

func (c CRS) String() string {
	return fmt.Sprintf("EPSG:%d", int(c))
}

// Geographic reports whether coordinates are expressed in degrees.
func (c CRS) Geographic() bool {
	return c == EPSG4326 || c == EPSG4258
}

const metresPerDegree = 111320.0

// GeoPolygon is a polygon or multipolygon with its CRS.
type GeoPolygon struct {
	geometry geom.T
	crs      CRS
}

// NewGeoPolygon accepts *geom.Polygon and *geom.MultiPolygon values.
// A zero crs selects the geometry SRID, or EPSG4326 when that is unset.
// Only geographic CRS values are accepted.
func NewGeoPolygon(g geom.T, crs CRS) (GeoPolygon, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		if t == nil || len(t.FlatCoords()) == 0 {
			return GeoPolygon{}, ErrEmptyGeometry
		}
	case *geom.MultiPolygon:
		if t == nil || t.NumPolygons() == 0 || len(t.FlatCoords()) == 0 {
			return GeoPolygon{}, ErrEmptyGeometry
		}
	case nil:
		return GeoPolygon{}, ErrEmptyGeometry
	default:
		return GeoPolygon{}, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
	if crs == 0 {
		crs = CRS(g.SRID())
	}
	if crs == 0 {
		crs = EPSG4326
	}
	if !crs.Geographic() {
		return GeoPolygon{}, fmt.Errorf("%w: %s", ErrProjectedCRS, crs)
	}
	return GeoPolygon{geometry: g, crs: crs}, nil
}

// IsZero reports whether the polygon holds no geometry.
func (p GeoPolygon) IsZero() bool {
	return p.geometry == nil
}

// Geometry exposes the underlying go-geom value.
func (p GeoPolygon) Geometry() geom.T {
	return p.geometry
}

// WKT renders the geometry as well-known text, or "" for a zero polygon.
func (p GeoPolygon) WKT() (string, error) {
	if p.geometry == nil {
		return "", nil
	}
	return wkt.Marshal(p.geometry)
}

// CRS returns the coordinate reference system.
func (p GeoPolygon) CRS() CRS {
	return p.crs
}

// Centroid returns the area weighted centroid.
func (p GeoPolygon) Centroid() (Coordinate, error) {
	if p.geometry == nil {
		return Coordinate{}, ErrEmptyGeometry
	}
	c, err := xy.Centroid(p.geometry)
	if err != nil {
		return Coordinate{}, fmt.Errorf("geography: centroid: %w", err)
	}
	return NewCoordinate(c.Y(), c.X())
}

// Contains reports whether c lies inside an exterior ring and outside its
// holes. Points on a boundary count as inside.
func (p GeoPolygon) Contains(c Coordinate) bool {
	point := geom.Coord{c.Longitude, c.Latitude}
	switch g := p.geometry.(type) {
	case *geom.Polygon:
		return polygonContains(g, point)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if polygonContains(g.Polygon(i), point) {
				return true
			}
		}
	}
	return false
}

// AreaKm2 scales the planar area in degrees to km2 with an equirectangular
// projection at the centroid latitude. No geodesic calculation is performed.
func (p GeoPolygon) AreaKm2() float64 {
	area := planarArea(p.geometry)
	if area == 0 {
		return 0
	}
	c, err := xy.Centroid(p.geometry)
	if err != nil {
		return 0
	}
	scaleX := metresPerDegree * math.Cos(c.Y()*math.Pi/180)
	return area * metresPerDegree * scaleX / 1e6
}

func planarArea(g geom.T) float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return t.Area()
	case *geom.MultiPolygon:
		return t.Area()
	}
	return 0
}

func polygonContains(poly *geom.Polygon, point geom.Coord) bool {
	if poly == nil || poly.NumLinearRings() == 0 {
		return false
	}
	layout := poly.Layout()
	if !xy.IsPointInRing(layout, point, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, point, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
