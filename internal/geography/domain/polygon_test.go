package geography

import (
	"errors"
	"math"
	"testing"

	"github.com/twpayne/go-geom"
)

const (
	squareWKT     = "POLYGON ((13.0 52.0, 13.2 52.0, 13.2 52.2, 13.0 52.2, 13.0 52.0))"
	holeWKT       = "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (4 4, 6 4, 6 6, 4 6, 4 4))"
	squareGeoJSON = `{"type":"Polygon","coordinates":[[[13.0,52.0],[13.2,52.0],[13.2,52.2],[13.0,52.2],[13.0,52.0]]]}`
)

func TestDecodeGeometryColumn_WKT(t *testing.T) {
	polygons, encoding, err := DecodeGeometryColumn([]string{squareWKT, "not wkt", "SRID=4326;" + squareWKT}, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if encoding != EncodingWKT {
		t.Fatalf("expected wkt, got %s", encoding)
	}
	if polygons[0].IsZero() || !polygons[1].IsZero() || polygons[2].IsZero() {
		t.Fatalf("unexpected decode pattern")
	}
	if polygons[0].CRS() != EPSG4326 {
		t.Fatalf("expected default crs, got %s", polygons[0].CRS())
	}
}

func TestDecodeGeometryColumn_GeoJSONFallback(t *testing.T) {
	polygons, encoding, err := DecodeGeometryColumn([]string{squareGeoJSON, ""}, EPSG4326)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if encoding != EncodingGeoJSON {
		t.Fatalf("expected geojson, got %s", encoding)
	}
	if polygons[0].IsZero() || !polygons[1].IsZero() {
		t.Fatalf("unexpected decode pattern")
	}
}

func TestDecodeGeometryColumn_NothingDecodes(t *testing.T) {
	_, _, err := DecodeGeometryColumn([]string{"", "POINT (1 2)", "garbage"}, 0)
	if !errors.Is(err, ErrNoGeometry) {
		t.Fatalf("expected ErrNoGeometry, got %v", err)
	}
}

func TestGeoPolygon_CentroidAndContains(t *testing.T) {
	polygons, _, err := DecodeGeometryColumn([]string{squareWKT}, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	square := polygons[0]
	centroid, err := square.Centroid()
	if err != nil {
		t.Fatalf("centroid: %v", err)
	}
	if math.Abs(centroid.Latitude-52.1) > 1e-9 || math.Abs(centroid.Longitude-13.1) > 1e-9 {
		t.Fatalf("unexpected centroid %+v", centroid)
	}
	if !square.Contains(centroid) {
		t.Fatalf("expected centroid inside")
	}
	if square.Contains(Coordinate{Latitude: 52.3, Longitude: 13.1}) {
		t.Fatalf("expected point outside")
	}
}

func TestGeoPolygon_HoleExcluded(t *testing.T) {
	polygons, _, err := DecodeGeometryColumn([]string{holeWKT}, EPSG25833)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ring := polygons[0]
	if ring.Contains(Coordinate{Latitude: 5, Longitude: 5}) {
		t.Fatalf("expected hole to be outside")
	}
	if !ring.Contains(Coordinate{Latitude: 2, Longitude: 2}) {
		t.Fatalf("expected point in ring")
	}
}

func TestNewGeoPolygon_RejectsProjectedCRS(t *testing.T) {
	metric := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{{0, 0}, {2000, 0}, {2000, 1000}, {0, 1000}, {0, 0}}})
	if _, err := NewGeoPolygon(metric, EPSG25833); !errors.Is(err, ErrProjectedCRS) {
		t.Fatalf("expected ErrProjectedCRS, got %v", err)
	}
	if _, err := NewGeoPolygon(metric.SetSRID(25833), 0); !errors.Is(err, ErrProjectedCRS) {
		t.Fatalf("expected ErrProjectedCRS from srid, got %v", err)
	}
	if _, _, err := DecodeGeometryColumn([]string{squareWKT}, EPSG25833); !errors.Is(err, ErrProjectedCRS) {
		t.Fatalf("expected column rejection, got %v", err)
	}
	if _, err := NewGeoPolygon(metric, EPSG4258); err != nil {
		t.Fatalf("etrs89 geographic must be accepted: %v", err)
	}
}

func TestGeoPolygon_AreaKm2(t *testing.T) {
	polygons, _, err := DecodeGeometryColumn([]string{squareWKT}, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 0.2 x 0.2 degrees near 52.1N is roughly 22.3 km x 13.7 km.
	if got := polygons[0].AreaKm2(); got < 290 || got > 320 {
		t.Fatalf("unexpected geographic area %v", got)
	}
}

func TestNewGeoPolygon_RejectsPoints(t *testing.T) {
	_, err := NewGeoPolygon(geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{1, 2}), 0)
	if !errors.Is(err, ErrUnsupportedGeometry) {
		t.Fatalf("expected ErrUnsupportedGeometry, got %v", err)
	}
}

func TestRegionBounds(t *testing.T) {
	if Berlin.Contains(10000) || Berlin.Contains(14200) {
		t.Fatalf("ingestion bounds must be exclusive")
	}
	if !Berlin.Admits(10000) || !Berlin.Admits(14200) {
		t.Fatalf("validation bounds must be inclusive")
	}
	if !Berlin.Contains(10115) || Berlin.Admits(9999) {
		t.Fatalf("unexpected bounds")
	}
}

func TestPostalCodeText(t *testing.T) {
	var code PostalCode
	if err := code.UnmarshalText([]byte("10115.0")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if code != 10115 || code.String() != "10115" {
		t.Fatalf("unexpected code %v", code)
	}
	if PostalCode(1067).String() != "01067" {
		t.Fatalf("expected zero padding")
	}
	if err := code.UnmarshalText([]byte("abc")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDistrictsLocate(t *testing.T) {
	polygons, _, err := DecodeGeometryColumn([]string{squareWKT}, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	districts := Districts{{Name: " Mitte ", Polygon: polygons[0]}}
	d, ok := districts.Locate(Coordinate{Latitude: 52.1, Longitude: 13.1})
	if !ok || d.Key() != "mitte" {
		t.Fatalf("expected mitte, got %+v ok=%v", d, ok)
	}
	if _, ok := districts.Locate(Coordinate{Latitude: 48, Longitude: 11}); ok {
		t.Fatalf("expected no district")
	}
}
