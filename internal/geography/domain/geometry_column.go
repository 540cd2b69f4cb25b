package geography

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// GeometryEncoding names how a geometry column was decoded.
type GeometryEncoding string

const (
	EncodingWKT     GeometryEncoding = "wkt"
	EncodingGeoJSON GeometryEncoding = "geojson"
)

var sridPrefix = regexp.MustCompile(`(?i)^SRID=\d+;`)

type geometryDecoder struct {
	encoding GeometryEncoding
	decode   func(value string) (geom.T, error)
}

var geometryDecoders = []geometryDecoder{
	{encoding: EncodingWKT, decode: decodeWKT},
	{encoding: EncodingGeoJSON, decode: decodeGeoJSON},
}

// DecodeGeometryColumn decodes a whole column with the first encoding that
// yields at least one polygon. The result is aligned with values; rows that
// do not decode under the chosen encoding are zero GeoPolygons.
func DecodeGeometryColumn(values []string, crs CRS) ([]GeoPolygon, GeometryEncoding, error) {
	if crs != 0 && !crs.Geographic() {
		return nil, "", fmt.Errorf("%w: %s", ErrProjectedCRS, crs)
	}
	projected := false
	for _, decoder := range geometryDecoders {
		polygons := make([]GeoPolygon, len(values))
		decoded := 0
		for i, value := range values {
			g, err := decoder.decode(value)
			if err != nil {
				continue
			}
			polygon, err := NewGeoPolygon(g, crs)
			if err != nil {
				projected = projected || errors.Is(err, ErrProjectedCRS)
				continue
			}
			polygons[i] = polygon
			decoded++
		}
		if decoded > 0 {
			return polygons, decoder.encoding, nil
		}
	}
	if projected {
		return nil, "", ErrProjectedCRS
	}
	return nil, "", ErrNoGeometry
}

func decodeWKT(value string) (geom.T, error) {
	value = sridPrefix.ReplaceAllString(strings.TrimSpace(value), "")
	if value == "" {
		return nil, ErrEmptyGeometry
	}
	return wkt.Unmarshal(value)
}

func decodeGeoJSON(value string) (geom.T, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "{") {
		return nil, errors.New("geography: not a geojson object")
	}
	var g geom.T
	if err := geojson.Unmarshal([]byte(value), &g); err != nil {
		return nil, err
	}
	return g, nil
}
