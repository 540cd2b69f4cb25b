package geography

import (
	"sort"
	"strings"
)

// PostalArea is the polygon of one postal code with its centroid.
type PostalArea struct {
	PostalCode PostalCode
	Polygon    GeoPolygon
	Centroid   Coordinate
}

// NewPostalArea computes the centroid of polygon.
func NewPostalArea(code PostalCode, polygon GeoPolygon) (PostalArea, error) {
	centroid, err := polygon.Centroid()
	if err != nil {
		return PostalArea{}, err
	}
	return PostalArea{PostalCode: code, Polygon: polygon, Centroid: centroid}, nil
}

// AreaIndex looks up postal areas by code.
type AreaIndex struct {
	byCode map[PostalCode]PostalArea
	codes  []PostalCode
}

// NewAreaIndex keeps the first area per postal code and reports how many
// later duplicates were ignored.
func NewAreaIndex(areas []PostalArea) (*AreaIndex, int) {
	idx := &AreaIndex{byCode: make(map[PostalCode]PostalArea, len(areas))}
	duplicates := 0
	for _, area := range areas {
		if _, ok := idx.byCode[area.PostalCode]; ok {
			duplicates++
			continue
		}
		idx.byCode[area.PostalCode] = area
		idx.codes = append(idx.codes, area.PostalCode)
	}
	sort.Slice(idx.codes, func(i, j int) bool { return idx.codes[i] < idx.codes[j] })
	return idx, duplicates
}

// Lookup returns the area for code.
func (idx *AreaIndex) Lookup(code PostalCode) (PostalArea, bool) {
	if idx == nil {
		return PostalArea{}, false
	}
	area, ok := idx.byCode[code]
	return area, ok
}

// Areas returns all areas ordered by postal code.
func (idx *AreaIndex) Areas() []PostalArea {
	if idx == nil {
		return nil
	}
	out := make([]PostalArea, 0, len(idx.codes))
	for _, code := range idx.codes {
		out = append(out, idx.byCode[code])
	}
	return out
}

// Len returns the number of postal codes.
func (idx *AreaIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.codes)
}

// District is an administrative boundary (Bezirk).
type District struct {
	Name    string
	Polygon GeoPolygon
}

// Key is the normalized name used to match population rows.
func (d District) Key() string {
	return NormalizeDistrictName(d.Name)
}

// NormalizeDistrictName trims and lower-cases a district name.
func NormalizeDistrictName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Districts is an ordered set of boundaries.
type Districts []District

// Locate returns the first district whose polygon contains c.
func (ds Districts) Locate(c Coordinate) (District, bool) {
	for _, d := range ds {
		if d.Polygon.Contains(c) {
			return d, true
		}
	}
	return District{}, false
}
