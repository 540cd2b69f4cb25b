package csvfile

import (
	"context"
	"errors"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

const (
	dropPostalCode = "postal_code_unparseable"
	dropGeometry   = "geometry_invalid"
	dropCentroid   = "centroid_invalid"
	dropDuplicate  = "postal_code_duplicate"
	dropName       = "name_empty"
)

var postalAreaMarkers = []string{"plz", "geometry"}

// PostalAreaRepository reads postal-area polygons from a ';' separated file
// with a PLZ column and a geometry column.
type PostalAreaRepository struct {
	path string
	crs  geography.CRS
	memo *tabular.Memo
}

// PostalAreaOption configures the repository.
type PostalAreaOption func(*PostalAreaRepository)

// WithPostalAreaCRS overrides the CRS assigned to decoded polygons.
func WithPostalAreaCRS(crs geography.CRS) PostalAreaOption {
	return func(repo *PostalAreaRepository) {
		if crs != 0 {
			repo.crs = crs
		}
	}
}

// WithPostalAreaMemo keeps decoded areas for the lifetime of memo.
func WithPostalAreaMemo(memo *tabular.Memo) PostalAreaOption {
	return func(repo *PostalAreaRepository) {
		repo.memo = memo
	}
}

// NewPostalAreaRepository constructs a repository.
func NewPostalAreaRepository(path string, opts ...PostalAreaOption) *PostalAreaRepository {
	repo := &PostalAreaRepository{path: path, crs: geography.EPSG4326}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

type postalAreaSnapshot struct {
	areas []geography.PostalArea
	drops tabular.Drops
}

// PostalAreas returns one area per postal code in file order. Rows with an
// unparseable code or geometry are dropped and counted.
func (r *PostalAreaRepository) PostalAreas(ctx context.Context) ([]geography.PostalArea, tabular.Drops, error) {
	if r == nil || r.path == "" {
		return nil, nil, errors.New("postal area repo: empty path")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	value, err := r.memo.Load("postal_areas:"+r.path, func() (any, error) {
		return r.load()
	})
	if err != nil {
		return nil, nil, err
	}
	snapshot := value.(*postalAreaSnapshot)
	drops := tabular.Drops{}
	drops.Merge("", snapshot.drops)
	return append([]geography.PostalArea(nil), snapshot.areas...), drops, nil
}

func (r *PostalAreaRepository) load() (*postalAreaSnapshot, error) {
	table, err := tabular.ReadCSV(r.path, tabular.CSVOptions{
		Detector: tabular.NewMarkerDetector(0, 0, postalAreaMarkers...),
	})
	if err != nil {
		return nil, err
	}
	codeIdx, err := table.RequireColumnNamed("plz", "postleitzahl")
	if err != nil {
		return nil, err
	}
	geomIdx, err := table.RequireColumnNamed("geometry", "geom", "wkt")
	if err != nil {
		return nil, err
	}

	values := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		values[i] = table.Value(row, geomIdx)
	}
	polygons, _, err := geography.DecodeGeometryColumn(values, r.crs)
	if err != nil {
		return nil, &tabular.FormatError{Path: r.path, Markers: postalAreaMarkers, Err: err}
	}

	snapshot := &postalAreaSnapshot{drops: tabular.Drops{}}
	seen := make(map[geography.PostalCode]struct{}, len(table.Rows))
	for i, row := range table.Rows {
		code, ok := geography.ParsePostalCode(table.Value(row, codeIdx))
		if !ok {
			snapshot.drops.Add(dropPostalCode)
			continue
		}
		if polygons[i].IsZero() {
			snapshot.drops.Add(dropGeometry)
			continue
		}
		if _, dup := seen[code]; dup {
			snapshot.drops.Add(dropDuplicate)
			continue
		}
		area, err := geography.NewPostalArea(code, polygons[i])
		if err != nil {
			snapshot.drops.Add(dropCentroid)
			continue
		}
		seen[code] = struct{}{}
		snapshot.areas = append(snapshot.areas, area)
	}
	return snapshot, nil
}
