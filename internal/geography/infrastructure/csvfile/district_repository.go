package csvfile

import (
	"context"
	"errors"
	"strings"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// DistrictRepository reads district boundaries from a ';' separated file
// with a name column and a geometry column.
type DistrictRepository struct {
	path string
	crs  geography.CRS
	memo *tabular.Memo
}

// DistrictOption configures the repository.
type DistrictOption func(*DistrictRepository)

// WithDistrictMemo keeps decoded districts for the lifetime of memo.
func WithDistrictMemo(memo *tabular.Memo) DistrictOption {
	return func(repo *DistrictRepository) {
		repo.memo = memo
	}
}

// NewDistrictRepository constructs a repository.
func NewDistrictRepository(path string, opts ...DistrictOption) *DistrictRepository {
	repo := &DistrictRepository{path: path, crs: geography.EPSG4326}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

type districtSnapshot struct {
	districts geography.Districts
	drops     tabular.Drops
}

// Districts returns the boundaries in file order.
func (r *DistrictRepository) Districts(ctx context.Context) (geography.Districts, tabular.Drops, error) {
	if r == nil || r.path == "" {
		return nil, nil, errors.New("district repo: empty path")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	value, err := r.memo.Load("districts:"+r.path, func() (any, error) {
		return r.load()
	})
	if err != nil {
		return nil, nil, err
	}
	snapshot := value.(*districtSnapshot)
	drops := tabular.Drops{}
	drops.Merge("", snapshot.drops)
	return append(geography.Districts(nil), snapshot.districts...), drops, nil
}

func (r *DistrictRepository) load() (*districtSnapshot, error) {
	markers := []string{"geometry"}
	table, err := tabular.ReadCSV(r.path, tabular.CSVOptions{
		Detector: tabular.NewMarkerDetector(0, 0, markers...),
	})
	if err != nil {
		return nil, err
	}
	geomIdx, err := table.RequireColumnNamed("geometry", "geom", "wkt")
	if err != nil {
		return nil, err
	}
	nameIdx := districtNameColumn(table)
	if nameIdx < 0 {
		_, err := table.RequireColumnNamed("gemeinde_name", "gemeinde_n", "gemeinde_s")
		return nil, err
	}

	values := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		values[i] = table.Value(row, geomIdx)
	}
	polygons, _, err := geography.DecodeGeometryColumn(values, r.crs)
	if err != nil {
		return nil, &tabular.FormatError{Path: r.path, Markers: markers, Err: err}
	}

	snapshot := &districtSnapshot{drops: tabular.Drops{}}
	for i, row := range table.Rows {
		name := table.Value(row, nameIdx)
		if name == "" {
			snapshot.drops.Add(dropName)
			continue
		}
		if polygons[i].IsZero() {
			snapshot.drops.Add(dropGeometry)
			continue
		}
		snapshot.districts = append(snapshot.districts, geography.District{Name: name, Polygon: polygons[i]})
	}
	return snapshot, nil
}

func districtNameColumn(table *tabular.Table) int {
	if idx := table.ColumnNamed("gemeinde_name", "gemeinde_n", "gemeinde_s"); idx >= 0 {
		return idx
	}
	return table.Column(func(name string) bool {
		return strings.Contains(name, "gemeinde") || strings.Contains(name, "bezirk") || strings.Contains(name, "name")
	})
}
