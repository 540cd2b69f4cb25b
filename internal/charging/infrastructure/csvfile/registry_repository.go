package csvfile

import (
	"context"
	"errors"
	"strconv"
	"strings"

	charging "chargemap/internal/charging/domain"
	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

// Registry column names as published by the Bundesnetzagentur.
const (
	columnID        = "Ladeeinrichtungs-ID"
	columnPostal    = "Postleitzahl"
	columnState     = "Bundesland"
	columnLatitude  = "Breitengrad"
	columnLongitude = "Längengrad"
	columnPower     = "Nennleistung Ladeeinrichtung [kW]"
	columnConnector = "Steckertypen1"
	columnOperator  = "Betreiber"
	columnStreet    = "Straße"
	columnHouse     = "Hausnummer"
)

// Drop reasons reported while decoding registry rows.
const (
	DropPostalCode = "postal_code_unparseable"
	DropCoordinate = "coordinate_invalid"
	DropPower      = "power_invalid"
)

// registryHeaderFallback is the preamble length of the 2024 registry export.
const registryHeaderFallback = 10

// RegistryRepository reads the Latin-1 encoded charging station registry.
type RegistryRepository struct {
	path     string
	detector tabular.HeaderDetector
	memo     *tabular.Memo
}

// RegistryOption configures the repository.
type RegistryOption func(*RegistryRepository)

// WithRegistryMemo keeps decoded rows for the lifetime of memo.
func WithRegistryMemo(memo *tabular.Memo) RegistryOption {
	return func(repo *RegistryRepository) {
		repo.memo = memo
	}
}

// WithRegistryDetector overrides header detection.
func WithRegistryDetector(detector tabular.HeaderDetector) RegistryOption {
	return func(repo *RegistryRepository) {
		repo.detector = detector
	}
}

// NewRegistryRepository constructs a repository.
func NewRegistryRepository(path string, opts ...RegistryOption) *RegistryRepository {
	repo := &RegistryRepository{
		path:     path,
		detector: tabular.NewMarkerDetector(0, registryHeaderFallback, columnID, columnPostal),
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

type registrySnapshot struct {
	stations []charging.StationRecord
	drops    tabular.Drops
}

// Stations returns every decodable registry row. Rows with an unparseable
// postal code, coordinate or power rating are dropped and counted.
func (r *RegistryRepository) Stations(ctx context.Context) ([]charging.StationRecord, tabular.Drops, error) {
	if r == nil || r.path == "" {
		return nil, nil, errors.New("registry repo: empty path")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	value, err := r.memo.Load("registry:"+r.path, func() (any, error) {
		return r.load()
	})
	if err != nil {
		return nil, nil, err
	}
	snapshot := value.(*registrySnapshot)
	drops := tabular.Drops{}
	drops.Merge("", snapshot.drops)
	return append([]charging.StationRecord(nil), snapshot.stations...), drops, nil
}

func (r *RegistryRepository) load() (*registrySnapshot, error) {
	table, err := tabular.ReadCSV(r.path, tabular.CSVOptions{Latin1: true, Detector: r.detector})
	if err != nil {
		return nil, err
	}
	postalIdx, err := table.RequireColumnNamed(columnPostal)
	if err != nil {
		return nil, err
	}
	stateIdx, err := table.RequireColumnNamed(columnState)
	if err != nil {
		return nil, err
	}
	latIdx, err := table.RequireColumnNamed(columnLatitude)
	if err != nil {
		return nil, err
	}
	lonIdx, err := table.RequireColumnNamed(columnLongitude)
	if err != nil {
		return nil, err
	}
	powerIdx, err := table.RequireColumn(columnPower, func(name string) bool {
		return strings.HasPrefix(name, "nennleistung")
	})
	if err != nil {
		return nil, err
	}
	idIdx := table.ColumnNamed(columnID)
	connectorIdx := table.ColumnNamed(columnConnector)
	operatorIdx := table.ColumnNamed(columnOperator)
	streetIdx := table.ColumnNamed(columnStreet)
	houseIdx := table.ColumnNamed(columnHouse)

	snapshot := &registrySnapshot{drops: tabular.Drops{}}
	for i, row := range table.Rows {
		code, ok := geography.ParsePostalCode(table.Value(row, postalIdx))
		if !ok {
			snapshot.drops.Add(DropPostalCode)
			continue
		}
		lat, latOK := tabular.ParseDecimal(table.Value(row, latIdx))
		lon, lonOK := tabular.ParseDecimal(table.Value(row, lonIdx))
		if !latOK || !lonOK {
			snapshot.drops.Add(DropCoordinate)
			continue
		}
		location, err := geography.NewCoordinate(lat, lon)
		if err != nil {
			snapshot.drops.Add(DropCoordinate)
			continue
		}
		power, ok := tabular.ParseDecimal(table.Value(row, powerIdx))
		if !ok || power <= 0 {
			snapshot.drops.Add(DropPower)
			continue
		}
		id := table.Value(row, idIdx)
		if id == "" {
			id = "row-" + strconv.Itoa(table.HeaderRow+2+i)
		}
		snapshot.stations = append(snapshot.stations, charging.StationRecord{
			ID:            id,
			PostalCode:    code,
			State:         table.Value(row, stateIdx),
			Location:      location,
			PowerKW:       power,
			ConnectorType: table.Value(row, connectorIdx),
			Operator:      table.Value(row, operatorIdx),
			Address:       joinAddress(table.Value(row, streetIdx), table.Value(row, houseIdx)),
		})
	}
	return snapshot, nil
}

func joinAddress(street, house string) string {
	return strings.TrimSpace(street + " " + house)
}
