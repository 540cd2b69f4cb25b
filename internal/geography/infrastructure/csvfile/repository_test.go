package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	geography "chargemap/internal/geography/domain"
	"chargemap/internal/tabular"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPostalAreaRepository(t *testing.T) {
	path := writeFile(t, "geodata_berlin_plz.csv", "PLZ;geometry\n"+
		"10115;POLYGON ((13.37 52.52, 13.40 52.52, 13.40 52.54, 13.37 52.54, 13.37 52.52))\n"+
		"10117;POLYGON ((13.38 52.50, 13.41 52.50, 13.41 52.52, 13.38 52.52, 13.38 52.50))\n"+
		"10115;POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))\n"+
		"xx;POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))\n"+
		"10119;\n")
	repo := NewPostalAreaRepository(path, WithPostalAreaMemo(tabular.NewMemo(0)))

	areas, drops, err := repo.PostalAreas(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(areas) != 2 || areas[0].PostalCode != 10115 || areas[1].PostalCode != 10117 {
		t.Fatalf("unexpected areas %+v", areas)
	}
	if areas[0].Centroid.Latitude < 52.52 || areas[0].Centroid.Latitude > 52.54 {
		t.Fatalf("unexpected centroid %+v", areas[0].Centroid)
	}
	if drops[dropDuplicate] != 1 || drops[dropPostalCode] != 1 || drops[dropGeometry] != 1 {
		t.Fatalf("unexpected drops %v", drops)
	}

	drops[dropDuplicate] = 99
	_, again, err := repo.PostalAreas(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again[dropDuplicate] != 1 {
		t.Fatalf("memoized drops must not be shared, got %v", again)
	}
}

func TestPostalAreaRepository_NoGeometry(t *testing.T) {
	path := writeFile(t, "geo.csv", "PLZ;geometry\n10115;nope\n")
	_, _, err := NewPostalAreaRepository(path).PostalAreas(context.Background())
	var formatErr *tabular.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestDistrictRepository(t *testing.T) {
	path := writeFile(t, "bezirksgrenzen.csv", "Gemeinde_name;Gemeinde_schluessel;geometry\n"+
		"Mitte;001;POLYGON ((13.30 52.50, 13.45 52.50, 13.45 52.56, 13.30 52.56, 13.30 52.50))\n"+
		";002;POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))\n")
	districts, drops, err := NewDistrictRepository(path).Districts(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(districts) != 1 || districts[0].Key() != "mitte" {
		t.Fatalf("unexpected districts %+v", districts)
	}
	if drops[dropName] != 1 {
		t.Fatalf("unexpected drops %v", drops)
	}
}

func TestDistrictRepository_NameColumnFallback(t *testing.T) {
	path := writeFile(t, "districts.csv", "id;Bezirksname;geometry\n"+
		"1;Pankow;POLYGON ((13.30 52.50, 13.45 52.50, 13.45 52.56, 13.30 52.56, 13.30 52.50))\n")
	districts, _, err := NewDistrictRepository(path).Districts(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(districts) != 1 || districts[0].Name != "Pankow" {
		t.Fatalf("unexpected districts %+v", districts)
	}
}

func TestPostalAreaRepository_ProjectedCRS(t *testing.T) {
	path := writeFile(t, "geo_utm.csv", "PLZ;geometry\n"+
		"10115;POLYGON ((389000 5820000, 391000 5820000, 391000 5822000, 389000 5822000, 389000 5820000))\n")
	_, _, err := NewPostalAreaRepository(path, WithPostalAreaCRS(geography.EPSG25833)).PostalAreas(context.Background())
	var formatErr *tabular.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if !errors.Is(err, geography.ErrProjectedCRS) {
		t.Fatalf("expected ErrProjectedCRS, got %v", err)
	}
}
