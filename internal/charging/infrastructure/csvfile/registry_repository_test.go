package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chargemap/internal/tabular"
	"golang.org/x/text/encoding/charmap"
)

const registryFixture = "Ladesäulenregister\n" +
	"Stand: 01.04.2024\n" +
	"\n" +
	"Ladeeinrichtungs-ID;Betreiber;Straße;Hausnummer;Postleitzahl;Bundesland;Breitengrad;Längengrad;Nennleistung Ladeeinrichtung [kW];Steckertypen1\n" +
	"1001;Stromnetz Berlin;Invalidenstraße;50;10115;Berlin;52,5310;13,3850;22;AC Typ 2\n" +
	"1002;Allego;Müllerstraße;1;13353;Berlin;52,5440;13,3520;150,5;DC CCS\n" +
	"1003;Broken;Weg;1;ohne;Berlin;52,5;13,4;22;AC\n" +
	"1004;Broken;Weg;2;10117;Berlin;;13,4;22;AC\n" +
	"1005;Broken;Weg;3;10117;Berlin;95,0;13,4;22;AC\n" +
	"1006;Broken;Weg;4;10117;Berlin;52,5;13,4;0;AC\n"

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "Ladesaeulenregister.csv")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRegistryRepository_Stations(t *testing.T) {
	repo := NewRegistryRepository(writeRegistry(t, registryFixture))
	stations, drops, err := repo.Stations(context.Background())
	if err != nil {
		t.Fatalf("stations: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	first := stations[0]
	if first.ID != "1001" || first.PostalCode != 10115 || first.State != "Berlin" {
		t.Fatalf("unexpected station %+v", first)
	}
	if first.Location.Latitude != 52.531 || first.Location.Longitude != 13.385 {
		t.Fatalf("unexpected location %+v", first.Location)
	}
	if first.Address != "Invalidenstraße 50" || first.Operator != "Stromnetz Berlin" || first.ConnectorType != "AC Typ 2" {
		t.Fatalf("unexpected detail %+v", first)
	}
	if stations[1].PowerKW != 150.5 {
		t.Fatalf("unexpected power %v", stations[1].PowerKW)
	}
	if drops[DropPostalCode] != 1 || drops[DropCoordinate] != 2 || drops[DropPower] != 1 {
		t.Fatalf("unexpected drops %v", drops)
	}
}

func TestRegistryRepository_MissingColumn(t *testing.T) {
	path := writeRegistry(t, "Ladeeinrichtungs-ID;Postleitzahl\n1;10115\n")
	_, _, err := NewRegistryRepository(path).Stations(context.Background())
	var formatErr *tabular.FormatError
	if !errors.As(err, &formatErr) || !errors.Is(err, tabular.ErrMissingColumn) {
		t.Fatalf("expected missing column FormatError, got %v", err)
	}
}

func TestRegistryRepository_MemoizesDecodedRows(t *testing.T) {
	path := writeRegistry(t, registryFixture)
	repo := NewRegistryRepository(path, WithRegistryMemo(tabular.NewMemo(0)))
	if _, _, err := repo.Stations(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	stations, _, err := repo.Stations(context.Background())
	if err != nil {
		t.Fatalf("memoized load: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected memoized stations, got %d", len(stations))
	}
}
