package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = "Proses ID,Proses Tipi,Emalın Səmərəliliyi (%),Emal Həcmi (ton),Enerji İstifadəsi (kWh),Energy_per_ton,Ətraf Mühitə Təsir (g CO2 ekvivalent),Əməliyyat Xərcləri (AZN),Təzyiq (bar),Temperatur (°C),Təhlükəsizlik Hadisələri\n" +
	"P1,Distillə,91.5,1200,54000,45,320.5,150000,12.5,380,0\n" +
	"P2,Krekinq,78.25,900,61000,67.8,410,210000,25,510,2\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoaderFirstCandidateWins(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "data.csv", sampleCSV)
	sub := writeFile(t, dir, "data/data.csv", sampleCSV+"P3,Krekinq,60,100,1000,10,100,1000,1,100,1\n")

	table, err := NewLoader([]string{root, sub}).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Source != root {
		t.Errorf("Source = %q, want %q", table.Source, root)
	}
	rows, cols := table.Shape()
	if rows != 2 || cols != 11 {
		t.Errorf("Shape() = (%d, %d), want (2, 11)", rows, cols)
	}
}

func TestLoaderFallsBackToSecondCandidate(t *testing.T) {
	dir := t.TempDir()
	sub := writeFile(t, dir, "data/data.csv", sampleCSV)

	table, err := NewLoader([]string{filepath.Join(dir, "data.csv"), sub}).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Source != sub {
		t.Errorf("Source = %q, want %q", table.Source, sub)
	}
}

func TestLoaderPaths(t *testing.T) {
	if got := NewLoader(nil).Paths(); len(got) != len(DefaultPaths) || got[0] != "data.csv" {
		t.Errorf("Paths() = %v, want defaults", got)
	}

	l := NewLoader([]string{"a.csv", "b.xlsx"})
	got := l.Paths()
	got[0] = "changed.csv"
	if again := l.Paths(); again[0] != "a.csv" || len(again) != 2 {
		t.Errorf("Paths() = %v, caller mutation leaked", again)
	}
}

func TestLoaderNoFile(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLoader([]string{filepath.Join(dir, "data.csv"), filepath.Join(dir, "data", "data.csv")}).Load()

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if len(loadErr.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(loadErr.Attempts))
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(err, ErrNotFound) = false")
	}
}

func TestLoaderMissingColumnFailsClosed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "Proses ID,Proses Tipi\nP1,A\n")

	_, err := NewLoader([]string{path}).Load()
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Load() error = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), ColEfficiency) {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestLoaderRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", sampleCSV+"P3,Krekinq\n")

	if _, err := NewLoader([]string{path}).Load(); err == nil {
		t.Fatal("Load() succeeded on a ragged csv")
	}
}

func TestLoaderStripsBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "\ufeff"+sampleCSV)

	table, err := NewLoader([]string{path}).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Header[0] != ColID {
		t.Errorf("Header[0] = %q, want %q", table.Header[0], ColID)
	}
}

func TestLoaderXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")

	f := excelize.NewFile()
	header := make([]interface{}, len(RequiredColumns))
	for i, c := range RequiredColumns {
		header[i] = c
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	row := []interface{}{"P1", "Distillə", 88.5, 1000, 50000, 50, 300, 120000, 10, 350, 1}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	table, err := NewLoader([]string{path}).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	recs, err := table.Records()
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Efficiency != 88.5 || recs[0].Incidents != 1 {
		t.Errorf("Records() = %+v", recs)
	}
}

func TestRecords(t *testing.T) {
	table, err := parseCSV("mem", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	recs, err := table.Records()
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	want := ProcessRecord{
		ID: "P2", Type: "Krekinq", Efficiency: 78.25, Volume: 900, Energy: 61000,
		EnergyPerTon: 67.8, Impact: 410, Cost: 210000, Pressure: 25, Temperature: 510, Incidents: 2,
	}
	if recs[1] != want {
		t.Errorf("Records()[1] = %+v, want %+v", recs[1], want)
	}
}

func TestRecordsFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"non-numeric efficiency", "P3,A,high,1,1,1,1,1,1,1,0", ColEfficiency},
		{"empty cost", "P3,A,50,1,1,1,1,,1,1,0", ColCost},
		{"fractional incidents", "P3,A,50,1,1,1,1,1,1,1,1.5", ColIncidents},
		{"nan volume", "P3,A,50,NaN,1,1,1,1,1,1,0", ColVolume},
		{"negative volume", "P3,A,50,-1,1,1,1,1,1,1,0", ColVolume},
		{"negative energy", "P3,A,50,1,-5,1,1,1,1,1,0", ColEnergy},
		{"negative impact", "P3,A,50,1,1,1,-0.5,1,1,1,0", ColImpact},
		{"negative cost", "P3,A,50,1,1,1,1,-100,1,1,0", ColCost},
		{"negative incidents", "P3,A,50,1,1,1,1,1,1,1,-1", ColIncidents},
		{"negative float incidents", "P3,A,50,1,1,1,1,1,1,1,-2.0", ColIncidents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := parseCSV("mem", strings.NewReader(sampleCSV+tt.row+"\n"))
			if err != nil {
				t.Fatalf("parseCSV: %v", err)
			}
			_, err = table.Records()
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("Records() error = %v, want *FieldError", err)
			}
			if fe.Row != 3 || fe.Column != tt.column {
				t.Errorf("FieldError = row %d column %q, want row 3 column %q", fe.Row, fe.Column, tt.column)
			}
		})
	}
}

func TestRecordsAcceptsFloatIncidents(t *testing.T) {
	table, err := parseCSV("mem", strings.NewReader(sampleCSV+"P3,A,50,1,1,1,1,1,1,1,3.0\n"))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	recs, err := table.Records()
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if recs[2].Incidents != 3 {
		t.Errorf("Incidents = %d, want 3", recs[2].Incidents)
	}
}

func TestRecordsAllowsNegativeTemperature(t *testing.T) {
	table, err := parseCSV("mem", strings.NewReader(sampleCSV+"P3,A,50,1,1,1,1,1,-0.5,-20,0\n"))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	recs, err := table.Records()
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if recs[2].Temperature != -20 || recs[2].Pressure != -0.5 {
		t.Errorf("Records()[2] = %+v", recs[2])
	}
}
