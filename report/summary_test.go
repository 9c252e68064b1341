package report

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"process_bot/dataset"
)

func rec(id, typ string, eff float64) dataset.ProcessRecord {
	return dataset.ProcessRecord{
		ID: id, Type: typ, Efficiency: eff,
		Volume: 100, Energy: 1000, EnergyPerTon: 10, Impact: 50, Cost: 2000,
		Pressure: 5, Temperature: 200, Incidents: 1,
	}
}

func table(records ...dataset.ProcessRecord) *dataset.Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID, r.Type,
			fmt.Sprint(r.Efficiency), fmt.Sprint(r.Volume), fmt.Sprint(r.Energy),
			fmt.Sprint(r.EnergyPerTon), fmt.Sprint(r.Impact), fmt.Sprint(r.Cost),
			fmt.Sprint(r.Pressure), fmt.Sprint(r.Temperature), fmt.Sprint(r.Incidents),
		})
	}
	return dataset.NewTable("mem", dataset.RequiredColumns, rows)
}

func TestSummarizeScenario(t *testing.T) {
	tbl := table(
		rec("P1", "A", 80),
		rec("P2", "A", 90),
		rec("P3", "B", 50),
		rec("P4", "A", 80),
		rec("P5", "A", 90),
	)

	s, err := Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if s.TotalProcesses != 5 {
		t.Errorf("TotalProcesses = %d, want 5", s.TotalProcesses)
	}
	if s.ProcessTypes != 2 {
		t.Errorf("ProcessTypes = %d, want 2", s.ProcessTypes)
	}
	if want := (80.0 + 90 + 50 + 80 + 90) / 5; s.AvgEfficiency != want {
		t.Errorf("AvgEfficiency = %v, want %v", s.AvgEfficiency, want)
	}
	if s.Best.Type != "A" || s.Best.Mean != 85 {
		t.Errorf("Best = %+v, want A with mean 85", s.Best)
	}
	if s.TotalEnergy != 5000 || s.TotalCost != 10000 || s.SafetyIncidents != 5 {
		t.Errorf("totals = energy %v cost %v incidents %d", s.TotalEnergy, s.TotalCost, s.SafetyIncidents)
	}

	text := s.Text()
	for _, want := range []string{
		"- Ümumi proses sayı: 5\n",
		"- Fərqli proses tipləri: 2\n",
		"- Ortalama emal səmərəliliyi: 78.00%\n",
		"- Ümumi enerji istifadəsi: 5,000 kWh\n",
		"- Ümumi əməliyyat xərcləri: 10,000 AZN\n",
		"- Ortalama CO2 emissiyası: 50.00 g\n",
		"Ən Səmərəli Proses Tipi: A (Ortalama 85.00%)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q\n%s", want, text)
		}
	}
}

func TestRankingsAreStable(t *testing.T) {
	s, err := FromRecords([]dataset.ProcessRecord{
		rec("P1", "A", 70),
		rec("P2", "A", 90),
		rec("P3", "B", 70),
		rec("P4", "B", 90),
		rec("P5", "C", 60),
	})
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}

	ids := func(rs []dataset.ProcessRecord) string {
		var out []string
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return strings.Join(out, ",")
	}
	if got := ids(s.Top); got != "P2,P4,P1" {
		t.Errorf("Top = %s, want P2,P4,P1", got)
	}
	if got := ids(s.Bottom); got != "P5,P1,P3" {
		t.Errorf("Bottom = %s, want P5,P1,P3", got)
	}
}

func TestRankingSizes(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"single record", 1, 1},
		{"two records", 2, 2},
		{"three records", 3, 3},
		{"many records", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []dataset.ProcessRecord
			for i := 0; i < tt.n; i++ {
				records = append(records, rec(fmt.Sprintf("P%d", i), "A", float64(50+i)))
			}
			s, err := FromRecords(records)
			if err != nil {
				t.Fatalf("FromRecords() error = %v", err)
			}
			if len(s.Top) != tt.want || len(s.Bottom) != tt.want {
				t.Errorf("len(Top)=%d len(Bottom)=%d, want %d", len(s.Top), len(s.Bottom), tt.want)
			}
			if got := strings.Count(s.Text(), "- Proses ID:"); got != 2*tt.want {
				t.Errorf("ranking lines = %d, want %d", got, 2*tt.want)
			}
		})
	}
}

func TestBestTypeTieGoesToFirstSeen(t *testing.T) {
	s, err := FromRecords([]dataset.ProcessRecord{
		rec("P1", "B", 80),
		rec("P2", "A", 80),
		rec("P3", "C", 40),
	})
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	if s.Best.Type != "B" {
		t.Errorf("Best.Type = %q, want B", s.Best.Type)
	}
}

func TestTextIsIdempotent(t *testing.T) {
	tbl := table(rec("P1", "A", 81.234), rec("P2", "B", 66.6))

	first, err := Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	second, err := Summarize(tbl)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if first.Text() != second.Text() {
		t.Error("Summarize() is not idempotent")
	}
	if first.Text() != first.Text() {
		t.Error("Text() is not deterministic")
	}
}

func TestSummarizeErrors(t *testing.T) {
	if _, err := Summarize(table()); !errors.Is(err, dataset.ErrEmpty) {
		t.Errorf("empty table error = %v, want ErrEmpty", err)
	}

	bad := dataset.NewTable("mem", dataset.RequiredColumns[:3], [][]string{{"P1", "A", "80"}})
	if _, err := Summarize(bad); !errors.Is(err, dataset.ErrMissingColumn) {
		t.Errorf("missing column error = %v, want ErrMissingColumn", err)
	}

	tbl := table(rec("P1", "A", 80))
	tbl.Rows[0][2] = "n/a"
	var fe *dataset.FieldError
	if _, err := Summarize(tbl); !errors.As(err, &fe) {
		t.Errorf("bad cell error = %v, want *FieldError", err)
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1234567, "1,234,567"},
		{1234.5, "1,234.50"},
		{999, "999"},
	}
	for _, tt := range tests {
		if got := Amount(tt.in); got != tt.want {
			t.Errorf("Amount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
