// Package report computes the aggregate process summary and renders it as
// the fixed Azerbaijani text report sent to the chat.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"process_bot/dataset"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RankSize is the number of processes listed in the top and bottom rankings.
const RankSize = 3

// TypeEfficiency is the mean efficiency of one process type.
type TypeEfficiency struct {
	Type string
	Mean float64
}

type Summary struct {
	TotalProcesses  int
	ProcessTypes    int
	AvgEfficiency   float64
	TotalEnergy     float64
	TotalCost       float64
	AvgImpact       float64
	MaxVolume       float64
	SafetyIncidents int

	Top    []dataset.ProcessRecord
	Bottom []dataset.ProcessRecord
	Best   TypeEfficiency
}

// Summarize computes the summary over every record of the table.
func Summarize(t *dataset.Table) (*Summary, error) {
	records, err := t.Records()
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	return FromRecords(records)
}

// FromRecords computes the summary over already parsed records.
func FromRecords(records []dataset.ProcessRecord) (*Summary, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("summarize: %w", dataset.ErrEmpty)
	}

	s := &Summary{
		TotalProcesses: len(records),
		MaxVolume:      math.Inf(-1),
	}

	var effSum, impactSum float64
	for _, r := range records {
		effSum += r.Efficiency
		impactSum += r.Impact
		s.TotalEnergy += r.Energy
		s.TotalCost += r.Cost
		s.SafetyIncidents += r.Incidents
		if r.Volume > s.MaxVolume {
			s.MaxVolume = r.Volume
		}
	}
	n := float64(len(records))
	s.AvgEfficiency = effSum / n
	s.AvgImpact = impactSum / n

	byType := MeanEfficiencyByType(records)
	s.ProcessTypes = len(byType)
	s.Best = byType[0]
	for _, te := range byType[1:] {
		if te.Mean > s.Best.Mean {
			s.Best = te
		}
	}

	desc := append([]dataset.ProcessRecord(nil), records...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Efficiency > desc[j].Efficiency })
	asc := append([]dataset.ProcessRecord(nil), records...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Efficiency < asc[j].Efficiency })

	s.Top = desc[:min(RankSize, len(desc))]
	s.Bottom = asc[:min(RankSize, len(asc))]

	return s, nil
}

// MeanEfficiencyByType groups records by process type in first-seen order.
func MeanEfficiencyByType(records []dataset.ProcessRecord) []TypeEfficiency {
	var order []string
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if _, ok := counts[r.Type]; !ok {
			order = append(order, r.Type)
		}
		sums[r.Type] += r.Efficiency
		counts[r.Type]++
	}

	out := make([]TypeEfficiency, 0, len(order))
	for _, typ := range order {
		out = append(out, TypeEfficiency{Type: typ, Mean: sums[typ] / float64(counts[typ])})
	}
	return out
}

var printer = message.NewPrinter(language.English)

// Text renders the summary with the fixed report template.
func (s *Summary) Text() string {
	var b strings.Builder

	b.WriteString("Ümumi Məlumat Təhlili:\n")
	fmt.Fprintf(&b, "- Ümumi proses sayı: %d\n", s.TotalProcesses)
	fmt.Fprintf(&b, "- Fərqli proses tipləri: %d\n", s.ProcessTypes)
	fmt.Fprintf(&b, "- Ortalama emal səmərəliliyi: %s%%\n", Percent(s.AvgEfficiency))
	fmt.Fprintf(&b, "- Ümumi enerji istifadəsi: %s kWh\n", Amount(s.TotalEnergy))
	fmt.Fprintf(&b, "- Ümumi əməliyyat xərcləri: %s AZN\n", Amount(s.TotalCost))
	fmt.Fprintf(&b, "- Ortalama CO2 emissiyası: %s g\n", printer.Sprintf("%.2f", s.AvgImpact))
	fmt.Fprintf(&b, "- Maksimum emal həcmi: %s ton\n", Amount(s.MaxVolume))
	fmt.Fprintf(&b, "- Qeydə alınmış təhlükəsizlik hadisələri: %d\n", s.SafetyIncidents)

	b.WriteString("\nƏn Yüksək Səmərəliliyə Malik Proseslər:\n")
	writeRanking(&b, s.Top)

	b.WriteString("\nƏn Aşağı Səmərəliliyə Malik Proseslər:\n")
	writeRanking(&b, s.Bottom)

	fmt.Fprintf(&b, "\nƏn Səmərəli Proses Tipi: %s (Ortalama %s%%)", s.Best.Type, Percent(s.Best.Mean))

	return b.String()
}

func writeRanking(b *strings.Builder, records []dataset.ProcessRecord) {
	for _, r := range records {
		fmt.Fprintf(b, "- Proses ID: %s, Tipi: %s, Səmərəlilik: %s%%\n", r.ID, r.Type, Percent(r.Efficiency))
	}
}

// Percent formats a percentage with two decimals.
func Percent(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Amount formats a total with thousands separators, keeping decimals only
// when the value is fractional.
func Amount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}
