package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column labels as they appear in the header row of the process data file.
const (
	ColID           = "Proses ID"
	ColType         = "Proses Tipi"
	ColEfficiency   = "Emalın Səmərəliliyi (%)"
	ColVolume       = "Emal Həcmi (ton)"
	ColEnergy       = "Enerji İstifadəsi (kWh)"
	ColEnergyPerTon = "Energy_per_ton"
	ColImpact       = "Ətraf Mühitə Təsir (g CO2 ekvivalent)"
	ColCost         = "Əməliyyat Xərcləri (AZN)"
	ColPressure     = "Təzyiq (bar)"
	ColTemperature  = "Temperatur (°C)"
	ColIncidents    = "Təhlükəsizlik Hadisələri"
)

// RequiredColumns lists every column a process data file must carry.
var RequiredColumns = []string{
	ColID, ColType, ColEfficiency, ColVolume, ColEnergy, ColEnergyPerTon,
	ColImpact, ColCost, ColPressure, ColTemperature, ColIncidents,
}

var (
	ErrNotFound      = errors.New("data file not found")
	ErrMissingColumn = errors.New("required column missing")
	ErrEmpty         = errors.New("dataset has no records")

	errNotFinite = errors.New("value is not a finite number")
	errNegative  = errors.New("value must not be negative")
)

// FieldError reports a cell that could not be converted to its column type.
type FieldError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d, column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ProcessRecord is one processing event of the dataset.
type ProcessRecord struct {
	ID           string
	Type         string
	Efficiency   float64
	Volume       float64
	Energy       float64
	EnergyPerTon float64
	Impact       float64
	Cost         float64
	Pressure     float64
	Temperature  float64
	Incidents    int
}

// Table is a loaded data file: header plus raw string rows in file order.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
}

// NewTable builds a table from a header and rows, e.g. for tests or in-memory sources.
func NewTable(source string, header []string, rows [][]string) *Table {
	return &Table{Source: source, Header: header, Rows: rows}
}

// Shape returns the number of data rows and columns.
func (t *Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Header)
}

// Index returns the position of a column label, or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Validate checks that every required column is present.
func (t *Table) Validate() error {
	var missing []string
	for _, col := range RequiredColumns {
		if t.Index(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Records converts every row into a ProcessRecord. It fails on the first
// missing column or unparsable cell instead of skipping the row.
func (t *Table) Records() ([]ProcessRecord, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		idx[col] = t.Index(col)
	}

	records := make([]ProcessRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		p := rowParser{row: row, n: i + 1, idx: idx}
		rec := ProcessRecord{
			ID:           p.text(ColID),
			Type:         p.text(ColType),
			Efficiency:   p.number(ColEfficiency),
			Volume:       p.quantity(ColVolume),
			Energy:       p.quantity(ColEnergy),
			EnergyPerTon: p.number(ColEnergyPerTon),
			Impact:       p.quantity(ColImpact),
			Cost:         p.quantity(ColCost),
			Pressure:     p.number(ColPressure),
			Temperature:  p.number(ColTemperature),
			Incidents:    p.count(ColIncidents),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, rec)
	}

	return records, nil
}

// rowParser keeps the first conversion error of a row.
type rowParser struct {
	row []string
	n   int
	idx map[string]int
	err error
}

func (p *rowParser) cell(col string) string {
	i := p.idx[col]
	if i < 0 || i >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *rowParser) text(col string) string {
	return p.cell(col)
}

func (p *rowParser) number(col string) float64 {
	if p.err != nil {
		return 0
	}
	raw := p.cell(col)
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errNotFinite
	}
	if err != nil {
		p.err = &FieldError{Row: p.n, Column: col, Value: raw, Err: err}
		return 0
	}
	return v
}

// quantity is a number that must not be negative.
func (p *rowParser) quantity(col string) float64 {
	v := p.number(col)
	if p.err == nil && v < 0 {
		p.err = &FieldError{Row: p.n, Column: col, Value: p.cell(col), Err: errNegative}
		return 0
	}
	return v
}

func (p *rowParser) count(col string) int {
	if p.err != nil {
		return 0
	}
	raw := p.cell(col)
	v, err := strconv.Atoi(raw)
	if err != nil {
		// spreadsheets store counts as floats ("3.0")
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			p.err = &FieldError{Row: p.n, Column: col, Value: raw, Err: err}
			return 0
		}
		v = int(f)
	}
	if v < 0 {
		p.err = &FieldError{Row: p.n, Column: col, Value: raw, Err: errNegative}
		return 0
	}
	return v
}
