package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// DefaultPaths are tried in order when no explicit candidates are configured.
var DefaultPaths = []string{
	"data.csv",
	filepath.Join("data", "data.csv"),
	"data.xlsx",
	filepath.Join("data", "data.xlsx"),
}

// Attempt records why a single candidate path was rejected.
type Attempt struct {
	Path string
	Err  error
}

// LoadError is returned when no candidate path produced a usable table.
type LoadError struct {
	Attempts []Attempt
}

func (e *LoadError) Error() string {
	if len(e.Attempts) == 0 {
		return "could not load data: no candidate paths"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Path, a.Err))
	}
	return "could not load data: " + strings.Join(parts, "; ")
}

// Unwrap exposes every attempt error so errors.Is(err, ErrNotFound) works.
func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

type Loader struct {
	paths []string
	log   *logrus.Entry
}

// NewLoader creates a loader over the given candidate paths; an empty list
// falls back to DefaultPaths.
func NewLoader(paths []string) *Loader {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	return &Loader{
		paths: paths,
		log:   logrus.WithField("component", "dataset"),
	}
}

// Paths returns the candidate paths in the order they are tried.
func (l *Loader) Paths() []string {
	return append([]string(nil), l.paths...)
}

// Load reads the first candidate that exists, parses and has every required
// column. The file is re-read on every call.
func (l *Loader) Load() (*Table, error) {
	loadErr := &LoadError{}

	for _, path := range l.paths {
		table, err := readTable(path)
		if err == nil {
			err = table.Validate()
		}
		if err != nil {
			l.log.WithError(err).WithField("path", path).Warn("Failed to load data candidate")
			loadErr.Attempts = append(loadErr.Attempts, Attempt{Path: path, Err: err})
			continue
		}

		rows, cols := table.Shape()
		l.log.WithFields(logrus.Fields{
			"path":    path,
			"rows":    rows,
			"columns": cols,
		}).Info("Data loaded")
		return table, nil
	}

	if wd, err := os.Getwd(); err == nil {
		l.log.WithField("cwd", wd).Error("❌ Could not find a usable data file in any location")
	}
	return nil, loadErr
}

func readTable(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}
	return readCSV(path)
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseCSV(path, f)
}

func parseCSV(source string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv read: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}

	header := cleanHeader(records[0])
	return NewTable(source, header, records[1:]), nil
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx read: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx has no header row")
	}

	header := cleanHeader(rows[0])
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows drops trailing empty cells
		for len(row) < len(header) {
			row = append(row, "")
		}
		data = append(data, row)
	}
	return NewTable(path, header, data), nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
