// Package charts turns a process table into backend-neutral chart specs and
// renders them to PNG.
package charts

import (
	"errors"
	"fmt"
	"sort"

	"process_bot/dataset"
)

type Kind int

const (
	KindBox Kind = iota
	KindScatter
	KindHorizontalBar
	KindVerticalBar
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindScatter:
		return "scatter"
	case KindHorizontalBar:
		return "hbar"
	case KindVerticalBar:
		return "vbar"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Group is one category of a box plot.
type Group struct {
	Label  string
	Values []float64
}

// Bar is one labelled bar.
type Bar struct {
	Label string
	Value float64
}

// Point is one scatter point. Size is the raw value the dot width is scaled from.
type Point struct {
	X, Y        float64
	Size        float64
	Group       string
	ID          string
	Pressure    float64
	Temperature float64
}

// Spec describes a chart independently of the plotting backend.
type Spec struct {
	Name   string
	Kind   Kind
	Title  string
	XLabel string
	YLabel string
	Groups []Group
	Bars   []Bar
	Points []Point
}

// RenderError is returned for any chart that cannot be produced.
type RenderError struct {
	Chart string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s chart: %v", e.Chart, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Builder derives a chart spec from a table.
type Builder func(t *dataset.Table) (Spec, error)

// Renderer encodes a spec as an image.
type Renderer interface {
	Render(spec Spec) ([]byte, error)
}

// Draw builds the spec and renders it, wrapping every failure in a RenderError.
func Draw(r Renderer, build Builder, t *dataset.Table) ([]byte, Spec, error) {
	spec, err := build(t)
	if err != nil {
		return nil, spec, err
	}
	img, err := r.Render(spec)
	if err != nil {
		var re *RenderError
		if !errors.As(err, &re) {
			err = &RenderError{Chart: spec.Name, Err: err}
		}
		return nil, spec, err
	}
	return img, spec, nil
}

func records(name string, t *dataset.Table) ([]dataset.ProcessRecord, error) {
	recs, err := t.Records()
	if err != nil {
		return nil, &RenderError{Chart: name, Err: err}
	}
	if len(recs) == 0 {
		return nil, &RenderError{Chart: name, Err: dataset.ErrEmpty}
	}
	return recs, nil
}

// Efficiency is the distribution of efficiency per process type.
func Efficiency(t *dataset.Table) (Spec, error) {
	const name = "efficiency"
	recs, err := records(name, t)
	if err != nil {
		return Spec{Name: name}, err
	}

	var groups []Group
	pos := map[string]int{}
	for _, r := range recs {
		i, ok := pos[r.Type]
		if !ok {
			i = len(groups)
			pos[r.Type] = i
			groups = append(groups, Group{Label: r.Type})
		}
		groups[i].Values = append(groups[i].Values, r.Efficiency)
	}

	return Spec{
		Name:   name,
		Kind:   KindBox,
		Title:  "Proses Tipinə görə Emal Səmərəliliyi",
		XLabel: dataset.ColType,
		YLabel: dataset.ColEfficiency,
		Groups: groups,
	}, nil
}

// Energy relates processing volume to energy usage.
func Energy(t *dataset.Table) (Spec, error) {
	const name = "energy"
	recs, err := records(name, t)
	if err != nil {
		return Spec{Name: name}, err
	}

	points := make([]Point, 0, len(recs))
	for _, r := range recs {
		points = append(points, Point{
			X:           r.Volume,
			Y:           r.Energy,
			Size:        r.EnergyPerTon,
			Group:       r.Type,
			ID:          r.ID,
			Pressure:    r.Pressure,
			Temperature: r.Temperature,
		})
	}

	return Spec{
		Name:   name,
		Kind:   KindScatter,
		Title:  "Emal Həcmi və Enerji İstifadəsi Arasında Əlaqə",
		XLabel: dataset.ColVolume,
		YLabel: dataset.ColEnergy,
		Points: points,
	}, nil
}

// Environmental is the mean CO2 impact per process type, highest first.
func Environmental(t *dataset.Table) (Spec, error) {
	const name = "environmental"
	recs, err := records(name, t)
	if err != nil {
		return Spec{Name: name}, err
	}

	bars := aggregate(recs, func(r dataset.ProcessRecord) float64 { return r.Impact }, true)
	sortDesc(bars)

	return Spec{
		Name:   name,
		Kind:   KindHorizontalBar,
		Title:  "Proses Tipinə görə Ortalama CO2 Emissiyası",
		XLabel: "CO2 Emissiyası (g)",
		YLabel: dataset.ColType,
		Bars:   bars,
	}, nil
}

// Cost is the total operational cost per process type in thousands, highest first.
func Cost(t *dataset.Table) (Spec, error) {
	const name = "cost"
	recs, err := records(name, t)
	if err != nil {
		return Spec{Name: name}, err
	}

	bars := aggregate(recs, func(r dataset.ProcessRecord) float64 { return r.Cost }, false)
	for i := range bars {
		bars[i].Value /= 1000
	}
	sortDesc(bars)

	return Spec{
		Name:   name,
		Kind:   KindVerticalBar,
		Title:  "Proses Tipinə görə Ümumi Əməliyyat Xərcləri",
		XLabel: dataset.ColType,
		YLabel: "Əməliyyat Xərcləri (Min AZN)",
		Bars:   bars,
	}, nil
}

// aggregate sums (or averages) a field per type in first-seen order.
func aggregate(recs []dataset.ProcessRecord, field func(dataset.ProcessRecord) float64, mean bool) []Bar {
	var bars []Bar
	counts := []int{}
	pos := map[string]int{}
	for _, r := range recs {
		i, ok := pos[r.Type]
		if !ok {
			i = len(bars)
			pos[r.Type] = i
			bars = append(bars, Bar{Label: r.Type})
			counts = append(counts, 0)
		}
		bars[i].Value += field(r)
		counts[i]++
	}
	if mean {
		for i := range bars {
			bars[i].Value /= float64(counts[i])
		}
	}
	return bars
}

func sortDesc(bars []Bar) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Value > bars[j].Value })
}
