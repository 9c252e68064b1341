package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"process_bot/dataset"

	"github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	defaultWidth  = 1200
	defaultHeight = 800

	// pixels per inch of the gonum PNG canvas
	gonumDPI = 96

	minDotWidth = 3.0
	maxDotWidth = 15.0

	// scatter points beyond this count are not labelled with their process id
	maxAnnotatedPoints = 30
)

var barColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// PNGRenderer draws box plots and horizontal bars with gonum/plot, scatter
// plots and vertical bars with go-chart.
type PNGRenderer struct {
	Width  int
	Height int
	log    *logrus.Entry
}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{
		Width:  defaultWidth,
		Height: defaultHeight,
		log:    logrus.WithField("component", "charts"),
	}
}

func (r *PNGRenderer) Render(spec Spec) ([]byte, error) {
	var (
		img []byte
		err error
	)

	if spec.empty() {
		err = dataset.ErrEmpty
	} else {
		switch spec.Kind {
		case KindBox:
			img, err = r.boxPlot(spec)
		case KindHorizontalBar:
			img, err = r.horizontalBars(spec)
		case KindScatter:
			img, err = r.scatter(spec)
		case KindVerticalBar:
			img, err = r.verticalBars(spec)
		default:
			err = fmt.Errorf("unsupported chart kind %s", spec.Kind)
		}
	}

	if err != nil {
		r.log.WithError(err).WithField("chart", spec.Name).Error("❌ Chart rendering failed")
		return nil, &RenderError{Chart: spec.Name, Err: err}
	}

	r.log.WithFields(logrus.Fields{
		"chart": spec.Name,
		"kind":  spec.Kind.String(),
		"bytes": len(img),
	}).Debug("Chart rendered")
	return img, nil
}

func (s Spec) empty() bool {
	switch s.Kind {
	case KindBox:
		return len(s.Groups) == 0
	case KindScatter:
		return len(s.Points) == 0
	default:
		return len(s.Bars) == 0
	}
}

func (r *PNGRenderer) newPlot(spec Spec) *plot.Plot {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	return p
}

func (r *PNGRenderer) boxPlot(spec Spec) ([]byte, error) {
	p := r.newPlot(spec)

	names := make([]string, len(spec.Groups))
	for i, g := range spec.Groups {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", g.Label, err)
		}
		box.FillColor = barColor
		p.Add(box)
		names[i] = g.Label
	}
	p.NominalX(names...)

	return r.encodePlot(p)
}

func (r *PNGRenderer) horizontalBars(spec Spec) ([]byte, error) {
	p := r.newPlot(spec)

	values := make(plotter.Values, len(spec.Bars))
	names := make([]string, len(spec.Bars))
	for i, b := range spec.Bars {
		values[i] = b.Value
		names[i] = b.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("bars: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	return r.encodePlot(p)
}

func (r *PNGRenderer) encodePlot(p *plot.Plot) ([]byte, error) {
	w := vg.Length(r.Width) * vg.Inch / gonumDPI
	h := vg.Length(r.Height) * vg.Inch / gonumDPI

	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) verticalBars(spec Spec) ([]byte, error) {
	values := make([]chart.Value, len(spec.Bars))
	lo, hi := 0.0, 0.0
	for i, b := range spec.Bars {
		values[i] = chart.Value{Label: b.Label, Value: b.Value}
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}

	barWidth := (r.Width - 200) / (2 * len(values))
	barWidth = max(5, min(60, barWidth))

	graph := chart.BarChart{
		Title:      spec.Title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Bottom: 20}},
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth,
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.1},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) scatter(spec Spec) ([]byte, error) {
	sizeMin, sizeMax := math.Inf(1), math.Inf(-1)
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, pt := range spec.Points {
		sizeMin, sizeMax = math.Min(sizeMin, pt.Size), math.Max(sizeMax, pt.Size)
		xMin, xMax = math.Min(xMin, pt.X), math.Max(xMax, pt.X)
		yMin, yMax = math.Min(yMin, pt.Y), math.Max(yMax, pt.Y)
	}

	var (
		order  []string
		groups = map[string][]Point{}
	)
	for _, pt := range spec.Points {
		if _, ok := groups[pt.Group]; !ok {
			order = append(order, pt.Group)
		}
		groups[pt.Group] = append(groups[pt.Group], pt)
	}

	series := make([]chart.Series, 0, len(order)+1)
	for i, name := range order {
		pts := groups[name]
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		widths := make([]float64, len(pts))
		for j, pt := range pts {
			xs[j], ys[j] = pt.X, pt.Y
			widths[j] = dotWidth(pt.Size, sizeMin, sizeMax)
		}
		col := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				StrokeColor: col,
				DotColor:    col,
				DotWidth:    minDotWidth,
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return widths[index]
				},
			},
		})
	}

	if len(spec.Points) <= maxAnnotatedPoints {
		notes := make([]chart.Value2, 0, len(spec.Points))
		for _, pt := range spec.Points {
			notes = append(notes, chart.Value2{XValue: pt.X, YValue: pt.Y, Label: pt.ID})
		}
		series = append(series, chart.AnnotationSeries{Name: "Proses ID", Annotations: notes})
	}

	xLo, xHi := padRange(xMin, xMax)
	yLo, yHi := padRange(yMin, yMax)

	graph := chart.Chart{
		Title:      spec.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: &chart.ContinuousRange{Min: xLo, Max: xHi}},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: yLo, Max: yHi}},
		Series:     series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dotWidth scales a size value linearly into the dot width range.
func dotWidth(v, lo, hi float64) float64 {
	if hi <= lo {
		return (minDotWidth + maxDotWidth) / 2
	}
	return minDotWidth + (v-lo)/(hi-lo)*(maxDotWidth-minDotWidth)
}

// padRange widens [lo, hi] by 5% on each side and never returns an empty span.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
	}
	return lo - span*0.05, hi + span*0.05
}
