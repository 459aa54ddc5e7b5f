// Package chart renders analysis results as PNG charts.
package chart

import (
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"spckit/internal/analysis"
	"spckit/internal/errors"
)

const (
	width  = 1024
	height = 512

	barHalfWidth = 0.4
)

var (
	barColor       = drawing.ColorFromHex("1f77b4")
	cumulativeLine = drawing.ColorFromHex("d62728")
	limitColor     = drawing.ColorFromHex("d62728")
	meanColor      = drawing.ColorFromHex("2ca02c")
)

func lineStyle(col drawing.Color, dashed bool) gochart.Style {
	st := gochart.Style{StrokeColor: col, StrokeWidth: 2}
	if dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	return st
}

func dotStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotColor:    col,
		DotWidth:    5,
	}
}

// bars draws one filled rectangle per value centred on x = 0..n-1. The
// outline returns to zero between bars so the fill looks like columns.
func bars(name string, values []float64, col drawing.Color) gochart.ContinuousSeries {
	xs := make([]float64, 0, 4*len(values))
	ys := make([]float64, 0, 4*len(values))
	for i, v := range values {
		x := float64(i)
		xs = append(xs, x-barHalfWidth, x-barHalfWidth, x+barHalfWidth, x+barHalfWidth)
		ys = append(ys, 0, v, v, 0)
	}
	return gochart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: col,
			StrokeWidth: 1,
			FillColor:   col.WithAlpha(180),
		},
	}
}

func hline(name string, n int, y float64, style gochart.Style) gochart.ContinuousSeries {
	return gochart.ContinuousSeries{
		Name:    name,
		XValues: []float64{-barHalfWidth, float64(n-1) + barHalfWidth},
		YValues: []float64{y, y},
		Style:   style,
	}
}

func categoryAxis(name string, labels []string) gochart.XAxis {
	ticks := make([]gochart.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = gochart.Tick{Value: float64(i), Label: l}
	}
	return gochart.XAxis{
		Name:  name,
		Ticks: ticks,
		Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
	}
}

// valueRange spans every value with some headroom. Zero-height ranges are
// widened since the renderer rejects them.
func valueRange(fromZero bool, values ...float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if fromZero {
		lo = math.Min(lo, 0)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	if fromZero && lo == 0 {
		return &gochart.ContinuousRange{Min: 0, Max: hi + pad}
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func render(w io.Writer, ch gochart.Chart) error {
	ch.Width = width
	ch.Height = height
	ch.Background = gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return errors.Wrap(err, "render chart")
	}
	return nil
}

// Pareto draws ranked bars with the cumulative percentage on the secondary
// axis and the critical threshold as a dashed line.
func Pareto(w io.Writer, p *analysis.Pareto, threshold float64) error {
	if len(p.Rows) == 0 {
		return errors.EmptyTable("pareto has no categories")
	}
	labels := make([]string, len(p.Rows))
	values := make([]float64, len(p.Rows))
	xs := make([]float64, len(p.Rows))
	cumulative := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		labels[i] = r.Category
		values[i] = r.Value
		xs[i] = float64(i)
		cumulative[i] = r.CumulativePct
	}

	threshLine := hline("Critical "+strconv.FormatFloat(threshold, 'f', -1, 64)+"%", len(p.Rows), threshold, lineStyle(gochart.ColorAlternateGray, true))
	threshLine.YAxis = gochart.YAxisSecondary

	return render(w, gochart.Chart{
		Title: "Pareto: " + p.CategoryColumn,
		XAxis: categoryAxis(p.CategoryColumn, labels),
		YAxis: gochart.YAxis{Name: "value", Range: valueRange(true, values...)},
		YAxisSecondary: gochart.YAxis{
			Name:  "cumulative %",
			Range: &gochart.ContinuousRange{Min: 0, Max: 105},
		},
		Series: []gochart.Series{
			bars("value", values, barColor),
			gochart.ContinuousSeries{
				Name:    "cumulative %",
				XValues: xs,
				YValues: cumulative,
				YAxis:   gochart.YAxisSecondary,
				Style: gochart.Style{
					StrokeColor: cumulativeLine,
					StrokeWidth: 2,
					DotColor:    cumulativeLine,
					DotWidth:    4,
				},
			},
			threshLine,
		},
	})
}

// Control draws the samples against the mean and control limits; points
// outside the limits are highlighted.
func Control(w io.Writer, c *analysis.ControlChart) error {
	if len(c.Points) == 0 {
		return errors.EmptySeries(c.Variable)
	}
	xs := make([]float64, len(c.Points))
	ys := make([]float64, len(c.Points))
	var outX, outY []float64
	for i, p := range c.Points {
		xs[i] = float64(p.Index)
		ys[i] = p.Value
		if p.OutOfControl {
			outX = append(outX, xs[i])
			outY = append(outY, ys[i])
		}
	}
	first, last := xs[0], xs[len(xs)-1]
	if first == last {
		first, last = first-0.5, last+0.5
	}
	flat := func(name string, y float64, style gochart.Style) gochart.ContinuousSeries {
		return gochart.ContinuousSeries{Name: name, XValues: []float64{first, last}, YValues: []float64{y, y}, Style: style}
	}

	series := []gochart.Series{
		gochart.ContinuousSeries{Name: c.Variable, XValues: xs, YValues: ys, Style: gochart.Style{
			StrokeColor: barColor, StrokeWidth: 1.5, DotColor: barColor, DotWidth: 3,
		}},
		flat("Mean", c.Limits.Mean, lineStyle(meanColor, false)),
		flat("UCL", c.Limits.UpperLimit, lineStyle(limitColor, true)),
		flat("LCL", c.Limits.LowerLimit, lineStyle(limitColor, true)),
	}
	if len(outX) > 0 {
		series = append(series, gochart.ContinuousSeries{Name: "Out of control", XValues: outX, YValues: outY, Style: dotStyle(limitColor)})
	}

	all := append([]float64{c.Limits.UpperLimit, c.Limits.LowerLimit}, ys...)
	return render(w, gochart.Chart{
		Title:  "Control Chart: " + c.Variable,
		XAxis:  gochart.XAxis{Name: "row", Range: &gochart.ContinuousRange{Min: first, Max: last}},
		YAxis:  gochart.YAxis{Name: c.Variable, Range: valueRange(false, all...)},
		Series: series,
	})
}

// Histogram draws one bar per bin, labelled with the bin's lower edge.
func Histogram(w io.Writer, h *analysis.Histogram) error {
	if len(h.Bins) == 0 {
		return errors.EmptySeries(h.Variable)
	}
	labels := make([]string, len(h.Bins))
	counts := make([]float64, len(h.Bins))
	for i, b := range h.Bins {
		labels[i] = strconv.FormatFloat(b.Lower, 'g', 4, 64)
		counts[i] = float64(b.Count)
	}
	return render(w, gochart.Chart{
		Title: "Histogram: " + h.Variable,
		XAxis: categoryAxis(h.Variable, labels),
		YAxis: gochart.YAxis{Name: "frequency", Range: valueRange(true, counts...)},
		Series: []gochart.Series{
			bars("frequency", counts, barColor),
		},
	})
}

// DPMO draws the sigma reference DPMO as bars with the calculated DPMO as
// a horizontal line.
func DPMO(w io.Writer, r *analysis.DpmoResult) error {
	ref := analysis.SigmaReferenceTable()
	labels := make([]string, len(ref))
	values := make([]float64, len(ref))
	for i, s := range ref {
		labels[i] = s.Label
		values[i] = s.DPMO
	}
	return render(w, gochart.Chart{
		Title: "DPMO vs sigma reference",
		XAxis: categoryAxis("sigma level", labels),
		YAxis: gochart.YAxis{Name: "DPMO", Range: valueRange(true, append(values, r.DPMO)...)},
		Series: []gochart.Series{
			bars("reference DPMO", values, barColor),
			hline("calculated DPMO "+strconv.FormatFloat(r.DPMO, 'f', 2, 64), len(ref), r.DPMO, lineStyle(limitColor, true)),
		},
	})
}

// Stratification draws the mean of every group.
func Stratification(w io.Writer, s *analysis.StratumSummary) error {
	if len(s.Groups) == 0 {
		return errors.EmptySeries(s.NumericColumn)
	}
	labels := make([]string, len(s.Groups))
	means := make([]float64, len(s.Groups))
	for i, g := range s.Groups {
		labels[i] = g.Key
		means[i] = g.Mean
	}
	return render(w, gochart.Chart{
		Title: "Mean " + s.NumericColumn + " by " + s.CategoryColumn,
		XAxis: categoryAxis(s.CategoryColumn, labels),
		YAxis: gochart.YAxis{Name: "mean " + s.NumericColumn, Range: valueRange(true, means...)},
		Series: []gochart.Series{
			bars("mean", means, barColor),
		},
	})
}
