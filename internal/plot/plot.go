// Package plot renders per-run curve overlays as PNG files. Rendering is
// best-effort: callers log failures and continue writing reports.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"dpcretl/internal/curves"
	"dpcretl/internal/fileutil"
)

// ErrNoData indicates no well had enough points to draw.
var ErrNoData = errors.New("no plottable series")

// Options sizes the rendered image.
type Options struct {
	Width  int
	Height int
}

// FileName returns the artifact name for a curve kind's plot.
func FileName(kind curves.Kind) string {
	if kind == curves.KindAmplification {
		return "amplification_curve.png"
	}
	return "melt_curve.png"
}

// Render draws one overlay figure for the given curve kind, one series per
// well, and writes it to path. Melt curves plot the fluorescence derivative
// against temperature; amplification curves plot delta Rn against cycle.
func Render(path string, kind curves.Kind, readings []curves.Reading, opts Options) error {
	series := buildSeries(kind, readings)
	if len(series) == 0 {
		return ErrNoData
	}

	graph := chart.Chart{
		Width:  opts.Width,
		Height: opts.Height,
		Title:  chartTitle(kind),
		XAxis: chart.XAxis{
			Name: kind.XLabel(),
		},
		YAxis: chart.YAxis{
			Name: yLabel(kind),
		},
		Series: series,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return fmt.Errorf("render %s: %w", FileName(kind), err)
	}
	return fileutil.WriteFileAtomic(path, buffer.Bytes(), 0o644)
}

func buildSeries(kind curves.Kind, readings []curves.Reading) []chart.Series {
	grouped := curves.ByWell(readings)
	wells := make([]string, 0, len(grouped))
	for well := range grouped {
		wells = append(wells, well)
	}
	sort.Strings(wells)

	var series []chart.Series
	for _, well := range wells {
		points := append([]curves.Reading(nil), grouped[well]...)
		// go-chart refuses single-point series.
		if len(points) < 2 {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })

		xs := make([]float64, 0, len(points))
		ys := make([]float64, 0, len(points))
		for _, p := range points {
			xs = append(xs, p.X)
			ys = append(ys, yValue(kind, p))
		}
		name := points[0].WellPosition
		if name == "" {
			name = well
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
		})
	}
	return series
}

func yValue(kind curves.Kind, r curves.Reading) float64 {
	if kind == curves.KindMelt {
		return r.Aux
	}
	return r.Value
}

func yLabel(kind curves.Kind) string {
	if kind == curves.KindMelt {
		return "Derivative"
	}
	return "Delta Rn"
}

func chartTitle(kind curves.Kind) string {
	if kind == curves.KindAmplification {
		return "Amplification Curves"
	}
	return "Melt Curves"
}
