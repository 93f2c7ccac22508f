package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lcap17/proyect-viernes/engine"
)

// ============================================================================
// CHARTS — engine.ChartConfig → SVG
// ============================================================================
// go-chart draws vertical bars only; "barh" charts are drawn as bars with the
// same ordering. Multi-series bar charts are stacked.
// ============================================================================

const (
	chartWidth  = 720
	chartHeight = 360
	barWidth    = 32
	barSpacing  = 12
	chartMargin = 120
)

// ErrEmptyChart is returned for a chart without data points.
var ErrEmptyChart = errors.New("chart has no data")

// ChartSVG draws cfg as a standalone SVG document.
func ChartSVG(cfg *engine.ChartConfig) ([]byte, error) {
	if cfg == nil || len(cfg.Series) == 0 || len(cfg.Series[0].Data) == 0 {
		return nil, ErrEmptyChart
	}

	var buf bytes.Buffer
	var err error
	switch {
	case cfg.ChartType == "pie" || cfg.ChartType == "donut":
		err = pieChart(cfg).Render(chart.SVG, &buf)
	case cfg.ChartType == "line" || cfg.ChartType == "area":
		err = lineChart(cfg).Render(chart.SVG, &buf)
	case len(cfg.Series) > 1:
		err = stackedChart(cfg).Render(chart.SVG, &buf)
	default:
		err = barChart(cfg).Render(chart.SVG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("draw %s chart %q: %w", cfg.ChartType, cfg.Title, err)
	}
	return buf.Bytes(), nil
}

func barChart(cfg *engine.ChartConfig) chart.BarChart {
	points := cfg.Series[0].Data
	bars := make([]chart.Value, len(points))
	for i, p := range points {
		bars[i] = chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: fill(seriesColor(cfg, 0)),
		}
	}
	return chart.BarChart{
		Title:      cfg.Title,
		Width:      widthFor(len(bars)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}
}

// stackedChart draws one bar per label of the first series, with one
// segment per series.
func stackedChart(cfg *engine.ChartConfig) chart.StackedBarChart {
	labels := cfg.Series[0].Data
	bars := make([]chart.StackedBar, len(labels))
	for i, p := range labels {
		bar := chart.StackedBar{Name: p.Label, Width: barWidth}
		for s, series := range cfg.Series {
			bar.Values = append(bar.Values, chart.Value{
				Label: series.Name,
				Value: valueOf(series, p.Label),
				Style: fill(seriesColor(cfg, s)),
			})
		}
		bars[i] = bar
	}
	return chart.StackedBarChart{
		Title:      cfg.Title,
		Width:      widthFor(len(bars)),
		Height:     chartHeight,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}
}

func pieChart(cfg *engine.ChartConfig) chart.PieChart {
	points := cfg.Series[0].Data
	values := make([]chart.Value, 0, len(points))
	for _, p := range points {
		if p.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: p.Label, Value: p.Value})
	}
	return chart.PieChart{
		Title:  cfg.Title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
}

func lineChart(cfg *engine.ChartConfig) chart.Chart {
	labels := cfg.Series[0].Data
	ticks := make([]chart.Tick, len(labels))
	for i, p := range labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
	}

	var series []chart.Series
	for s, cs := range cfg.Series {
		xs := make([]float64, len(labels))
		ys := make([]float64, len(labels))
		for i, p := range labels {
			xs[i] = float64(i)
			ys[i] = valueOf(cs, p.Label)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    cs.Name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: seriesColor(cfg, s), StrokeWidth: 2},
		})
	}

	ch := chart.Chart{
		Title:      cfg.Title,
		Width:      widthFor(len(labels)),
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: cfg.XAxis, Ticks: ticks},
		YAxis:      chart.YAxis{Name: cfg.YAxis},
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func widthFor(n int) int {
	return max(chartWidth, n*(barWidth+barSpacing)+chartMargin)
}

func valueOf(s engine.ChartSeries, label string) float64 {
	for _, p := range s.Data {
		if p.Label == label {
			return p.Value
		}
	}
	return 0
}

func seriesColor(cfg *engine.ChartConfig, i int) drawing.Color {
	hex := ""
	switch {
	case i < len(cfg.Series) && cfg.Series[i].Color != "":
		hex = cfg.Series[i].Color
	case i < len(cfg.Colors):
		hex = cfg.Colors[i]
	default:
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func fill(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}
