package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"

	"bankpivot/internal/core"
)

// ErrNothingToChart is returned when every displayed category is zero.
var ErrNothingToChart = errors.New("no category movement to chart")

// Chart renders a PNG bar chart of the displayed category totals.
type Chart struct {
	Path string
}

func (c Chart) Output() string { return c.Path }

func (c Chart) Render(_ context.Context, r *Report) error {
	graph, err := barChart(r)
	if err != nil {
		return err
	}
	err = writeFileAtomic(c.Path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
	if err != nil {
		return fmt.Errorf("render chart %s: %w", c.Path, err)
	}
	return nil
}

func barChart(r *Report) (*chart.BarChart, error) {
	bars := make([]chart.Value, 0, len(r.Columns))
	nonZero := false
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range r.Columns {
		total := s.Total().InexactFloat64()
		if total != 0 {
			nonZero = true
		}
		lo, hi = math.Min(lo, total), math.Max(hi, total)
		style := chart.Style{
			StrokeColor: chart.ColorRed,
			FillColor:   chart.ColorRed.WithAlpha(160),
		}
		if s.Income.GreaterThan(s.Outcome) {
			style.StrokeColor = chart.ColorGreen
			style.FillColor = chart.ColorGreen.WithAlpha(160)
		}
		bars = append(bars, chart.Value{Label: s.Category, Value: total, Style: style})
	}
	if !nonZero {
		return nil, ErrNothingToChart
	}

	width := 80 * len(bars)
	if width < 1024 {
		width = 1024
	}
	var yRange chart.Range
	if lo == hi {
		// go-chart refuses a zero-height axis; anchor equal bars at zero.
		yRange = &chart.ContinuousRange{Min: math.Min(0, lo), Max: math.Max(0, hi)}
	}
	return &chart.BarChart{
		Title:    r.Labels.CategoriesSheet,
		Width:    width,
		Height:   600,
		BarWidth: 50,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			Range: yRange,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return core.FormatMoney(decimal.NewFromFloat(f))
				}
				return ""
			},
		},
		Bars: bars,
	}, nil
}
