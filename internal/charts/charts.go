// Package charts renders the category breakdown image attached to reports.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"expensesbot/internal/model"
)

type ChartGenerator struct{}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// CategoryBreakdown renders a pie chart of per-category spend as PNG.
// Returns nil bytes when there is nothing to draw.
func (g *ChartGenerator) CategoryBreakdown(totals []model.CategoryTotal) ([]byte, error) {
	if len(totals) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		// go-chart wants float values; this is display only, the exact
		// decimal totals stay in the report text.
		amount, _ := t.Total.Float64()
		if amount <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", t.Category.Title(), t.Total.StringFixed(2)),
			Value: amount,
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Width:  600,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    25,
				Left:   25,
				Right:  25,
				Bottom: 25,
			},
			FillColor: chart.ColorWhite,
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category breakdown: %w", err)
	}
	return buf.Bytes(), nil
}
