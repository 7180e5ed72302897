package render

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

var (
	ErrAxisNotTime      = errors.New("static charts need a time axis")
	ErrNotEnoughPoints  = errors.New("static charts need at least two points per line")
	ErrInvalidImageSize = errors.New("image size must be positive")
)

const pngTimeFormat = "2006-01-02 15:04"

// PNG draws c as a static line chart. Missing points are skipped and lines
// with fewer than two points are left out.
func PNG(w io.Writer, c *entity.Chart, width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidImageSize
	}
	if len(c.Traces) == 0 || c.Traces[0].XKind != entity.KindTime {
		return ErrAxisNotTime
	}

	series := make([]chart.Series, 0, len(c.Traces))
	for i, tr := range c.Traces {
		xs, ys := timePoints(tr)
		if len(xs) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
		})
	}
	if len(series) == 0 {
		return ErrNotEnoughPoints
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    c.Layout.Margin.Top,
				Left:   20,
				Right:  20,
				Bottom: c.Layout.Margin.Bottom,
			},
		},
		XAxis: chart.XAxis{
			Name:           c.XAxisTitle,
			ValueFormatter: chart.TimeValueFormatterWithFormat(pngTimeFormat),
		},
		YAxis: chart.YAxis{
			Name: c.YAxisTitle,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return graph.Render(chart.PNG, w)
}

func timePoints(tr entity.Trace) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(tr.X))
	ys := make([]float64, 0, len(tr.Y))
	for i, v := range tr.Y {
		ts, ok := entity.Time(tr.X[i])
		if !ok {
			continue
		}
		y, ok := entity.Float(v)
		if !ok || math.IsInf(y, 0) {
			continue
		}
		xs = append(xs, ts)
		ys = append(ys, y)
	}
	return xs, ys
}
