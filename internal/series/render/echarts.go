package render

import (
	"bytes"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

// missingPoint is the ECharts placeholder for an empty data item; the line
// breaks there.
const missingPoint = "-"

const (
	chartWidth  template.CSS = "100%"
	chartHeight template.CSS = "600px"
)

// Line converts c into an ECharts line chart.
func Line(c *entity.Chart, pageTitle string) *charts.Line {
	line := charts.NewLine()

	xType := axisType(c)
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: pageTitle,
			Width:     string(chartWidth),
			Height:    string(chartHeight),
		}),
		charts.WithTitleOpts(opts.Title{
			Title: c.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: orientation(c.Layout.Legend.Orientation),
			Right:  "10",
			Top:    strconv.Itoa(c.Layout.Margin.Top),
			TextStyle: &opts.TextStyle{
				FontSize: c.Layout.Legend.FontSize,
			},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: c.XAxisTitle,
			Type: xType,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: c.YAxisTitle,
			Type: "value",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "inside",
			Start: 0,
			End:   100,
		}),
		charts.WithGridOpts(opts.Grid{
			Left:   strconv.Itoa(c.Layout.Margin.Left),
			Right:  strconv.Itoa(c.Layout.Margin.Right),
			Top:    strconv.Itoa(c.Layout.Margin.Top),
			Bottom: strconv.Itoa(c.Layout.Margin.Bottom),
		}),
	)

	if xType == "category" && len(c.Traces) > 0 {
		labels := make([]string, len(c.Traces[0].X))
		for i, x := range c.Traces[0].X {
			labels[i] = label(x)
		}
		line.SetXAxis(labels)
	}

	for _, tr := range c.Traces {
		line.AddSeries(tr.Name, lineData(tr, xType),
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol:   opts.Bool(false),
				ConnectNulls: opts.Bool(false),
			}),
		)
	}

	return line
}

// echartsAsset is the script go-echarts pages load by default.
const echartsAsset = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// chartPage embeds the option object in a script block. html/template writes
// it as escaped JSON, so text from uploaded files cannot end the script.
var chartPage = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Asset}}"></script>
</head>
<body>
{{.Header}}
<div class="container"><div class="item" id="{{.ID}}" style="width:{{.Width}};height:{{.Height}};"></div></div>
<script type="text/javascript">
"use strict";
let chart = echarts.init(document.getElementById({{.ID}}), "white", {renderer: "canvas"});
chart.setOption({{.Option}});
</script>
</body>
</html>
`))

type chartPageData struct {
	Title  string
	Asset  string
	Header template.HTML
	ID     string
	Width  template.CSS
	Height template.CSS
	Option map[string]any
}

// HTML writes the interactive chart page for c. header, when set, is placed
// at the top of the page body.
func HTML(w io.Writer, c *entity.Chart, pageTitle string, header template.HTML) error {
	line := Line(c, pageTitle)
	line.Validate()

	var buf bytes.Buffer
	err := chartPage.Execute(&buf, chartPageData{
		Title:  pageTitle,
		Asset:  echartsAsset,
		Header: header,
		ID:     "series_chart",
		Width:  chartWidth,
		Height: chartHeight,
		Option: line.JSON(),
	})
	if err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	return err
}

func axisType(c *entity.Chart) string {
	if len(c.Traces) == 0 {
		return "time"
	}
	switch c.Traces[0].XKind {
	case entity.KindTime:
		return "time"
	case entity.KindInt, entity.KindFloat:
		return "value"
	default:
		return "category"
	}
}

func orientation(o string) string {
	if o == "h" {
		return "horizontal"
	}
	return "vertical"
}

func lineData(tr entity.Trace, xType string) []opts.LineData {
	data := make([]opts.LineData, 0, len(tr.Y))
	var lastX any
	for i, v := range tr.Y {
		y := yValue(v)

		if xType == "category" {
			data = append(data, opts.LineData{Value: y})
			continue
		}

		x := xValue(tr.X[i])
		if x == nil {
			// Without a position the point cannot be drawn; break the line at
			// the previous one instead.
			if lastX != nil {
				data = append(data, opts.LineData{Value: []any{lastX, missingPoint}})
			}
			continue
		}
		lastX = x
		data = append(data, opts.LineData{Value: []any{x, y}})
	}
	return data
}

func xValue(v any) any {
	if ts, ok := entity.Time(v); ok {
		return ts.UnixMilli()
	}
	if f, ok := entity.Float(v); ok && !math.IsInf(f, 0) {
		return f
	}
	return nil
}

func yValue(v any) any {
	f, ok := entity.Float(v)
	if !ok || math.IsInf(f, 0) {
		return missingPoint
	}
	return f
}

func label(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		if ts, ok := entity.Time(v); ok {
			return ts.Format("2006-01-02 15:04:05")
		}
		if f, ok := entity.Float(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
