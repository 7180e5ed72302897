package inbound

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/usecase"
)

type Column struct {
	Name string            `json:"name"`
	Kind entity.ColumnKind `json:"kind"`
}

type UploadResponse struct {
	UploadID         string    `json:"upload_id"`
	FileName         string    `json:"file_name"`
	Format           string    `json:"format"`
	Columns          []Column  `json:"columns"`
	Rows             int       `json:"rows"`
	Selectable       []string  `json:"selectable"`
	DefaultSelection []string  `json:"default_selection"`
	ExpiresAt        time.Time `json:"expires_at"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusCreated
}

func (UploadResponse) Message() string {
	return "upload normalized"
}

type TableResponse struct {
	UploadID string   `json:"upload_id"`
	FileName string   `json:"file_name"`
	Columns  []Column `json:"columns"`
	Rows     [][]any  `json:"rows"`
	page     int
	pageSize int
	total    int
}

func (r TableResponse) Meta() map[string]any {
	return map[string]any{
		"page":      r.page,
		"page_size": r.pageSize,
		"total":     r.total,
	}
}

type Trace struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
	X    []any  `json:"x"`
	Y    []any  `json:"y"`
}

type Legend struct {
	Orientation string  `json:"orientation"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	FontSize    int     `json:"font_size"`
}

type Margin struct {
	Left   int `json:"l"`
	Right  int `json:"r"`
	Top    int `json:"t"`
	Bottom int `json:"b"`
}

type Chart struct {
	Title      string  `json:"title"`
	XAxisTitle string  `json:"x_axis_title"`
	YAxisTitle string  `json:"y_axis_title"`
	Traces     []Trace `json:"traces"`
	Legend     Legend  `json:"legend"`
	Margin     Margin  `json:"margin"`
}

type ChartResponse struct {
	UploadID   string   `json:"upload_id"`
	Selectable []string `json:"selectable"`
	Selected   []string `json:"selected"`
	Chart      *Chart   `json:"chart"`
	Warning    string   `json:"warning,omitempty"`
}

// pngImage is a rendered chart image sent as is.
type pngImage struct {
	data []byte
}

func (pngImage) ContentType() string {
	return "image/png"
}

func (p pngImage) Render(w io.Writer) error {
	_, err := io.Copy(w, bytes.NewReader(p.data))
	return err
}

func toColumns(infos []usecase.ColumnInfo) []Column {
	cols := make([]Column, len(infos))
	for i, c := range infos {
		cols[i] = Column{Name: c.Name, Kind: c.Kind}
	}
	return cols
}

func toHTTPChart(res usecase.ChartResult) ChartResponse {
	resp := ChartResponse{
		UploadID:   res.UploadID,
		Selectable: res.Selectable,
		Selected:   res.Selected,
		Warning:    res.Warning,
	}
	if res.Chart == nil {
		return resp
	}

	c := res.Chart
	traces := make([]Trace, len(c.Traces))
	for i, tr := range c.Traces {
		traces[i] = Trace{
			Name: tr.Name,
			Mode: string(tr.Mode),
			X:    jsonValues(tr.X),
			Y:    jsonValues(tr.Y),
		}
	}

	resp.Chart = &Chart{
		Title:      c.Title,
		XAxisTitle: c.XAxisTitle,
		YAxisTitle: c.YAxisTitle,
		Traces:     traces,
		Legend: Legend{
			Orientation: c.Layout.Legend.Orientation,
			X:           c.Layout.Legend.X,
			Y:           c.Layout.Legend.Y,
			FontSize:    c.Layout.Legend.FontSize,
		},
		Margin: Margin{
			Left:   c.Layout.Margin.Left,
			Right:  c.Layout.Margin.Right,
			Top:    c.Layout.Margin.Top,
			Bottom: c.Layout.Margin.Bottom,
		},
	}
	return resp
}

func jsonValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = jsonValue(v)
	}
	return out
}

// jsonValue makes a cell encodable: NaN and infinities become null and
// timestamps are written as RFC 3339 text.
func jsonValue(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}
