package inbound

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/render"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/usecase"
)

const pageTitle = "Visualización de Series Temporales"

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0 auto; max-width: 1200px; padding: 1rem; }
.error { color: #b00020; border: 1px solid #b00020; padding: .5rem; }
.warning { color: #8a6d00; border: 1px solid #e0b800; padding: .5rem; }
.table { max-height: 400px; overflow: auto; border: 1px solid #ddd; }
table { border-collapse: collapse; font-size: 13px; }
th, td { padding: 2px 8px; border-bottom: 1px solid #eee; text-align: right; white-space: nowrap; }
</style>
</head>
<body>
{{end}}

{{define "home"}}{{template "head" .}}
<h1>{{.Title}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/view" enctype="multipart/form-data">
<label for="file">Sube un archivo (.parquet o .txt)</label>
<input id="file" type="file" name="file" accept="{{.Accept}}" required>
<button type="submit">Subir</button>
</form>
</body>
</html>
{{end}}

{{define "view_body"}}
<h1>{{.Title}}</h1>
<p>{{.FileName}} · <a href="/">Subir otro archivo</a></p>
<h2>Contenido de la Tabla</h2>
<div class="table">
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table>
</div>
<p>Filas {{.From}}-{{.To}} de {{.Total}}
{{if .PrevURL}}<a href="{{.PrevURL}}">Anterior</a>{{end}}
{{if .NextURL}}<a href="{{.NextURL}}">Siguiente</a>{{end}}</p>
<h2>Gráfico Interactivo</h2>
<form method="get" action="/uploads/{{.UploadID}}/view">
<input type="hidden" name="selection" value="1">
<label for="columns">Selecciona las columnas a graficar</label>
<select id="columns" name="columns" multiple size="{{.SelectSize}}">
{{range .Options}}<option value="{{.Name}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>
{{end}}</select>
<button type="submit">Graficar</button>
</form>
{{if .Warning}}<p class="warning">{{.Warning}}</p>{{end}}
{{end}}

{{define "view"}}{{template "head" .}}
{{template "view_body" .}}
</body>
</html>
{{end}}

{{define "message"}}{{template "head" .}}
<p class="warning">{{.Warning}}</p>
</body>
</html>
{{end}}
`

//nolint:gochecknoglobals // parsed once at startup
var pages = template.Must(template.New("pages").Parse(pageTemplates))

// htmlPage is a server-rendered page with its own status code.
type htmlPage struct {
	status int
	body   []byte
}

func (htmlPage) ContentType() string {
	return "text/html; charset=utf-8"
}

func (p htmlPage) StatusCode() int {
	return p.status
}

func (p htmlPage) Render(w io.Writer) error {
	_, err := w.Write(p.body)
	return err
}

func executePage(status int, name string, data any) (htmlPage, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return htmlPage{}, err
	}
	return htmlPage{status: status, body: buf.Bytes()}, nil
}

type homePage struct {
	Title  string
	Accept string
	Error  string
}

type selectOption struct {
	Name     string
	Selected bool
}

type viewPage struct {
	Title      string
	UploadID   string
	FileName   string
	Columns    []string
	Rows       [][]string
	From       int
	To         int
	Total      int
	PrevURL    string
	NextURL    string
	Options    []selectOption
	SelectSize int
	Warning    string
}

type messagePage struct {
	Title   string
	Warning string
}

func newViewPage(view usecase.View, table usecase.TableResult, query url.Values) viewPage {
	page := viewPage{
		Title:    pageTitle,
		UploadID: view.Upload.ID,
		FileName: view.Upload.FileName,
		Total:    table.Total,
		Warning:  view.Warning,
	}

	for _, c := range table.Columns {
		page.Columns = append(page.Columns, c.Name)
	}
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellText(v)
		}
		page.Rows = append(page.Rows, cells)
	}

	start := (table.Page - 1) * table.PageSize
	if len(table.Rows) > 0 {
		page.From = start + 1
		page.To = start + len(table.Rows)
	}
	if table.Page > 1 {
		page.PrevURL = pageURL(view.Upload.ID, query, table.Page-1)
	}
	if start+len(table.Rows) < table.Total {
		page.NextURL = pageURL(view.Upload.ID, query, table.Page+1)
	}

	selected := make(map[string]struct{}, len(view.Selected))
	for _, name := range view.Selected {
		selected[name] = struct{}{}
	}
	for _, name := range view.Selectable {
		_, ok := selected[name]
		page.Options = append(page.Options, selectOption{Name: name, Selected: ok})
	}
	page.SelectSize = min(max(len(page.Options), 1), 10)

	return page
}

func pageURL(uploadID string, query url.Values, page int) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return "/uploads/" + url.PathEscape(uploadID) + "/view?" + q.Encode()
}

// renderView draws the view page. With a chart the page is the chart document
// with the table and selection form on top.
func renderView(page viewPage, chart *entity.Chart) (htmlPage, error) {
	if chart == nil {
		return executePage(http.StatusOK, "view", page)
	}

	var header bytes.Buffer
	if err := pages.ExecuteTemplate(&header, "view_body", page); err != nil {
		return htmlPage{}, err
	}

	var buf bytes.Buffer
	//nolint:gosec // header is produced by html/template
	if err := render.HTML(&buf, chart, pageTitle, template.HTML(header.String())); err != nil {
		return htmlPage{}, err
	}
	return htmlPage{status: http.StatusOK, body: buf.Bytes()}, nil
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.DateTime)
	default:
		return ""
	}
}
