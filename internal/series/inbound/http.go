package inbound

import (
	"context"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgrouter"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/usecase"
)

type uc interface {
	Extensions() []string
	Upload(ctx context.Context, fileName string, data []byte) (usecase.UploadResult, error)
	Table(ctx context.Context, uploadID string, page, pageSize int) (usecase.TableResult, error)
	Chart(ctx context.Context, uploadID string, sel usecase.Selection) (usecase.ChartResult, error)
	View(ctx context.Context, uploadID string, sel usecase.Selection) (usecase.View, error)
	Discard(ctx context.Context, uploadID string) error
}

// Options bounds what a single request may ask for.
type Options struct {
	MaxUploadBytes int64
	MaxPageSize    int
	PNGWidth       int
	PNGHeight      int
}

const (
	defaultMaxUploadBytes = 32 << 20
	defaultMaxPageSize    = 500
	defaultPNGWidth       = 1200
	defaultPNGHeight      = 600
)

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = defaultMaxUploadBytes
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = defaultMaxPageSize
	}
	if o.PNGWidth <= 0 {
		o.PNGWidth = defaultPNGWidth
	}
	if o.PNGHeight <= 0 {
		o.PNGHeight = defaultPNGHeight
	}
	return o
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, opts Options) {
	end := &HTTPEndpoint{uc: uc, opts: opts.withDefaults()}

	// browser pages
	r.GET("/", end.Home)
	r.POST("/view", end.UploadForm)
	r.GET("/uploads/:id/view", end.View) // ?selection=1&columns=A&columns=B

	// json api
	r.POST("/uploads", end.Upload) // multipart "file" or raw body with ?filename=
	r.GET("/uploads/:id", end.Table)
	r.GET("/uploads/:id/chart", end.Chart)
	r.GET("/uploads/:id/chart.html", end.ChartHTML)
	r.GET("/uploads/:id/chart.png", end.ChartPNG)
	r.DELETE("/uploads/:id", end.Discard)
}
