package series

import (
	"context"
	"log/slog"
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgconfig"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgrouter"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgroutine"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkguid"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/inbound"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/store"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/usecase"
)

const defaultSweepInterval = time.Minute

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	storage := store.NewInMemoryStore()

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Store:      storage,
		Normalizer: usecase.NewNormalizer(formats(dep.Config)...),
		ID:         dep.ID,
		UploadTTL:  dep.Config.GetDuration("modules.series.upload_ttl"),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.Options{
		MaxUploadBytes: dep.Config.GetInt("modules.series.max_upload_bytes"),
		MaxPageSize:    int(dep.Config.GetInt("modules.series.max_page_size")),
		PNGWidth:       int(dep.Config.GetInt("modules.series.png.width")),
		PNGHeight:      int(dep.Config.GetInt("modules.series.png.height")),
	})

	interval := dep.Config.GetDuration("modules.series.sweep_interval")
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	dep.Goroutine.Every(dep.Context, "upload sweep", interval, func(ctx context.Context) error {
		if n := storage.Sweep(time.Now()); n > 0 {
			slog.InfoContext(ctx, "expired uploads removed", "count", n, "remaining", storage.Len())
		}
		return nil
	})

	return func(ctx context.Context) error {
		slog.InfoContext(ctx, "cached uploads dropped", "count", storage.Clear())
		return nil
	}, nil
}

// formats returns the accepted formats with timestamp column names taken from
// config when set.
func formats(cfg pkgconfig.Config) []usecase.Format {
	txt := usecase.TextFormat()
	if name := cfg.GetString("modules.series.formats.txt.timestamp_column"); name != "" {
		txt.TimestampColumn = name
	}

	pq := usecase.ParquetFormat()
	if name := cfg.GetString("modules.series.formats.parquet.timestamp_column"); name != "" {
		pq.TimestampColumn = name
	}

	return []usecase.Format{txt, pq}
}
