package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.series.enabled") {
		slog.Warn("module series is disabled, only /health is served")
		return
	}

	closer, err := series.New(series.Dependency{
		Config:    a.config,
		Router:    a.router,
		Goroutine: a.goroutine,
		Context:   a.ctx,
		ID:        a.uuid,
	})
	if err != nil {
		slog.Error("failed to init module series", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		if a.closerFn == nil {
			a.closerFn = map[string]func(context.Context) error{}
		}
		a.closerFn["Series"] = closer
	}
}
