package app

import (
	"context"
	"net/http"
	"os"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgconfig"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkglog"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgrouter"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgroutine"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	goroutine *pkgroutine.Manager

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// closers run on Stop, keyed by resource name
	closerFn map[string]func(context.Context) error
}

func New() *App {
	pkglog.InitLogging(pkglog.ParseLevel(os.Getenv("LOG_LEVEL")))

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
