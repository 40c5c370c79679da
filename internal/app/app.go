package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkglog"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

// App owns the process lifecycle: configuration, shared libraries, the HTTP
// server, the enabled modules and everything that must be closed on exit.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	goroutine *pkgroutine.Manager

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// released by Stop, sorted by name
	closerFn map[string]func(context.Context) error
}

func New() *App {
	pkglog.InitLogging()

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
