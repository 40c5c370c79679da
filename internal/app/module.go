package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/chemviz/internal/equipment"
)

// module is a feature package toggled by modules.<name>.enabled. init may
// return a closer that Stop runs after background tasks have finished.
type module struct {
	name string
	init func() (func(context.Context) error, error)
}

func (a *App) modules() []module {
	return []module{
		{
			name: "equipment",
			init: func() (func(context.Context) error, error) {
				return equipment.New(equipment.Dependency{
					Config:    a.config,
					Router:    a.router,
					Goroutine: a.goroutine,
					Context:   a.ctx,
					ID:        a.snowflake,
				})
			},
		},
	}
}

func (a *App) initModules() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	for _, m := range a.modules() {
		if !a.config.GetBool("modules." + m.name + ".enabled") {
			slog.Warn("module disabled", "module", m.name)
			continue
		}

		closer, err := m.init()
		if err != nil {
			slog.Error("failed to init module", "module", m.name, "error", err)
			os.Exit(1)
		}
		if closer != nil {
			a.closerFn["module:"+m.name] = closer
		}

		slog.Info("module enabled", "module", m.name)
	}
}
