package main

import (
	"github.com/kbukum/extractd/api"
	"github.com/kbukum/extractd/bootstrap"
	"github.com/kbukum/extractd/extract"
	"github.com/kbukum/extractd/observability"
	"github.com/kbukum/extractd/server"
)

// registerCore registers telemetry and the coordinator on app. Telemetry is
// registered first so it is stopped last and flushes the final run.
func registerCore(app *bootstrap.App[*AppConfig]) (*extract.Coordinator, error) {
	cfg := app.Cfg
	if err := app.RegisterComponent(observability.NewTelemetry(cfg.Observability, cfg.serviceInfo())); err != nil {
		return nil, err
	}

	log := app.Logger.WithComponent("extract")
	coordinator, err := extract.NewCoordinator(
		cfg.Extract.Build(log),
		extract.WithMaxRows(cfg.Extract.MaxRows),
		extract.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(coordinator); err != nil {
		return nil, err
	}
	return coordinator, nil
}

// registerServer mounts the control API and the default endpoints on a new
// HTTP server and registers it as the last component.
func registerServer(app *bootstrap.App[*AppConfig], coordinator *extract.Coordinator) (*server.Server, error) {
	srv := server.New(app.Cfg.Server, app.Logger.WithComponent("server"))
	srv.ApplyDefaults(app.Name, app.Components.HealthAll)

	handler := api.NewHandler(extract.NewControl(coordinator), coordinator, app.Logger.WithComponent("api"))
	handler.Register(srv.GinEngine())

	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	return srv, nil
}
