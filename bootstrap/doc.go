// Package bootstrap orchestrates the application lifecycle.
//
// It owns typed configuration, component registration, startup and shutdown
// hooks, signal handling and the startup summary.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(coordinator)
//	app.RegisterComponent(server.NewComponent(srv))
//	return app.Run(ctx)
//
// Run blocks until SIGINT/SIGTERM or ctx cancellation; RunTask runs a finite
// task with the same lifecycle and shuts down when it returns.
package bootstrap
