// Package observability sets up OpenTelemetry metrics and tracing.
//
// When telemetry is enabled, InitMeter and InitTracer install global
// providers that export over OTLP/HTTP. When it is disabled, nothing is
// installed and Meter/Tracer hand out the global no-op implementations, so
// instrumented code never has to check whether telemetry is on.
//
// The Telemetry component wires both providers into the application
// lifecycle:
//
//	tel := observability.NewTelemetry(cfg.Observability, observability.ServiceInfo{
//		Name:    cfg.Name,
//		Version: cfg.Version,
//	})
//	app.RegisterComponent(tel)
package observability
