package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/extractd/component"
	"github.com/kbukum/extractd/logger"
)

// Telemetry manages the meter and tracer providers as a lifecycle component.
type Telemetry struct {
	cfg  Config
	info ServiceInfo
	log  *logger.Logger

	mp *sdkmetric.MeterProvider
	tp *sdktrace.TracerProvider
}

// NewTelemetry creates a telemetry component. Nothing is installed until Start.
func NewTelemetry(cfg Config, info ServiceInfo) *Telemetry {
	cfg.ApplyDefaults()
	return &Telemetry{cfg: cfg, info: info, log: logger.Get("telemetry")}
}

func (t *Telemetry) Name() string { return "telemetry" }

// Start installs the global providers when telemetry is enabled.
func (t *Telemetry) Start(ctx context.Context) error {
	if !t.cfg.Enabled {
		t.log.Debug("Telemetry disabled, using no-op providers")
		return nil
	}
	mp, err := InitMeter(ctx, &t.cfg, t.info)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	tp, err := InitTracer(ctx, &t.cfg, t.info)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return fmt.Errorf("telemetry: %w", err)
	}
	t.mp, t.tp = mp, tp
	return nil
}

// Stop flushes and shuts down the providers.
func (t *Telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
		t.tp = nil
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
		t.mp = nil
	}
	return errors.Join(errs...)
}

func (t *Telemetry) Health(_ context.Context) component.Health {
	msg := "disabled"
	if t.cfg.Enabled {
		msg = "exporting to " + t.cfg.Endpoint
	}
	return component.Health{Name: t.Name(), Status: component.StatusHealthy, Message: msg}
}

func (t *Telemetry) Describe() component.Description {
	return component.Description{
		Name:    "Telemetry",
		Type:    "otlp",
		Details: fmt.Sprintf("enabled=%t endpoint=%s", t.cfg.Enabled, t.cfg.Endpoint),
	}
}
