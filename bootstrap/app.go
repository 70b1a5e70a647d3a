package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/extractd/component"
	"github.com/kbukum/extractd/logger"
)

// App owns the components of one extractd process: telemetry, the extract
// coordinator and, for serve, the HTTP server. Components start in
// registration order and stop in reverse, so the server closes before the
// coordinator aborts its run and telemetry flushes last.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryOut      io.Writer
	quiet           bool

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp defaults and validates cfg, then sets up logging from cfg.Logging
// unless WithLogger supplied one.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
		summaryOut:      os.Stdout,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryOut != nil {
		app.summaryOut = o.summaryOut
	}
	app.quiet = o.quiet

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// RegisterComponent appends c to the start order. Names must be unique.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck lists every component that does not report healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		if h.Message != "" {
			unhealthy = append(unhealthy, fmt.Sprintf("%s=%s(%s)", h.Name, h.Status, h.Message))
		} else {
			unhealthy = append(unhealthy, fmt.Sprintf("%s=%s", h.Name, h.Status))
		}
	}
	if len(unhealthy) == 0 {
		return nil
	}
	return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
}

// Run starts the app and serves until SIGINT/SIGTERM or ctx ends, then shuts
// down. Used by `extractd serve`.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Serving until interrupted")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask starts the app, runs task and shuts down when it returns. Used by
// `extractd run`: SIGINT/SIGTERM cancel the task context, which the task
// turns into a run cancellation. A task error takes precedence over a
// shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	if taskCtx.Err() != nil && ctx.Err() == nil {
		a.Logger.Info("Task interrupted by signal")
	}
	stopSignals()

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup starts components, runs OnStart, checks readiness, runs OnReady
// and prints the summary.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		a.rollback()
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	// An unhealthy component is reported, not fatal: the summary shows it too.
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Starting with unhealthy components", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		a.rollback()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	if !a.quiet {
		a.DisplaySummary()
	}
	return nil
}

// rollback stops already started components after a failed startup hook.
func (a *App[C]) rollback() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Rollback after failed startup", logger.MergeWithError(nil, err))
	}
}

// DisplaySummary writes the component, route and health summary.
func (a *App[C]) DisplaySummary() {
	a.Summary.Write(a.summaryOut, a.Components)
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx ends and returns the
// signal, or nil when ctx ended first.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context done, shutting down")
		return nil
	}
}

// Shutdown runs OnStop hooks and stops the components. Only needed when the
// caller started the registry itself instead of using Run or RunTask.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

// stop gives OnStop hooks and component shutdown one shared deadline.
func (a *App[C]) stop() error {
	a.Logger.Info("Stopping components", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook failed", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Components stopped with errors", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	a.Logger.Info("Stopped")
	return shutdownErr
}
