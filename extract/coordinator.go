package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/extractd/component"
	"github.com/kbukum/extractd/errors"
	"github.com/kbukum/extractd/logger"
	"github.com/kbukum/extractd/observability"
	"github.com/kbukum/extractd/pipeline"
	"github.com/kbukum/extractd/validation"
)

// Coordinator fans batches of rows out to a fixed set of extractors.
// It records at most one Run at a time.
type Coordinator struct {
	extractors []Extractor
	source     RowSource
	maxRows    int
	log        *logger.Logger
	meter      metric.Meter
	tracer     trace.Tracer
	metrics    *runMetrics

	current atomic.Pointer[Run]

	// launchMu orders run launches against Stop so wg.Add never races wg.Wait.
	launchMu sync.Mutex
	wg       sync.WaitGroup

	// base is cancelled by Stop. Hook contexts derive from it.
	base     context.Context
	stopBase context.CancelFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRowSource replaces the default SequentialRows source.
func WithRowSource(src RowSource) Option {
	return func(c *Coordinator) { c.source = src }
}

// WithMaxRows caps the batch size accepted by Process. Zero means unlimited.
func WithMaxRows(n int) Option {
	return func(c *Coordinator) { c.maxRows = n }
}

// WithLogger sets the coordinator logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithMeter records run metrics on meter instead of the global provider.
func WithMeter(meter metric.Meter) Option {
	return func(c *Coordinator) { c.meter = meter }
}

// WithTracer records run spans on tracer instead of the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = tracer }
}

// NewCoordinator creates a coordinator over extractors. Names must be
// non-empty and unique; the order is kept for logging only.
func NewCoordinator(extractors []Extractor, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		extractors: append([]Extractor(nil), extractors...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get("extract")
	}
	if c.source == nil {
		c.source = SequentialRows{Log: c.log}
	}
	if c.meter == nil {
		c.meter = observability.Meter(instrumentationName)
	}
	if c.tracer == nil {
		c.tracer = observability.Tracer(instrumentationName)
	}

	v := validation.New().Min("max_rows", c.maxRows, 0)
	seen := make(map[string]bool, len(c.extractors))
	for i, e := range c.extractors {
		field := fmt.Sprintf("extractors[%d]", i)
		if e == nil {
			v.AddError(field, "is nil")
			continue
		}
		v.Required(field, e.Name()).Unique(field, e.Name(), seen)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	metrics, err := newRunMetrics(c.meter)
	if err != nil {
		return nil, err
	}
	c.metrics = metrics
	c.base, c.stopBase = context.WithCancel(context.Background())
	return c, nil
}

// Process starts an asynchronous run over n rows and returns its handle.
// n must be between 0 and the configured maximum. A run that was still
// recorded is replaced, and cancelled if it was active.
func (c *Coordinator) Process(n int) (*Run, error) {
	if err := validation.New().Range("n", n, 0, c.maxRows).Validate(); err != nil {
		return nil, err
	}

	c.launchMu.Lock()
	defer c.launchMu.Unlock()
	if c.base.Err() != nil {
		return nil, errors.ServiceUnavailable("extract coordinator")
	}

	rows, err := c.source.Rows(c.base, n)
	if err != nil {
		return nil, errors.Internal(err).WithDetail("operation", "generate rows")
	}

	tasks := make([]boundTask, len(c.extractors))
	for i, e := range c.extractors {
		tasks[i] = boundTask{name: e.Name(), task: e.Begin()}
	}

	runCtx, cancel := context.WithCancel(c.base)
	run := newRun(uuid.NewString(), len(rows), cancel)
	run.setState(StateStarting)

	if prev := c.current.Swap(run); prev != nil {
		prev.Cancel()
	}
	c.metrics.runStarted(c.base)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.execute(runCtx, run, rows, tasks)
	}()
	return run, nil
}

// IsActive reports whether the recorded run is still executing.
func (c *Coordinator) IsActive() bool {
	run := c.current.Load()
	return run != nil && run.Active()
}

// Cancel requests cancellation of the recorded run. It does nothing when no
// run is active.
func (c *Coordinator) Cancel() {
	if run := c.current.Load(); run != nil {
		run.Cancel()
	}
}

// Current returns the recorded run, or nil before the first Process.
func (c *Coordinator) Current() *Run {
	return c.current.Load()
}

// execute drives one run to a terminal state. runCtx is cancelled by
// Run.Cancel and only gates row boundaries; hooks receive a context derived
// from the coordinator base so an in-flight group is never interrupted by a
// user cancel.
func (c *Coordinator) execute(runCtx context.Context, run *Run, rows []Row, tasks []boundTask) {
	ctx, span := c.tracer.Start(c.base, "extract.run", trace.WithAttributes(
		attribute.String(observability.AttrRunID, run.ID()),
		attribute.Int(observability.AttrRows, len(rows)),
	))

	log := c.log.WithFields(map[string]interface{}{
		logger.FieldRunID: run.ID(),
		"rows":            len(rows),
	})
	log.Info("Run started")

	err := c.runPhases(ctx, runCtx, run, rows, tasks)

	state := StateSucceeded
	switch {
	case err != nil:
		state = StateFailed
		observability.SetSpanError(span, err)
		log.Error("Run failed", logger.MergeWithError(map[string]interface{}{
			"processed": run.Processed(),
		}, err))
	case run.Processed() < len(rows):
		state = StateCancelled
		log.Info("Run cancelled", map[string]interface{}{
			"processed": run.Processed(),
			"skipped":   len(rows) - run.Processed(),
		})
	default:
		log.Info("Run succeeded", map[string]interface{}{"processed": run.Processed()})
	}

	span.SetAttributes(attribute.String(observability.AttrOutcome, state.String()))
	span.End()
	c.metrics.runFinished(ctx, state)
	run.finish(state, err)
}

func (c *Coordinator) runPhases(ctx, runCtx context.Context, run *Run, rows []Row, tasks []boundTask) error {
	err := c.phase(ctx, PhaseStart, func(ctx context.Context) error {
		return c.fanOut(ctx, tasks, PhaseStart, -1, func(ctx context.Context, t Task) error {
			return t.OnStart(ctx)
		})
	})
	if err != nil {
		return err
	}

	run.setState(StateProcessing)
	err = c.phase(ctx, PhaseRow, func(ctx context.Context) error {
		indexes := pipeline.TakeWhile(pipeline.Range(0, len(rows)-1), func() bool {
			return runCtx.Err() == nil
		})
		return pipeline.ForEach(ctx, indexes, func(ctx context.Context, i int) error {
			row := rows[i]
			err := c.fanOut(ctx, tasks, PhaseRow, i, func(ctx context.Context, t Task) error {
				return t.OnNext(ctx, row, i)
			})
			if err != nil {
				return err
			}
			run.rowDone()
			c.metrics.rowProcessed(ctx)
			return nil
		})
	})
	if err != nil {
		return err
	}

	run.setState(StateCompleting)
	return c.phase(ctx, PhaseComplete, func(ctx context.Context) error {
		return c.fanOut(ctx, tasks, PhaseComplete, -1, func(ctx context.Context, t Task) error {
			return t.OnComplete(ctx)
		})
	})
}

// phase wraps fn in a child span of the run.
func (c *Coordinator) phase(ctx context.Context, p Phase, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "extract."+string(p), trace.WithAttributes(
		attribute.String(observability.AttrPhase, string(p)),
	))
	defer span.End()

	err := fn(ctx)
	observability.SetSpanError(span, err)
	return err
}

// --- component.Component ---

func (c *Coordinator) Name() string { return "extract-coordinator" }

// Start logs the registered extractors. Runs are launched by Process.
func (c *Coordinator) Start(_ context.Context) error {
	for _, e := range c.extractors {
		c.log.Info("Loading extractor", map[string]interface{}{logger.FieldExtractor: e.Name()})
	}
	return nil
}

// Stop cancels the active run, aborts in-flight hooks through their context,
// and waits for the run goroutine or ctx, whichever ends first.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.Cancel()
	c.launchMu.Lock()
	c.stopBase()
	c.launchMu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Timeout("stopping extract coordinator").WithCause(ctx.Err())
	}
}

func (c *Coordinator) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.base.Err() != nil {
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
		return h
	}
	if run := c.current.Load(); run != nil {
		h.Message = fmt.Sprintf("run %s %s", run.ID(), run.State())
	} else {
		h.Message = "idle"
	}
	return h
}

func (c *Coordinator) Describe() component.Description {
	names := make([]string, len(c.extractors))
	for i, e := range c.extractors {
		names[i] = e.Name()
	}
	limit := "unlimited"
	if c.maxRows > 0 {
		limit = fmt.Sprint(c.maxRows)
	}
	return component.Description{
		Name:    "Extract Coordinator",
		Type:    "pipeline",
		Details: fmt.Sprintf("extractors=%s max_rows=%s", strings.Join(names, ","), limit),
	}
}
