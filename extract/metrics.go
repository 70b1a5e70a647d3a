package extract

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/extractd/observability"
)

const instrumentationName = "github.com/kbukum/extractd/extract"

// runMetrics holds the instruments recorded by the coordinator.
type runMetrics struct {
	started  metric.Int64Counter
	finished metric.Int64Counter
	active   metric.Int64UpDownCounter
	rows     metric.Int64Counter
	hookTime metric.Float64Histogram
}

func newRunMetrics(meter metric.Meter) (*runMetrics, error) {
	started, err := meter.Int64Counter("extract.runs.started",
		metric.WithDescription("Runs launched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extract.runs.started counter: %w", err)
	}

	finished, err := meter.Int64Counter("extract.runs.finished",
		metric.WithDescription("Runs that reached a terminal state, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extract.runs.finished counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter("extract.runs.active",
		metric.WithDescription("Runs currently executing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extract.runs.active gauge: %w", err)
	}

	rows, err := meter.Int64Counter("extract.rows.processed",
		metric.WithDescription("Rows fanned out to every extractor"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extract.rows.processed counter: %w", err)
	}

	hookTime, err := meter.Float64Histogram("extract.hook.duration",
		metric.WithDescription("Duration of extractor hook calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating extract.hook.duration histogram: %w", err)
	}

	return &runMetrics{
		started:  started,
		finished: finished,
		active:   active,
		rows:     rows,
		hookTime: hookTime,
	}, nil
}

func (m *runMetrics) runStarted(ctx context.Context) {
	m.started.Add(ctx, 1)
	m.active.Add(ctx, 1)
}

func (m *runMetrics) runFinished(ctx context.Context, s State) {
	m.active.Add(ctx, -1)
	m.finished.Add(ctx, 1, metric.WithAttributes(
		attribute.String(observability.AttrOutcome, s.String()),
	))
}

func (m *runMetrics) rowProcessed(ctx context.Context) {
	m.rows.Add(ctx, 1)
}

func (m *runMetrics) hookCalled(ctx context.Context, extractor string, phase Phase, d time.Duration) {
	m.hookTime.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(observability.AttrExtractor, extractor),
		attribute.String(observability.AttrPhase, string(phase)),
	))
}
