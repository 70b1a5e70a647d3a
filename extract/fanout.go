package extract

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/extractd/errors"
)

// Phase names a fan-out group of a run.
type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseRow      Phase = "row"
	PhaseComplete Phase = "complete"
)

// boundTask is one extractor's task for the current run.
type boundTask struct {
	name string
	task Task
}

// fanOut calls hook once per task, each in its own goroutine, and returns
// after all of them have returned. The group fails with the first error to
// occur; the other members still run to completion. index is -1 outside
// the row phase.
func (c *Coordinator) fanOut(ctx context.Context, tasks []boundTask, phase Phase, index int, hook func(context.Context, Task) error) error {
	var g errgroup.Group
	for _, bt := range tasks {
		g.Go(func() error {
			start := time.Now()
			err := callHook(ctx, bt.task, hook)
			c.metrics.hookCalled(ctx, bt.name, phase, time.Since(start))
			if err != nil {
				return errors.ExtractorFailed(bt.name, string(phase), index, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// callHook runs hook and turns a panic into an error.
func callHook(ctx context.Context, task Task, hook func(context.Context, Task) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hook(ctx, task)
}
