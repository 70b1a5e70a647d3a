package extract

import (
	"strconv"
	"sync"
)

// Status is the plain-text reply of a control operation.
type Status string

const (
	StatusStarted      Status = "started"
	StatusStillRunning Status = "still_running"
	StatusCancelled    Status = "cancelled"
	StatusNotRun       Status = "not_run"
)

// Runner is the part of a Coordinator that Control drives.
type Runner interface {
	Process(n int) (*Run, error)
	IsActive() bool
	Cancel()
}

// Control serializes start, status and cancel requests so each
// check-then-act sequence sees a consistent view. The lock is never held
// while waiting on a run.
type Control struct {
	mu     sync.Mutex
	runner Runner
}

// NewControl wraps runner.
func NewControl(runner Runner) *Control {
	return &Control{runner: runner}
}

// Start launches a run of n rows unless one is already active.
func (c *Control) Start(n int) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runner.IsActive() {
		return StatusStillRunning, nil
	}
	if _, err := c.runner.Process(n); err != nil {
		return "", err
	}
	return StatusStarted, nil
}

// Active returns "true" or "false".
func (c *Control) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strconv.FormatBool(c.runner.IsActive())
}

// Cancel requests cancellation of the active run.
func (c *Control) Cancel() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.runner.IsActive() {
		return StatusNotRun
	}
	c.runner.Cancel()
	return StatusCancelled
}
