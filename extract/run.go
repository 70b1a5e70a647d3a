package extract

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle position of a Run.
type State int32

const (
	StateCreated State = iota
	StateStarting
	StateProcessing
	StateCompleting
	StateSucceeded
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	StateCreated:    "created",
	StateStarting:   "starting",
	StateProcessing: "processing",
	StateCompleting: "completing",
	StateSucceeded:  "succeeded",
	StateCancelled:  "cancelled",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Active reports whether a run in this state is still executing.
func (s State) Active() bool {
	return s == StateStarting || s == StateProcessing || s == StateCompleting
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Run is the handle of one asynchronous execution over a batch of rows.
type Run struct {
	id   string
	rows int

	state     atomic.Int32
	processed atomic.Int64
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}

	mu         sync.Mutex
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

func newRun(id string, rows int, cancel context.CancelFunc) *Run {
	return &Run{
		id:        id,
		rows:      rows,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
}

// ID returns the unique run identifier.
func (r *Run) ID() string { return r.id }

// Rows returns the batch size.
func (r *Run) Rows() int { return r.rows }

// State returns the current state.
func (r *Run) State() State { return State(r.state.Load()) }

// Active reports whether the run is starting, processing or completing.
func (r *Run) Active() bool { return r.State().Active() }

// Processed returns how many rows have been fully fanned out.
func (r *Run) Processed() int { return int(r.processed.Load()) }

// Cancel asks the run to stop before its next row. Hooks already executing
// finish, and the completion phase still runs. Cancel on a finished run does
// nothing.
func (r *Run) Cancel() {
	if !r.Active() {
		return
	}
	r.cancelled.Store(true)
	r.cancel()
}

// CancelRequested reports whether Cancel was called while the run was active.
func (r *Run) CancelRequested() bool { return r.cancelled.Load() }

// Done is closed once the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run terminates or ctx is done. It returns the run's
// failure, or ctx.Err() if ctx ended first. A cancelled run is not an error.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the failure that ended the run, if any.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// RunInfo is a point-in-time snapshot of a Run.
type RunInfo struct {
	ID         string     `json:"id"`
	State      State      `json:"state"`
	Active     bool       `json:"active"`
	Rows       int        `json:"rows"`
	Processed  int        `json:"processed"`
	Cancelled  bool       `json:"cancel_requested"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Info returns a snapshot of the run.
func (r *Run) Info() RunInfo {
	state := r.State()
	info := RunInfo{
		ID:        r.id,
		State:     state,
		Active:    state.Active(),
		Rows:      r.rows,
		Processed: r.Processed(),
		Cancelled: r.CancelRequested(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	info.StartedAt = r.startedAt
	if !r.finishedAt.IsZero() {
		finished := r.finishedAt
		info.FinishedAt = &finished
	}
	if r.err != nil {
		info.Error = r.err.Error()
	}
	return info
}

func (r *Run) setState(s State) {
	r.state.Store(int32(s))
}

func (r *Run) rowDone() {
	r.processed.Add(1)
}

// finish records the outcome and publishes the terminal state. It releases
// the run's cancel func and closes Done.
func (r *Run) finish(s State, err error) {
	r.mu.Lock()
	r.err = err
	r.finishedAt = time.Now()
	r.mu.Unlock()

	r.setState(s)
	r.cancel()
	close(r.done)
}
