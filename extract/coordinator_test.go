package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/extractd/component"
	apperrors "github.com/kbukum/extractd/errors"
	"github.com/kbukum/extractd/logger"
)

const waitTimeout = 5 * time.Second

func newTestCoordinator(t *testing.T, exts []Extractor, opts ...Option) *Coordinator {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	c, err := NewCoordinator(exts, opts...)
	if err != nil {
		t.Fatalf("unexpected error creating coordinator: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		_ = c.Stop(ctx)
	})
	return c
}

func waitRun(t *testing.T, run *Run) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	err := run.Wait(ctx)
	if ctx.Err() != nil {
		t.Fatalf("run %s did not finish, state %s", run.ID(), run.State())
	}
	return err
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for hook")
		var zero T
		return zero
	}
}

func phases(calls []call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		if c.phase == PhaseRow {
			out[i] = string(c.phase) + ":" + string(rune('0'+c.index))
			continue
		}
		out[i] = string(c.phase)
	}
	return out
}

func TestProcessRunsPhasesInOrder(t *testing.T) {
	rec := &recorder{}
	a, b := newFake("a", rec), newFake("b", rec)
	a.delay = 5 * time.Millisecond
	c := newTestCoordinator(t, []Extractor{a.extractor(), b.extractor()})

	run, err := c.Process(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := waitRun(t, run); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	want := []string{"start", "row:0", "row:1", "row:2", "complete"}
	for _, name := range []string{"a", "b"} {
		if diff := cmp.Diff(want, phases(rec.of(name))); diff != "" {
			t.Errorf("extractor %s call order mismatch (-want +got):\n%s", name, diff)
		}
	}
	if run.State() != StateSucceeded {
		t.Errorf("expected state succeeded, got %s", run.State())
	}
	if run.Processed() != 3 {
		t.Errorf("expected 3 processed rows, got %d", run.Processed())
	}
	if c.IsActive() {
		t.Error("expected coordinator to be inactive after run finished")
	}
}

func TestProcessJoinsEachGroupBeforeTheNext(t *testing.T) {
	rec := &recorder{}
	fast, slow := newFake("fast", rec), newFake("slow", rec)
	slow.delay = 20 * time.Millisecond
	c := newTestCoordinator(t, []Extractor{fast.extractor(), slow.extractor()})

	run, err := c.Process(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := waitRun(t, run); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	// Group k is every call of the k-th fan-out: start, rows 0..2, complete.
	groups := [][]call{rec.phase(PhaseStart)}
	for i := 0; i < 3; i++ {
		var row []call
		for _, cl := range rec.phase(PhaseRow) {
			if cl.index == i {
				row = append(row, cl)
			}
		}
		groups = append(groups, row)
	}
	groups = append(groups, rec.phase(PhaseComplete))

	for k := 1; k < len(groups); k++ {
		for _, prev := range groups[k-1] {
			for _, next := range groups[k] {
				if next.begin.Before(prev.end) {
					t.Errorf("group %d call %s began before group %d call %s ended", k, next.extractor, k-1, prev.extractor)
				}
			}
		}
	}
}

func TestProcessZeroRows(t *testing.T) {
	rec := &recorder{}
	a := newFake("a", rec)
	c := newTestCoordinator(t, []Extractor{a.extractor()})

	run, err := c.Process(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := waitRun(t, run); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if diff := cmp.Diff([]string{"start", "complete"}, phases(rec.of("a"))); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	if run.State() != StateSucceeded {
		t.Errorf("expected state succeeded, got %s", run.State())
	}
}

func TestProcessRejectsInvalidRowCount(t *testing.T) {
	tests := []struct {
		name    string
		maxRows int
		n       int
	}{
		{"negative", 0, -1},
		{"above max", 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCoordinator(t, []Extractor{newFake("a", &recorder{}).extractor()}, WithMaxRows(tt.maxRows))

			run, err := c.Process(tt.n)
			if run != nil {
				t.Error("expected no run to be created")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT error, got %v", err)
			}
			if c.Current() != nil {
				t.Error("expected no recorded run")
			}
			if c.IsActive() {
				t.Error("expected coordinator to be inactive")
			}
		})
	}
}

func TestRowsFanOutConcurrently(t *testing.T) {
	rec := &recorder{}
	arrived := make(chan int, 2)
	release := make(chan struct{})
	barrier := func(ctx context.Context, index int) error {
		arrived <- index
		select {
		case <-release:
			return nil
		case <-time.After(waitTimeout):
			return errors.New("sibling hook never ran")
		}
	}
	a, b := newFake("a", rec), newFake("b", rec)
	a.next, b.next = barrier, barrier
	c := newTestCoordinator(t, []Extractor{a.extractor(), b.extractor()})

	run, err := c.Process(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	receive(t, arrived)
	receive(t, arrived)
	close(release)

	if err := waitRun(t, run); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
}

func TestIsActiveImmediatelyAfterProcess(t *testing.T) {
	release := make(chan struct{})
	a := newFake("a", &recorder{})
	a.start = func(ctx context.Context) error {
		<-release
		return nil
	}
	c := newTestCoordinator(t, []Extractor{a.extractor()})

	run, err := c.Process(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsActive() {
		t.Error("expected coordinator to be active right after Process")
	}
	if !run.Active() {
		t.Errorf("expected run to be active, got state %s", run.State())
	}
	close(release)
	waitRun(t, run)
	if c.IsActive() {
		t.Error("expected coordinator to be inactive after the run")
	}
}

func TestCancelStopsAtRowBoundary(t *testing.T) {
	rec := &recorder{}
	entered := make(chan int, 8)
	release := make(chan struct{})
	a, b := newFake("a", rec), newFake("b", rec)
	a.next = func(ctx context.Context, index int) error {
		entered <- index
		<-release
		return nil
	}
	c := newTestCoordinator(t, []Extractor{a.extractor(), b.extractor()})

	run, err := c.Process(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := receive(t, entered); got != 0 {
		t.Fatalf("expected row 0 first, got %d", got)
	}
	c.Cancel()
	close(release)

	if err := waitRun(t, run); err != nil {
		t.Fatalf("expected cancelled run to have no error, got %v", err)
	}
	if run.State() != StateCancelled {
		t.Errorf("expected state cancelled, got %s", run.State())
	}
	if run.Processed() != 1 {
		t.Errorf("expected 1 processed row, got %d", run.Processed())
	}
	if !run.CancelRequested() {
		t.Error("expected cancel to be recorded")
	}
	want := []string{"start", "row:0", "complete"}
	for _, name := range []string{"a", "b"} {
		if diff := cmp.Diff(want, phases(rec.of(name))); diff != "" {
			t.Errorf("extractor %s call order mismatch (-want +got):\n%s", name, diff)
		}
	}
	for _, cl := range rec.of("a") {
		if cl.ctxErr != nil {
			t.Errorf("expected hook context to survive cancel, %s got %v", cl.phase, cl.ctxErr)
		}
	}
}

func TestCancelWithoutActiveRun(t *testing.T) {
	c := newTestCoordinator(t, []Extractor{newFake("a", &recorder{}).extractor()})
	c.Cancel()

	run, err := c.Process(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitRun(t, run)

	c.Cancel()
	if run.State() != StateSucceeded {
		t.Errorf("expected cancel on finished run to be a no-op, got %s", run.State())
	}
	if run.CancelRequested() {
		t.Error("expected no cancel to be recorded on a finished run")
	}
}

func TestHookFailureFailsRun(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	a, b := newFake("a", rec), newFake("b", rec)
	a.next = func(ctx context.Context, index int) error {
		if index == 1 {
			return boom
		}
		return nil
	}
	b.delay = 10 * time.Millisecond
	c := newTestCoordinator(t, []Extractor{a.extractor(), b.extractor()})

	run, err := c.Process(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runErr := waitRun(t, run)

	if run.State() != StateFailed {
		t.Errorf("expected state failed, got %s", run.State())
	}
	if !errors.Is(runErr, boom) {
		t.Errorf("expected run error to wrap boom, got %v", runErr)
	}
	appErr, ok := apperrors.AsAppError(run.Err())
	if !ok || appErr.Code != apperrors.ErrCodeExtractorFailed {
		t.Fatalf("expected EXTRACTOR_FAILED, got %v", run.Err())
	}
	want := map[string]any{"extractor": "a", "phase": "row", "index": 1}
	if diff := cmp.Diff(want, appErr.Details); diff != "" {
		t.Errorf("error details mismatch (-want +got):\n%s", diff)
	}
	if c.IsActive() {
		t.Error("expected coordinator to be inactive after failure")
	}
	// The sibling in the failing group still finished; nothing ran afterwards.
	if diff := cmp.Diff([]string{"start", "row:0", "row:1"}, phases(rec.of("b"))); diff != "" {
		t.Errorf("sibling call order mismatch (-want +got):\n%s", diff)
	}
	if info := run.Info(); !strings.Contains(info.Error, "boom") {
		t.Errorf("expected info error to mention boom, got %q", info.Error)
	}
}

func TestHookPanicFailsRun(t *testing.T) {
	rec := &recorder{}
	a := newFake("a", rec)
	a.start = func(ctx context.Context) error {
		panic("bad state")
	}
	c := newTestCoordinator(t, []Extractor{a.extractor(), newFake("b", rec).extractor()})

	run, err := c.Process(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runErr := waitRun(t, run)

	if run.State() != StateFailed {
		t.Errorf("expected state failed, got %s", run.State())
	}
	if runErr == nil || !strings.Contains(runErr.Error(), "panic: bad state") {
		t.Errorf("expected panic error, got %v", runErr)
	}
	if len(rec.phase(PhaseRow)) != 0 {
		t.Errorf("expected no rows after failed start, got %d", len(rec.phase(PhaseRow)))
	}
}

func TestStateIsPrivatePerRunAndExtractor(t *testing.T) {
	rec := &recorder{}
	a, b := newFake("a", rec), newFake("b", rec)
	c := newTestCoordinator(t, []Extractor{a.extractor(), b.extractor()})

	for _, n := range []int{3, 2} {
		run, err := c.Process(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		waitRun(t, run)
	}

	a1, a2 := receive(t, a.states), receive(t, a.states)
	b1, b2 := receive(t, b.states), receive(t, b.states)

	if diff := cmp.Diff([]int{0, 1, 2}, a1.seen); diff != "" {
		t.Errorf("first run state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, a2.seen); diff != "" {
		t.Errorf("second run state mismatch (-want +got):\n%s", diff)
	}
	if a1 == a2 || b1 == b2 {
		t.Error("expected a fresh state per run")
	}
	if a1 == b1 || a2 == b2 {
		t.Error("expected a distinct state per extractor")
	}
}

func TestProcessReplacesRecordedRun(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	a := newFake("a", &recorder{})
	a.next = func(ctx context.Context, index int) error {
		once.Do(func() { <-release })
		return nil
	}
	c := newTestCoordinator(t, []Extractor{a.extractor()})

	first, err := c.Process(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Process(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Current() != second {
		t.Error("expected the latest run to be recorded")
	}
	if !first.CancelRequested() {
		t.Error("expected the replaced run to be cancelled")
	}
	close(release)
	waitRun(t, first)
	waitRun(t, second)
}

func TestStopAbortsRun(t *testing.T) {
	entered := make(chan struct{}, 1)
	a := newFake("a", &recorder{})
	a.next = func(ctx context.Context, index int) error {
		entered <- struct{}{}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTimeout):
			return nil
		}
	}
	c := newTestCoordinator(t, []Extractor{a.extractor()})

	run, err := c.Process(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	receive(t, entered)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	if run.State() != StateFailed {
		t.Errorf("expected aborted run to fail, got %s", run.State())
	}
	if !errors.Is(run.Err(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", run.Err())
	}
	if _, err := c.Process(1); !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE after stop, got %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}

func TestStopWaitsForRunsLaunchedConcurrently(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := newTestCoordinator(t, []Extractor{newFake("a", &recorder{}).extractor()})

		var (
			mu       sync.Mutex
			launched []*Run
			wg       sync.WaitGroup
		)
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					run, err := c.Process(0)
					if err != nil {
						if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
							t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
						}
						return
					}
					mu.Lock()
					launched = append(launched, run)
					mu.Unlock()
				}
			}()
		}

		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		if err := c.Stop(ctx); err != nil {
			t.Fatalf("unexpected stop error: %v", err)
		}
		cancel()
		wg.Wait()

		mu.Lock()
		for _, run := range launched {
			if !run.State().Terminal() {
				t.Errorf("expected run %s to be terminal after Stop, got %s", run.ID(), run.State())
			}
		}
		mu.Unlock()
	}
}

func TestNewCoordinatorValidatesExtractors(t *testing.T) {
	rec := &recorder{}
	tests := []struct {
		name string
		exts []Extractor
	}{
		{"empty name", []Extractor{newFake("", rec).extractor()}},
		{"duplicate name", []Extractor{newFake("a", rec).extractor(), newFake("a", rec).extractor()}},
		{"nil extractor", []Extractor{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinator(tt.exts, WithLogger(logger.NewNop()))
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}

	if _, err := NewCoordinator(nil, WithLogger(logger.NewNop()), WithMaxRows(-1)); err == nil {
		t.Error("expected error for negative max rows")
	}
}

func TestCoordinatorComponent(t *testing.T) {
	rec := &recorder{}
	c := newTestCoordinator(t, []Extractor{newFake("product", rec).extractor(), newFake("shop", rec).extractor()}, WithMaxRows(10))

	var _ component.Component = c
	var _ component.Describable = c

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy || h.Message != "idle" {
		t.Errorf("expected healthy/idle, got %s/%s", h.Status, h.Message)
	}
	desc := c.Describe()
	if desc.Details != "extractors=product,shop max_rows=10" {
		t.Errorf("unexpected details %q", desc.Details)
	}

	run, err := c.Process(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitRun(t, run)
	if h := c.Health(ctx); !strings.Contains(h.Message, run.ID()) {
		t.Errorf("expected health message to mention run id, got %q", h.Message)
	}
}
