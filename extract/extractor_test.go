package extract

import (
	"context"
	"testing"
)

type counterState struct {
	n int
}

type counterHooks struct{}

func (counterHooks) OnStart(context.Context, *counterState) error { return nil }

func (counterHooks) OnNext(_ context.Context, s *counterState, _ Row, _ int) error {
	s.n++
	return nil
}

func (counterHooks) OnComplete(context.Context, *counterState) error { return nil }

func TestTypedExtractorBeginAllocatesState(t *testing.T) {
	ext := New[counterState]("counter", counterHooks{})
	if ext.Name() != "counter" {
		t.Errorf("expected name counter, got %s", ext.Name())
	}

	ctx := context.Background()
	first, second := ext.Begin(), ext.Begin()
	for i := 0; i < 3; i++ {
		if err := first.OnNext(ctx, NewRow(i+1), i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	second.OnNext(ctx, NewRow(1), 0)

	if got := first.(*typedTask[counterState]).state.n; got != 3 {
		t.Errorf("expected first task to count 3, got %d", got)
	}
	if got := second.(*typedTask[counterState]).state.n; got != 1 {
		t.Errorf("expected second task to count 1, got %d", got)
	}
}
