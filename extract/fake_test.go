package extract

import (
	"context"
	"sync"
	"time"
)

// call is one recorded hook invocation.
type call struct {
	extractor string
	phase     Phase
	index     int
	begin     time.Time
	end       time.Time
	ctxErr    error
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) of(name string) []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call
	for _, c := range r.calls {
		if c.extractor == name {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) phase(p Phase) []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call
	for _, c := range r.calls {
		if c.phase == p {
			out = append(out, c)
		}
	}
	return out
}

// fakeState is the private per-run state of a fake extractor.
type fakeState struct {
	seen []int
}

// fakeHooks records every call and lets tests inject behavior.
type fakeHooks struct {
	name  string
	rec   *recorder
	delay time.Duration

	start    func(ctx context.Context) error
	next     func(ctx context.Context, index int) error
	complete func(ctx context.Context) error

	// states receives the state pointer at completion.
	states chan *fakeState
}

func newFake(name string, rec *recorder) *fakeHooks {
	return &fakeHooks{name: name, rec: rec, states: make(chan *fakeState, 16)}
}

func (f *fakeHooks) extractor() Extractor {
	return New[fakeState](f.name, f)
}

func (f *fakeHooks) OnStart(ctx context.Context, _ *fakeState) error {
	c := call{extractor: f.name, phase: PhaseStart, index: -1, begin: time.Now()}
	var err error
	if f.start != nil {
		err = f.start(ctx)
	}
	time.Sleep(f.delay)
	c.end, c.ctxErr = time.Now(), ctx.Err()
	f.rec.add(c)
	return err
}

func (f *fakeHooks) OnNext(ctx context.Context, s *fakeState, _ Row, index int) error {
	c := call{extractor: f.name, phase: PhaseRow, index: index, begin: time.Now()}
	var err error
	if f.next != nil {
		err = f.next(ctx, index)
	}
	s.seen = append(s.seen, index)
	time.Sleep(f.delay)
	c.end, c.ctxErr = time.Now(), ctx.Err()
	f.rec.add(c)
	return err
}

func (f *fakeHooks) OnComplete(ctx context.Context, s *fakeState) error {
	c := call{extractor: f.name, phase: PhaseComplete, index: -1, begin: time.Now()}
	var err error
	if f.complete != nil {
		err = f.complete(ctx)
	}
	time.Sleep(f.delay)
	c.end, c.ctxErr = time.Now(), ctx.Err()
	f.rec.add(c)
	select {
	case f.states <- s:
	default:
	}
	return err
}
