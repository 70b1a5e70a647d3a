package extract

import "context"

// Task is one extractor's hooks bound to the private state of a single run.
type Task interface {
	OnStart(ctx context.Context) error
	OnNext(ctx context.Context, row Row, index int) error
	OnComplete(ctx context.Context) error
}

// Extractor is a unit of domain logic registered with a Coordinator.
// Begin is called once per run and must return a Task whose state is not
// shared with any other run or extractor.
type Extractor interface {
	Name() string
	Begin() Task
}

// Hooks are the lifecycle callbacks of an extractor whose per-run state is S.
// Every call of one run receives the same *S; no other extractor sees it.
type Hooks[S any] interface {
	OnStart(ctx context.Context, state *S) error
	OnNext(ctx context.Context, state *S, row Row, index int) error
	OnComplete(ctx context.Context, state *S) error
}

// New returns an Extractor that allocates a zero S for every run.
func New[S any](name string, hooks Hooks[S]) Extractor {
	return &typedExtractor[S]{name: name, hooks: hooks}
}

type typedExtractor[S any] struct {
	name  string
	hooks Hooks[S]
}

func (e *typedExtractor[S]) Name() string { return e.name }

func (e *typedExtractor[S]) String() string { return e.name }

func (e *typedExtractor[S]) Begin() Task {
	return &typedTask[S]{hooks: e.hooks, state: new(S)}
}

type typedTask[S any] struct {
	hooks Hooks[S]
	state *S
}

func (t *typedTask[S]) OnStart(ctx context.Context) error {
	return t.hooks.OnStart(ctx, t.state)
}

func (t *typedTask[S]) OnNext(ctx context.Context, row Row, index int) error {
	return t.hooks.OnNext(ctx, t.state, row, index)
}

func (t *typedTask[S]) OnComplete(ctx context.Context) error {
	return t.hooks.OnComplete(ctx, t.state)
}
