// Package pipeline provides composable, pull-based iteration.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, or ForEach, and each stage pulls from the previous one on demand.
// A predicate passed to TakeWhile is therefore evaluated only after the
// consumer has finished with the previous value, which is what the
// extraction run relies on to observe cancellation at row boundaries.
//
// # Usage
//
//	ids := pipeline.Range(1, n)
//	rows := pipeline.Map(ids, func(_ context.Context, id int) (Row, error) {
//	    return NewRow(id), nil
//	})
//	live := pipeline.TakeWhile(rows, func(Row) bool { return !cancelled() })
//	err := pipeline.ForEach(ctx, live, handle)
package pipeline
