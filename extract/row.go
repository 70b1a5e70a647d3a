package extract

import (
	"context"
	"fmt"

	"github.com/kbukum/extractd/logger"
	"github.com/kbukum/extractd/pipeline"
)

// Row is one unit of work. Rows are values and are never mutated once built.
type Row struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewRow builds the row for id with its derived name.
func NewRow(id int) Row {
	return Row{ID: id, Name: fmt.Sprintf("row:%02d", id)}
}

func (r Row) String() string {
	return fmt.Sprintf("Row(id=%d, name=%s)", r.ID, r.Name)
}

// RowSource supplies the batch for a run.
type RowSource interface {
	Rows(ctx context.Context, n int) ([]Row, error)
}

// RowSourceFunc adapts a function to RowSource.
type RowSourceFunc func(ctx context.Context, n int) ([]Row, error)

// Rows calls f.
func (f RowSourceFunc) Rows(ctx context.Context, n int) ([]Row, error) {
	return f(ctx, n)
}

// SequentialRows generates rows with IDs 1..n in ascending order.
type SequentialRows struct {
	Log *logger.Logger
}

// Rows returns exactly n rows; n <= 0 yields an empty batch.
func (s SequentialRows) Rows(ctx context.Context, n int) ([]Row, error) {
	rows := pipeline.Map(pipeline.Range(1, n), func(_ context.Context, id int) (Row, error) {
		return NewRow(id), nil
	})
	if s.Log != nil {
		rows = pipeline.Tap(rows, func(_ context.Context, r Row) error {
			s.Log.Debug("Row generated", map[string]interface{}{"row": r.String()})
			return nil
		})
	}
	return pipeline.Collect(ctx, rows)
}
