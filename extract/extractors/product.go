package extractors

import (
	"context"
	"time"

	"github.com/kbukum/extractd/extract"
	"github.com/kbukum/extractd/logger"
)

// ProductName is the registered name of the product extractor.
const ProductName = "product"

// productState is the product extractor's private state for one run.
type productState struct {
	startedAt time.Time
	rows      int
	lastID    int
}

type product struct {
	delays Delays
	log    *logger.Logger
}

// NewProduct returns the product extractor.
func NewProduct(delays Delays, log *logger.Logger) extract.Extractor {
	if log == nil {
		log = logger.Get("extract")
	}
	return extract.New[productState](ProductName, &product{
		delays: delays,
		log:    log.WithFields(map[string]interface{}{logger.FieldExtractor: ProductName}),
	})
}

func (p *product) OnStart(_ context.Context, s *productState) error {
	s.startedAt = time.Now()
	p.log.Info("Init product extractor")
	return nil
}

func (p *product) OnNext(ctx context.Context, s *productState, row extract.Row, index int) error {
	fields := map[string]interface{}{logger.FieldRowIndex: index, "row": row.String()}
	p.log.Info("Start processing product row", fields)
	if err := sleep(ctx, p.delays.Row); err != nil {
		return err
	}
	s.rows++
	s.lastID = row.ID
	p.log.Info("End processing product row", fields)
	return nil
}

func (p *product) OnComplete(ctx context.Context, s *productState) error {
	p.log.Info("Before product completing")
	if err := sleep(ctx, p.delays.Complete); err != nil {
		return err
	}
	p.log.Info("After product completing", map[string]interface{}{
		"rows":       s.rows,
		"last_id":    s.lastID,
		"elapsed_ms": time.Since(s.startedAt).Milliseconds(),
	})
	return nil
}
