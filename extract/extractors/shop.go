package extractors

import (
	"context"

	"github.com/kbukum/extractd/extract"
	"github.com/kbukum/extractd/logger"
)

// ShopName is the registered name of the shop extractor.
const ShopName = "shop"

// shopState is the shop extractor's private state for one run.
type shopState struct {
	names []string
}

type shop struct {
	delays Delays
	log    *logger.Logger
}

// NewShop returns the shop extractor.
func NewShop(delays Delays, log *logger.Logger) extract.Extractor {
	if log == nil {
		log = logger.Get("extract")
	}
	return extract.New[shopState](ShopName, &shop{
		delays: delays,
		log:    log.WithFields(map[string]interface{}{logger.FieldExtractor: ShopName}),
	})
}

func (s *shop) OnStart(_ context.Context, _ *shopState) error {
	s.log.Info("Init shop extractor")
	return nil
}

func (s *shop) OnNext(ctx context.Context, st *shopState, row extract.Row, index int) error {
	fields := map[string]interface{}{logger.FieldRowIndex: index, "row": row.String()}
	s.log.Info("Start processing shop row", fields)
	if err := sleep(ctx, s.delays.Row); err != nil {
		return err
	}
	st.names = append(st.names, row.Name)
	s.log.Info("End processing shop row", fields)
	return nil
}

func (s *shop) OnComplete(ctx context.Context, st *shopState) error {
	s.log.Info("Before shop completing")
	if err := sleep(ctx, s.delays.Complete); err != nil {
		return err
	}
	fields := map[string]interface{}{"rows": len(st.names)}
	if len(st.names) > 0 {
		fields["first"] = st.names[0]
		fields["last"] = st.names[len(st.names)-1]
	}
	s.log.Info("After shop completing", fields)
	return nil
}
