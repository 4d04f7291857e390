package settlement

import (
	"context"
	"time"

	"github.com/go-kit/log"
)

// loggingService decorates a settlement.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Settle(ctx context.Context, trade Trade) (result Result, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "settle",
			"seller", trade.Seller,
			"buyer", trade.Buyer,
			"item", trade.Item,
			"quantity", trade.Quantity,
			"price", float64(trade.Price),
			"currency", trade.Currency,
			"seq", result.Record.Seq,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Settle(ctx, trade)
}
