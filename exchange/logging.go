package exchange

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go-trade-game"
)

// loggingService decorates an exchange.Service with logging
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

func (s *loggingService) Convert(ctx context.Context, amount game.Amount, from game.Currency, to game.Currency) (ex game.Exchanged, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"amount", float64(amount),
			"from", from,
			"to", to,
			"rate", float64(ex.Rate),
			"converted_amount", float64(ex.Amount),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}
