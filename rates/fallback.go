package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-trade-game"
)

// Origin where a session's base rates came from
type Origin string

const (
	OriginLive    Origin = "live"
	OriginDefault Origin = "default"
)

// Loaded base rates together with their origin
type Loaded struct {
	Rates  game.Rates
	Origin Origin

	// Warning explains why defaults were used, empty for live rates
	Warning string
}

// LoadOrDefault fetches today's rates from s, keeping only the currencies of defaults.
// Any failure, including a response missing one of those currencies, falls back to
// defaults and is logged as a warning rather than returned.
// A nil s always yields defaults.
func LoadOrDefault(ctx context.Context, s Service, date time.Time, reference game.Currency, defaults game.Rates, logger log.Logger) Loaded {
	fallback := func(err error) Loaded {
		level.Warn(logger).Log("msg", "using default exchange rates", "err", err)
		return Loaded{Rates: withReference(defaults.Clone(), reference), Origin: OriginDefault, Warning: err.Error()}
	}

	if s == nil {
		return fallback(fmt.Errorf("no rate source configured: %w", game.ErrRateSourceUnavailable))
	}

	fetched, err := s.ExchangeRates(ctx, date)
	if err != nil {
		return fallback(err)
	}

	rates := game.Rates{}
	for currency := range defaults {
		if currency == reference {
			continue
		}
		rate, ok := fetched[currency]
		if !ok {
			return fallback(fmt.Errorf("missing rate for %v: %w", currency, game.ErrRateSourceMalformed))
		}
		rates[currency] = rate
	}
	return Loaded{Rates: withReference(rates, reference), Origin: OriginLive}
}

func withReference(rates game.Rates, reference game.Currency) game.Rates {
	rates[reference] = 1
	return rates
}
