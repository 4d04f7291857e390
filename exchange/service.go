package exchange

import (
	"context"
	"fmt"

	"go-trade-game"
)

// Service interface for converting user supplied amounts from one currency to another
type Service interface {
	Convert(ctx context.Context, amount game.Amount, from game.Currency, to game.Currency) (game.Exchanged, error)
}

// service converts against a live Table
type service struct {
	table *Table
}

// NewService constructs a valid Service
func NewService(t *Table) Service {
	return &service{
		table: t,
	}
}

// Convert computes a conversion with the current live rates. Negative amounts are rejected.
func (s *service) Convert(_ context.Context, amount game.Amount, from game.Currency, to game.Currency) (game.Exchanged, error) {
	if !amount.Finite() || amount < 0 {
		return game.Exchanged{}, fmt.Errorf("convert amount %v: %w", float64(amount), game.ErrInvalidAmount)
	}
	return exchange(amount, from, to, s.table)
}
