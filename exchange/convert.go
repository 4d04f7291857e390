package exchange

import (
	"fmt"

	"go-trade-game"
)

// Convert converts amount between two currencies pivoting through the reference currency.
// Rates are read from the live table on every call.
func Convert(amount game.Amount, from game.Currency, to game.Currency, t *Table) (game.Amount, error) {
	ex, err := exchange(amount, from, to, t)
	if err != nil {
		return 0, err
	}
	return ex.Amount, nil
}

func exchange(amount game.Amount, from game.Currency, to game.Currency, t *Table) (game.Exchanged, error) {
	fromRate, err := t.Get(from)
	if err != nil {
		return game.Exchanged{}, fmt.Errorf("convert from: %w", err)
	}
	toRate, err := t.Get(to)
	if err != nil {
		return game.Exchanged{}, fmt.Errorf("convert to: %w", err)
	}
	if from == to {
		return game.Exchanged{Rate: 1, Amount: amount}, nil
	}
	return game.Exchanged{
		Rate:   fromRate / toRate,
		Amount: game.Amount(float64(amount) * float64(fromRate) / float64(toRate)),
	}, nil
}
