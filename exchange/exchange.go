package exchange

import (
	"fmt"
	"sort"

	"go-trade-game"
)

// Table holds the live exchange rates and the snapshot they were initialised from.
// Rates are the value of one unit of a currency in the reference currency.
// Table is not concurrency safe, callers serialize access.
type Table struct {
	// reference the currency pinned at 1
	reference game.Currency

	// live rates used by conversions
	live game.Rates

	// original snapshot captured once by NewTable, never mutated afterwards
	original game.Rates
}

// NewTable initialises live and original rates from independent copies of seed.
// The reference currency is forced to 1.
func NewTable(reference game.Currency, seed game.Rates) *Table {
	live := seed.Clone()
	live[reference] = 1
	return &Table{
		reference: reference,
		live:      live,
		original:  live.Clone(),
	}
}

// Reference returns the reference currency
func (t *Table) Reference() game.Currency {
	return t.reference
}

// Get returns the live rate of currency
func (t *Table) Get(currency game.Currency) (game.Rate, error) {
	rate, ok := t.live[currency]
	if !ok {
		return 0, fmt.Errorf("rate [%v]: %w", currency, game.ErrUnknownCurrency)
	}
	return rate, nil
}

// Override replaces the live rate of a non-reference currency. Conversions use it immediately.
func (t *Table) Override(currency game.Currency, rate game.Rate) error {
	if currency == t.reference {
		return fmt.Errorf("override [%v]: %w", currency, game.ErrReferenceCurrency)
	}
	if _, ok := t.live[currency]; !ok {
		return fmt.Errorf("override [%v]: %w", currency, game.ErrUnknownCurrency)
	}
	if !game.Amount(rate).Finite() || rate <= 0 {
		return fmt.Errorf("override [%v] rate %v: %w", currency, rate, game.ErrInvalidAmount)
	}
	t.live[currency] = rate
	return nil
}

// Restore resets every live rate to the original snapshot.
func (t *Table) Restore() {
	t.live = t.original.Clone()
}

// Rates returns a copy of the live rates
func (t *Table) Rates() game.Rates {
	return t.live.Clone()
}

// Original returns a copy of the original snapshot
func (t *Table) Original() game.Rates {
	return t.original.Clone()
}

// Currencies returns the known currency codes, reference first, the rest sorted.
func (t *Table) Currencies() []game.Currency {
	codes := make([]game.Currency, 0, len(t.live))
	for c := range t.live {
		if c != t.reference {
			codes = append(codes, c)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return append([]game.Currency{t.reference}, codes...)
}
