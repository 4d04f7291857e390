package game

import (
	"math"

	"github.com/shopspring/decimal"
)

// Currency a currency code
type Currency string

// Amount a monetary amount... float, rounded for display only
type Amount float64

// Rate value of one unit of a currency in the reference currency
type Rate float64

// Rates maps currency codes to rates
type Rates map[Currency]Rate

// Exchanged result of a conversion
type Exchanged struct {
	Rate   Rate
	Amount Amount
}

// Balances maps currency codes to held amounts
type Balances map[Currency]Amount

// Get returns the balance held in currency, zero if none is held.
func (b Balances) Get(currency Currency) Amount {
	return b[currency]
}

// Clone returns an independent copy.
func (b Balances) Clone() Balances {
	c := make(Balances, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// Clone returns an independent copy.
func (r Rates) Clone() Rates {
	c := make(Rates, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Finite reports whether a is neither NaN nor infinite.
func (a Amount) Finite() bool {
	f := float64(a)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Round2 rounds to the 2-decimal display precision.
func (a Amount) Round2() decimal.Decimal {
	return decimal.NewFromFloat(float64(a)).Round(2)
}

// String formats with 2 decimals.
func (a Amount) String() string {
	return a.Round2().StringFixed(2)
}
