package settlement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-trade-game"
	"go-trade-game/account"
	"go-trade-game/exchange"
	"go-trade-game/ledger"
)

// Trade a request to move goods from seller to buyer for price in currency
type Trade struct {
	Seller   string
	Buyer    string
	Item     string
	Quantity int
	Price    game.Amount
	Currency game.Currency
}

// Result of a successful settlement
type Result struct {
	Record         ledger.Record
	SellerBalances game.Balances
	BuyerBalances  game.Balances
}

// Service settles trades between participants
type Service interface {
	Settle(ctx context.Context, trade Trade) (Result, error)
}

// Engine validates trades and applies them to accounts and the ledger.
// Engine is not concurrency safe, callers serialize access.
type Engine struct {
	rates    *exchange.Table
	accounts *account.Registry
	ledger   *ledger.Ledger

	// now clock for ledger timestamps
	now func() time.Time
}

// New constructs a valid Engine
func New(rates *exchange.Table, accounts *account.Registry, l *ledger.Ledger) *Engine {
	return &Engine{
		rates:    rates,
		accounts: accounts,
		ledger:   l,
		now:      time.Now,
	}
}

// Descriptor names the resource a buyer receives
func Descriptor(item string, quantity int) string {
	return fmt.Sprintf("%s ×%d", item, quantity)
}

// Settle validates a trade and, only if every check passes, debits the buyer, credits the seller,
// hands the buyer the goods and appends a ledger record. A failed trade mutates nothing.
//
// When the buyer holds less than price in the trade currency, that balance is drawn to zero and the
// remainder, converted to the reference currency, is debited from the buyer's reference balance even
// if other currencies could cover it. Sellers keep the resources they sell.
func (e *Engine) Settle(_ context.Context, t Trade) (Result, error) {
	if err := e.validate(t); err != nil {
		return Result{}, err
	}

	reference := e.rates.Reference()
	holdings, err := e.accounts.Balances(t.Buyer)
	if err != nil {
		return Result{}, err
	}
	wealth, err := e.worth(holdings, reference)
	if err != nil {
		return Result{}, fmt.Errorf("buyer [%v] holdings: %w", t.Buyer, err)
	}
	priceRef, err := exchange.Convert(t.Price, t.Currency, reference, e.rates)
	if err != nil {
		return Result{}, fmt.Errorf("price: %w", err)
	}
	if wealth < priceRef {
		return Result{}, fmt.Errorf("buyer [%v] holds %v %v, price is %v %v: %w",
			t.Buyer, wealth, reference, priceRef, reference, game.ErrInsufficientFunds)
	}

	if err := e.debit(t, holdings, reference); err != nil {
		return Result{}, err
	}
	if err := e.accounts.AdjustBalance(t.Seller, t.Currency, t.Price); err != nil {
		return Result{}, fmt.Errorf("credit seller: %w", err)
	}
	if err := e.accounts.AddResource(t.Buyer, Descriptor(t.Item, t.Quantity)); err != nil {
		return Result{}, fmt.Errorf("transfer resource: %w", err)
	}

	record := e.ledger.Append(ledger.Record{
		Timestamp: e.now(),
		Seller:    t.Seller,
		Buyer:     t.Buyer,
		Item:      t.Item,
		Quantity:  t.Quantity,
		Price:     t.Price,
		Currency:  t.Currency,
	})

	sellerBalances, _ := e.accounts.Balances(t.Seller)
	buyerBalances, _ := e.accounts.Balances(t.Buyer)
	return Result{
		Record:         record,
		SellerBalances: sellerBalances,
		BuyerBalances:  buyerBalances,
	}, nil
}

// validate checks, in order: distinct participants, amounts, currency, then participants and item
func (e *Engine) validate(t Trade) error {
	if t.Seller == t.Buyer {
		return fmt.Errorf("trade [%v]: %w", t.Seller, game.ErrSameParticipant)
	}
	if !t.Price.Finite() || t.Price < 0 {
		return fmt.Errorf("price %v: %w", float64(t.Price), game.ErrInvalidAmount)
	}
	if t.Quantity < 1 {
		return fmt.Errorf("quantity %d: %w", t.Quantity, game.ErrInvalidAmount)
	}
	if _, err := e.rates.Get(t.Currency); err != nil {
		return fmt.Errorf("trade currency: %w", err)
	}
	for _, p := range []string{t.Seller, t.Buyer} {
		if !e.accounts.Has(p) {
			return fmt.Errorf("trade [%v]: %w", p, game.ErrUnknownParticipant)
		}
	}
	if strings.TrimSpace(t.Item) == "" {
		return fmt.Errorf("item is required: %w", game.ErrInvalidItem)
	}
	return nil
}

// worth sums holdings converted to the reference currency
func (e *Engine) worth(holdings game.Balances, reference game.Currency) (game.Amount, error) {
	currencies := make([]game.Currency, 0, len(holdings))
	for c := range holdings {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	var total game.Amount
	for _, c := range currencies {
		v, err := exchange.Convert(holdings[c], c, reference, e.rates)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

func (e *Engine) debit(t Trade, holdings game.Balances, reference game.Currency) error {
	held, ok := holdings[t.Currency]
	if held >= t.Price {
		if err := e.accounts.AdjustBalance(t.Buyer, t.Currency, -t.Price); err != nil {
			return fmt.Errorf("debit buyer: %w", err)
		}
		return nil
	}

	shortfall, err := exchange.Convert(t.Price-held, t.Currency, reference, e.rates)
	if err != nil {
		return fmt.Errorf("shortfall: %w", err)
	}
	if ok {
		if err := e.accounts.AdjustBalance(t.Buyer, t.Currency, -held); err != nil {
			return fmt.Errorf("debit buyer: %w", err)
		}
	}
	if err := e.accounts.AdjustBalance(t.Buyer, reference, -shortfall); err != nil {
		return fmt.Errorf("debit buyer shortfall: %w", err)
	}
	return nil
}
