package session

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-trade-game"
	"go-trade-game/account"
	"go-trade-game/exchange"
	"go-trade-game/ledger"
	"go-trade-game/rates"
	"go-trade-game/settlement"
)

// Seed everything a session is created from
type Seed struct {
	Reference game.Currency
	Rates     rates.Loaded
	Accounts  []account.Seed

	// Objective resources a participant collects to finish the game
	Objective []string
}

// Session one game: exchange rates, accounts, ledger and the news override flag.
// Every operation holds the session lock, so settlements and rate changes never interleave.
type Session struct {
	mu sync.Mutex

	table      *exchange.Table
	accounts   *account.Registry
	ledger     *ledger.Ledger
	exchange   exchange.Service
	settlement settlement.Service

	objective []string

	// overrideActive news is in effect and rates may be overridden
	overrideActive bool

	origin    rates.Origin
	warning   string
	startedAt time.Time
}

// New builds a session from seed
func New(seed Seed, logger log.Logger) (*Session, error) {
	accounts, err := account.NewRegistry(seed.Accounts)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	table := exchange.NewTable(seed.Reference, seed.Rates.Rates)
	for _, a := range seed.Accounts {
		for currency := range a.Balances {
			if _, err := table.Get(currency); err != nil {
				return nil, fmt.Errorf("new session: participant [%v]: %w", a.Name, err)
			}
		}
	}
	l := ledger.New()

	var ex exchange.Service = exchange.NewService(table)
	ex = exchange.NewLoggingService(log.With(logger, "component", "exchange"), ex)

	var st settlement.Service = settlement.New(table, accounts, l)
	st = settlement.NewLoggingService(log.With(logger, "component", "settlement"), st)

	return &Session{
		table:      table,
		accounts:   accounts,
		ledger:     l,
		exchange:   ex,
		settlement: st,
		objective:  append([]string(nil), seed.Objective...),
		origin:     seed.Rates.Origin,
		warning:    seed.Rates.Warning,
		startedAt:  time.Now(),
	}, nil
}

// RateView one row of the rate board
type RateView struct {
	Currency game.Currency
	Rate     game.Rate
	Original game.Rate
}

// RateBoard live rates of every non-reference currency
type RateBoard struct {
	Reference      game.Currency
	Rates          []RateView
	OverrideActive bool
	Origin         rates.Origin
	Warning        string
	StartedAt      time.Time
}

// Rates returns the rate board
func (s *Session) Rates() RateBoard {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.table.Rates()
	original := s.table.Original()
	board := RateBoard{
		Reference:      s.table.Reference(),
		OverrideActive: s.overrideActive,
		Origin:         s.origin,
		Warning:        s.warning,
		StartedAt:      s.startedAt,
	}
	for _, c := range s.table.Currencies() {
		if c == board.Reference {
			continue
		}
		board.Rates = append(board.Rates, RateView{Currency: c, Rate: live[c], Original: original[c]})
	}
	return board
}

// Currencies known to the session, reference first
func (s *Session) Currencies() []game.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Currencies()
}

// Convert runs the conversion calculator against the live rates
func (s *Session) Convert(ctx context.Context, amount game.Amount, from game.Currency, to game.Currency) (game.Exchanged, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exchange.Convert(ctx, amount, from, to)
}

// Settle records a trade
func (s *Session) Settle(ctx context.Context, trade settlement.Trade) (settlement.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settlement.Settle(ctx, trade)
}

// SetOverride turns the news override on or off and reports whether the state changed.
// Turning it off restores every rate to the original snapshot.
func (s *Session) SetOverride(active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overrideActive == active {
		return false
	}
	s.overrideActive = active
	if !active {
		s.table.Restore()
	}
	return true
}

// OverrideRate sets a live rate while the news override is on
func (s *Session) OverrideRate(currency game.Currency, rate game.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.overrideActive {
		return fmt.Errorf("override [%v]: %w", currency, game.ErrOverrideInactive)
	}
	return s.table.Override(currency, rate)
}

// BalanceView one currency held by a participant
type BalanceView struct {
	Currency game.Currency
	Amount   game.Amount
}

// AccountView what a participant holds
type AccountView struct {
	Name      string
	Resources []string
	Balances  []BalanceView

	// Missing objective resources the participant does not hold yet
	Missing []string
}

// Accounts returns every participant in seed order, balances ordered like the rate table
func (s *Session) Accounts() []AccountView {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := map[game.Currency]int{}
	for i, c := range s.table.Currencies() {
		order[c] = i
	}

	var views []AccountView
	for _, a := range s.accounts.Snapshot() {
		v := AccountView{Name: a.Name, Resources: a.Resources, Missing: missing(s.objective, a.Resources)}
		for c, amount := range a.Balances {
			v.Balances = append(v.Balances, BalanceView{Currency: c, Amount: amount})
		}
		sort.Slice(v.Balances, func(i, j int) bool {
			return order[v.Balances[i].Currency] < order[v.Balances[j].Currency]
		})
		views = append(views, v)
	}
	return views
}

// missing objective resources not among held descriptors
func missing(objective []string, held []string) []string {
	out := []string{}
	for _, want := range objective {
		found := false
		for _, r := range held {
			if r == want || strings.HasPrefix(r, want+" ×") {
				found = true
				break
			}
		}
		if !found {
			out = append(out, want)
		}
	}
	return out
}

// Transactions returns the ledger in settlement order
func (s *Session) Transactions() []ledger.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Records()
}

// WriteCSV exports the ledger
func (s *Session) WriteCSV(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.WriteCSV(w)
}
