package account

import (
	"fmt"

	"go-trade-game"
)

// Seed initial state of one participant
type Seed struct {
	Name      string
	Resources []string
	Balances  game.Balances
}

// Account holdings of one participant
type Account struct {
	Name      string
	Balances  game.Balances
	Resources []string
}

// Registry holds one account per participant. The set of participants is fixed at construction.
// Registry is not concurrency safe, callers serialize access.
type Registry struct {
	accounts map[string]*Account

	// order participants in seed order, for display
	order []string
}

// NewRegistry creates an account per seed
func NewRegistry(seeds []Seed) (*Registry, error) {
	r := &Registry{
		accounts: make(map[string]*Account, len(seeds)),
	}
	for _, s := range seeds {
		if s.Name == "" {
			return nil, fmt.Errorf("participant name is required")
		}
		if _, ok := r.accounts[s.Name]; ok {
			return nil, fmt.Errorf("duplicate participant %q", s.Name)
		}
		r.accounts[s.Name] = &Account{
			Name:      s.Name,
			Balances:  s.Balances.Clone(),
			Resources: append([]string(nil), s.Resources...),
		}
		r.order = append(r.order, s.Name)
	}
	return r, nil
}

// Has reports whether participant is registered
func (r *Registry) Has(participant string) bool {
	_, ok := r.accounts[participant]
	return ok
}

func (r *Registry) account(participant string) (*Account, error) {
	a, ok := r.accounts[participant]
	if !ok {
		return nil, fmt.Errorf("account [%v]: %w", participant, game.ErrUnknownParticipant)
	}
	return a, nil
}

// Balances returns a copy of the participant's balances
func (r *Registry) Balances(participant string) (game.Balances, error) {
	a, err := r.account(participant)
	if err != nil {
		return nil, err
	}
	return a.Balances.Clone(), nil
}

// AdjustBalance adds delta, which may be negative, to the participant's balance in currency.
// The balance is created at zero if absent. No lower bound is enforced.
func (r *Registry) AdjustBalance(participant string, currency game.Currency, delta game.Amount) error {
	a, err := r.account(participant)
	if err != nil {
		return err
	}
	a.Balances[currency] = a.Balances.Get(currency) + delta
	return nil
}

// AddResource appends a resource descriptor. Resources are never removed.
func (r *Registry) AddResource(participant string, descriptor string) error {
	a, err := r.account(participant)
	if err != nil {
		return err
	}
	a.Resources = append(a.Resources, descriptor)
	return nil
}

// Resources returns a copy of the participant's resources
func (r *Registry) Resources(participant string) ([]string, error) {
	a, err := r.account(participant)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), a.Resources...), nil
}

// Snapshot returns copies of every account in seed order
func (r *Registry) Snapshot() []Account {
	out := make([]Account, 0, len(r.order))
	for _, name := range r.order {
		a := r.accounts[name]
		out = append(out, Account{
			Name:      a.Name,
			Balances:  a.Balances.Clone(),
			Resources: append([]string(nil), a.Resources...),
		})
	}
	return out
}
