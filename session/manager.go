package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-trade-game"
	"go-trade-game/account"
	"go-trade-game/config"
	"go-trade-game/rates"
)

// Factory creates a fresh session
type Factory func(ctx context.Context) (*Session, error)

// Manager holds the current session and replaces it on reset
type Manager struct {
	factory Factory

	lock    sync.RWMutex
	current *Session
}

// NewManager creates the first session
func NewManager(ctx context.Context, factory Factory) (*Manager, error) {
	s, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{factory: factory, current: s}, nil
}

// Current session
func (m *Manager) Current() *Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current
}

// Reset discards the current session and starts a new one
func (m *Manager) Reset(ctx context.Context) (*Session, error) {
	s, err := m.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset session: %w", err)
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.current = s
	return s, nil
}

// FromConfig returns a Factory that loads today's rates from source, falling back to the
// configured defaults, and seeds participants from cfg. source may be nil.
func FromConfig(cfg *config.Config, source rates.Service, logger log.Logger) Factory {
	return func(ctx context.Context) (*Session, error) {
		timeout := cfg.RateSource.Timeout
		if timeout <= 0 {
			timeout = config.DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		loaded := rates.LoadOrDefault(ctx, source, time.Now(), cfg.ReferenceCurrency, cfg.DefaultRates, logger)

		seeds := make([]account.Seed, 0, len(cfg.Participants))
		for _, p := range cfg.Participants {
			seeds = append(seeds, account.Seed{
				Name:      p.Name,
				Resources: p.Resources,
				Balances:  game.Balances{p.Currency: p.Balance},
			})
		}

		logger.Log("msg", "starting session", "rates", loaded.Origin, "participants", len(seeds))
		return New(Seed{
			Reference: cfg.ReferenceCurrency,
			Rates:     loaded,
			Accounts:  seeds,
			Objective: cfg.Objective,
		}, logger)
	}
}
