package config

import (
	"errors"
	"fmt"

	"go-trade-game"
)

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if c.ReferenceCurrency == "" {
		return errors.New("reference_currency is required")
	}
	if len(c.DefaultRates) == 0 {
		return errors.New("default_rates is required")
	}
	for currency, rate := range c.DefaultRates {
		if !game.Amount(rate).Finite() || rate <= 0 {
			return fmt.Errorf("default_rates.%s must be positive", currency)
		}
	}
	if r, ok := c.DefaultRates[c.ReferenceCurrency]; ok && r != 1 {
		return fmt.Errorf("default_rates.%s must be 1 for the reference currency", c.ReferenceCurrency)
	}
	if c.RateSource.Enabled {
		if c.RateSource.APIKey == "" {
			return errors.New("rate_source.api_key is required when rate_source.enabled")
		}
		if c.RateSource.Timeout <= 0 {
			return errors.New("rate_source.timeout must be positive")
		}
	}
	if len(c.Participants) < 2 {
		return errors.New("at least two participants are required")
	}
	seen := map[string]bool{}
	for i, p := range c.Participants {
		if p.Name == "" {
			return fmt.Errorf("participants[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("participants[%d].name %q is duplicated", i, p.Name)
		}
		seen[p.Name] = true
		if _, ok := c.DefaultRates[p.Currency]; !ok && p.Currency != c.ReferenceCurrency {
			return fmt.Errorf("participants[%d].currency %q has no default rate", i, p.Currency)
		}
		if !p.Balance.Finite() || p.Balance < 0 {
			return fmt.Errorf("participants[%d].balance cannot be negative", i)
		}
	}
	return nil
}
