package config

import (
	"time"

	"go-trade-game"
	"go-trade-game/rates"
)

const (
	DefaultListenAddr = ":8080"
	DefaultReference  = game.Currency("KRW")
	DefaultTimeout    = 5 * time.Second
	DefaultCacheTTL   = time.Hour
)

// DefaultRates used when no rates are configured or the rate source fails
func DefaultRates() game.Rates {
	return game.Rates{"KRW": 1, "USD": 1400, "JPY": 9, "CNY": 195}
}

// Default the four country chocolate game
func Default() *Config {
	cfg := &Config{
		Objective: []string{"cocoa", "sugar", "milk"},
		Participants: []ParticipantConfig{
			{Name: "Korea", Resources: []string{"rice", "electronics"}, Currency: "KRW", Balance: 50000},
			{Name: "USA", Resources: []string{"wheat", "cocoa"}, Currency: "USD", Balance: 30},
			{Name: "Japan", Resources: []string{"car", "milk"}, Currency: "JPY", Balance: 5000},
			{Name: "China", Resources: []string{"toy", "sugar"}, Currency: "CNY", Balance: 250},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.ReferenceCurrency == "" {
		c.ReferenceCurrency = DefaultReference
	}
	if len(c.DefaultRates) == 0 {
		c.DefaultRates = DefaultRates()
	}
	if c.RateSource.URL == "" {
		c.RateSource.URL = rates.ApiUrlBase
	}
	if c.RateSource.Timeout == 0 {
		c.RateSource.Timeout = DefaultTimeout
	}
	if c.RateSource.CacheTTL == 0 {
		c.RateSource.CacheTTL = DefaultCacheTTL
	}
	if c.RateSource.Aliases == nil {
		c.RateSource.Aliases = map[string]game.Currency{"CNH": "CNY"}
	}
}
