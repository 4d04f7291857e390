package config

import (
	"time"

	"go-trade-game"
)

// Config game server configuration
type Config struct {
	ListenAddr        string              `yaml:"listen_addr"`
	ReferenceCurrency game.Currency       `yaml:"reference_currency"`
	DefaultRates      game.Rates          `yaml:"default_rates"`
	RateSource        RateSourceConfig    `yaml:"rate_source"`
	Objective         []string            `yaml:"objective"`
	Participants      []ParticipantConfig `yaml:"participants"`
}

// RateSourceConfig Korea Eximbank API settings
type RateSourceConfig struct {
	Enabled  bool                     `yaml:"enabled"`
	URL      string                   `yaml:"url"`
	APIKey   string                   `yaml:"api_key"`
	Timeout  time.Duration            `yaml:"timeout"`
	CacheTTL time.Duration            `yaml:"cache_ttl"`
	Aliases  map[string]game.Currency `yaml:"aliases"`
}

// ParticipantConfig initial state of a country
type ParticipantConfig struct {
	Name      string        `yaml:"name"`
	Resources []string      `yaml:"resources"`
	Currency  game.Currency `yaml:"currency"`
	Balance   game.Amount   `yaml:"balance"`
}
