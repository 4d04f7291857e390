package main

import (
	"context"
	"flag"
	nhttp "net/http"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/handlers"
	"go-trade-game"
	"go-trade-game/config"
	"go-trade-game/http"
	"go-trade-game/rates"
	"go-trade-game/session"
)

func main() {
	configPath := flag.String("config", "", "path to config file, built-in game when empty")
	flag.Parse()

	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		level.Error(logger).Log("msg", "failed to load config", "err", err)
		os.Exit(1)
	}

	var rateService rates.Service
	if cfg.RateSource.Enabled {
		currencies := make([]game.Currency, 0, len(cfg.DefaultRates))
		for c := range cfg.DefaultRates {
			currencies = append(currencies, c)
		}
		rateService = rates.NewService(cfg.RateSource.URL, cfg.RateSource.APIKey, cfg.RateSource.Timeout, cfg.RateSource.Aliases, currencies)
		rateService = rates.NewLoggingService(log.With(logger, "component", "koreaexim_rest"), rateService)
		rateService = rates.NewCachingService(cfg.RateSource.CacheTTL, log.With(logger, "component", "rate_cache"), rateService)
		rateService = rates.NewLoggingService(log.With(logger, "component", "rate_cache"), rateService)
	}

	sessions, err := session.NewManager(context.Background(), session.FromConfig(cfg, rateService, log.With(logger, "component", "session")))
	if err != nil {
		level.Error(logger).Log("msg", "failed to start session", "err", err)
		os.Exit(1)
	}

	server := http.NewServer(sessions, log.With(logger, "component", "http"))

	logger.Log("msg", "listening", "addr", cfg.ListenAddr)
	if err := nhttp.ListenAndServe(cfg.ListenAddr, handlers.LoggingHandler(os.Stdout, server)); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
}
