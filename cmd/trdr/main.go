// Package main is the entry point for the trdr trading engine: it
// loads configuration, parses a strategy DSL file, wires the broker
// and security provider, and runs the trading cycle on a schedule.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eddiefleurent/trdr/internal/broker"
	"github.com/eddiefleurent/trdr/internal/config"
	"github.com/eddiefleurent/trdr/internal/dashboard"
	"github.com/eddiefleurent/trdr/internal/dsl/lexer"
	"github.com/eddiefleurent/trdr/internal/dsl/parser"
	"github.com/eddiefleurent/trdr/internal/engine"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/eddiefleurent/trdr/internal/observer"
	"github.com/eddiefleurent/trdr/internal/securities"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to configuration file")
	flag.Parse()

	logger := log.New(os.Stdout, "[TRDR] ", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Printf("failed to load config: %v", err)
		return 1
	}
	logger.Printf("starting trdr in %s mode", cfg.Environment.Mode)

	strategySrc, err := os.ReadFile(cfg.Strategy.Path) // #nosec G304 -- path comes from the operator's own config
	if err != nil {
		logger.Printf("failed to read strategy file %q: %v", cfg.Strategy.Path, err)
		return 1
	}
	tokens, err := lexer.Tokenize(string(strategySrc))
	if err != nil {
		logger.Printf("failed to tokenize strategy file: %v", err)
		return 1
	}
	strategy, err := parser.Parse(tokens)
	if err != nil {
		logger.Printf("failed to parse strategy file: %v", err)
		return 1
	}
	logger.Printf("loaded strategy %q", strategy.Name)

	policy, err := cfg.PDT.Build()
	if err != nil {
		logger.Printf("failed to build PDT policy: %v", err)
		return 1
	}

	mock := broker.NewMock(money.New(decimal.NewFromFloat(cfg.Broker.StartingCash)))
	brokerCore := broker.New(mock, policy, nil)
	cbBroker := broker.NewCircuitBreakerBroker(brokerCore)

	// The concrete market-data downloader is an external collaborator
	// (see §6 BarSource), not part of this core; MemorySource here is an
	// empty placeholder until a real BarSource is wired in for
	// cfg.Watchlist.
	source := securities.NewMemorySource()
	provider := securities.NewProvider(source)

	dashLogger := logrus.New()
	dashLogger.SetOutput(os.Stdout)
	if lvl, err := logrus.ParseLevel(cfg.Environment.LogLevel); err == nil {
		dashLogger.SetLevel(lvl)
	} else {
		dashLogger.SetLevel(logrus.InfoLevel)
	}
	obs := observer.NewLogrus(dashLogger)

	e := engine.New(cbBroker, provider, strategy, obs, logger)

	var dashServer *dashboard.Server
	if cfg.Dashboard.Enabled {
		dashServer = dashboard.NewServer(dashboard.Config{
			Port: cfg.Dashboard.Port,
		}, cbBroker, dashLogger)
		go func() {
			if err := dashServer.Start(); err != nil {
				logger.Printf("dashboard server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := dashServer.Shutdown(shutdownCtx); err != nil {
				logger.Printf("error shutting down dashboard: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("shutdown signal received, stopping")
		cancel()
	}()

	runCycle := func() {
		start := time.Now()
		err := e.Execute(ctx)
		if dashServer != nil {
			dashServer.RecordCycle(start, time.Since(start), err)
		}
		if err != nil {
			logger.Printf("trading cycle failed: %v", err)
		}
	}

	runCycle()

	ticker := time.NewTicker(cfg.GetCheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Println("trdr stopped")
			return 0
		case <-ticker.C:
			runCycle()
		}
	}
}
