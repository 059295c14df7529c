// Package engine implements the trading engine's one-shot execution
// cycle: cancel outstanding orders, iterate the watchlist, build a
// per-symbol context, evaluate the parsed strategy, and dispatch
// orders through the broker.
package engine

import (
	"context"
	"log"

	"github.com/eddiefleurent/trdr/internal/bar"
	"github.com/eddiefleurent/trdr/internal/broker"
	"github.com/eddiefleurent/trdr/internal/dsl/ast"
	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/eddiefleurent/trdr/internal/observer"
	"github.com/eddiefleurent/trdr/internal/securities"
	"github.com/eddiefleurent/trdr/internal/tradectx"
)

// Engine ties together a Broker, a SecurityProvider, one parsed
// Strategy, and an Observer for telemetry.
type Engine struct {
	broker   broker.Broker
	provider *securities.Provider
	strategy *ast.Strategy
	obs      observer.Observer
	logger   *log.Logger
}

// New constructs an Engine. obs defaults to observer.NoOp{} and logger
// to log.Default() when nil.
func New(b broker.Broker, provider *securities.Provider, strategy *ast.Strategy, obs observer.Observer, logger *log.Logger) *Engine {
	if obs == nil {
		obs = observer.NoOp{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{broker: b, provider: provider, strategy: strategy, obs: obs, logger: logger}
}

// Execute runs exactly one trading cycle, per §4.J: cancel outstanding
// orders, list securities, and for each, evaluate exit (if a position
// is open) or entry (if not), skipping symbols whose context is
// missing a value the strategy needs. Every other error propagates and
// aborts the cycle.
func (e *Engine) Execute(ctx context.Context) error {
	span := e.obs.StartSpan("engine.execute")
	defer span.End()

	if err := e.broker.CancelAllOrders(); err != nil {
		span.RecordError(err)
		span.SetStatus(false)
		return err
	}

	secs, err := e.provider.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(false)
		return err
	}

	for _, sec := range secs {
		if err := e.processSymbol(sec); err != nil {
			span.RecordError(err)
			span.SetStatus(false)
			return err
		}
	}

	span.SetStatus(true)
	return nil
}

func (e *Engine) processSymbol(sec bar.Security) error {
	symbolSpan := e.obs.StartSpan("engine.symbol")
	defer symbolSpan.End()
	symbolSpan.SetAttribute("symbol", sec.Symbol)

	facts, err := e.buildBrokerFacts(sec.Symbol)
	if err != nil {
		return err
	}
	tctx := tradectx.Build(sec, facts)

	existing, exists, err := e.broker.Position(sec.Symbol)
	if err != nil {
		return err
	}

	if exists {
		exit, err := e.strategy.Exit.EvalBool(tctx)
		if err != nil {
			if isMissingContextValue(err) {
				e.logger.Printf("skipping %s: %v", sec.Symbol, err)
				return nil
			}
			return err
		}
		if exit {
			sellAmount := money.New(existing.Size().Abs().Mul(sec.CurrentPrice()))
			return e.broker.PlaceOrder(sec.Symbol, models.SideSell, sellAmount)
		}
		return nil
	}

	entry, err := e.strategy.Entry.EvalBool(tctx)
	if err != nil {
		if isMissingContextValue(err) {
			e.logger.Printf("skipping %s: %v", sec.Symbol, err)
			return nil
		}
		return err
	}
	if !entry {
		return nil
	}

	amount, err := e.strategy.Sizing.Eval(tctx)
	if err != nil {
		return err
	}
	return e.broker.PlaceOrder(sec.Symbol, models.SideBuy, money.New(amount))
}

func (e *Engine) buildBrokerFacts(symbol string) (tradectx.BrokerFacts, error) {
	exposure, err := e.broker.AccountExposure()
	if err != nil {
		return tradectx.BrokerFacts{}, err
	}
	positions, err := e.broker.Positions()
	if err != nil {
		return tradectx.BrokerFacts{}, err
	}
	cash, err := e.broker.AvailableCash()
	if err != nil {
		return tradectx.BrokerFacts{}, err
	}

	facts := tradectx.BrokerFacts{
		AccountExposure: exposure,
		OpenPositions:   len(positions),
		AvailableCash:   cash,
	}
	if pos, ok, err := e.broker.Position(symbol); err == nil && ok {
		cost := pos.AverageCost()
		facts.AverageCost = &cost
	}
	return facts, nil
}

func isMissingContextValue(err error) bool {
	_, ok := err.(*ast.MissingContextValue)
	return ok
}
