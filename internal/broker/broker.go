// Package broker implements the broker core described in the trading
// engine's component design: account/position state with a staleness
// and refresh discipline, order placement gated by a pluggable PDT
// policy, and cancel-all. A concrete backend satisfies the Backend
// interface (the in-memory Mock is the only one in this package); Core
// supplies the public contract every backend shares.
package broker

import (
	"fmt"
	"time"

	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/eddiefleurent/trdr/internal/pdt"
	"github.com/shopspring/decimal"
)

// staleDuration is the staleness window: any public call refreshes
// state if it hasn't been refreshed within this long.
const staleDuration = 10 * time.Minute

// Backend is what a concrete broker implementation supplies. Core
// handles staleness, PDT admission, and the public contract; Backend
// only talks to the outside world.
type Backend interface {
	// Refresh re-populates cash, equity, positions, and day-trade count
	// from the world. It must set every field state.inGoodOrder checks.
	Refresh() (cash money.Money, equity money.Money, positions map[string]models.Position, dayTradeCount int, err error)
	// PlaceOrder dispatches a single order to the backend.
	PlaceOrder(symbol string, side models.Side, amount money.Money) error
	// CancelAllOrders cancels all outstanding orders.
	CancelAllOrders() error
	// PositionOpenedToday reports whether symbol's current position was
	// opened during today's session.
	PositionOpenedToday(symbol string) (bool, error)
}

// Clock supplies "now" for the staleness check. Tests inject a fixed
// clock; production code uses money.Now.
type Clock func() (money.TradingDateTime, error)

// Core is the broker core: state plus the staleness/admission
// discipline layered over a Backend and a PDT Policy.
type Core struct {
	backend Backend
	policy  pdt.Policy
	clock   Clock

	state state
}

// New constructs a Core over backend, gated by policy. clock defaults
// to money.Now when nil.
func New(backend Backend, policy pdt.Policy, clock Clock) *Core {
	if clock == nil {
		clock = money.Now
	}
	return &Core{backend: backend, policy: policy, clock: clock}
}

// staleHandler runs before every public operation: if the state hasn't
// been refreshed within the staleness window, or was marked stale by a
// prior mutation, it is fully rebuilt from the backend.
func (c *Core) staleHandler() error {
	now, err := c.clock()
	if err != nil {
		return &BrokerError{Message: fmt.Sprintf("could not determine current time: %v", err)}
	}
	if !c.state.isStale && c.state.updatedAt != (money.TradingDateTime{}) && now.Sub(c.state.updatedAt) <= staleDuration {
		return nil
	}
	c.state.reset()
	cash, equity, positions, dayTradeCount, err := c.backend.Refresh()
	if err != nil {
		return &BrokerError{Message: fmt.Sprintf("refresh failed: %v", err)}
	}
	c.state.cash = &cash
	c.state.equity = &equity
	c.state.positions = positions
	c.state.dayTradeCount = &dayTradeCount
	c.state.updatedAt = now
	if !c.state.inGoodOrder() {
		return &BrokerError{Message: "broker state not in good order after refresh"}
	}
	c.state.isStale = false
	return nil
}

// AvailableCash returns the broker's current cash balance.
func (c *Core) AvailableCash() (money.Money, error) {
	if err := c.staleHandler(); err != nil {
		return money.Money{}, err
	}
	return *c.state.cash, nil
}

// Equity returns the broker's current total equity.
func (c *Core) Equity() (money.Money, error) {
	if err := c.staleHandler(); err != nil {
		return money.Money{}, err
	}
	return *c.state.equity, nil
}

// Positions returns every open position, keyed by symbol.
func (c *Core) Positions() (map[string]models.Position, error) {
	if err := c.staleHandler(); err != nil {
		return nil, err
	}
	out := make(map[string]models.Position, len(c.state.positions))
	for symbol, pos := range c.state.positions {
		out[symbol] = pos
	}
	return out, nil
}

// Position returns the position for symbol, and whether one exists.
func (c *Core) Position(symbol string) (models.Position, bool, error) {
	if err := c.staleHandler(); err != nil {
		return models.Position{}, false, err
	}
	pos, ok := c.state.positions[symbol]
	return pos, ok, nil
}

// AccountExposure returns (Σ qty·avg_cost) / equity, or 0 if equity is
// zero.
func (c *Core) AccountExposure() (decimal.Decimal, error) {
	if err := c.staleHandler(); err != nil {
		return decimal.Decimal{}, err
	}
	if c.state.equity.Amount().IsZero() {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	for _, pos := range c.state.positions {
		total = total.Add(pos.Size().Abs().Mul(pos.AverageCost().Amount()))
	}
	return total.Div(c.state.equity.Amount()), nil
}

// PositionExposure returns qty·avg_cost / equity for symbol, or 0 if
// there is no position or equity is zero.
func (c *Core) PositionExposure(symbol string) (decimal.Decimal, error) {
	if err := c.staleHandler(); err != nil {
		return decimal.Decimal{}, err
	}
	pos, ok := c.state.positions[symbol]
	if !ok || c.state.equity.Amount().IsZero() {
		return decimal.Zero, nil
	}
	return pos.Size().Abs().Mul(pos.AverageCost().Amount()).Div(c.state.equity.Amount()), nil
}

// PlaceOrder runs the full admission pipeline: refresh, build a
// pdt.Context, consult the active policy, and on approval dispatch to
// the backend. State is only marked stale once an order is actually
// dispatched — a rejected or failed attempt leaves the refreshed state
// in place.
func (c *Core) PlaceOrder(symbol string, side models.Side, amount money.Money) error {
	if err := c.staleHandler(); err != nil {
		return err
	}

	ctx := pdt.Context{
		Symbol:               symbol,
		Side:                 side,
		Amount:               &amount,
		RollingDayTradeCount: *c.state.dayTradeCount,
		Equity:               c.state.equity,
	}

	switch side {
	case models.SideBuy:
		ctx.PositionsOpenedToday = c.countPositionsOpenedToday()
	case models.SideSell:
		if _, ok := c.state.positions[symbol]; !ok {
			return &BrokerError{Message: fmt.Sprintf("cannot sell %s: no position exists", symbol)}
		}
		openedToday, err := c.backend.PositionOpenedToday(symbol)
		if err != nil {
			return &BrokerError{Message: fmt.Sprintf("could not determine if %s was opened today: %v", symbol, err)}
		}
		ctx.PositionOpenedToday = openedToday
	}

	decision, err := c.policy.Evaluate(ctx)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &PDTRuleViolation{Reason: decision.Reason}
	}

	if err := c.backend.PlaceOrder(symbol, side, amount); err != nil {
		return err
	}
	c.state.isStale = true
	return nil
}

// countPositionsOpenedToday counts how many of today's currently-open
// positions were opened today, for BUY-side PDT admission.
func (c *Core) countPositionsOpenedToday() int {
	count := 0
	for symbol := range c.state.positions {
		opened, err := c.backend.PositionOpenedToday(symbol)
		if err == nil && opened {
			count++
		}
	}
	return count
}

// CancelAllOrders cancels all outstanding orders, then marks state
// stale.
func (c *Core) CancelAllOrders() error {
	if err := c.staleHandler(); err != nil {
		return err
	}
	defer func() { c.state.isStale = true }()
	return c.backend.CancelAllOrders()
}
