package broker

import (
	"time"

	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// Broker is the public contract §4.I describes: every operation a
// trading engine or dashboard needs from an account. *Core implements
// it directly; CircuitBreakerBroker wraps any Broker with trip/recover
// behavior around upstream failures.
type Broker interface {
	AvailableCash() (money.Money, error)
	Equity() (money.Money, error)
	Positions() (map[string]models.Position, error)
	Position(symbol string) (models.Position, bool, error)
	AccountExposure() (decimal.Decimal, error)
	PositionExposure(symbol string) (decimal.Decimal, error)
	PlaceOrder(symbol string, side models.Side, amount money.Money) error
	CancelAllOrders() error
}

// CircuitBreakerSettings configures the underlying gobreaker.
type CircuitBreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultCircuitBreakerSettings trips after half of at least 5 calls
// fail within a 1-minute window, and probes again after 30 seconds.
var DefaultCircuitBreakerSettings = CircuitBreakerSettings{
	MaxRequests:  1,
	Interval:     time.Minute,
	Timeout:      30 * time.Second,
	MinRequests:  5,
	FailureRatio: 0.5,
}

// CircuitBreakerBroker wraps a Broker with a gobreaker circuit breaker
// so a failing upstream doesn't block every subsequent call while it
// recovers.
type CircuitBreakerBroker struct {
	broker  Broker
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreakerBroker wraps broker with DefaultCircuitBreakerSettings.
func NewCircuitBreakerBroker(broker Broker) *CircuitBreakerBroker {
	return NewCircuitBreakerBrokerWithSettings(broker, DefaultCircuitBreakerSettings)
}

// NewCircuitBreakerBrokerWithSettings wraps broker with explicit settings.
func NewCircuitBreakerBrokerWithSettings(broker Broker, settings CircuitBreakerSettings) *CircuitBreakerBroker {
	cbSettings := gobreaker.Settings{
		Name:        "broker",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
	}
	return &CircuitBreakerBroker{broker: broker, breaker: gobreaker.NewCircuitBreaker(cbSettings)}
}

// AvailableCash implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) AvailableCash() (money.Money, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.broker.AvailableCash()
	})
	if err != nil {
		return money.Money{}, err
	}
	return result.(money.Money), nil
}

// Equity implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) Equity() (money.Money, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.broker.Equity()
	})
	if err != nil {
		return money.Money{}, err
	}
	return result.(money.Money), nil
}

// Positions implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) Positions() (map[string]models.Position, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.broker.Positions()
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]models.Position), nil
}

// Position implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) Position(symbol string) (models.Position, bool, error) {
	type posResult struct {
		pos models.Position
		ok  bool
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		pos, ok, err := c.broker.Position(symbol)
		return posResult{pos, ok}, err
	})
	if err != nil {
		return models.Position{}, false, err
	}
	r := result.(posResult)
	return r.pos, r.ok, nil
}

// AccountExposure implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) AccountExposure() (decimal.Decimal, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.broker.AccountExposure()
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return result.(decimal.Decimal), nil
}

// PositionExposure implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) PositionExposure(symbol string) (decimal.Decimal, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.broker.PositionExposure(symbol)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return result.(decimal.Decimal), nil
}

// PlaceOrder implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) PlaceOrder(symbol string, side models.Side, amount money.Money) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.broker.PlaceOrder(symbol, side, amount)
	})
	return err
}

// CancelAllOrders implements Broker through the circuit breaker.
func (c *CircuitBreakerBroker) CancelAllOrders() error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.broker.CancelAllOrders()
	})
	return err
}
