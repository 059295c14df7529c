// Package tradectx builds the per-symbol StrategyContext the DSL
// evaluator reads from: a name -> value map derived from a Security and
// the broker's current state, plus the Security itself for crossover
// queries.
package tradectx

import (
	"github.com/eddiefleurent/trdr/internal/bar"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
)

// Identifier is one of the names the DSL grammar may reference inside a
// strategy. The full set is generated from this enumeration, never
// authored ad hoc.
type Identifier string

// The complete set of context identifiers, per the moving-average and
// average-volume timeframes plus the broker/account facts.
const (
	MA5             Identifier = "MA5"
	MA20            Identifier = "MA20"
	MA50            Identifier = "MA50"
	MA100           Identifier = "MA100"
	MA200           Identifier = "MA200"
	AV5             Identifier = "AV5"
	AV20            Identifier = "AV20"
	AV50            Identifier = "AV50"
	AV100           Identifier = "AV100"
	AV200           Identifier = "AV200"
	CurrentPrice    Identifier = "CURRENT_PRICE"
	CurrentVolume   Identifier = "CURRENT_VOLUME"
	AccountExposure Identifier = "ACCOUNT_EXPOSURE"
	OpenPositions   Identifier = "OPEN_POSITIONS"
	AvailableCash   Identifier = "AVAILABLE_CASH"
	AverageCost     Identifier = "AVERAGE_COST"
)

var maTimeframes = map[Identifier]money.Timeframe{
	MA5:   money.TimeframeD5,
	MA20:  money.TimeframeD20,
	MA50:  money.TimeframeD50,
	MA100: money.TimeframeD100,
	MA200: money.TimeframeD200,
}

var avTimeframes = map[Identifier]money.Timeframe{
	AV5:   money.TimeframeD5,
	AV20:  money.TimeframeD20,
	AV50:  money.TimeframeD50,
	AV100: money.TimeframeD100,
	AV200: money.TimeframeD200,
}

// TimeframeForIdentifier maps a moving-average identifier name (e.g.
// "MA20") to its Timeframe. It returns false for anything else,
// including average-volume identifiers — the grammar only allows
// moving-average names as CROSSED_ABOVE/CROSSED_BELOW operands.
func TimeframeForIdentifier(name string) (money.Timeframe, bool) {
	tf, ok := maTimeframes[Identifier(name)]
	return tf, ok
}

// Value is a context entry: either a Money amount or a bare decimal.
// Money values expose their amount; everything else coerces directly.
type Value struct {
	amount decimal.Decimal
}

// FromDecimal wraps a plain decimal as a context Value.
func FromDecimal(d decimal.Decimal) Value {
	return Value{amount: d}
}

// FromMoney wraps a Money's amount as a context Value.
func FromMoney(m money.Money) Value {
	return Value{amount: m.Amount()}
}

// FromInt wraps an integer count as a context Value.
func FromInt(n int) Value {
	return Value{amount: decimal.NewFromInt(int64(n))}
}

// Amount returns the value's decimal amount.
func (v Value) Amount() decimal.Decimal {
	return v.amount
}

// BrokerFacts is the subset of broker/account state the context builder
// needs for one symbol, per spec §4.G. AverageCost is nil when no
// position exists for the symbol.
type BrokerFacts struct {
	AccountExposure decimal.Decimal
	OpenPositions   int
	AvailableCash   money.Money
	AverageCost     *money.Money
}

// Context is the populated, read-only StrategyContext for one symbol
// within one trading cycle.
type Context struct {
	values   map[Identifier]Value
	security bar.Security
}

// Build constructs a Context for sec, given the broker's current facts.
// Moving-average and average-volume identifiers are present only when
// the security has enough history; AverageCost is present only when
// facts.AverageCost is non-nil.
func Build(sec bar.Security, facts BrokerFacts) *Context {
	c := &Context{values: make(map[Identifier]Value), security: sec}

	for id, tf := range maTimeframes {
		if v, ok, err := sec.MovingAverage(tf); err == nil && ok {
			c.values[id] = FromDecimal(v)
		}
	}
	for id, tf := range avTimeframes {
		if v, ok, err := sec.AverageVolume(tf); err == nil && ok {
			c.values[id] = FromInt(int(v))
		}
	}

	c.values[CurrentPrice] = FromDecimal(sec.CurrentPrice())
	c.values[CurrentVolume] = FromInt(int(sec.CurrentVolume()))
	c.values[AccountExposure] = FromDecimal(facts.AccountExposure)
	c.values[OpenPositions] = FromInt(facts.OpenPositions)
	c.values[AvailableCash] = FromMoney(facts.AvailableCash)
	if facts.AverageCost != nil {
		c.values[AverageCost] = FromMoney(*facts.AverageCost)
	}

	return c
}

// Lookup returns the named value and whether it is present.
func (c *Context) Lookup(name string) (Value, bool) {
	v, ok := c.values[Identifier(name)]
	return v, ok
}

// Security returns the Context's underlying Security.
func (c *Context) Security() (bar.Security, bool) {
	return c.security, true
}
