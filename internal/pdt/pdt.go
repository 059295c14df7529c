// Package pdt implements the Pattern-Day-Trading policy layer: three
// interchangeable strategies (Nun, Wiggle, Yolo) that decide whether a
// proposed order is admissible under PDT rules.
package pdt

import (
	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
)

// Context carries everything a Policy needs to decide on one order.
type Context struct {
	Symbol                  string
	Side                    models.Side
	Amount                  *money.Money
	PositionsOpenedToday    int
	RollingDayTradeCount    int
	PositionOpenedToday     bool
	Equity                  *money.Money
	BrokerSpecificData      map[string]any
}

// Decision is the outcome of a Policy evaluation.
type Decision struct {
	Allowed        bool
	Reason         string
	ModifiedParams map[string]any
}

// StrategyError reports a policy-internal invariant breach — a branch
// the policy's own design should make unreachable.
type StrategyError struct {
	Message string
}

func (e *StrategyError) Error() string {
	return e.Message
}

// Policy is the single entry point every PDT strategy implements.
type Policy interface {
	Evaluate(ctx Context) (Decision, error)
}
