// Package models holds the Order and Position data types shared between
// the broker core and the trading engine.
package models

import (
	"fmt"
	"time"

	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

// The two sides the core supports.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType enumerates supported order types. The core only ever places
// market orders.
type OrderType string

// MarketOrder is the only OrderType the core emits.
const MarketOrder OrderType = "MARKET"

// Status is the lifecycle state of an Order.
type Status string

// The order lifecycle states named in spec §3.
const (
	StatusPending     Status = "PENDING"
	StatusFilled      Status = "FILLED"
	StatusPartialFill Status = "PARTIAL_FILL"
	StatusCancelled   Status = "CANCELLED"
	StatusRejected    Status = "REJECTED"
)

// ValidationError reports an Order invariant violation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Order is immutable once constructed; the one state transition, Fill,
// produces a new Order value rather than mutating in place.
type Order struct {
	ID              uuid.UUID
	Symbol          string
	DollarAmount    *money.Money // mutually exclusive with Quantity
	Quantity        *decimal.Decimal
	QuantityFilled  decimal.Decimal
	Side            Side
	Type            OrderType
	Status          Status
	AvgFillPrice    *money.Money
	CreatedAt       money.TradingDateTime
	FilledAt        *money.TradingDateTime
}

// NewOrder constructs a PENDING order, stamped with a fresh ID. Exactly
// one of dollarAmount or quantity must be provided.
func NewOrder(symbol string, side Side, dollarAmount *money.Money, quantity *decimal.Decimal, createdAt money.TradingDateTime) (Order, error) {
	if (dollarAmount == nil) == (quantity == nil) {
		return Order{}, &ValidationError{Message: "exactly one of dollar_amount or quantity must be set"}
	}
	return Order{
		ID:             uuid.New(),
		Symbol:         symbol,
		DollarAmount:   dollarAmount,
		Quantity:       quantity,
		QuantityFilled: decimal.Zero,
		Side:           side,
		Type:           MarketOrder,
		Status:         StatusPending,
		CreatedAt:      createdAt,
	}, nil
}

// validateStatusInvariants enforces the per-status rules from spec §3:
// PENDING carries no fill data, FILLED requires a full fill and
// filled_at, PARTIAL_FILL requires a strictly partial fill, and
// filled_at (whenever set) must land on a weekday — which TradingDateTime
// already guarantees by construction.
func (o Order) validateStatusInvariants() error {
	switch o.Status {
	case StatusPending:
		if o.AvgFillPrice != nil || o.FilledAt != nil || !o.QuantityFilled.IsZero() {
			return &ValidationError{Message: "pending order must have no fill price, quantity_filled=0, and no filled_at"}
		}
	case StatusFilled:
		if o.AvgFillPrice == nil || o.FilledAt == nil {
			return &ValidationError{Message: "filled order requires avg_fill_price and filled_at"}
		}
		if o.Quantity != nil && !o.QuantityFilled.Equal(*o.Quantity) {
			return &ValidationError{Message: "filled order must have quantity_filled == quantity_requested"}
		}
	case StatusPartialFill:
		if o.Quantity == nil {
			return &ValidationError{Message: "partial fill requires a requested quantity"}
		}
		if !(o.QuantityFilled.GreaterThan(decimal.Zero) && o.QuantityFilled.LessThan(*o.Quantity)) {
			return &ValidationError{Message: "partial fill requires 0 < quantity_filled < quantity_requested"}
		}
	}
	return nil
}

// Fill returns a new Order transitioned to FILLED at the given price and
// time. A dollar-amount order's filled quantity is the amount divided by
// the fill price.
func (o Order) Fill(price money.Money, at money.TradingDateTime) (Order, error) {
	out := o
	out.Status = StatusFilled
	out.AvgFillPrice = &price
	out.FilledAt = &at
	if out.Quantity != nil {
		out.QuantityFilled = *out.Quantity
	} else if out.DollarAmount != nil && !price.Amount().IsZero() {
		out.QuantityFilled = out.DollarAmount.Amount().Div(price.Amount())
	}
	if err := out.validateStatusInvariants(); err != nil {
		return Order{}, err
	}
	return out, nil
}

// NetQuantity returns the signed fill quantity: positive for BUY,
// negative for SELL.
func (o Order) NetQuantity() decimal.Decimal {
	if o.Side == SideSell {
		return o.QuantityFilled.Neg()
	}
	return o.QuantityFilled
}

func (o Order) String() string {
	return fmt.Sprintf("Order{%s %s status=%s filled=%s}", o.Side, o.Symbol, o.Status, o.QuantityFilled.String())
}

// Weekday mirrors money's weekday gate for callers that only have a
// time.Time on hand (e.g. report formatting) and need a quick check
// without constructing a TradingDateTime.
func Weekday(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}
