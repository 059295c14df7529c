package models

import (
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
)

// PositionSide is the derived long/short direction of a Position.
type PositionSide string

// A Position's net size is always either long or short; a flat position
// (size == 0) has no meaningful side.
const (
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// Position is the accumulated record of every order placed for a
// symbol. All derived figures (Size, Side, AverageCost, MarketValue) are
// computed from Orders on demand — a Position with no orders has
// Size() == 0.
type Position struct {
	Symbol string
	Orders []Order
}

// Size returns the signed net quantity across all orders.
func (p Position) Size() decimal.Decimal {
	total := decimal.Zero
	for _, o := range p.Orders {
		total = total.Add(o.NetQuantity())
	}
	return total
}

// Side reports LONG if Size() > 0, SHORT otherwise.
func (p Position) Side() PositionSide {
	if p.Size().GreaterThan(decimal.Zero) {
		return PositionLong
	}
	return PositionShort
}

// AverageCost returns Σ(net_quantity·avg_fill_price) / size. It returns
// the zero Money if the position is flat.
func (p Position) AverageCost() money.Money {
	size := p.Size()
	if size.IsZero() {
		return money.New(decimal.Zero)
	}
	weighted := decimal.Zero
	for _, o := range p.Orders {
		if o.AvgFillPrice == nil {
			continue
		}
		weighted = weighted.Add(o.NetQuantity().Mul(o.AvgFillPrice.Amount()))
	}
	return money.New(weighted.Div(size))
}

// MarketValue returns Σ|net_quantity|·avg_fill_price.
func (p Position) MarketValue() money.Money {
	total := decimal.Zero
	for _, o := range p.Orders {
		if o.AvgFillPrice == nil {
			continue
		}
		total = total.Add(o.NetQuantity().Abs().Mul(o.AvgFillPrice.Amount()))
	}
	return money.New(total)
}

// IsFlat reports whether the position carries no net size.
func (p Position) IsFlat() bool {
	return p.Size().IsZero()
}
