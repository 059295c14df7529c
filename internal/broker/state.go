package broker

import (
	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
)

// state is the broker's private, refreshable view of account and
// position data. It is never exposed directly; callers read it through
// Core's public accessors, which always run the staleness handler
// first.
type state struct {
	cash          *money.Money
	equity        *money.Money
	positions     map[string]models.Position
	dayTradeCount *int
	updatedAt     money.TradingDateTime
	isStale       bool
}

// inGoodOrder reports whether every required field is populated. A
// refresh that leaves any of these nil means the backend is broken.
func (s *state) inGoodOrder() bool {
	return s.cash != nil && s.equity != nil && s.positions != nil && s.dayTradeCount != nil
}

func (s *state) reset() {
	s.cash = nil
	s.equity = nil
	s.positions = nil
	s.dayTradeCount = nil
}
