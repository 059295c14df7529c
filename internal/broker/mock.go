package broker

import (
	"fmt"
	"sync"

	"github.com/eddiefleurent/trdr/internal/models"
	"github.com/eddiefleurent/trdr/internal/money"
)

// Mock is the default Backend: an in-memory account used when no live
// brokerage is configured. It fills every order immediately at the
// current reference price it's told about, and tracks which positions
// were opened on the current trading day.
type Mock struct {
	mu sync.Mutex

	cash          money.Money
	dayTradeCount int
	openedToday   map[string]bool
	positions     map[string]models.Position
	prices        map[string]money.Money
	now           money.TradingDateTime
	cancelCalls   int
}

// NewMock constructs a Mock funded with startingCash.
func NewMock(startingCash money.Money) *Mock {
	return &Mock{
		cash:        startingCash,
		openedToday: make(map[string]bool),
		positions:   make(map[string]models.Position),
		prices:      make(map[string]money.Money),
	}
}

// SetPrice installs the reference price Mock uses to fill orders for
// symbol.
func (m *Mock) SetPrice(symbol string, price money.Money) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

// Refresh implements Backend by returning its in-memory totals. Equity
// is cash plus the market value of every open position.
func (m *Mock) Refresh() (money.Money, money.Money, map[string]models.Position, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	equity := m.cash.Amount()
	positions := make(map[string]models.Position, len(m.positions))
	for symbol, pos := range m.positions {
		positions[symbol] = pos
		equity = equity.Add(pos.MarketValue().Amount())
	}
	return m.cash, money.New(equity), positions, m.dayTradeCount, nil
}

// PlaceOrder implements Backend by filling the order immediately at
// the installed reference price.
func (m *Mock) PlaceOrder(symbol string, side models.Side, amount money.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	price, ok := m.prices[symbol]
	if !ok {
		return fmt.Errorf("mock broker has no reference price for %s", symbol)
	}
	if price.Amount().IsZero() {
		return fmt.Errorf("mock broker reference price for %s is zero", symbol)
	}

	quantity := amount.Amount().Div(price.Amount())
	order, err := models.NewOrder(symbol, side, nil, &quantity, m.now)
	if err != nil {
		return err
	}
	order, err = order.Fill(price, m.now)
	if err != nil {
		return err
	}

	if side == models.SideBuy {
		m.cash, err = m.cash.Add(money.New(amount.Amount().Neg()))
		if err != nil {
			return err
		}
		m.openedToday[symbol] = true
	} else {
		proceeds := quantity.Mul(price.Amount())
		m.cash, err = m.cash.Add(money.New(proceeds))
		if err != nil {
			return err
		}
		if m.openedToday[symbol] {
			m.dayTradeCount++
		}
	}

	pos := m.positions[symbol]
	pos.Symbol = symbol
	pos.Orders = append(pos.Orders, order)
	if pos.IsFlat() {
		delete(m.positions, symbol)
		delete(m.openedToday, symbol)
	} else {
		m.positions[symbol] = pos
	}
	return nil
}

// CancelAllOrders implements Backend. The Mock never carries resting
// orders (every order fills immediately), so this only tracks the call
// for test assertions.
func (m *Mock) CancelAllOrders() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	return nil
}

// PositionOpenedToday implements Backend.
func (m *Mock) PositionOpenedToday(symbol string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openedToday[symbol], nil
}

// SetNow overrides the TradingDateTime the Mock stamps fills with.
func (m *Mock) SetNow(now money.TradingDateTime) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// CancelCalls reports how many times CancelAllOrders has been invoked.
func (m *Mock) CancelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelCalls
}
