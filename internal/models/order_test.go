package models

import (
	"testing"

	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTDT(t *testing.T) money.TradingDateTime {
	t.Helper()
	tdt, err := money.FromUTC(weekdayInstant())
	require.NoError(t, err)
	return tdt
}

func TestNewOrder_RejectsBothOrNeitherOfAmountAndQuantity(t *testing.T) {
	tdt := mustTDT(t)
	amount := money.New(decimal.NewFromInt(1000))
	qty := decimal.NewFromInt(10)

	_, err := NewOrder("AAPL", SideBuy, nil, nil, tdt)
	assert.Error(t, err)

	_, err = NewOrder("AAPL", SideBuy, &amount, &qty, tdt)
	assert.Error(t, err)

	order, err := NewOrder("AAPL", SideBuy, &amount, nil, tdt)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
}

func TestNewOrder_AssignsDistinctIDs(t *testing.T) {
	tdt := mustTDT(t)
	amount := money.New(decimal.NewFromInt(1000))

	a, err := NewOrder("AAPL", SideBuy, &amount, nil, tdt)
	require.NoError(t, err)
	b, err := NewOrder("AAPL", SideBuy, &amount, nil, tdt)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestOrder_Fill_SetsStatusAndQuantityFilled(t *testing.T) {
	tdt := mustTDT(t)
	amount := money.New(decimal.NewFromInt(1000))
	order, err := NewOrder("AAPL", SideBuy, &amount, nil, tdt)
	require.NoError(t, err)

	price := money.New(decimal.NewFromInt(100))
	filled, err := order.Fill(price, tdt)
	require.NoError(t, err)
	assert.Equal(t, StatusFilled, filled.Status)
	assert.True(t, filled.QuantityFilled.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, filled.AvgFillPrice)
	assert.True(t, filled.AvgFillPrice.Amount().Equal(decimal.NewFromInt(100)))
}

func TestOrder_Fill_QuantityOrderFillsInFull(t *testing.T) {
	tdt := mustTDT(t)
	qty := decimal.NewFromInt(10)
	order, err := NewOrder("AAPL", SideBuy, nil, &qty, tdt)
	require.NoError(t, err)

	filled, err := order.Fill(money.New(decimal.NewFromInt(100)), tdt)
	require.NoError(t, err)
	assert.True(t, filled.QuantityFilled.Equal(qty))
}

func TestOrder_NetQuantity_SignsBySide(t *testing.T) {
	tdt := mustTDT(t)
	amount := money.New(decimal.NewFromInt(1000))

	buy, err := NewOrder("AAPL", SideBuy, &amount, nil, tdt)
	require.NoError(t, err)
	buy, err = buy.Fill(money.New(decimal.NewFromInt(100)), tdt)
	require.NoError(t, err)
	assert.True(t, buy.NetQuantity().Equal(decimal.NewFromInt(10)))

	sell, err := NewOrder("AAPL", SideSell, &amount, nil, tdt)
	require.NoError(t, err)
	sell, err = sell.Fill(money.New(decimal.NewFromInt(100)), tdt)
	require.NoError(t, err)
	assert.True(t, sell.NetQuantity().Equal(decimal.NewFromInt(-10)))
}

func TestWeekday_RejectsWeekend(t *testing.T) {
	assert.True(t, Weekday(weekdayInstant()))
	assert.False(t, Weekday(weekdayInstant().AddDate(0, 0, 4))) // Tuesday -> Saturday
}
