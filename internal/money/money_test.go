package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToUSD(t *testing.T) {
	m := New(decimal.NewFromInt(100))
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
}

func TestNewWithCurrency_BlankFallsBackToDefault(t *testing.T) {
	m := NewWithCurrency(decimal.NewFromInt(100), "")
	assert.Equal(t, DefaultCurrency, m.Currency())
}

func TestNewWithCurrency_KeepsExplicitCurrency(t *testing.T) {
	m := NewWithCurrency(decimal.NewFromInt(100), "EUR")
	assert.Equal(t, "EUR", m.Currency())
}

func TestAdd_SumsSameCurrency(t *testing.T) {
	a := New(decimal.NewFromInt(100))
	b := New(decimal.NewFromInt(50))
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
}

func TestAdd_RejectsMismatchedCurrencies(t *testing.T) {
	a := NewWithCurrency(decimal.NewFromInt(100), "USD")
	b := NewWithCurrency(decimal.NewFromInt(100), "EUR")
	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestString_FormatsTwoDecimalPlaces(t *testing.T) {
	m := New(decimal.NewFromFloat(1234.5))
	assert.Equal(t, "USD 1234.50", m.String())
}
