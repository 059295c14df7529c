package bar

import (
	"testing"

	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew_AcceptsConsistentOHLCV(t *testing.T) {
	_, err := New(money.TradingDateTime{}, d("100"), d("110"), d("90"), d("105"), 1000)
	assert.NoError(t, err)
}

func TestNew_RejectsLowGreaterThanHigh(t *testing.T) {
	_, err := New(money.TradingDateTime{}, d("100"), d("90"), d("110"), d("100"), 1000)
	assert.Error(t, err)
}

func TestNew_RejectsOpenOutsideRange(t *testing.T) {
	_, err := New(money.TradingDateTime{}, d("120"), d("110"), d("90"), d("100"), 1000)
	assert.Error(t, err)
}

func TestNew_RejectsCloseOutsideRange(t *testing.T) {
	_, err := New(money.TradingDateTime{}, d("100"), d("110"), d("90"), d("120"), 1000)
	assert.Error(t, err)
}

func TestNew_RejectsNegativeVolume(t *testing.T) {
	_, err := New(money.TradingDateTime{}, d("100"), d("110"), d("90"), d("100"), -1)
	assert.Error(t, err)
}

func TestNew_AcceptsFlatBarAtBoundary(t *testing.T) {
	b, err := New(money.TradingDateTime{}, d("100"), d("100"), d("100"), d("100"), 0)
	require.NoError(t, err)
	assert.True(t, b.Close.Equal(d("100")))
}
