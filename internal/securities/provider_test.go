package securities

import (
	"context"
	"testing"

	"github.com/eddiefleurent/trdr/internal/bar"
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatBar(t *testing.T, close string) bar.Bar {
	t.Helper()
	c := decimal.RequireFromString(close)
	b, err := bar.New(money.TradingDateTime{}, c, c, c, c, 100)
	require.NoError(t, err)
	return b
}

func TestProvider_List(t *testing.T) {
	src := NewMemorySource()
	src.Set("AAPL", []bar.Bar{flatBar(t, "100")}, flatBar(t, "105"))
	src.Set("MSFT", []bar.Bar{flatBar(t, "200")}, flatBar(t, "205"))

	provider := NewProvider(src)
	list, err := provider.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Symbol)
	assert.Equal(t, "MSFT", list[1].Symbol)
}

func TestProvider_GetUnknownSymbolFails(t *testing.T) {
	provider := NewProvider(NewMemorySource())
	_, err := provider.Get(context.Background(), "NOPE")
	require.Error(t, err)
	var notFound *NoBarsForSymbolError
	require.ErrorAs(t, err, &notFound)
}
