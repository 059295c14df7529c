// Package bar provides the OHLCV Bar value type and the Security
// aggregate that computes moving averages, average volume, and
// crossovers over a bar history.
package bar

import (
	"github.com/eddiefleurent/trdr/internal/money"
	"github.com/shopspring/decimal"
)

// ValidationError is returned when a Bar's OHLCV fields violate the
// construction invariants.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Bar is an immutable OHLCV summary for one trading day.
type Bar struct {
	TradingDateTime money.TradingDateTime
	Open            decimal.Decimal
	High            decimal.Decimal
	Low             decimal.Decimal
	Close           decimal.Decimal
	Volume          int64
}

// New constructs a Bar, validating that low <= open,close <= high and
// volume >= 0.
func New(tdt money.TradingDateTime, open, high, low, close decimal.Decimal, volume int64) (Bar, error) {
	if low.GreaterThan(high) {
		return Bar{}, &ValidationError{Message: "low price must be less than or equal to high price"}
	}
	if open.LessThan(low) || open.GreaterThan(high) {
		return Bar{}, &ValidationError{Message: "open price must be between low and high prices"}
	}
	if close.LessThan(low) || close.GreaterThan(high) {
		return Bar{}, &ValidationError{Message: "close price must be between low and high prices"}
	}
	if volume < 0 {
		return Bar{}, &ValidationError{Message: "volume cannot be negative"}
	}
	return Bar{
		TradingDateTime: tdt,
		Open:            open,
		High:            high,
		Low:             low,
		Close:           close,
		Volume:          volume,
	}, nil
}
