// Package money provides the value types shared across the trading core:
// Money (decimal amounts with a currency), TradingDateTime (weekday-gated
// points in market time), and Timeframe (the closed set of lookback
// windows the DSL and indicators understand).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount tagged with a currency. All arithmetic in
// the trading core flows through Money or raw decimal.Decimal — never
// through binary floating point.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// DefaultCurrency is used when no currency is specified.
const DefaultCurrency = "USD"

// New creates a Money value in the default currency.
func New(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

// NewWithCurrency creates a Money value tagged with an explicit currency.
func NewWithCurrency(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// Amount returns the underlying decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Add returns the sum of two Money values. It fails if the currencies
// differ — there is no implicit conversion.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("cannot add different currencies: %s and %s", m.Currency(), other.Currency())
	}
	return NewWithCurrency(m.amount.Add(other.amount), m.Currency()), nil
}

// String renders the amount with two decimal places, currency-prefixed.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency(), m.amount.StringFixed(2))
}
