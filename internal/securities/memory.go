package securities

import (
	"context"
	"sort"

	"github.com/eddiefleurent/trdr/internal/bar"
)

// MemorySource is an in-memory BarSource, useful for tests and for
// driving the engine against fixture data instead of a live vendor.
type MemorySource struct {
	history map[string][]bar.Bar
	current map[string]bar.Bar
}

// NewMemorySource constructs an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		history: make(map[string][]bar.Bar),
		current: make(map[string]bar.Bar),
	}
}

// Set installs the history and current bar for symbol, replacing any
// previous data.
func (m *MemorySource) Set(symbol string, history []bar.Bar, current bar.Bar) {
	m.history[symbol] = history
	m.current[symbol] = current
}

// ListSymbols implements BarSource.
func (m *MemorySource) ListSymbols(context.Context) ([]string, error) {
	symbols := make([]string, 0, len(m.current))
	for symbol := range m.current {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Bars implements BarSource.
func (m *MemorySource) Bars(_ context.Context, symbol string) ([]bar.Bar, error) {
	if _, ok := m.current[symbol]; !ok {
		return nil, &NoBarsForSymbolError{Symbol: symbol}
	}
	return m.history[symbol], nil
}

// CurrentBar implements BarSource.
func (m *MemorySource) CurrentBar(_ context.Context, symbol string) (bar.Bar, error) {
	b, ok := m.current[symbol]
	if !ok {
		return bar.Bar{}, &NoBarsForSymbolError{Symbol: symbol}
	}
	return b, nil
}
