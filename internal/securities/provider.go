// Package securities adapts a raw BarSource into Security values ready
// for the trading engine, surfacing NoBarsForSymbolError for symbols the
// source does not know. Provider does not check history length and never
// returns InsufficientBarsError; a Security with too little history
// reports the affected indicators as missing instead.
package securities

import (
	"context"
	"fmt"

	"github.com/eddiefleurent/trdr/internal/bar"
)

// NoBarsForSymbolError is returned when a symbol has no data at all in
// the underlying BarSource.
type NoBarsForSymbolError struct {
	Symbol string
}

func (e *NoBarsForSymbolError) Error() string {
	return fmt.Sprintf("no bars for symbol %q", e.Symbol)
}

// InsufficientBarsError describes a requested lookback that exceeds the
// history a BarSource can supply. Nothing in this package returns it.
type InsufficientBarsError struct {
	Symbol    string
	Requested int
	Available int
}

func (e *InsufficientBarsError) Error() string {
	return fmt.Sprintf("insufficient bars for %q: requested %d, have %d", e.Symbol, e.Requested, e.Available)
}

// BarSource is the external collaborator that materializes bar data.
// Concrete implementations (a market-data downloader, a replay fixture)
// live outside this core; the core only depends on this interface.
type BarSource interface {
	// ListSymbols returns the full watchlist the source can serve.
	ListSymbols(ctx context.Context) ([]string, error)
	// Bars returns symbol's history, oldest to newest, excluding the
	// current (in-progress) bar. It must return *NoBarsForSymbolError
	// if symbol is unknown to the source.
	Bars(ctx context.Context, symbol string) ([]bar.Bar, error)
	// CurrentBar returns symbol's most recent (possibly still forming)
	// bar. It must return *NoBarsForSymbolError if symbol is unknown.
	CurrentBar(ctx context.Context, symbol string) (bar.Bar, error)
}

// Provider materializes Security values for every symbol a BarSource
// knows about.
type Provider struct {
	source BarSource
}

// NewProvider constructs a Provider over source.
func NewProvider(source BarSource) *Provider {
	return &Provider{source: source}
}

// List returns one Security per symbol the underlying BarSource serves.
func (p *Provider) List(ctx context.Context) ([]bar.Security, error) {
	symbols, err := p.source.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}
	securities := make([]bar.Security, 0, len(symbols))
	for _, symbol := range symbols {
		sec, err := p.Get(ctx, symbol)
		if err != nil {
			return nil, err
		}
		securities = append(securities, sec)
	}
	return securities, nil
}

// Get materializes a single Security by symbol.
func (p *Provider) Get(ctx context.Context, symbol string) (bar.Security, error) {
	history, err := p.source.Bars(ctx, symbol)
	if err != nil {
		return bar.Security{}, err
	}
	current, err := p.source.CurrentBar(ctx, symbol)
	if err != nil {
		return bar.Security{}, err
	}
	return bar.New(symbol, current, history), nil
}
