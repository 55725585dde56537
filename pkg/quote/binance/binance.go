// Package binance implements core.QuoteSource with Binance spot 24h tickers.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/raykavin/coinalert/pkg/core"
)

const sourceName = "binance"

// Ticker reads quotes from the public 24h ticker endpoint. No credentials are needed.
type Ticker struct {
	client   *binance.Client
	registry core.Registry
	clock    func() time.Time
}

var _ core.QuoteSource = (*Ticker)(nil)

// TickerOption is a function that configures a Ticker
type TickerOption func(*Ticker)

// WithBaseURL points the client at a custom REST root
func WithBaseURL(baseURL string) TickerOption {
	return func(t *Ticker) {
		if baseURL != "" {
			t.client.BaseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the HTTP client used by the Binance SDK
func WithHTTPClient(httpClient *http.Client) TickerOption {
	return func(t *Ticker) {
		t.client.HTTPClient = httpClient
	}
}

// WithClock overrides the time source used to stamp quotes
func WithClock(clock func() time.Time) TickerOption {
	return func(t *Ticker) {
		t.clock = clock
	}
}

// NewTicker creates a quote source backed by Binance
func NewTicker(registry core.Registry, options ...TickerOption) *Ticker {
	ticker := &Ticker{
		client:   binance.NewClient("", ""),
		registry: registry,
		clock:    time.Now,
	}
	for _, option := range options {
		option(ticker)
	}
	return ticker
}

func (t *Ticker) Name() string { return sourceName }

// FetchQuote returns the last traded USDT price and 24h change of symbol.
// Binance does not publish market capitalization, so MarketCap is zero.
func (t *Ticker) FetchQuote(ctx context.Context, symbol core.Symbol) (core.Quote, error) {
	coin, err := t.registry.Resolve(string(symbol))
	if err != nil {
		return core.Quote{}, t.fail(symbol, err)
	}
	if coin.BinancePair == "" {
		return core.Quote{}, t.fail(coin.Symbol, fmt.Errorf("%s is not listed on binance", coin.Symbol))
	}

	stats, err := t.client.NewListPriceChangeStatsService().Symbol(coin.BinancePair).Do(ctx)
	if err != nil {
		return core.Quote{}, t.fail(coin.Symbol, fmt.Errorf("failed to get ticker %s: %w", coin.BinancePair, err))
	}
	if len(stats) == 0 || stats[0] == nil {
		return core.Quote{}, t.fail(coin.Symbol, fmt.Errorf("empty ticker for %s", coin.BinancePair))
	}

	price, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return core.Quote{}, t.fail(coin.Symbol, fmt.Errorf("invalid last price %q: %w", stats[0].LastPrice, err))
	}

	change := decimal.Zero
	if stats[0].PriceChangePercent != "" {
		change, err = decimal.NewFromString(stats[0].PriceChangePercent)
		if err != nil {
			return core.Quote{}, t.fail(coin.Symbol, fmt.Errorf("invalid price change %q: %w", stats[0].PriceChangePercent, err))
		}
	}

	return core.Quote{
		Symbol:     coin.Symbol,
		Price:      price.InexactFloat64(),
		Change24h:  change.InexactFloat64(),
		Source:     sourceName,
		ReceivedAt: t.clock(),
	}, nil
}

func (t *Ticker) fail(symbol core.Symbol, err error) error {
	return &core.QuoteError{Symbol: symbol, Source: sourceName, Err: err}
}
