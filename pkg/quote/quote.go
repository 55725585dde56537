// Package quote builds the configured core.QuoteSource.
package quote

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/quote/binance"
	"github.com/raykavin/coinalert/pkg/quote/cache"
	"github.com/raykavin/coinalert/pkg/quote/coingecko"
)

// Provider names accepted in settings
const (
	ProviderCoinGecko = "coingecko"
	ProviderBinance   = "binance"
)

// New creates the quote source selected by settings, wrapped in a cache when CacheTTL is set
func New(settings core.QuoteSettings, registry core.Registry) (core.QuoteSource, error) {
	httpClient := &http.Client{Timeout: settings.HTTPTimeout}

	var source core.QuoteSource
	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case "", ProviderCoinGecko:
		source = coingecko.NewClient(registry,
			coingecko.WithBaseURL(settings.CoinGeckoBaseURL),
			coingecko.WithAPIKey(settings.CoinGeckoAPIKey),
			coingecko.WithHTTPClient(httpClient),
		)
	case ProviderBinance:
		source = binance.NewTicker(registry,
			binance.WithBaseURL(settings.BinanceBaseURL),
			binance.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("%w: unknown quote provider %q", core.ErrInvalidArgument, settings.Provider)
	}

	return cache.New(source, settings.CacheTTL), nil
}
