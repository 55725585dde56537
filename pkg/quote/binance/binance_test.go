package binance

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/registry"
)

func newTickerServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTicker_FetchQuote(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","priceChange":"600.00","priceChangePercent":"1.190",
			"lastPrice":"51000.01","openPrice":"50400.01","highPrice":"51200.00","lowPrice":"50000.00"}`))
	}))
	t.Cleanup(server.Close)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticker := NewTicker(registry.Default(), WithBaseURL(server.URL), WithClock(func() time.Time { return now }))

	quote, err := ticker.FetchQuote(t.Context(), "BTC")
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/ticker/24hr?symbol=BTCUSDT", requested)
	assert.Equal(t, core.Symbol("BTC"), quote.Symbol)
	assert.InDelta(t, 51000.01, quote.Price, 1e-9)
	assert.InDelta(t, 1.19, quote.Change24h, 1e-9)
	assert.Zero(t, quote.MarketCap)
	assert.Equal(t, "binance", quote.Source)
	assert.Equal(t, now, quote.ReceivedAt)
}

func TestTicker_FetchQuoteFailures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		server := newTickerServer(t, http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`)
		ticker := NewTicker(registry.Default(), WithBaseURL(server.URL))

		_, err := ticker.FetchQuote(t.Context(), "ETH")
		require.ErrorIs(t, err, core.ErrQuoteUnavailable)
	})

	t.Run("bad price", func(t *testing.T) {
		server := newTickerServer(t, http.StatusOK, `{"symbol":"ETHUSDT","lastPrice":"n/a"}`)
		ticker := NewTicker(registry.Default(), WithBaseURL(server.URL))

		_, err := ticker.FetchQuote(t.Context(), "ETH")
		require.ErrorIs(t, err, core.ErrQuoteUnavailable)
	})

	t.Run("not listed", func(t *testing.T) {
		ticker := NewTicker(registry.Default(), WithBaseURL("http://127.0.0.1:1"))

		_, err := ticker.FetchQuote(t.Context(), "USDT")
		require.ErrorIs(t, err, core.ErrQuoteUnavailable)
	})

	t.Run("unsupported", func(t *testing.T) {
		ticker := NewTicker(registry.Default())

		_, err := ticker.FetchQuote(t.Context(), "NOPE")
		require.ErrorIs(t, err, core.ErrUnsupportedSymbol)
	})
}
