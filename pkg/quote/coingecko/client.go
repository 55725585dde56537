// Package coingecko implements core.QuoteSource on top of the CoinGecko public API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/raykavin/coinalert/pkg/core"
)

// DefaultBaseURL is the public CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

const sourceName = "coingecko"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches USD quotes from CoinGecko's simple price endpoint.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// registry maps symbols to CoinGecko ids.
	registry core.Registry
	clock    func() time.Time
}

var _ core.QuoteSource = (*Client)(nil)

// Option is a configuration option for the CoinGecko client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIKey authenticates requests with a demo API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.header.Set("x-cg-demo-api-key", key)
		}
	}
}

// WithClock overrides the time source used to stamp quotes.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a new CoinGecko client resolving symbols through registry.
func NewClient(registry core.Registry, options ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{"Accept": []string{"application/json"}},
		registry:   registry,
		clock:      time.Now,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *Client) Name() string { return sourceName }

// simplePrice is one entry of the /simple/price response.
type simplePrice struct {
	USD          *float64 `json:"usd"`
	USD24hChange *float64 `json:"usd_24h_change"`
	USDMarketCap *float64 `json:"usd_market_cap"`
}

// FetchQuote returns the current price, 24h change and market cap for symbol.
// Any failure is reported as a *core.QuoteError.
func (c *Client) FetchQuote(ctx context.Context, symbol core.Symbol) (core.Quote, error) {
	coin, err := c.registry.Resolve(string(symbol))
	if err != nil {
		return core.Quote{}, c.fail(symbol, err)
	}

	query := url.Values{}
	query.Set("ids", coin.CoinGeckoID)
	query.Set("vs_currencies", "usd")
	query.Set("include_24hr_change", "true")
	query.Set("include_market_cap", "true")

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return core.Quote{}, c.fail(coin.Symbol, fmt.Errorf("creating request: %w", err))
	}
	req.Header = maps.Clone(c.header)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return core.Quote{}, c.fail(coin.Symbol, fmt.Errorf("performing request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return core.Quote{}, c.fail(coin.Symbol, fmt.Errorf("unexpected status code %d: %s", res.StatusCode, body))
	}

	var payload map[string]simplePrice
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return core.Quote{}, c.fail(coin.Symbol, fmt.Errorf("decoding response: %w", err))
	}

	entry, ok := payload[coin.CoinGeckoID]
	if !ok || entry.USD == nil {
		return core.Quote{}, c.fail(coin.Symbol, fmt.Errorf("no usd price for %s", coin.CoinGeckoID))
	}

	quote := core.Quote{
		Symbol:     coin.Symbol,
		Price:      *entry.USD,
		Source:     sourceName,
		ReceivedAt: c.clock(),
	}
	if entry.USD24hChange != nil {
		quote.Change24h = *entry.USD24hChange
	}
	if entry.USDMarketCap != nil {
		quote.MarketCap = *entry.USDMarketCap
	}
	return quote, nil
}

func (c *Client) fail(symbol core.Symbol, err error) error {
	return &core.QuoteError{Symbol: symbol, Source: sourceName, Err: err}
}
