package core

import "time"

// Settings represents the main configuration for the application
type Settings struct {
	Telegram  TelegramSettings  // Telegram transport settings
	Quotes    QuoteSettings     // Price provider settings
	Scheduler SchedulerSettings // Alert polling settings
	Locale    LocaleSettings    // Message language settings

	SymbolsFile string // Optional JSON coin table replacing the embedded one
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Enabled     bool          // Whether the Telegram transport is started
	Token       string        // Telegram bot token
	Users       []int64       // Optional allow-list; empty means everyone may talk to the bot
	PollTimeout time.Duration // Long polling timeout
}

// QuoteSettings selects and configures the price provider
type QuoteSettings struct {
	Provider         string        // "coingecko" or "binance"
	CoinGeckoBaseURL string        // CoinGecko API root
	CoinGeckoAPIKey  string        // Optional demo API key
	BinanceBaseURL   string        // Optional Binance REST root override
	HTTPTimeout      time.Duration // Per request timeout of the HTTP client
	CacheTTL         time.Duration // Per symbol cache lifetime, zero disables caching
}

// SchedulerSettings configures the alert evaluation loop
type SchedulerSettings struct {
	Interval           time.Duration // Time between two ticks
	InitialDelay       time.Duration // Delay before the first tick
	FetchTimeout       time.Duration // Upper bound for one quote fetch inside a tick
	FetchConcurrency   int           // Quote fetches in flight during a tick
	DeliveryBackoffMin time.Duration // First pause after a failed delivery to a recipient
	DeliveryBackoffMax time.Duration // Longest pause after repeated failed deliveries
}

// LocaleSettings holds language defaults
type LocaleSettings struct {
	Default Language // Language used for users without a preference
}
