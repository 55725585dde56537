package coinalert

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/quote"
	"github.com/raykavin/coinalert/pkg/quote/coingecko"
)

// DefaultEnvFiles are read, when present, before the environment is consulted
var DefaultEnvFiles = []string{"rr.env", ".env"}

// Environment variable names
const (
	EnvTelegramToken       = "TELEGRAM_BOT_TOKEN"
	envTelegramUsers       = "COINALERT_TELEGRAM_USERS"
	envTelegramPollTimeout = "COINALERT_TELEGRAM_POLL_TIMEOUT"
	envQuoteProvider       = "COINALERT_QUOTE_PROVIDER"
	envCoinGeckoURL        = "COINALERT_COINGECKO_URL"
	envCoinGeckoAPIKey     = "COINALERT_COINGECKO_API_KEY"
	envBinanceURL          = "COINALERT_BINANCE_URL"
	envHTTPTimeout         = "COINALERT_HTTP_TIMEOUT"
	envCacheTTL            = "COINALERT_CACHE_TTL"
	envInterval            = "COINALERT_INTERVAL"
	envInitialDelay        = "COINALERT_INITIAL_DELAY"
	envFetchTimeout        = "COINALERT_FETCH_TIMEOUT"
	envFetchConcurrency    = "COINALERT_FETCH_CONCURRENCY"
	envBackoffMin          = "COINALERT_DELIVERY_BACKOFF_MIN"
	envBackoffMax          = "COINALERT_DELIVERY_BACKOFF_MAX"
	envLanguage            = "COINALERT_LANGUAGE"
	envSymbolsFile         = "COINALERT_SYMBOLS_FILE"
)

// placeholderToken is the value shipped in the sample env file
const placeholderToken = "your_actual_token_here"

// ErrMissingToken is returned when the Telegram transport is enabled without a token
var ErrMissingToken = errors.New("telegram bot token not found: create rr.env with " +
	"TELEGRAM_BOT_TOKEN=<token from @BotFather> or export TELEGRAM_BOT_TOKEN")

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() core.Settings {
	return core.Settings{
		Telegram: core.TelegramSettings{
			Enabled:     true,
			PollTimeout: 10 * time.Second,
		},
		Quotes: core.QuoteSettings{
			Provider:         quote.ProviderCoinGecko,
			CoinGeckoBaseURL: coingecko.DefaultBaseURL,
			HTTPTimeout:      10 * time.Second,
		},
		Scheduler: core.SchedulerSettings{
			Interval:           60 * time.Second,
			InitialDelay:       10 * time.Second,
			FetchTimeout:       10 * time.Second,
			FetchConcurrency:   4,
			DeliveryBackoffMin: time.Minute,
			DeliveryBackoffMax: 30 * time.Minute,
		},
		Locale: core.LocaleSettings{
			Default: core.DefaultLanguage,
		},
	}
}

// LoadSettings reads the env files that exist, then the environment, on top of DefaultSettings.
// Values already present in the environment win over the files.
func LoadSettings(envFiles ...string) (core.Settings, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return core.Settings{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	settings := DefaultSettings()

	if token := strings.Trim(strings.TrimSpace(os.Getenv(EnvTelegramToken)), `"'`); token != placeholderToken {
		settings.Telegram.Token = token
	}

	if raw := os.Getenv(envTelegramUsers); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return core.Settings{}, fmt.Errorf("invalid %s entry %q: %w", envTelegramUsers, field, err)
			}
			settings.Telegram.Users = append(settings.Telegram.Users, id)
		}
	}

	settings.Quotes.Provider = getEnvWithDefault(envQuoteProvider, settings.Quotes.Provider)
	settings.Quotes.CoinGeckoBaseURL = getEnvWithDefault(envCoinGeckoURL, settings.Quotes.CoinGeckoBaseURL)
	settings.Quotes.CoinGeckoAPIKey = getEnvWithDefault(envCoinGeckoAPIKey, settings.Quotes.CoinGeckoAPIKey)
	settings.Quotes.BinanceBaseURL = getEnvWithDefault(envBinanceURL, settings.Quotes.BinanceBaseURL)
	settings.Locale.Default = core.Language(getEnvWithDefault(envLanguage, string(settings.Locale.Default)))
	settings.SymbolsFile = getEnvWithDefault(envSymbolsFile, settings.SymbolsFile)

	durations := []struct {
		env    string
		target *time.Duration
	}{
		{envTelegramPollTimeout, &settings.Telegram.PollTimeout},
		{envHTTPTimeout, &settings.Quotes.HTTPTimeout},
		{envCacheTTL, &settings.Quotes.CacheTTL},
		{envInterval, &settings.Scheduler.Interval},
		{envInitialDelay, &settings.Scheduler.InitialDelay},
		{envFetchTimeout, &settings.Scheduler.FetchTimeout},
		{envBackoffMin, &settings.Scheduler.DeliveryBackoffMin},
		{envBackoffMax, &settings.Scheduler.DeliveryBackoffMax},
	}
	for _, d := range durations {
		if err := parseDurationEnv(d.env, d.target); err != nil {
			return core.Settings{}, err
		}
	}

	if raw := os.Getenv(envFetchConcurrency); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n <= 0 {
			return core.Settings{}, fmt.Errorf("invalid %s %q: must be a positive integer", envFetchConcurrency, raw)
		}
		settings.Scheduler.FetchConcurrency = n
	}

	return settings, nil
}

// parseDurationEnv overwrites target when key holds a duration such as 30s, 1m or 1d
func parseDurationEnv(key string, target *time.Duration) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	*target = d
	return nil
}

// ValidateSettings reports configuration that prevents the bot from running
func ValidateSettings(settings core.Settings) error {
	if settings.Telegram.Enabled && settings.Telegram.Token == "" {
		return ErrMissingToken
	}
	if settings.Scheduler.Interval <= 0 {
		return fmt.Errorf("%w: scheduler interval must be positive", core.ErrInvalidArgument)
	}
	switch settings.Locale.Default {
	case core.LanguageEnglish, core.LanguageRussian:
	default:
		return fmt.Errorf("%w: unsupported language %q", core.ErrInvalidArgument, settings.Locale.Default)
	}
	return nil
}
