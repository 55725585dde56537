package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/raykavin/coinalert"
	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/locale"
	"github.com/raykavin/coinalert/pkg/quote"
)

// Command line flags
var (
	provider     string
	interval     string
	initialDelay string
	language     string
	cacheTTL     string
	timeout      string
	symbolsFile  string
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "coinalert",
		Short:   "Crypto price alerts and watchlists over Telegram",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "Quote provider (coingecko or binance)")
	rootCmd.PersistentFlags().StringVar(&cacheTTL, "cache-ttl", "", "Per symbol quote cache lifetime (e.g. 30s)")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "", "HTTP timeout of the quote provider (e.g. 10s)")
	rootCmd.PersistentFlags().StringVar(&symbolsFile, "symbols", "", "JSON coin table replacing the built-in one")

	// Add commands
	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildSymbolsCmd())
	rootCmd.AddCommand(buildPriceCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot and the alert scheduler",
		RunE:  runBot,
	}

	runCmd.Flags().StringVarP(&interval, "interval", "i", "", "Time between alert checks (e.g. 1m)")
	runCmd.Flags().StringVar(&initialDelay, "initial-delay", "", "Delay before the first alert check (e.g. 10s)")
	runCmd.Flags().StringVarP(&language, "language", "l", "", "Default language for new users (en or ru)")

	return runCmd
}

func buildSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List the supported coins",
		Args:  cobra.NoArgs,
		RunE:  runSymbols,
	}
}

func buildPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price SYMBOL",
		Short: "Fetch one quote through the configured provider",
		Args:  cobra.ExactArgs(1),
		RunE:  runPrice,
	}
}

// loadSettings merges env files, environment variables and the flags that were set
func loadSettings(cmd *cobra.Command) (core.Settings, error) {
	settings, err := coinalert.LoadSettings(coinalert.DefaultEnvFiles...)
	if err != nil {
		return core.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		settings.Quotes.Provider = provider
	}
	if flags.Changed("language") {
		settings.Locale.Default = core.Language(language)
	}
	if flags.Changed("symbols") {
		settings.SymbolsFile = symbolsFile
	}

	durations := []struct {
		flag   string
		value  string
		target *time.Duration
	}{
		{"interval", interval, &settings.Scheduler.Interval},
		{"initial-delay", initialDelay, &settings.Scheduler.InitialDelay},
		{"cache-ttl", cacheTTL, &settings.Quotes.CacheTTL},
		{"timeout", timeout, &settings.Quotes.HTTPTimeout},
	}
	for _, d := range durations {
		if !flags.Changed(d.flag) {
			continue
		}
		parsed, err := str2duration.ParseDuration(d.value)
		if err != nil {
			return core.Settings{}, fmt.Errorf("invalid --%s %q: %w", d.flag, d.value, err)
		}
		*d.target = parsed
	}

	return settings, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	if err := coinalert.ValidateSettings(settings); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := coinalert.NewBot(ctx, &settings)
	if err != nil {
		return err
	}

	return bot.Run(ctx)
}

func runSymbols(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	reg, err := coinalert.LoadRegistry(settings)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Symbol", "Name", "CoinGecko", "Binance"})
	table.SetAutoFormatHeaders(false)

	for _, coin := range reg.Coins() {
		binancePair := coin.BinancePair
		if binancePair == "" {
			binancePair = "-"
		}
		table.Append([]string{string(coin.Symbol), coin.Name, coin.CoinGeckoID, binancePair})
	}

	table.Render()
	return nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	reg, err := coinalert.LoadRegistry(settings)
	if err != nil {
		return err
	}

	coin, err := reg.Resolve(args[0])
	if err != nil {
		return err
	}

	source, err := quote.New(settings.Quotes, reg)
	if err != nil {
		return err
	}

	ctx, cancel := withFetchTimeout(cmd.Context(), settings.Scheduler.FetchTimeout)
	defer cancel()

	q, err := source.FetchQuote(ctx, coin.Symbol)
	if err != nil {
		return err
	}

	catalog := locale.Default()
	lang := settings.Locale.Default

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Symbol", "Price", "24h", "Market cap", "Source"})
	table.SetAutoFormatHeaders(false)
	table.Append([]string{
		string(q.Symbol),
		"$" + catalog.Money(lang, q.Price),
		catalog.Change(lang, q.Change24h),
		"$" + catalog.Whole(lang, q.MarketCap),
		q.Source,
	})
	table.Render()

	return nil
}

// withFetchTimeout bounds ctx by timeout. A zero or negative timeout leaves it unbounded,
// matching the scheduler and the command handlers.
func withFetchTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
