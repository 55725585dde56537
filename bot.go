package coinalert

import (
	"context"
	"fmt"

	"github.com/raykavin/coinalert/pkg/command"
	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/locale"
	"github.com/raykavin/coinalert/pkg/logger"
	"github.com/raykavin/coinalert/pkg/quote"
	"github.com/raykavin/coinalert/pkg/registry"
	"github.com/raykavin/coinalert/pkg/scheduler"
	"github.com/raykavin/coinalert/pkg/storage"
)

// Bot ties the chat transport, the alert store and the evaluation loop together
type Bot struct {
	settings *core.Settings
	log      logger.Logger

	registry core.Registry
	storage  core.AlertStorage
	quotes   core.QuoteSource
	notifier core.Notifier
	telegram core.NotifierWithStart
	catalog  *locale.Catalog

	handler   *command.Handler
	scheduler *scheduler.Scheduler
}

// NewBot creates a Bot from settings. Options may replace any collaborator,
// which is how tests run the bot without Telegram or the network.
func NewBot(ctx context.Context, settings *core.Settings, options ...Option) (*Bot, error) {
	bot := &Bot{
		settings: settings,
		log:      DefaultLog,
	}

	for _, option := range options {
		option(bot)
	}

	if bot.registry == nil {
		reg, err := LoadRegistry(*settings)
		if err != nil {
			return nil, err
		}
		bot.registry = reg
	}

	if bot.catalog == nil {
		bot.catalog = locale.Default()
	}

	if err := initializeStorage(bot); err != nil {
		return nil, err
	}

	if bot.quotes == nil {
		quotes, err := quote.New(settings.Quotes, bot.registry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize quote source: %w", err)
		}
		bot.quotes = quotes
	}

	bot.handler = command.New(bot.storage, bot.registry, bot.quotes, bot.catalog, bot.log,
		command.WithQuoteTimeout(settings.Scheduler.FetchTimeout))

	if err := initializeNotifications(ctx, bot); err != nil {
		return nil, err
	}

	if bot.notifier == nil {
		return nil, fmt.Errorf("%w: no notifier configured", core.ErrInvalidArgument)
	}

	bot.scheduler = scheduler.New(bot.storage, bot.quotes, bot.notifier, bot.catalog, bot.log,
		scheduler.WithInterval(settings.Scheduler.Interval),
		scheduler.WithInitialDelay(settings.Scheduler.InitialDelay),
		scheduler.WithFetchTimeout(settings.Scheduler.FetchTimeout),
		scheduler.WithFetchConcurrency(settings.Scheduler.FetchConcurrency),
		scheduler.WithDeliveryBackoff(settings.Scheduler.DeliveryBackoffMin, settings.Scheduler.DeliveryBackoffMax),
	)

	return bot, nil
}

// LoadRegistry returns the coin table named by settings.SymbolsFile, or the embedded one
func LoadRegistry(settings core.Settings) (*registry.Service, error) {
	if settings.SymbolsFile == "" {
		return registry.Default(), nil
	}

	reg, err := registry.FromFile(settings.SymbolsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize symbol registry: %w", err)
	}
	return reg, nil
}

// initializeStorage creates the in-memory alert store unless one was injected
func initializeStorage(bot *Bot) error {
	if bot.storage != nil {
		return nil
	}

	store, err := storage.FromMemory(storage.WithDefaultLanguage(bot.settings.Locale.Default))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	bot.storage = store
	return nil
}

// Handler returns the command handler used by the chat transport
func (bot *Bot) Handler() *command.Handler {
	return bot.handler
}

// Scheduler returns the alert evaluation loop
func (bot *Bot) Scheduler() *scheduler.Scheduler {
	return bot.scheduler
}

// Storage returns the alert store
func (bot *Bot) Storage() core.AlertStorage {
	return bot.storage
}

// Run starts the chat transport and the scheduler and blocks until ctx is done
func (bot *Bot) Run(ctx context.Context) error {
	bot.log.WithFields(map[string]any{
		"provider": bot.quotes.Name(),
		"interval": bot.settings.Scheduler.Interval.String(),
		"symbols":  len(bot.registry.Symbols()),
	}).Info("coinalert started")

	if bot.telegram != nil {
		bot.telegram.Start()
	}

	bot.scheduler.Start(ctx)

	<-ctx.Done()

	bot.log.Info("shutting down")
	bot.scheduler.Stop()

	if bot.telegram != nil {
		bot.telegram.Stop()
	}

	if closer, ok := bot.storage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			bot.log.WithError(err).Warn("failed to close storage")
		}
	}

	return nil
}
