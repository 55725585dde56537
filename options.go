package coinalert

import (
	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/locale"
	"github.com/raykavin/coinalert/pkg/logger"
)

// Option is a functional option for configuring a Bot instance
type Option func(*Bot)

// WithStorage sets the alert store, by default an in-memory buntdb database is used
func WithStorage(storage core.AlertStorage) Option {
	return func(bot *Bot) {
		bot.storage = storage
	}
}

// WithQuoteSource replaces the provider selected in the settings
func WithQuoteSource(source core.QuoteSource) Option {
	return func(bot *Bot) {
		bot.quotes = source
	}
}

// WithNotifier sets where triggered alerts are delivered
func WithNotifier(notifier core.Notifier) Option {
	return func(bot *Bot) {
		bot.notifier = notifier
	}
}

// WithRegistry replaces the embedded symbol table
func WithRegistry(registry core.Registry) Option {
	return func(bot *Bot) {
		bot.registry = registry
	}
}

// WithCatalog replaces the built-in message tables
func WithCatalog(catalog *locale.Catalog) Option {
	return func(bot *Bot) {
		bot.catalog = catalog
	}
}

// WithLogger sets the logger used by every component
func WithLogger(log logger.Logger) Option {
	return func(bot *Bot) {
		bot.log = log
	}
}

// WithLogLevel sets the log level. eg: logger.DebugLevel, logger.InfoLevel, etc.
func WithLogLevel(level logger.Level) Option {
	return func(bot *Bot) {
		bot.log.SetLevel(level)
	}
}
