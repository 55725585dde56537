// Package command implements the chat commands as transport independent handlers.
// Every handler returns the replies to send back; none of them talks to the chat API.
package command

//go:generate mockgen -package=command -destination=mock_core_test.go -source=../core/core.go QuoteSource,Notifier

import (
	"context"
	"errors"
	"time"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/locale"
	"github.com/raykavin/coinalert/pkg/logger"
)

// Command names as typed by users, without the leading slash
const (
	Start     = "start"
	Help      = "help"
	Price     = "price"
	Alert     = "alert"
	List      = "list"
	Watch     = "watch"
	Watchlist = "watchlist"
	Remove    = "remove"
	Unwatch   = "unwatch"
	Lang      = "lang"
)

// Descriptions is the command menu published to the chat platform, in display order.
var Descriptions = []struct {
	Name        string
	Description string
}{
	{Start, "Start the bot"},
	{Price, "Get current price, e.g. /price BTC"},
	{Alert, "Set price alert, e.g. /alert BTC 50000 above"},
	{List, "Show your active alerts"},
	{Watch, "Add a coin to your watchlist"},
	{Watchlist, "Show your watchlist with current prices"},
	{Remove, "Remove alerts and watchlist entry of a coin"},
	{Unwatch, "Remove a coin from your watchlist"},
	{Lang, "Change language / Изменить язык"},
	{Help, "Show help"},
}

// LanguageCallbackPrefix prefixes the callback data of the language keyboard buttons.
const LanguageCallbackPrefix = "lang_"

// Button is one inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Reply is one outbound message. Markdown marks text that is safe to send with Markdown parsing.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard []Button
}

// Handler serves every chat command against the shared store.
type Handler struct {
	store        core.AlertStorage
	registry     core.Registry
	quotes       core.QuoteSource
	catalog      *locale.Catalog
	log          logger.Logger
	clock        func() time.Time
	quoteTimeout time.Duration
}

// Option configures a Handler
type Option func(*Handler)

// WithClock overrides the time shown in replies
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithQuoteTimeout bounds every quote lookup made while answering a command
func WithQuoteTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		h.quoteTimeout = timeout
	}
}

// New creates a Handler
func New(store core.AlertStorage, registry core.Registry, quotes core.QuoteSource,
	catalog *locale.Catalog, log logger.Logger, options ...Option) *Handler {
	handler := &Handler{
		store:        store,
		registry:     registry,
		quotes:       quotes,
		catalog:      catalog,
		log:          log,
		clock:        time.Now,
		quoteTimeout: 10 * time.Second,
	}
	for _, option := range options {
		option(handler)
	}
	return handler
}

// Dispatch routes a command to its handler. Unknown commands get no reply.
func (h *Handler) Dispatch(ctx context.Context, user core.UserID, command string, args []string) []Reply {
	switch command {
	case Start, Help:
		return h.Start(user)
	case Price:
		return h.Price(ctx, user, args)
	case Alert:
		return h.Alert(user, args)
	case List:
		return h.List(user)
	case Watch:
		return h.Watch(user, args)
	case Watchlist:
		return h.Watchlist(ctx, user)
	case Remove:
		return h.Remove(user, args)
	case Unwatch:
		return h.Unwatch(user, args)
	case Lang:
		return h.Lang(user)
	}
	return nil
}

// language returns the user's language, falling back to the default on storage errors
func (h *Handler) language(user core.UserID) core.Language {
	lang, err := h.store.Language(user)
	if err != nil {
		h.log.WithError(err).WithField("user", user).Warn("failed to read language")
		return core.DefaultLanguage
	}
	return lang
}

func (h *Handler) text(lang core.Language, key locale.Key, args locale.Args) []Reply {
	return []Reply{{Text: h.catalog.T(lang, key, args)}}
}

func (h *Handler) markdown(text string) []Reply {
	return []Reply{{Text: text, Markdown: true}}
}

// failure logs an unexpected store error and returns the generic error reply
func (h *Handler) failure(lang core.Language, user core.UserID, command string, err error) []Reply {
	h.log.WithError(err).WithFields(map[string]any{"user": user, "command": command}).Error("command failed")
	return h.text(lang, locale.KeyInternalError, nil)
}

// fetchQuote looks up symbol with the handler's timeout
func (h *Handler) fetchQuote(ctx context.Context, symbol core.Symbol) (core.Quote, error) {
	if h.quoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.quoteTimeout)
		defer cancel()
	}

	quote, err := h.quotes.FetchQuote(ctx, symbol)
	if err != nil && !errors.Is(err, core.ErrQuoteUnavailable) {
		err = &core.QuoteError{Symbol: symbol, Source: h.quotes.Name(), Err: err}
	}
	return quote, err
}
