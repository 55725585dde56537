package command

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/locale"
)

// Start creates the user's collections on first contact and replies with the help text.
func (h *Handler) Start(user core.UserID) []Reply {
	if _, err := h.store.EnsureUser(user); err != nil {
		return h.failure(core.DefaultLanguage, user, Start, err)
	}

	lang := h.language(user)
	symbols := lo.Map(h.registry.Symbols(), func(s core.Symbol, _ int) string { return string(s) })

	return h.markdown(h.catalog.T(lang, locale.KeyWelcome, locale.Args{
		"symbols": strings.Join(symbols, ", "),
	}))
}

// Price replies with the current market data of one coin.
func (h *Handler) Price(ctx context.Context, user core.UserID, args []string) []Reply {
	lang := h.language(user)
	if len(args) == 0 {
		return h.text(lang, locale.KeyPriceUsage, nil)
	}

	symbol := core.NormalizeSymbol(args[0])
	if !h.registry.Supports(string(symbol)) {
		return h.text(lang, locale.KeyPriceNotFound, locale.Args{"symbol": string(symbol)})
	}

	quote, err := h.fetchQuote(ctx, symbol)
	if err != nil {
		h.log.WithError(err).WithField("symbol", symbol).Warn("price lookup failed")
		return h.text(lang, locale.KeyPriceNotFound, locale.Args{"symbol": string(symbol)})
	}

	return h.markdown(h.catalog.T(lang, locale.KeyPriceInfo, locale.Args{
		"symbol":     string(quote.Symbol),
		"price":      h.catalog.Money(lang, quote.Price),
		"change":     h.catalog.Change(lang, quote.Change24h),
		"market_cap": h.catalog.Whole(lang, quote.MarketCap),
		"time":       h.catalog.Timestamp(h.clock()),
	}))
}

// Bounds on the decimal magnitude of a target price, so the float conversion neither
// overflows nor underflows to zero.
const (
	maxTargetLength    = 64
	maxTargetMagnitude = 308
	minTargetMagnitude = -300
)

// parseTarget accepts strictly positive finite decimal numbers
func parseTarget(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxTargetLength {
		return 0, false
	}

	target, err := decimal.NewFromString(raw)
	if err != nil || !target.IsPositive() {
		return 0, false
	}

	// the value lies below 10^magnitude; the exponent is checked before any big number is built
	magnitude := int64(target.NumDigits()) + int64(target.Exponent())
	if magnitude > maxTargetMagnitude || magnitude < minTargetMagnitude {
		return 0, false
	}

	value := target.InexactFloat64()
	if value <= 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

// Alert validates "<SYMBOL> <PRICE> <DIRECTION>" and stores a new alert.
// Checks run in order: argument count, price, direction, symbol.
func (h *Handler) Alert(user core.UserID, args []string) []Reply {
	lang := h.language(user)
	if len(args) < 3 {
		return h.text(lang, locale.KeyAlertUsage, nil)
	}

	symbol := core.NormalizeSymbol(args[0])

	target, ok := parseTarget(args[1])
	if !ok {
		return h.text(lang, locale.KeyAlertInvalidPrice, nil)
	}

	direction, err := core.ParseDirection(args[2])
	if err != nil {
		return h.text(lang, locale.KeyAlertInvalidDirection, nil)
	}

	if !h.registry.Supports(string(symbol)) {
		return h.text(lang, locale.KeyAlertUnsupported, locale.Args{"symbol": string(symbol)})
	}

	cond := core.Condition{Target: target, Direction: direction}
	if _, err := h.store.AddAlert(user, symbol, cond); err != nil {
		return h.failure(lang, user, Alert, err)
	}

	h.log.WithFields(map[string]any{
		"user":      user,
		"symbol":    symbol,
		"target":    target,
		"direction": direction,
	}).Info("alert created")

	return h.text(lang, locale.KeyAlertSet, locale.Args{
		"symbol":    string(symbol),
		"direction": h.catalog.Direction(lang, direction),
		"price":     h.catalog.Money(lang, target),
	})
}

func directionArrow(d core.Direction) string {
	if d == core.DirectionAbove {
		return "↑"
	}
	return "↓"
}

// List shows every pending alert grouped by coin, coins sorted alphabetically.
func (h *Handler) List(user core.UserID) []Reply {
	lang := h.language(user)

	alerts, err := h.store.ListAlerts(user)
	if err != nil {
		return h.failure(lang, user, List, err)
	}
	if len(alerts) == 0 {
		return h.text(lang, locale.KeyListEmpty, nil)
	}

	symbols := lo.Keys(alerts)
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	rows := make([][]string, 0)
	for _, symbol := range symbols {
		for _, cond := range alerts[symbol] {
			rows = append(rows, []string{
				string(symbol),
				"$" + h.catalog.Money(lang, cond.Target),
				directionArrow(cond.Direction) + " " + h.catalog.Direction(lang, cond.Direction),
			})
		}
	}

	header := []string{
		h.catalog.T(lang, locale.KeyColumnSymbol, nil),
		h.catalog.T(lang, locale.KeyColumnTarget, nil),
		h.catalog.T(lang, locale.KeyColumnDirection, nil),
	}
	table := renderTable(header, rows, []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	return h.markdown(h.catalog.T(lang, locale.KeyListHeader, nil) + "\n\n" + table)
}

// Watch adds a coin to the user's watchlist.
func (h *Handler) Watch(user core.UserID, args []string) []Reply {
	lang := h.language(user)
	if len(args) == 0 {
		return h.text(lang, locale.KeyWatchUsage, nil)
	}

	symbol := core.NormalizeSymbol(args[0])
	if !h.registry.Supports(string(symbol)) {
		return h.text(lang, locale.KeyWatchUnsupported, locale.Args{"symbol": string(symbol)})
	}

	alreadyPresent, err := h.store.AddWatch(user, symbol)
	if err != nil {
		return h.failure(lang, user, Watch, err)
	}
	if alreadyPresent {
		return h.text(lang, locale.KeyWatchExists, locale.Args{"symbol": string(symbol)})
	}
	return h.text(lang, locale.KeyWatchAdded, locale.Args{"symbol": string(symbol)})
}

// Watchlist shows the watched coins in the order they were added with live prices.
// Coins whose quote is unavailable are left out.
func (h *Handler) Watchlist(ctx context.Context, user core.UserID) []Reply {
	lang := h.language(user)

	symbols, err := h.store.ListWatch(user)
	if err != nil {
		return h.failure(lang, user, Watchlist, err)
	}
	if len(symbols) == 0 {
		return h.text(lang, locale.KeyWatchlistEmpty, nil)
	}

	rows := make([][]string, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := h.fetchQuote(ctx, symbol)
		if err != nil {
			h.log.WithError(err).WithField("symbol", symbol).Warn("watchlist quote unavailable")
			continue
		}
		rows = append(rows, []string{
			string(symbol),
			"$" + h.catalog.Money(lang, quote.Price),
			h.catalog.Change(lang, quote.Change24h),
		})
	}

	text := h.catalog.T(lang, locale.KeyWatchlistHeader, nil)
	if len(rows) > 0 {
		header := []string{
			h.catalog.T(lang, locale.KeyColumnSymbol, nil),
			h.catalog.T(lang, locale.KeyColumnPrice, nil),
			h.catalog.T(lang, locale.KeyColumnChange, nil),
		}
		text += "\n\n" + renderTable(header, rows,
			[]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	}
	return h.markdown(text)
}

// Remove deletes every alert of a coin and its watchlist entry. The watchlist outcome is
// reported in a second reply when an entry was removed.
func (h *Handler) Remove(user core.UserID, args []string) []Reply {
	lang := h.language(user)
	if len(args) == 0 {
		return h.text(lang, locale.KeyRemoveUsage, nil)
	}

	symbol := core.NormalizeSymbol(args[0])
	params := locale.Args{"symbol": string(symbol)}

	// symbols outside the registry can never have alerts or watch entries
	if !h.registry.Supports(string(symbol)) {
		return h.text(lang, locale.KeyRemoveNotFound, params)
	}

	removed, err := h.store.RemoveAlertsForSymbol(user, symbol)
	if err != nil {
		return h.failure(lang, user, Remove, err)
	}

	replies := h.text(lang, locale.KeyRemoveNotFound, params)
	if removed {
		replies = h.text(lang, locale.KeyRemoveSuccess, params)
	}

	unwatched, err := h.store.RemoveWatch(user, symbol)
	if err != nil {
		return append(replies, h.failure(lang, user, Remove, err)...)
	}
	if unwatched {
		replies = append(replies, h.text(lang, locale.KeyRemoveWatchlist, params)...)
	}
	return replies
}

// Unwatch removes a coin from the watchlist only.
func (h *Handler) Unwatch(user core.UserID, args []string) []Reply {
	lang := h.language(user)
	if len(args) == 0 {
		return h.text(lang, locale.KeyUnwatchUsage, nil)
	}

	symbol := core.NormalizeSymbol(args[0])
	params := locale.Args{"symbol": string(symbol)}
	if !h.registry.Supports(string(symbol)) {
		return h.text(lang, locale.KeyUnwatchNotFound, params)
	}

	removed, err := h.store.RemoveWatch(user, symbol)
	if err != nil {
		return h.failure(lang, user, Unwatch, err)
	}
	if !removed {
		return h.text(lang, locale.KeyUnwatchNotFound, params)
	}
	return h.text(lang, locale.KeyRemoveWatchlist, params)
}

// languageLabels are the keyboard captions, always shown in their own language.
var languageLabels = map[core.Language]string{
	core.LanguageEnglish: "🇬🇧 English",
	core.LanguageRussian: "🇷🇺 Русский",
}

// Lang offers the language keyboard.
func (h *Handler) Lang(user core.UserID) []Reply {
	lang := h.language(user)

	buttons := lo.Map(h.catalog.Languages(), func(l core.Language, _ int) Button {
		label, ok := languageLabels[l]
		if !ok {
			label = strings.ToUpper(string(l))
		}
		return Button{Text: label, Data: LanguageCallbackPrefix + string(l)}
	})

	return []Reply{{
		Text:     h.catalog.T(lang, locale.KeyLangPrompt, nil),
		Keyboard: buttons,
	}}
}

// SelectLanguage handles a keyboard callback. It returns false for data it does not own.
func (h *Handler) SelectLanguage(user core.UserID, data string) (Reply, bool) {
	code, ok := strings.CutPrefix(data, LanguageCallbackPrefix)
	if !ok {
		return Reply{}, false
	}

	lang := core.Language(code)
	if !h.catalog.Supports(lang) {
		return Reply{}, false
	}

	if err := h.store.SetLanguage(user, lang); err != nil {
		return h.failure(h.language(user), user, Lang, err)[0], true
	}

	h.log.WithFields(map[string]any{"user": user, "language": lang}).Info("language changed")
	return Reply{Text: h.catalog.T(lang, locale.KeyLangChanged, nil)}, true
}
