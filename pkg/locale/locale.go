// Package locale holds the translated message tables and the number formatting used in replies.
package locale

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/raykavin/coinalert/pkg/core"
)

// TimeLayout is the layout of every timestamp shown to users.
const TimeLayout = "2006-01-02 15:04:05"

// Key names one message of the tables.
type Key string

const (
	KeyWelcome               Key = "welcome"
	KeyLangChanged           Key = "lang_changed"
	KeyLangPrompt            Key = "lang_prompt"
	KeyPriceUsage            Key = "price_usage"
	KeyPriceNotFound         Key = "price_not_found"
	KeyPriceInfo             Key = "price_info"
	KeyAlertUsage            Key = "alert_usage"
	KeyAlertInvalidPrice     Key = "alert_invalid_price"
	KeyAlertInvalidDirection Key = "alert_invalid_direction"
	KeyAlertUnsupported      Key = "alert_unsupported"
	KeyAlertSet              Key = "alert_set"
	KeyListEmpty             Key = "list_empty"
	KeyListHeader            Key = "list_header"
	KeyWatchUsage            Key = "watch_usage"
	KeyWatchUnsupported      Key = "watch_unsupported"
	KeyWatchExists           Key = "watch_exists"
	KeyWatchAdded            Key = "watch_added"
	KeyWatchlistEmpty        Key = "watchlist_empty"
	KeyWatchlistHeader       Key = "watchlist_header"
	KeyRemoveUsage           Key = "remove_usage"
	KeyRemoveSuccess         Key = "remove_success"
	KeyRemoveNotFound        Key = "remove_not_found"
	KeyRemoveWatchlist       Key = "remove_watchlist"
	KeyUnwatchUsage          Key = "unwatch_usage"
	KeyUnwatchNotFound       Key = "unwatch_not_found"
	KeyAlertTriggered        Key = "alert_triggered"
	KeyAbove                 Key = "above"
	KeyBelow                 Key = "below"
	KeyColumnSymbol          Key = "column_symbol"
	KeyColumnTarget          Key = "column_target"
	KeyColumnDirection       Key = "column_direction"
	KeyColumnPrice           Key = "column_price"
	KeyColumnChange          Key = "column_change"
	KeyInternalError         Key = "internal_error"
)

// Args are the named parameters of a message. A "{name}" placeholder is replaced by Args["name"].
type Args map[string]string

// Catalog translates keys into user facing text.
type Catalog struct {
	tables   map[core.Language]map[Key]string
	fallback core.Language
	printers map[core.Language]*message.Printer
}

// New builds a catalog from tables. Lookups missing in a language fall back to the fallback
// language, then to the key itself.
func New(tables map[core.Language]map[Key]string, fallback core.Language) *Catalog {
	catalog := &Catalog{
		tables:   tables,
		fallback: fallback,
		printers: make(map[core.Language]*message.Printer, len(tables)),
	}
	for lang := range tables {
		tag, err := language.Parse(string(lang))
		if err != nil {
			tag = language.English
		}
		catalog.printers[lang] = message.NewPrinter(tag)
	}
	return catalog
}

// Default returns the built-in English and Russian catalog with English fallback.
func Default() *Catalog {
	return New(map[core.Language]map[Key]string{
		core.LanguageEnglish: english,
		core.LanguageRussian: russian,
	}, core.LanguageEnglish)
}

// Supports reports whether lang has a table.
func (c *Catalog) Supports(lang core.Language) bool {
	_, ok := c.tables[lang]
	return ok
}

// Languages lists the available languages, fallback first.
func (c *Catalog) Languages() []core.Language {
	langs := make([]core.Language, 0, len(c.tables))
	for lang := range c.tables {
		if lang != c.fallback {
			langs = append(langs, lang)
		}
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	if c.Supports(c.fallback) {
		langs = append([]core.Language{c.fallback}, langs...)
	}
	return langs
}

// T returns the text of key in lang with args substituted.
func (c *Catalog) T(lang core.Language, key Key, args Args) string {
	text, ok := c.tables[lang][key]
	if !ok {
		text, ok = c.tables[c.fallback][key]
	}
	if !ok {
		text = string(key)
	}
	if len(args) == 0 {
		return text
	}

	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Direction returns the localized word for d.
func (c *Catalog) Direction(lang core.Language, d core.Direction) string {
	switch d {
	case core.DirectionAbove:
		return c.T(lang, KeyAbove, nil)
	case core.DirectionBelow:
		return c.T(lang, KeyBelow, nil)
	}
	return string(d)
}

func (c *Catalog) printer(lang core.Language) *message.Printer {
	if p, ok := c.printers[lang]; ok {
		return p
	}
	if p, ok := c.printers[c.fallback]; ok {
		return p
	}
	return message.NewPrinter(language.English)
}

// Money formats an amount with two decimals and grouped thousands, e.g. 50,000.00.
func (c *Catalog) Money(lang core.Language, v float64) string {
	return c.printer(lang).Sprintf("%.2f", v)
}

// Whole formats an amount without decimals and with grouped thousands.
func (c *Catalog) Whole(lang core.Language, v float64) string {
	return c.printer(lang).Sprintf("%.0f", math.Round(v))
}

// Change formats a signed percentage with its trend emoji, e.g. "📈 +1.25%".
func (c *Catalog) Change(lang core.Language, v float64) string {
	emoji, sign := "📈", "+"
	if v < 0 {
		emoji, sign = "📉", ""
	}
	return emoji + " " + sign + c.printer(lang).Sprintf("%.2f", v) + "%"
}

// Timestamp formats t the way every message shows time.
func (c *Catalog) Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}
