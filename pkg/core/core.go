package core

import (
	"context"
)

// QuoteSource fetches a point-in-time market snapshot for a supported symbol.
// Implementations must report every failure as an error wrapping ErrQuoteUnavailable
// and must not retry internally.
type QuoteSource interface {
	Name() string
	FetchQuote(ctx context.Context, symbol Symbol) (Quote, error)
}

// Notifier delivers a rendered message to a single recipient.
type Notifier interface {
	Deliver(ctx context.Context, to UserID, text string) error
}

// NotifierWithStart is a Notifier that also owns an inbound event loop.
type NotifierWithStart interface {
	Notifier
	Start()
	Stop()
}

// Registry is the static table of supported coins.
type Registry interface {
	Resolve(symbol string) (Coin, error)
	Supports(symbol string) bool
	Symbols() []Symbol
}
