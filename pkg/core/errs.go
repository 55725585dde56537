package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrQuoteUnavailable  = errors.New("quote unavailable")
	ErrDeliveryFailure   = errors.New("delivery failure")
	ErrNotFound          = errors.New("not found")
)

// QuoteError describes a failed quote lookup for one symbol.
type QuoteError struct {
	Symbol Symbol
	Source string
	Err    error
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("%s: %s quote for %s: %v", ErrQuoteUnavailable, e.Source, e.Symbol, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is / errors.As.
func (e *QuoteError) Unwrap() []error { return []error{ErrQuoteUnavailable, e.Err} }

// DeliveryError describes a notification that could not be sent.
type DeliveryError struct {
	To  UserID
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: recipient %s: %v", ErrDeliveryFailure, e.To, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDeliveryFailure, e.Err} }
