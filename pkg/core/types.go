package core

import (
	"strconv"
	"strings"
	"time"
)

// UserID identifies a chat user. Alerts, watchlists and language preferences are keyed by it.
type UserID int64

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// Symbol is an uppercase ticker such as "BTC".
type Symbol string

// NormalizeSymbol trims and upper-cases raw user input.
func NormalizeSymbol(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s Symbol) String() string { return string(s) }

// Direction tells on which side of the target an alert fires.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// directionAliases maps accepted user tokens, in every supported language, to a Direction.
var directionAliases = map[string]Direction{
	"above":  DirectionAbove,
	"higher": DirectionAbove,
	"выше":   DirectionAbove,
	"below":  DirectionBelow,
	"lower":  DirectionBelow,
	"ниже":   DirectionBelow,
}

// ParseDirection normalizes a direction token. Unknown tokens yield ErrInvalidArgument.
func ParseDirection(raw string) (Direction, error) {
	if d, ok := directionAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return d, nil
	}
	return "", ErrInvalidArgument
}

// Condition is one stored price target.
type Condition struct {
	Target    float64   `json:"target"`
	Direction Direction `json:"direction"`
}

// Alert is a Condition bound to a user and a symbol. Key is the storage key and is stable
// for the lifetime of the alert, so it can be used to retire exactly this alert.
type Alert struct {
	Key       string    `json:"-"`
	Seq       uint64    `json:"seq"`
	User      UserID    `json:"user"`
	Symbol    Symbol    `json:"symbol"`
	Condition Condition `json:"condition"`
	CreatedAt time.Time `json:"created_at"`
}

// Quote is a point-in-time market reading for one symbol, in USD.
type Quote struct {
	Symbol     Symbol
	Price      float64
	Change24h  float64
	MarketCap  float64
	Source     string
	ReceivedAt time.Time
}

// Coin is one row of the symbol registry with its provider-specific identifiers.
type Coin struct {
	Symbol      Symbol `json:"symbol"`
	Name        string `json:"name"`
	CoinGeckoID string `json:"coingecko"`
	BinancePair string `json:"binance,omitempty"`
}

// Language is a user interface locale code.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
)

// DefaultLanguage is used for users that never picked one.
const DefaultLanguage = LanguageEnglish
