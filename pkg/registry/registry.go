// Package registry holds the static table of coins the bot can quote and alert on.
// The table is data: adding a coin means adding a row to assets/symbols.json (or to a
// file passed to FromFile), never touching evaluation code.
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/samber/lo"
)

//go:embed assets/symbols.json
var embeddedSymbols []byte

// Service is an immutable symbol lookup table. It is safe for concurrent use.
type Service struct {
	coins map[core.Symbol]core.Coin
	order []core.Symbol
}

var _ core.Registry = (*Service)(nil)

// Default returns the registry built from the embedded table
func Default() *Service {
	service, err := New(embeddedSymbols)
	if err != nil {
		panic(fmt.Errorf("failed to initialize symbol registry: %w", err))
	}
	return service
}

// FromFile builds a registry from a JSON file with the same layout as the embedded table
func FromFile(path string) (*Service, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols file: %w", err)
	}
	return New(content)
}

// New builds a registry from a JSON array of coins. Symbols are normalized to uppercase;
// empty symbols, missing CoinGecko ids and duplicates are rejected.
func New(data []byte) (*Service, error) {
	var coins []core.Coin
	if err := json.Unmarshal(data, &coins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symbols data: %w", err)
	}

	service := &Service{
		coins: make(map[core.Symbol]core.Coin, len(coins)),
		order: make([]core.Symbol, 0, len(coins)),
	}

	for i, coin := range coins {
		coin.Symbol = core.NormalizeSymbol(string(coin.Symbol))
		if coin.Symbol == "" || coin.CoinGeckoID == "" {
			return nil, fmt.Errorf("symbols[%d]: symbol and coingecko id are required", i)
		}
		if _, dup := service.coins[coin.Symbol]; dup {
			return nil, fmt.Errorf("symbols[%d]: duplicate symbol %s", i, coin.Symbol)
		}
		service.coins[coin.Symbol] = coin
		service.order = append(service.order, coin.Symbol)
	}

	return service, nil
}

// Resolve looks a symbol up case-insensitively
func (s *Service) Resolve(symbol string) (core.Coin, error) {
	coin, ok := s.coins[core.NormalizeSymbol(symbol)]
	if !ok {
		return core.Coin{}, fmt.Errorf("%w: %s", core.ErrUnsupportedSymbol, core.NormalizeSymbol(symbol))
	}
	return coin, nil
}

// Supports reports whether the symbol is in the table
func (s *Service) Supports(symbol string) bool {
	_, ok := s.coins[core.NormalizeSymbol(symbol)]
	return ok
}

// Symbols returns the supported symbols in table order
func (s *Service) Symbols() []core.Symbol {
	return append([]core.Symbol(nil), s.order...)
}

// Coins returns the full rows in table order
func (s *Service) Coins() []core.Coin {
	return lo.Map(s.order, func(symbol core.Symbol, _ int) core.Coin {
		return s.coins[symbol]
	})
}
