package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/quote/cache"
	"github.com/raykavin/coinalert/pkg/registry"
)

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		name     string
	}{
		{provider: "", name: "coingecko"},
		{provider: "CoinGecko", name: "coingecko"},
		{provider: "binance", name: "binance"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			source, err := New(core.QuoteSettings{Provider: tt.provider}, registry.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.name, source.Name())
		})
	}

	t.Run("cached", func(t *testing.T) {
		source, err := New(core.QuoteSettings{CacheTTL: time.Second}, registry.Default())
		require.NoError(t, err)
		assert.IsType(t, &cache.Source{}, source)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(core.QuoteSettings{Provider: "kraken"}, registry.Default())
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})
}
