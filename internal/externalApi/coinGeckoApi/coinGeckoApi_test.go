package coinGeckoApi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model/quoteModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinID(t *testing.T) {
	id, ok := CoinID(" btc ")
	assert.True(t, ok)
	assert.Equal(t, "bitcoin", id)

	_, ok = CoinID("NOPE")
	assert.False(t, ok)
}

func TestCoinIDsForDeduplicatesAndSkipsUnknown(t *testing.T) {
	ids := coinIDsFor([]string{"ETH", "btc", "BTC", "UNKNOWN"})
	assert.Equal(t, []string{"bitcoin", "ethereum"}, ids)
}

func TestPricesToQuotes(t *testing.T) {
	prices := quoteModel.CoinGeckoPrices{}
	require.NoError(t, json.Unmarshal([]byte(`{"bitcoin":{"usd":65000.5},"ethereum":{"usd":0},"solana":{"eur":150}}`), &prices))

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	quotes := pricesToQuotes([]string{"btc", "ETH", "SOL", "XYZ"}, prices, "usd", now)

	require.Len(t, quotes, 1)
	assert.Equal(t, "crypto", quotes[0].AssetClass)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.True(t, decimal.RequireFromString("65000.5").Equal(quotes[0].Price))
	assert.Equal(t, now, quotes[0].UpdatedAt)
}
