package quoteModel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a last known price for one symbol of one asset class.
type Quote struct {
	AssetClass string          `json:"assetClass"`
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CoinGeckoPrices is the /simple/price response: coin id -> currency -> price.
type CoinGeckoPrices map[string]map[string]float64
