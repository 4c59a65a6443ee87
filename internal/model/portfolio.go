package model

import "time"

type AssetClass string

const (
	AssetClassCrypto AssetClass = "crypto"
	AssetClassStock  AssetClass = "stock"
)

func (c AssetClass) Valid() bool {
	return c == AssetClassCrypto || c == AssetClassStock
}

// Holding is a single priced position.
// CurrentPrice is nil while no quote is known for the symbol.
type Holding struct {
	ID            string
	AssetClass    AssetClass
	Symbol        string
	Quantity      float64
	PurchasePrice float64
	CurrentPrice  *float64
	CurrentValue  float64
	GainLoss      float64
	GainLossPct   float64
}

// Invested is the cost basis of the position.
func (h Holding) Invested() float64 {
	return h.Quantity * h.PurchasePrice
}

// PortfolioSnapshot holds all holdings of one asset class with aggregate totals.
type PortfolioSnapshot struct {
	Holdings         []Holding
	TotalValue       float64
	TotalInvested    float64
	TotalGainLoss    float64
	TotalGainLossPct float64
}

// CombinedSummary aggregates the crypto and stock snapshots.
type CombinedSummary struct {
	CryptoValue      float64
	StockValue       float64
	TotalValue       float64
	TotalInvested    float64
	TotalGainLoss    float64
	TotalGainLossPct float64
}

// PortfolioReport is everything the bot shows for one chat.
type PortfolioReport struct {
	Crypto      PortfolioSnapshot
	Stocks      PortfolioSnapshot
	Summary     CombinedSummary
	Risk        RiskProfile
	Health      HealthProfile
	Insights    []Insight
	Operations  []HoldingOperation
	LiveMode    bool
	GeneratedAt time.Time
}

type HoldingsPage struct {
	Holdings    []Holding
	CurPage     int
	HasNextPage bool
}
