package insightEngine

import "github.com/KotFed0t/portfolio_insight_bot/internal/model"

// PriceHolding returns a copy of h valued at price.
func PriceHolding(h model.Holding, price float64) model.Holding {
	p := price
	h.CurrentPrice = &p
	h.CurrentValue = h.Quantity * price
	h.GainLoss = h.CurrentValue - h.Invested()
	h.GainLossPct = percentOf(h.GainLoss, h.Invested())
	return h
}

// BuildSnapshot sums holdings into a snapshot. The holdings slice is used as is.
// TotalInvested counts every holding, gain/loss only the priced ones.
func BuildSnapshot(holdings []model.Holding) model.PortfolioSnapshot {
	snapshot := model.PortfolioSnapshot{Holdings: holdings}
	for _, h := range holdings {
		snapshot.TotalValue += h.CurrentValue
		snapshot.TotalInvested += h.Invested()
		snapshot.TotalGainLoss += h.GainLoss
	}
	snapshot.TotalGainLossPct = percentOf(snapshot.TotalGainLoss, pricedCost(snapshot.TotalValue, snapshot.TotalGainLoss))
	return snapshot
}

func CombineSnapshots(crypto, stocks model.PortfolioSnapshot) model.CombinedSummary {
	summary := model.CombinedSummary{
		CryptoValue:   crypto.TotalValue,
		StockValue:    stocks.TotalValue,
		TotalValue:    crypto.TotalValue + stocks.TotalValue,
		TotalInvested: crypto.TotalInvested + stocks.TotalInvested,
		TotalGainLoss: crypto.TotalGainLoss + stocks.TotalGainLoss,
	}
	summary.TotalGainLossPct = percentOf(summary.TotalGainLoss, pricedCost(summary.TotalValue, summary.TotalGainLoss))
	return summary
}

// AllHoldings returns crypto holdings followed by stock holdings.
func AllHoldings(crypto, stocks model.PortfolioSnapshot) []model.Holding {
	all := make([]model.Holding, 0, len(crypto.Holdings)+len(stocks.Holdings))
	all = append(all, crypto.Holdings...)
	return append(all, stocks.Holdings...)
}

// pricedCost is the cost basis of priced holdings. Unpriced ones add nothing to value or gain/loss.
func pricedCost(value, gainLoss float64) float64 {
	return value - gainLoss
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
