package insightEngine

import "github.com/KotFed0t/portfolio_insight_bot/internal/model"

// ApplyLivePrices revalues snapshot with fresher prices keyed by symbol.
// The input is never modified. When disabled or when prices is empty the
// snapshot is returned as is.
func ApplyLivePrices(snapshot model.PortfolioSnapshot, prices map[string]float64, enabled bool) model.PortfolioSnapshot {
	if !enabled || len(prices) == 0 {
		return snapshot
	}

	holdings := make([]model.Holding, len(snapshot.Holdings))
	for i, h := range snapshot.Holdings {
		if price, ok := prices[h.Symbol]; ok {
			holdings[i] = PriceHolding(h, price)
		} else {
			holdings[i] = h
		}
	}

	return BuildSnapshot(holdings)
}
