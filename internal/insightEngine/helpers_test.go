package insightEngine

import "github.com/KotFed0t/portfolio_insight_bot/internal/model"

func pricedHolding(id string, class model.AssetClass, symbol string, qty, purchase, price float64) model.Holding {
	return PriceHolding(model.Holding{
		ID:            id,
		AssetClass:    class,
		Symbol:        symbol,
		Quantity:      qty,
		PurchasePrice: purchase,
	}, price)
}

func snapshots(holdings ...model.Holding) (crypto, stocks model.PortfolioSnapshot, summary model.CombinedSummary) {
	var cryptoHoldings, stockHoldings []model.Holding
	for _, h := range holdings {
		if h.AssetClass == model.AssetClassCrypto {
			cryptoHoldings = append(cryptoHoldings, h)
		} else {
			stockHoldings = append(stockHoldings, h)
		}
	}
	crypto = BuildSnapshot(cryptoHoldings)
	stocks = BuildSnapshot(stockHoldings)
	return crypto, stocks, CombineSnapshots(crypto, stocks)
}

func insightIDs(insights []model.Insight) []string {
	ids := make([]string, 0, len(insights))
	for _, insight := range insights {
		ids = append(ids, insight.ID)
	}
	return ids
}

// balancedHoldings returns five crypto and five stock holdings of equal value and no gain.
func balancedHoldings() []model.Holding {
	return []model.Holding{
		pricedHolding("c1", model.AssetClassCrypto, "BTC", 1, 1000, 1000),
		pricedHolding("c2", model.AssetClassCrypto, "ETH", 2, 500, 500),
		pricedHolding("c3", model.AssetClassCrypto, "SOL", 10, 100, 100),
		pricedHolding("c4", model.AssetClassCrypto, "ADA", 100, 10, 10),
		pricedHolding("c5", model.AssetClassCrypto, "DOT", 50, 20, 20),
		pricedHolding("s1", model.AssetClassStock, "SBER", 4, 250, 250),
		pricedHolding("s2", model.AssetClassStock, "GAZP", 5, 200, 200),
		pricedHolding("s3", model.AssetClassStock, "LKOH", 1, 1000, 1000),
		pricedHolding("s4", model.AssetClassStock, "YDEX", 2, 500, 500),
		pricedHolding("s5", model.AssetClassStock, "MGNT", 8, 125, 125),
	}
}
