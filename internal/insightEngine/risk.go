package insightEngine

import (
	"math"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
)

// AnalyzeRisk derives concentration, balance and volatility metrics.
// A nil summary is treated as an empty portfolio value.
func AnalyzeRisk(holdings []model.Holding, summary *model.CombinedSummary) model.RiskProfile {
	var profile model.RiskProfile

	var totalValue float64
	if summary != nil {
		totalValue = summary.TotalValue
	}

	largest := -1
	for i, h := range holdings {
		if largest < 0 || h.CurrentValue > holdings[largest].CurrentValue {
			largest = i
		}
	}
	if largest >= 0 {
		profile.ConcentrationAsset = holdings[largest].Symbol
		if totalValue != 0 {
			profile.ConcentrationRisk = holdings[largest].CurrentValue / totalValue * 100
		}
	}

	if totalValue != 0 {
		profile.CryptoPct = summary.CryptoValue / totalValue * 100
		profile.StockPct = summary.StockValue / totalValue * 100
	}

	profile.CorrelationRisk = math.Abs(50 - math.Max(profile.CryptoPct, profile.StockPct))
	profile.VolatilityScore = int(math.Round(0.6*profile.CryptoPct + 0.4*profile.ConcentrationRisk))
	profile.RiskLevel = riskLevel(profile)

	return profile
}

func riskLevel(p model.RiskProfile) model.RiskLevel {
	switch {
	case p.ConcentrationRisk > 40 || p.CryptoPct > 80 || p.VolatilityScore > 70:
		return model.RiskHigh
	case p.ConcentrationRisk > 25 || p.CryptoPct > 60 || p.VolatilityScore > 50:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
