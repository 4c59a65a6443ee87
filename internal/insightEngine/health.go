package insightEngine

import (
	"math"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
)

const (
	diversificationWeight = 0.30
	performanceWeight     = 0.25
	riskManagementWeight  = 0.25
	activityWeight        = 0.20

	// holdings needed for the full asset count part of diversification
	fullDiversificationCount = 15
)

const (
	suggestDiversify   = "Diversify: add more assets and spread them across both crypto and stocks."
	suggestPerformance = "Review underperforming positions: the portfolio is losing more than 10% overall."
	suggestRisk        = "Reduce risk: trim your largest position and rebalance between crypto and stocks."
	suggestActivity    = "Stay engaged: review your portfolio regularly and set price alerts for key holdings."
	suggestHighRisk    = "Your overall risk level is high. Consider lowering concentration and crypto exposure."
	suggestKeepGoing   = "Great job! Your portfolio is in good health. Keep monitoring it regularly."
)

type HealthInput struct {
	Crypto            model.PortfolioSnapshot
	Stocks            model.PortfolioSnapshot
	Summary           *model.CombinedSummary
	HasRecentActivity bool
	AlertCount        int
}

func ScoreHealth(in HealthInput) model.HealthProfile {
	risk := AnalyzeRisk(AllHoldings(in.Crypto, in.Stocks), in.Summary)

	profile := model.HealthProfile{
		Diversification: diversificationScore(len(in.Crypto.Holdings), len(in.Stocks.Holdings)),
		Performance:     performanceScore(in.Summary),
		RiskManagement:  riskManagementScore(len(in.Crypto.Holdings)+len(in.Stocks.Holdings), risk),
		Activity:        activityScore(in.HasRecentActivity, in.AlertCount),
		RiskLevel:       risk.RiskLevel,
	}

	profile.OverallScore = int(math.Round(
		diversificationWeight*float64(profile.Diversification) +
			performanceWeight*float64(profile.Performance) +
			riskManagementWeight*float64(profile.RiskManagement) +
			activityWeight*float64(profile.Activity),
	))
	profile.Suggestions = suggestions(profile)

	return profile
}

func diversificationScore(cryptoCount, stockCount int) int {
	total := cryptoCount + stockCount
	if total == 0 {
		return 0
	}

	assetCountScore := math.Min(50, 50*float64(total)/fullDiversificationCount)

	var balanceScore float64
	switch {
	case cryptoCount > 0 && stockCount > 0:
		lo, hi := min(cryptoCount, stockCount), max(cryptoCount, stockCount)
		balanceScore = 50 * float64(lo) / float64(hi)
	case cryptoCount >= 5 || stockCount >= 5:
		balanceScore = 25
	}

	return int(math.Round(assetCountScore + balanceScore))
}

// performanceScore is neutral when the portfolio has no value yet.
func performanceScore(summary *model.CombinedSummary) int {
	if summary == nil || summary.TotalValue == 0 {
		return 50
	}
	return int(math.Round(clamp(50+summary.TotalGainLossPct, 0, 100)))
}

func riskManagementScore(holdingsCount int, risk model.RiskProfile) int {
	if holdingsCount == 0 {
		return 50
	}

	score := 100
	switch {
	case risk.ConcentrationRisk > 40:
		score -= 30
	case risk.ConcentrationRisk > 30:
		score -= 20
	case risk.ConcentrationRisk > 20:
		score -= 10
	}

	dominantShare := math.Max(risk.CryptoPct, risk.StockPct)
	switch {
	case dominantShare > 90:
		score -= 20
	case dominantShare > 80:
		score -= 10
	}

	return max(score, 0)
}

func activityScore(hasRecentActivity bool, alertCount int) int {
	score := 50
	if hasRecentActivity {
		score += 25
	}
	score += min(25, 5*max(alertCount, 0))
	return min(score, 100)
}

func suggestions(p model.HealthProfile) []string {
	var out []string
	if p.Diversification < 50 {
		out = append(out, suggestDiversify)
	}
	if p.Performance < 40 {
		out = append(out, suggestPerformance)
	}
	if p.RiskManagement < 60 {
		out = append(out, suggestRisk)
	}
	if p.Activity < 50 {
		out = append(out, suggestActivity)
	}
	if p.RiskLevel == model.RiskHigh {
		out = append(out, suggestHighRisk)
	}
	if len(out) == 0 {
		out = append(out, suggestKeepGoing)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
