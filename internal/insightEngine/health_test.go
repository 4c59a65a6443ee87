package insightEngine

import (
	"math/rand"
	"testing"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDiversificationScore(t *testing.T) {
	tests := []struct {
		name        string
		cryptoCount int
		stockCount  int
		want        int
	}{
		{name: "no holdings", want: 0},
		{name: "three crypto one stock", cryptoCount: 3, stockCount: 1, want: 30},
		{name: "five crypto only", cryptoCount: 5, want: 42},
		{name: "four stocks only", stockCount: 4, want: 13},
		// min(50, 50*10/15) + 50 for both classes held
		{name: "five and five", cryptoCount: 5, stockCount: 5, want: 83},
		{name: "fifteen and fifteen", cryptoCount: 15, stockCount: 15, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diversificationScore(tt.cryptoCount, tt.stockCount))
		})
	}
}

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name    string
		summary *model.CombinedSummary
		want    int
	}{
		{name: "absent summary is neutral", want: 50},
		{name: "zero value is neutral", summary: &model.CombinedSummary{TotalGainLossPct: 30}, want: 50},
		{name: "deep loss floors at zero", summary: &model.CombinedSummary{TotalValue: 40, TotalGainLossPct: -60}, want: 0},
		{name: "big gain caps at hundred", summary: &model.CombinedSummary{TotalValue: 170, TotalGainLossPct: 70}, want: 100},
		{name: "small gain", summary: &model.CombinedSummary{TotalValue: 110.4, TotalGainLossPct: 10.4}, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, performanceScore(tt.summary))
		})
	}
}

func TestRiskManagementScore(t *testing.T) {
	tests := []struct {
		name     string
		holdings int
		risk     model.RiskProfile
		want     int
	}{
		{name: "no holdings is neutral", want: 50},
		{name: "calm portfolio", holdings: 10, risk: model.RiskProfile{ConcentrationRisk: 10, CryptoPct: 50, StockPct: 50}, want: 100},
		{name: "only first concentration tier applies", holdings: 3, risk: model.RiskProfile{ConcentrationRisk: 45, CryptoPct: 50, StockPct: 50}, want: 70},
		{name: "mid concentration and crypto heavy", holdings: 4, risk: model.RiskProfile{ConcentrationRisk: 35, CryptoPct: 85, StockPct: 15}, want: 70},
		{name: "low concentration tier", holdings: 6, risk: model.RiskProfile{ConcentrationRisk: 21, CryptoPct: 50, StockPct: 50}, want: 90},
		{name: "stock heavy", holdings: 1, risk: model.RiskProfile{ConcentrationRisk: 100, StockPct: 100}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, riskManagementScore(tt.holdings, tt.risk))
		})
	}
}

func TestActivityScore(t *testing.T) {
	assert.Equal(t, 50, activityScore(false, 0))
	assert.Equal(t, 75, activityScore(true, 0))
	assert.Equal(t, 90, activityScore(true, 3))
	assert.Equal(t, 100, activityScore(true, 10))
	assert.Equal(t, 75, activityScore(false, 7))
	assert.Equal(t, 50, activityScore(false, -2))
}

func TestScoreHealthSingleProfitableHolding(t *testing.T) {
	crypto, stocks, summary := snapshots(pricedHolding("1", model.AssetClassCrypto, "BTC", 1, 20000, 30000))

	got := ScoreHealth(HealthInput{Crypto: crypto, Stocks: stocks, Summary: &summary})

	assert.Equal(t, 3, got.Diversification)
	assert.Equal(t, 100, got.Performance)
	assert.Equal(t, 50, got.RiskManagement)
	assert.Equal(t, 50, got.Activity)
	assert.Equal(t, 48, got.OverallScore)
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
	assert.Equal(t, []string{suggestDiversify, suggestRisk, suggestHighRisk}, got.Suggestions)
}

func TestScoreHealthEmptyPortfolio(t *testing.T) {
	crypto, stocks, summary := snapshots()

	got := ScoreHealth(HealthInput{Crypto: crypto, Stocks: stocks, Summary: &summary})

	assert.Equal(t, 0, got.Diversification)
	assert.Equal(t, 50, got.Performance)
	assert.Equal(t, 50, got.RiskManagement)
	assert.Equal(t, 50, got.Activity)
	assert.Equal(t, 35, got.OverallScore)
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.Equal(t, []string{suggestDiversify, suggestRisk}, got.Suggestions)
}

func TestScoreHealthBalancedPortfolio(t *testing.T) {
	crypto, stocks, summary := snapshots(balancedHoldings()...)

	got := ScoreHealth(HealthInput{Crypto: crypto, Stocks: stocks, Summary: &summary, HasRecentActivity: true, AlertCount: 2})

	assert.Equal(t, 83, got.Diversification) // ten holdings fill two thirds of the asset count part
	assert.Equal(t, 50, got.Performance)
	assert.Equal(t, 100, got.RiskManagement)
	assert.Equal(t, 85, got.Activity)
	assert.Equal(t, 79, got.OverallScore)
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.Equal(t, []string{suggestKeepGoing}, got.Suggestions)
}

func TestScoreHealthLosingPortfolio(t *testing.T) {
	crypto, stocks, summary := snapshots(
		pricedHolding("1", model.AssetClassStock, "SBER", 10, 100, 40),
		pricedHolding("2", model.AssetClassStock, "GAZP", 10, 100, 45),
	)

	got := ScoreHealth(HealthInput{Crypto: crypto, Stocks: stocks, Summary: &summary})

	assert.Equal(t, 0, got.Performance)
	assert.Contains(t, got.Suggestions, suggestPerformance)
}

func TestScoreHealthIgnoresUnpricedCost(t *testing.T) {
	crypto, stocks, summary := snapshots(
		pricedHolding("1", model.AssetClassCrypto, "BTC", 1, 100, 100),
		model.Holding{ID: "2", AssetClass: model.AssetClassStock, Symbol: "NEW", Quantity: 10, PurchasePrice: 100},
	)

	got := ScoreHealth(HealthInput{Crypto: crypto, Stocks: stocks, Summary: &summary})

	assert.Zero(t, summary.TotalGainLoss)
	assert.Zero(t, summary.TotalGainLossPct)
	assert.Equal(t, 50, got.Performance)
	assert.NotContains(t, got.Suggestions, suggestPerformance)
}

func TestScoreHealthOverallAlwaysInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		var holdings []model.Holding
		n := rnd.Intn(20)
		for j := 0; j < n; j++ {
			class := model.AssetClassCrypto
			if rnd.Intn(3) == 0 {
				class = model.AssetClassStock
			}
			holdings = append(holdings, pricedHolding("h", class, "SYM", rnd.Float64()*10, rnd.Float64()*500, rnd.Float64()*1500))
		}
		crypto, stocks, summary := snapshots(holdings...)

		got := ScoreHealth(HealthInput{
			Crypto:            crypto,
			Stocks:            stocks,
			Summary:           &summary,
			HasRecentActivity: rnd.Intn(2) == 0,
			AlertCount:        rnd.Intn(10),
		})

		assert.GreaterOrEqual(t, got.OverallScore, 0)
		assert.LessOrEqual(t, got.OverallScore, 100)
		assert.NotEmpty(t, got.Suggestions)
	}
}
