package insightEngine

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
)

// Insight identifiers. Per-asset rules append "-<holding id>".
const (
	IDConcentrationHigh   = "concentration-high"
	IDConcentrationMedium = "concentration-medium"
	IDLossAlertPrefix     = "loss-alert"
	IDProfitTakingPrefix  = "profit-taking"
	IDOnboarding          = "onboarding"
	IDLowDiversification  = "low-diversification"
	IDMissingCrypto       = "missing-crypto"
	IDMissingStocks       = "missing-stocks"
	IDRebalancingNeeded   = "rebalancing-needed"
	IDAlertRecommendation = "alert-recommendation"
	IDTaxLossHarvesting   = "tax-loss-harvesting"
	IDPositivePerformance = "positive-performance"
)

// Bot commands insights point to.
const (
	TargetAddHolding = "/add_holding"
	TargetHoldings   = "/holdings"
	TargetAlert      = "/alert"
)

const (
	lossAlertThresholdPct    = -15
	profitTakingThresholdPct = 30
	taxLossThreshold         = -100
	rebalanceThresholdPct    = 70
	lowDiversificationCount  = 5
	alertRecommendationCount = 3
)

type InsightInput struct {
	Crypto    model.PortfolioSnapshot
	Stocks    model.PortfolioSnapshot
	Summary   *model.CombinedSummary
	Risk      model.RiskProfile
	Dismissed model.DismissalSet
	Now       time.Time
}

type insightRule func(in InsightInput, holdings []model.Holding, now time.Time) []model.Insight

// rules are evaluated in this order; equal priorities keep it after SortByPriority.
var rules = []insightRule{
	concentrationHighRule,
	concentrationMediumRule,
	lossAlertRule,
	profitTakingRule,
	onboardingRule,
	lowDiversificationRule,
	missingCryptoRule,
	missingStocksRule,
	rebalancingRule,
	alertRecommendationRule,
	taxLossHarvestingRule,
	positivePerformanceRule,
}

// GenerateInsights runs the rule catalog and drops dismissed insights.
// The result is in catalog order, use SortByPriority before display.
func GenerateInsights(in InsightInput) []model.Insight {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	holdings := AllHoldings(in.Crypto, in.Stocks)

	var generated []model.Insight
	for _, rule := range rules {
		generated = append(generated, rule(in, holdings, now)...)
	}

	return FilterDismissed(generated, in.Dismissed)
}

func FilterDismissed(insights []model.Insight, dismissed model.DismissalSet) []model.Insight {
	if len(dismissed.Dismissed) == 0 {
		return insights
	}

	ids := make(map[string]struct{}, len(dismissed.Dismissed))
	for _, id := range dismissed.Dismissed {
		ids[id] = struct{}{}
	}

	out := make([]model.Insight, 0, len(insights))
	for _, insight := range insights {
		if _, ok := ids[insight.ID]; ok {
			continue
		}
		out = append(out, insight)
	}
	return out
}

// SortByPriority returns a copy sorted high, medium, low. Ties keep their order.
func SortByPriority(insights []model.Insight) []model.Insight {
	out := make([]model.Insight, len(insights))
	copy(out, insights)
	slices.SortStableFunc(out, func(a, b model.Insight) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	})
	return out
}

func perAssetID(prefix string, h model.Holding) string {
	return prefix + "-" + h.ID
}

func concentrationHighRule(in InsightInput, _ []model.Holding, now time.Time) []model.Insight {
	if in.Risk.ConcentrationRisk <= 40 {
		return nil
	}
	return []model.Insight{{
		ID:           IDConcentrationHigh,
		Category:     model.CategoryRisk,
		Priority:     model.PriorityHigh,
		Title:        "High concentration risk",
		Message:      fmt.Sprintf("%s makes up %.1f%% of your portfolio. A single position this large exposes you to significant downside.", in.Risk.ConcentrationAsset, in.Risk.ConcentrationRisk),
		Actionable:   true,
		ActionLabel:  "Review holdings",
		ActionTarget: TargetHoldings,
		Explanation:  "Keeping any single position below 25% of the portfolio limits the damage one asset can do.",
		CreatedAt:    now,
		Metadata: map[string]any{
			"symbol":     in.Risk.ConcentrationAsset,
			"percentage": in.Risk.ConcentrationRisk,
		},
	}}
}

func concentrationMediumRule(in InsightInput, _ []model.Holding, now time.Time) []model.Insight {
	if in.Risk.ConcentrationRisk <= 25 || in.Risk.ConcentrationRisk > 40 {
		return nil
	}
	return []model.Insight{{
		ID:           IDConcentrationMedium,
		Category:     model.CategoryRisk,
		Priority:     model.PriorityMedium,
		Title:        "Moderate concentration",
		Message:      fmt.Sprintf("%s represents %.1f%% of your portfolio. Consider whether this weighting matches your conviction.", in.Risk.ConcentrationAsset, in.Risk.ConcentrationRisk),
		Actionable:   true,
		ActionLabel:  "Review holdings",
		ActionTarget: TargetHoldings,
		CreatedAt:    now,
		Metadata: map[string]any{
			"symbol":     in.Risk.ConcentrationAsset,
			"percentage": in.Risk.ConcentrationRisk,
		},
	}}
}

func lossAlertRule(_ InsightInput, holdings []model.Holding, now time.Time) []model.Insight {
	var out []model.Insight
	for _, h := range holdings {
		if h.GainLossPct >= lossAlertThresholdPct {
			continue
		}
		out = append(out, model.Insight{
			ID:           perAssetID(IDLossAlertPrefix, h),
			Category:     model.CategoryRisk,
			Priority:     model.PriorityHigh,
			Title:        fmt.Sprintf("%s is down %.1f%%", h.Symbol, -h.GainLossPct),
			Message:      fmt.Sprintf("%s has lost %.1f%% since purchase (%.2f). Decide whether the original thesis still holds.", h.Symbol, -h.GainLossPct, h.GainLoss),
			Actionable:   true,
			ActionLabel:  "Set a price alert",
			ActionTarget: TargetAlert,
			Explanation:  "Large drawdowns deserve a deliberate hold-or-sell decision rather than drift.",
			CreatedAt:    now,
			Metadata: map[string]any{
				"symbol":     h.Symbol,
				"percentage": h.GainLossPct,
				"value":      h.GainLoss,
			},
		})
	}
	return out
}

func profitTakingRule(_ InsightInput, holdings []model.Holding, now time.Time) []model.Insight {
	var out []model.Insight
	for _, h := range holdings {
		if h.GainLossPct <= profitTakingThresholdPct {
			continue
		}
		out = append(out, model.Insight{
			ID:           perAssetID(IDProfitTakingPrefix, h),
			Category:     model.CategoryOpportunity,
			Priority:     model.PriorityMedium,
			Title:        fmt.Sprintf("%s is up %.1f%%", h.Symbol, h.GainLossPct),
			Message:      fmt.Sprintf("%s has gained %.1f%% (%.2f). Consider taking partial profits or tightening your exit plan.", h.Symbol, h.GainLossPct, h.GainLoss),
			Actionable:   true,
			ActionLabel:  "Review holdings",
			ActionTarget: TargetHoldings,
			CreatedAt:    now,
			Metadata: map[string]any{
				"symbol":     h.Symbol,
				"percentage": h.GainLossPct,
				"value":      h.GainLoss,
			},
		})
	}
	return out
}

func onboardingRule(_ InsightInput, holdings []model.Holding, now time.Time) []model.Insight {
	if len(holdings) != 0 {
		return nil
	}
	return []model.Insight{{
		ID:           IDOnboarding,
		Category:     model.CategoryEducation,
		Priority:     model.PriorityHigh,
		Title:        "Start building your portfolio",
		Message:      "You have no holdings yet. Add your first crypto or stock position to get a health score and personalised insights.",
		Actionable:   true,
		ActionLabel:  "Add holding",
		ActionTarget: TargetAddHolding,
		CreatedAt:    now,
		Metadata:     map[string]any{},
	}}
}

func lowDiversificationRule(_ InsightInput, holdings []model.Holding, now time.Time) []model.Insight {
	if len(holdings) == 0 || len(holdings) >= lowDiversificationCount {
		return nil
	}
	return []model.Insight{{
		ID:           IDLowDiversification,
		Category:     model.CategoryDiversification,
		Priority:     model.PriorityMedium,
		Title:        "Low diversification",
		Message:      fmt.Sprintf("You hold only %d asset(s). Holding at least %d different assets reduces the impact of any single one.", len(holdings), lowDiversificationCount),
		Actionable:   true,
		ActionLabel:  "Add holding",
		ActionTarget: TargetAddHolding,
		CreatedAt:    now,
		Metadata: map[string]any{
			"count": len(holdings),
		},
	}}
}

func missingCryptoRule(in InsightInput, _ []model.Holding, now time.Time) []model.Insight {
	if len(in.Stocks.Holdings) == 0 || len(in.Crypto.Holdings) != 0 {
		return nil
	}
	return []model.Insight{{
		ID:           IDMissingCrypto,
		Category:     model.CategoryDiversification,
		Priority:     model.PriorityLow,
		Title:        "No crypto exposure",
		Message:      "Your portfolio holds only stocks. A small crypto allocation can add an uncorrelated source of return.",
		Actionable:   true,
		ActionLabel:  "Add crypto",
		ActionTarget: TargetAddHolding,
		Explanation:  "Crypto is highly volatile, so allocations are usually kept small.",
		CreatedAt:    now,
		Metadata: map[string]any{
			"assetClass": string(model.AssetClassCrypto),
		},
	}}
}

func missingStocksRule(in InsightInput, _ []model.Holding, now time.Time) []model.Insight {
	if len(in.Crypto.Holdings) == 0 || len(in.Stocks.Holdings) != 0 {
		return nil
	}
	return []model.Insight{{
		ID:           IDMissingStocks,
		Category:     model.CategoryDiversification,
		Priority:     model.PriorityMedium,
		Title:        "No stock exposure",
		Message:      "Your portfolio holds only crypto. Adding stocks can lower overall volatility.",
		Actionable:   true,
		ActionLabel:  "Add stocks",
		ActionTarget: TargetAddHolding,
		CreatedAt:    now,
		Metadata: map[string]any{
			"assetClass": string(model.AssetClassStock),
		},
	}}
}

func rebalancingRule(in InsightInput, _ []model.Holding, now time.Time) []model.Insight {
	var over, under model.AssetClass
	var overPct float64
	switch {
	case in.Risk.CryptoPct > rebalanceThresholdPct:
		over, under, overPct = model.AssetClassCrypto, model.AssetClassStock, in.Risk.CryptoPct
	case in.Risk.StockPct > rebalanceThresholdPct:
		over, under, overPct = model.AssetClassStock, model.AssetClassCrypto, in.Risk.StockPct
	default:
		return nil
	}
	return []model.Insight{{
		ID:           IDRebalancingNeeded,
		Category:     model.CategoryDiversification,
		Priority:     model.PriorityMedium,
		Title:        "Rebalancing needed",
		Message:      fmt.Sprintf("%s makes up %.1f%% of your portfolio. Consider shifting part of it into %s to restore balance.", className(over), overPct, className(under)),
		Actionable:   true,
		ActionLabel:  "Review holdings",
		ActionTarget: TargetHoldings,
		CreatedAt:    now,
		Metadata: map[string]any{
			"overweight":  string(over),
			"underweight": string(under),
			"percentage":  overPct,
		},
	}}
}

func alertRecommendationRule(_ InsightInput, holdings []model.Holding, now time.Time) []model.Insight {
	if len(holdings) == 0 {
		return nil
	}

	top := make([]model.Holding, len(holdings))
	copy(top, holdings)
	slices.SortStableFunc(top, func(a, b model.Holding) int {
		return cmp.Compare(b.CurrentValue, a.CurrentValue)
	})
	if len(top) > alertRecommendationCount {
		top = top[:alertRecommendationCount]
	}

	symbols := make([]string, 0, len(top))
	for _, h := range top {
		symbols = append(symbols, h.Symbol)
	}

	return []model.Insight{{
		ID:           IDAlertRecommendation,
		Category:     model.CategoryEducation,
		Priority:     model.PriorityLow,
		Title:        "Set up price alerts",
		Message:      fmt.Sprintf("Set price alerts for your largest positions: %s.", strings.Join(symbols, ", ")),
		Actionable:   true,
		ActionLabel:  "Create alert",
		ActionTarget: TargetAlert,
		CreatedAt:    now,
		Metadata: map[string]any{
			"symbols": symbols,
		},
	}}
}

func taxLossHarvestingRule(_ InsightInput, holdings []model.Holding, now time.Time) []model.Insight {
	count := 0
	var totalLoss float64
	for _, h := range holdings {
		if h.GainLoss < taxLossThreshold {
			count++
			totalLoss += h.GainLoss
		}
	}
	if count == 0 {
		return nil
	}
	return []model.Insight{{
		ID:           IDTaxLossHarvesting,
		Category:     model.CategoryOpportunity,
		Priority:     model.PriorityLow,
		Title:        "Tax-loss harvesting opportunity",
		Message:      fmt.Sprintf("You have %d position(s) with unrealised losses. Realising them could offset taxable gains.", count),
		Actionable:   true,
		ActionLabel:  "Review holdings",
		ActionTarget: TargetHoldings,
		Explanation:  "Selling a losing position lets you book the loss against gains; check the wash-sale rules of your jurisdiction.",
		CreatedAt:    now,
		Metadata: map[string]any{
			"count": count,
			"value": totalLoss,
		},
	}}
}

func positivePerformanceRule(in InsightInput, _ []model.Holding, now time.Time) []model.Insight {
	if in.Summary == nil || in.Summary.TotalGainLoss <= 0 {
		return nil
	}
	return []model.Insight{{
		ID:        IDPositivePerformance,
		Category:  model.CategoryPerformance,
		Priority:  model.PriorityLow,
		Title:     "Portfolio in profit",
		Message:   fmt.Sprintf("Your portfolio is up %.2f (%.1f%%) overall. Nice work.", in.Summary.TotalGainLoss, in.Summary.TotalGainLossPct),
		CreatedAt: now,
		Metadata: map[string]any{
			"value":      in.Summary.TotalGainLoss,
			"percentage": in.Summary.TotalGainLossPct,
		},
	}}
}

func className(c model.AssetClass) string {
	if c == model.AssetClassCrypto {
		return "Crypto"
	}
	return "Stocks"
}
