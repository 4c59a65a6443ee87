package telebotConverter

import (
	"testing"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/tg/tgCallback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightResponse(t *testing.T) {
	text, markup := InsightResponse(model.Insight{
		ID:           "loss-alert-7",
		Priority:     model.PriorityHigh,
		Title:        "AT&T is down 20.0%",
		Message:      "Decide <now>.",
		Actionable:   true,
		ActionLabel:  "Set a price alert",
		ActionTarget: "/alert",
	})

	assert.Contains(t, text, "AT&amp;T is down 20.0%")
	assert.Contains(t, text, "Decide &lt;now&gt;.")
	assert.Contains(t, text, "/alert")

	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, tgCallback.DismissInsightPrefix+"loss-alert-7", markup.InlineKeyboard[0][0].Data)
	assert.Empty(t, markup.InlineKeyboard[0][0].Unique)
}

func TestInsightResponseNotActionable(t *testing.T) {
	text, _ := InsightResponse(model.Insight{
		ID:       "positive-performance",
		Priority: model.PriorityLow,
		Title:    "Portfolio is up",
		Message:  "Nice.",
	})
	assert.NotContains(t, text, "👉")
}

func TestHoldingsResponse(t *testing.T) {
	price := 300.0
	text, markup := HoldingsResponse(model.HoldingsPage{
		Holdings: []model.Holding{
			{ID: "3", AssetClass: model.AssetClassStock, Symbol: "SBER", Quantity: 10, PurchasePrice: 250, CurrentPrice: &price, CurrentValue: 3000, GainLossPct: 20},
			{ID: "4", AssetClass: model.AssetClassStock, Symbol: "LKOH", Quantity: 1, PurchasePrice: 7000},
		},
		CurPage:     2,
		HasNextPage: true,
	})

	assert.Contains(t, text, "page 2")
	assert.Contains(t, text, "3000.00 (+20.0%)")
	assert.Contains(t, text, "Price: n/a")

	require.Len(t, markup.InlineKeyboard, 3)
	assert.Equal(t, tgCallback.RemoveHoldingPrefix+"3", markup.InlineKeyboard[1][0].Data)
	assert.Equal(t, tgCallback.PrevPagePrefix+"1", markup.InlineKeyboard[2][0].Data)
	assert.Equal(t, tgCallback.NextPagePrefix+"3", markup.InlineKeyboard[2][1].Data)
}

func TestHoldingsResponseEmpty(t *testing.T) {
	text, markup := HoldingsResponse(model.HoldingsPage{CurPage: 1})
	assert.Contains(t, text, "no holdings")
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, tgCallback.AddHolding, markup.InlineKeyboard[0][0].Data)
}

func TestHealthResponse(t *testing.T) {
	text, markup := HealthResponse(model.PortfolioReport{
		Health: model.HealthProfile{
			OverallScore: 48,
			RiskLevel:    model.RiskHigh,
			Suggestions:  []string{"Spread your money"},
		},
		Insights: make([]model.Insight, 7),
		LiveMode: true,
	})

	assert.Contains(t, text, "48/100")
	assert.Contains(t, text, "🔴 Risk level: high")
	assert.Contains(t, text, "Live prices")
	assert.Contains(t, text, "• Spread your money")
	assert.Equal(t, "💡 Insights (7)", markup.InlineKeyboard[0][0].Text)
}

func TestHoldingsResponseSinglePage(t *testing.T) {
	_, markup := HoldingsResponse(model.HoldingsPage{
		Holdings: []model.Holding{{ID: "1", AssetClass: model.AssetClassCrypto, Symbol: "BTC", Quantity: 1}},
		CurPage:  1,
	})
	assert.Len(t, markup.InlineKeyboard, 2)
}
