package portfolioService

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleBTC seeds one crypto holding bought at 20000 and cached at 30000.
func singleBTC(env *testEnv) {
	userID := env.registeredUser()
	env.repo.addHolding(userID, model.AssetClassCrypto, "BTC", "1", "20000")
	env.cache.put(model.AssetClassCrypto, "BTC", 30000)
}

func TestGetReportSingleProfitableHolding(t *testing.T) {
	env := newTestEnv()
	singleBTC(env)

	report, err := env.svc.GetReport(context.Background(), testChatID, false)
	require.NoError(t, err)

	assert.InDelta(t, 30000, report.Summary.TotalValue, 1e-9)
	assert.InDelta(t, 50, report.Summary.TotalGainLossPct, 1e-9)
	assert.Equal(t, model.RiskHigh, report.Risk.RiskLevel)
	assert.Equal(t, "BTC", report.Risk.ConcentrationAsset)

	assert.Equal(t, 48, report.Health.OverallScore)
	assert.Equal(t, 50, report.Health.Activity)

	assert.Equal(t, []string{
		"concentration-high",
		"profit-taking-2",
		"low-diversification",
		"missing-stocks",
		"rebalancing-needed",
		"alert-recommendation",
		"positive-performance",
	}, insightIDs(report.Insights))
	for _, insight := range report.Insights {
		assert.Equal(t, testNow, insight.CreatedAt)
		assert.False(t, insight.Dismissed)
	}

	assert.False(t, report.LiveMode)
	assert.Equal(t, testNow, report.GeneratedAt)
	assert.Empty(t, env.cryptoApi.calls)
}

func TestGetReportSortsByPriority(t *testing.T) {
	env := newTestEnv()
	userID := env.registeredUser()
	env.repo.addHolding(userID, model.AssetClassCrypto, "BTC", "1", "40000")
	env.cache.put(model.AssetClassCrypto, "BTC", 30000)

	report, err := env.svc.GetReport(context.Background(), testChatID, false)
	require.NoError(t, err)
	require.NotEmpty(t, report.Insights)

	for i := 1; i < len(report.Insights); i++ {
		assert.LessOrEqual(t, report.Insights[i-1].Priority.Rank(), report.Insights[i].Priority.Rank())
	}
	assert.Contains(t, insightIDs(report.Insights), "loss-alert-2")
}

func TestGetReportSkipsDismissed(t *testing.T) {
	env := newTestEnv()
	singleBTC(env)
	ctx := context.Background()

	require.NoError(t, env.svc.DismissInsight(ctx, testChatID, "rebalancing-needed"))
	require.NoError(t, env.svc.DismissInsight(ctx, testChatID, "profit-taking-2"))

	report, err := env.svc.GetReport(ctx, testChatID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"concentration-high",
		"low-diversification",
		"missing-stocks",
		"alert-recommendation",
		"positive-performance",
	}, insightIDs(report.Insights))

	require.NoError(t, env.svc.ResetDismissed(ctx, testChatID))

	report, err = env.svc.GetReport(ctx, testChatID, false)
	require.NoError(t, err)
	assert.Len(t, report.Insights, 7)
}

func TestGetReportDismissalStoreDown(t *testing.T) {
	env := newTestEnv()
	singleBTC(env)
	env.dismissals.err = errors.New("connection refused")

	report, err := env.svc.GetReport(context.Background(), testChatID, false)
	require.NoError(t, err)
	assert.Len(t, report.Insights, 7)
}

func TestDismissInsightRejectsEmptyID(t *testing.T) {
	env := newTestEnv()
	assert.ErrorIs(t, env.svc.DismissInsight(context.Background(), testChatID, " "), service.ErrUnknownInsight)
}

func TestGetReportLiveMode(t *testing.T) {
	env := newTestEnv()
	singleBTC(env)
	env.cryptoApi.prices["BTC"] = 10000

	report, err := env.svc.GetReport(context.Background(), testChatID, true)
	require.NoError(t, err)

	assert.True(t, report.LiveMode)
	assert.InDelta(t, 10000, report.Crypto.TotalValue, 1e-9)
	assert.InDelta(t, -10000, report.Summary.TotalGainLoss, 1e-9)
	assert.Contains(t, insightIDs(report.Insights), "loss-alert-2")
	assert.Len(t, env.cryptoApi.calls, 1)
	assert.Empty(t, env.stockApi.calls)
}

func TestGetReportLiveModeApiDown(t *testing.T) {
	env := newTestEnv()
	singleBTC(env)
	env.cryptoApi.err = errors.New("timeout")

	report, err := env.svc.GetReport(context.Background(), testChatID, true)
	require.NoError(t, err)
	assert.InDelta(t, 30000, report.Crypto.TotalValue, 1e-9)
}

func TestGetReportCacheMissFallsBackToApi(t *testing.T) {
	env := newTestEnv()
	userID := env.registeredUser()
	env.repo.addHolding(userID, model.AssetClassStock, "SBER", "10", "250")

	report, err := env.svc.GetReport(context.Background(), testChatID, false)
	require.NoError(t, err)

	assert.InDelta(t, 3000, report.Stocks.TotalValue, 1e-9)
	assert.Equal(t, [][]string{{"SBER"}}, env.stockApi.calls)
	assert.Contains(t, env.cache.quotes, "stock:SBER")
}

func TestGetReportUnpricedHolding(t *testing.T) {
	env := newTestEnv()
	userID := env.registeredUser()
	env.repo.addHolding(userID, model.AssetClassStock, "SBER", "10", "250")
	env.stockApi.err = errors.New("timeout")

	report, err := env.svc.GetReport(context.Background(), testChatID, false)
	require.NoError(t, err)

	require.Len(t, report.Stocks.Holdings, 1)
	assert.Nil(t, report.Stocks.Holdings[0].CurrentPrice)
	assert.Zero(t, report.Stocks.TotalValue)
	assert.InDelta(t, 2500, report.Stocks.TotalInvested, 1e-9)
	assert.Zero(t, report.Summary.TotalGainLoss)
	assert.Equal(t, 50, report.Health.Performance)
}

func TestGetReportEmptyPortfolio(t *testing.T) {
	env := newTestEnv()
	env.registeredUser()

	report, err := env.svc.GetReport(context.Background(), testChatID, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"onboarding"}, insightIDs(report.Insights))
	assert.Equal(t, 35, report.Health.OverallScore)
}

func TestGetReportUnknownChat(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.GetReport(context.Background(), testChatID, false)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetReportCountsActivityAndAlerts(t *testing.T) {
	env := newTestEnv()
	env.registeredUser()
	ctx := context.Background()

	_, err := env.svc.AddHolding(ctx, testChatID, holdingInput("crypto", "BTC", "1", "20000"))
	require.NoError(t, err)
	_, err = env.svc.AddPriceAlert(ctx, testChatID, PriceAlertInput{
		AssetClass: model.AssetClassCrypto,
		Symbol:     "BTC",
		Direction:  model.AlertAbove,
		Threshold:  decimal.NewFromInt(40000),
	})
	require.NoError(t, err)

	report, err := env.svc.GetReport(ctx, testChatID, false)
	require.NoError(t, err)
	assert.Equal(t, 80, report.Health.Activity)
}

func TestGetReportIncludesRecentOperations(t *testing.T) {
	env := newTestEnv()
	env.registeredUser()
	ctx := context.Background()

	_, err := env.svc.AddHolding(ctx, testChatID, holdingInput("stock", "SBER", "10", "250"))
	require.NoError(t, err)

	report, err := env.svc.GetReport(ctx, testChatID, false)
	require.NoError(t, err)
	require.Len(t, report.Operations, 1)
	assert.Equal(t, "SBER", report.Operations[0].Symbol)
	assert.Equal(t, model.AssetClassStock, report.Operations[0].AssetClass)
}
