package portfolioService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_insight_bot/internal/insightEngine"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
)

// GetReport prices the chat portfolio and runs risk, health and insight analysis over it.
// With liveMode on the snapshots are overlaid with fresh API quotes.
func (s *PortfolioService) GetReport(ctx context.Context, chatID int64, liveMode bool) (report model.PortfolioReport, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetReport"

	slog.Debug("GetReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID), slog.Bool("liveMode", liveMode))
	defer func() {
		if err != nil {
			slog.Error("GetReport failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("insights", len(report.Insights)))
		}
	}()

	userID, err := s.getUserID(ctx, chatID)
	if err != nil {
		return model.PortfolioReport{}, err
	}

	dbHoldings, err := s.repo.GetHoldings(ctx, userID)
	if err != nil {
		return model.PortfolioReport{}, err
	}

	crypto, stocks := splitByClass(s.priceHoldings(ctx, dbConverter.ConvertHoldings(dbHoldings)))
	cryptoSnapshot := insightEngine.BuildSnapshot(crypto)
	stockSnapshot := insightEngine.BuildSnapshot(stocks)

	if liveMode {
		cryptoSnapshot = insightEngine.ApplyLivePrices(cryptoSnapshot, s.livePrices(ctx, model.AssetClassCrypto, cryptoSnapshot), true)
		stockSnapshot = insightEngine.ApplyLivePrices(stockSnapshot, s.livePrices(ctx, model.AssetClassStock, stockSnapshot), true)
	}

	summary := insightEngine.CombineSnapshots(cryptoSnapshot, stockSnapshot)
	risk := insightEngine.AnalyzeRisk(insightEngine.AllHoldings(cryptoSnapshot, stockSnapshot), &summary)

	now := s.now()
	operations, err := s.repo.GetOperationsSince(ctx, userID, now.Add(-s.cfg.Insights.ActivityWindow))
	if err != nil {
		return model.PortfolioReport{}, err
	}

	alertCount, err := s.repo.CountPriceAlerts(ctx, userID)
	if err != nil {
		return model.PortfolioReport{}, err
	}

	health := insightEngine.ScoreHealth(insightEngine.HealthInput{
		Crypto:            cryptoSnapshot,
		Stocks:            stockSnapshot,
		Summary:           &summary,
		HasRecentActivity: len(operations) > 0,
		AlertCount:        alertCount,
	})

	insights := insightEngine.SortByPriority(insightEngine.GenerateInsights(insightEngine.InsightInput{
		Crypto:    cryptoSnapshot,
		Stocks:    stockSnapshot,
		Summary:   &summary,
		Risk:      risk,
		Dismissed: s.loadDismissed(ctx, chatID),
		Now:       now,
	}))

	recent := make([]model.HoldingOperation, 0, len(operations))
	for _, operation := range operations {
		recent = append(recent, dbConverter.ConvertHoldingOperation(operation))
	}

	return model.PortfolioReport{
		Crypto:      cryptoSnapshot,
		Stocks:      stockSnapshot,
		Summary:     summary,
		Risk:        risk,
		Health:      health,
		Insights:    insights,
		Operations:  recent,
		LiveMode:    liveMode,
		GeneratedAt: now,
	}, nil
}

// loadDismissed never fails: a broken dismissal store shows every insight.
func (s *PortfolioService) loadDismissed(ctx context.Context, chatID int64) model.DismissalSet {
	set, err := s.dismissals.Load(ctx, chatID)
	if err != nil {
		slog.Warn("can't load dismissed insights", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		return model.DismissalSet{}
	}
	return set
}
