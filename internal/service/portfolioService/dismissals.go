package portfolioService

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
)

// DismissInsight hides the insight id from future reports of the chat.
func (s *PortfolioService) DismissInsight(ctx context.Context, chatID int64, insightID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DismissInsight"

	insightID = strings.TrimSpace(insightID)
	if insightID == "" {
		return service.ErrUnknownInsight
	}

	slog.Debug("DismissInsight start", slog.String("rqID", rqID), slog.String("op", op), slog.String("insightID", insightID))

	if err := s.dismissals.Append(ctx, chatID, insightID); err != nil {
		slog.Error("got error from dismissals.Append", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *PortfolioService) ResetDismissed(ctx context.Context, chatID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ResetDismissed"

	slog.Debug("ResetDismissed start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))

	if err := s.dismissals.Clear(ctx, chatID); err != nil {
		slog.Error("got error from dismissals.Clear", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
