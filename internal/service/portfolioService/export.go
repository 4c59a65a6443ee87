package portfolioService

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
)

// ExportReport uploads the current report as a spreadsheet and returns the share link.
func (s *PortfolioService) ExportReport(ctx context.Context, chatID int64, liveMode bool) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("chatID", chatID))
	defer func() {
		slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("downloadLink", downloadLink))
	}()

	report, err := s.GetReport(ctx, chatID, liveMode)
	if err != nil {
		return "", err
	}

	if len(report.Crypto.Holdings)+len(report.Stocks.Holdings) == 0 {
		return "", service.ErrEmptyPortfolio
	}

	fileBytes, fileExtension, err := s.generator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from generator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("portfolio_%d_%s%s", chatID, report.GeneratedAt.Format("20060102_150405"), fileExtension)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}

func (s *PortfolioService) DeleteOldReports(ctx context.Context) error {
	return s.cloudStorage.DeleteOldFiles(utils.WithNewRqID(ctx))
}
