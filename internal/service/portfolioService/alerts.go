package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/shopspring/decimal"
)

type PriceAlertInput struct {
	AssetClass model.AssetClass
	Symbol     string
	Direction  model.AlertDirection
	Threshold  decimal.Decimal
}

func (in PriceAlertInput) normalize() (PriceAlertInput, error) {
	in.AssetClass = model.AssetClass(strings.ToLower(strings.TrimSpace(string(in.AssetClass))))
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	in.Direction = model.AlertDirection(strings.ToLower(strings.TrimSpace(string(in.Direction))))

	switch {
	case !in.AssetClass.Valid():
		return in, fmt.Errorf("%w: unknown asset class %q", service.ErrInvalidAlert, in.AssetClass)
	case in.Symbol == "":
		return in, fmt.Errorf("%w: empty symbol", service.ErrInvalidAlert)
	case in.Direction != model.AlertAbove && in.Direction != model.AlertBelow:
		return in, fmt.Errorf("%w: direction must be above or below", service.ErrInvalidAlert)
	case !in.Threshold.IsPositive():
		return in, fmt.Errorf("%w: threshold must be positive", service.ErrInvalidAlert)
	}

	return in, nil
}

func (s *PortfolioService) AddPriceAlert(ctx context.Context, chatID int64, in PriceAlertInput) (alert model.PriceAlert, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddPriceAlert"

	slog.Debug("AddPriceAlert start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("input", in))

	in, err = in.normalize()
	if err != nil {
		return model.PriceAlert{}, err
	}

	userID, err := s.getUserID(ctx, chatID)
	if err != nil {
		return model.PriceAlert{}, err
	}

	dbAlert := dbModel.PriceAlert{
		UserID:     userID,
		AssetClass: string(in.AssetClass),
		Symbol:     in.Symbol,
		Direction:  string(in.Direction),
		Threshold:  in.Threshold,
		DtCreate:   s.now(),
	}

	dbAlert.AlertID, err = s.repo.InsertPriceAlert(ctx, dbAlert)
	if err != nil {
		slog.Error("got error from repo.InsertPriceAlert", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PriceAlert{}, err
	}

	return dbConverter.ConvertPriceAlert(dbAlert), nil
}
