package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
)

func (p *Postgres) InsertPriceAlert(ctx context.Context, alert dbModel.PriceAlert) (alertID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertPriceAlert"
	query := `
		INSERT INTO price_alerts(user_id, asset_class, symbol, direction, threshold)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING alert_id
		`

	slog.Debug("InsertPriceAlert start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("alert", alert))
	defer func() {
		if err != nil {
			slog.Error("InsertPriceAlert failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPriceAlert completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("alertID", alertID))
		}
	}()

	err = p.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		alert.UserID,
		alert.AssetClass,
		alert.Symbol,
		alert.Direction,
		alert.Threshold,
	).Scan(&alertID)
	if err != nil {
		return 0, mapErr(err)
	}

	return alertID, nil
}

func (p *Postgres) CountPriceAlerts(ctx context.Context, userID int64) (count int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CountPriceAlerts"
	query := `SELECT count(*) FROM price_alerts WHERE user_id = $1`

	slog.Debug("CountPriceAlerts start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		if err != nil {
			slog.Error("CountPriceAlerts failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CountPriceAlerts completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", count))
		}
	}()

	err = p.txOrDb(ctx).GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
