package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/portfolio_insight_bot/utils"
)

func (p *Postgres) InsertUser(ctx context.Context, chatID int64) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertUser"
	query := `INSERT INTO users(chat_id) VALUES($1) RETURNING user_id`

	slog.Debug("InsertUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertUser completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = p.txOrDb(ctx).QueryRowxContext(ctx, query, chatID).Scan(&userID)
	if err != nil {
		return 0, mapErr(err)
	}

	return userID, nil
}

func (p *Postgres) GetUserID(ctx context.Context, chatID int64) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetUserID"
	query := `SELECT user_id FROM users WHERE chat_id = $1`

	slog.Debug("GetUserID start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUserID failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUserID completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = p.txOrDb(ctx).GetContext(ctx, &userID, query, chatID)
	if err != nil {
		return 0, mapErr(err)
	}

	return userID, nil
}
