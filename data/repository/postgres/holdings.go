package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_insight_bot/data/repository"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/shopspring/decimal"
)

const holdingColumns = `holding_id, user_id, asset_class, symbol, quantity, purchase_price`

func (p *Postgres) GetHoldings(ctx context.Context, userID int64) (holdings []dbModel.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetHoldings"
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1
		ORDER BY holding_id
		`

	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		if err != nil {
			slog.Error("GetHoldings failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldings completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(holdings)))
		}
	}()

	holdings = make([]dbModel.Holding, 0)
	err = p.txOrDb(ctx).SelectContext(ctx, &holdings, query, userID)
	if err != nil {
		return nil, err
	}

	return holdings, nil
}

func (p *Postgres) GetPageHoldings(ctx context.Context, userID int64, limit, offset int) (holdings []dbModel.Holding, hasNextPage bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPageHoldings"
	params := map[string]any{
		"userID": userID,
		"limit":  limit,
		"offset": offset,
	}
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1
		ORDER BY holding_id
		LIMIT $2
		OFFSET $3
		`

	slog.Debug("GetPageHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("GetPageHoldings failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPageHoldings completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	// one extra row tells whether a next page exists
	rows, err := p.txOrDb(ctx).QueryxContext(ctx, query, userID, limit+1, offset)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	holdings = make([]dbModel.Holding, 0, limit)
	for rows.Next() {
		if len(holdings) == limit {
			hasNextPage = true
			break
		}
		var holding dbModel.Holding
		if err = rows.StructScan(&holding); err != nil {
			return nil, false, err
		}
		holdings = append(holdings, holding)
	}

	return holdings, hasNextPage, rows.Err()
}

// GetHoldingForUpdate locks the row when called inside a transaction.
func (p *Postgres) GetHoldingForUpdate(ctx context.Context, userID int64, assetClass, symbol string) (holding dbModel.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetHoldingForUpdate"
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1
		AND asset_class = $2
		AND symbol = $3
		FOR UPDATE
		`

	slog.Debug("GetHoldingForUpdate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetHoldingForUpdate failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldingForUpdate completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = p.txOrDb(ctx).GetContext(ctx, &holding, query, userID, assetClass, symbol)
	if err != nil {
		return dbModel.Holding{}, mapErr(err)
	}

	return holding, nil
}

func (p *Postgres) InsertHolding(ctx context.Context, holding dbModel.Holding) (holdingID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertHolding"
	query := `
		INSERT INTO holdings(user_id, asset_class, symbol, quantity, purchase_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING holding_id
		`

	slog.Debug("InsertHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("holding", holding))
	defer func() {
		if err != nil {
			slog.Error("InsertHolding failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertHolding completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("holdingID", holdingID))
		}
	}()

	err = p.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		holding.UserID,
		holding.AssetClass,
		holding.Symbol,
		holding.Quantity,
		holding.PurchasePrice,
	).Scan(&holdingID)
	if err != nil {
		return 0, mapErr(err)
	}

	return holdingID, nil
}

func (p *Postgres) UpdateHolding(ctx context.Context, holdingID int64, quantity, purchasePrice decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateHolding"
	query := `
		UPDATE holdings
		SET quantity = $1,
			purchase_price = $2
		WHERE holding_id = $3
		`

	slog.Debug("UpdateHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("holdingID", holdingID))
	defer func() {
		if err != nil {
			slog.Error("UpdateHolding failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateHolding completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = p.txOrDb(ctx).ExecContext(ctx, query, quantity, purchasePrice, holdingID)
	return err
}

func (p *Postgres) DeleteHolding(ctx context.Context, userID, holdingID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteHolding"
	params := map[string]any{
		"userID":    userID,
		"holdingID": holdingID,
	}
	query := `
		DELETE FROM holdings
		WHERE user_id = $1
		AND holding_id = $2
		`

	slog.Debug("DeleteHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("DeleteHolding failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteHolding completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := p.txOrDb(ctx).ExecContext(ctx, query, userID, holdingID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetTrackedSymbols returns every distinct (asset_class, symbol) pair held by anyone.
func (p *Postgres) GetTrackedSymbols(ctx context.Context) (holdings []dbModel.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTrackedSymbols"
	query := `SELECT DISTINCT asset_class, symbol FROM holdings ORDER BY asset_class, symbol`

	slog.Debug("GetTrackedSymbols start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("GetTrackedSymbols failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTrackedSymbols completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(holdings)))
		}
	}()

	holdings = make([]dbModel.Holding, 0)
	err = p.txOrDb(ctx).SelectContext(ctx, &holdings, query)
	if err != nil {
		return nil, err
	}

	return holdings, nil
}

func (p *Postgres) InsertHoldingOperation(ctx context.Context, operation dbModel.HoldingOperation) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertHoldingOperation"
	query := `
		INSERT INTO holding_operations(user_id, asset_class, symbol, quantity, price, total_price, dt_create)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

	slog.Debug("InsertHoldingOperation start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("operation", operation))
	defer func() {
		if err != nil {
			slog.Error("InsertHoldingOperation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertHoldingOperation completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = p.txOrDb(ctx).ExecContext(
		ctx,
		query,
		operation.UserID,
		operation.AssetClass,
		operation.Symbol,
		operation.Quantity,
		operation.Price,
		operation.TotalPrice,
		operation.DtCreate,
	)
	return err
}

func (p *Postgres) GetOperationsSince(ctx context.Context, userID int64, since time.Time) (operations []dbModel.HoldingOperation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetOperationsSince"
	query := `
		SELECT user_id, asset_class, symbol, quantity, price, total_price, dt_create
		FROM holding_operations
		WHERE user_id = $1
		AND dt_create >= $2
		ORDER BY dt_create DESC
		`

	slog.Debug("GetOperationsSince start", slog.String("rqID", rqID), slog.String("op", op), slog.Time("since", since))
	defer func() {
		if err != nil {
			slog.Error("GetOperationsSince failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetOperationsSince completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(operations)))
		}
	}()

	operations = make([]dbModel.HoldingOperation, 0)
	err = p.txOrDb(ctx).SelectContext(ctx, &operations, query, userID, since)
	if err != nil {
		return nil, err
	}

	return operations, nil
}
