package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_insight_bot/data/repository"
	"github.com/KotFed0t/portfolio_insight_bot/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_insight_bot/internal/externalApi"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_insight_bot/internal/service"
	"github.com/KotFed0t/portfolio_insight_bot/utils"
	"github.com/shopspring/decimal"
)

type HoldingInput struct {
	AssetClass model.AssetClass
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
}

func (in HoldingInput) normalize() (HoldingInput, error) {
	in.AssetClass = model.AssetClass(strings.ToLower(strings.TrimSpace(string(in.AssetClass))))
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))

	switch {
	case !in.AssetClass.Valid():
		return in, fmt.Errorf("%w: unknown asset class %q", service.ErrInvalidHolding, in.AssetClass)
	case in.Symbol == "":
		return in, fmt.Errorf("%w: empty symbol", service.ErrInvalidHolding)
	case !in.Quantity.IsPositive():
		return in, fmt.Errorf("%w: quantity must be positive", service.ErrInvalidHolding)
	case in.Price.IsNegative():
		return in, fmt.Errorf("%w: price must not be negative", service.ErrInvalidHolding)
	}

	return in, nil
}

// weightedAverage is the purchase price of a position after buying qty more at price.
func weightedAverage(oldQty, oldPrice, qty, price decimal.Decimal) decimal.Decimal {
	total := oldQty.Add(qty)
	if total.IsZero() {
		return decimal.Zero
	}
	return oldQty.Mul(oldPrice).Add(qty.Mul(price)).Div(total)
}

// AddHolding buys into a position, creating it when absent.
func (s *PortfolioService) AddHolding(ctx context.Context, chatID int64, in HoldingInput) (holding model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddHolding"

	slog.Debug("AddHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("input", in))
	defer func() {
		slog.Debug("AddHolding finished", slog.String("rqID", rqID), slog.String("op", op), slog.Any("holding", holding))
	}()

	in, err = in.normalize()
	if err != nil {
		return model.Holding{}, err
	}

	if err = s.checkSymbol(ctx, in.AssetClass, in.Symbol); err != nil {
		return model.Holding{}, err
	}

	userID, err := s.getUserID(ctx, chatID)
	if err != nil {
		return model.Holding{}, err
	}

	var saved dbModel.Holding
	err = s.repo.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetHoldingForUpdate(txCtx, userID, string(in.AssetClass), in.Symbol)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			saved = dbModel.Holding{
				UserID:        userID,
				AssetClass:    string(in.AssetClass),
				Symbol:        in.Symbol,
				Quantity:      in.Quantity,
				PurchasePrice: in.Price,
			}
			saved.HoldingID, err = s.repo.InsertHolding(txCtx, saved)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			saved = existing
			saved.PurchasePrice = weightedAverage(existing.Quantity, existing.PurchasePrice, in.Quantity, in.Price)
			saved.Quantity = existing.Quantity.Add(in.Quantity)
			if err = s.repo.UpdateHolding(txCtx, saved.HoldingID, saved.Quantity, saved.PurchasePrice); err != nil {
				return err
			}
		}

		return s.repo.InsertHoldingOperation(txCtx, dbModel.HoldingOperation{
			UserID:     userID,
			AssetClass: string(in.AssetClass),
			Symbol:     in.Symbol,
			Quantity:   in.Quantity,
			Price:      in.Price,
			TotalPrice: in.Quantity.Mul(in.Price),
			DtCreate:   s.now(),
		})
	})
	if err != nil {
		slog.Error("AddHolding transaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	return dbConverter.ConvertHolding(saved), nil
}

// checkSymbol rejects symbols the quote source does not know.
// Quote source outages do not block adding a holding.
func (s *PortfolioService) checkSymbol(ctx context.Context, assetClass model.AssetClass, symbol string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	_, err := s.quoteApi(assetClass).GetQuote(ctx, symbol)
	if err == nil {
		return nil
	}
	if errors.Is(err, externalApi.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", service.ErrNotFound, assetClass, symbol)
	}

	slog.Warn("can't check symbol, quote source unavailable", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("err", err.Error()))
	return nil
}

func (s *PortfolioService) RemoveHolding(ctx context.Context, chatID int64, holdingID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RemoveHolding"

	slog.Debug("RemoveHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.String("holdingID", holdingID))

	id, err := strconv.ParseInt(strings.TrimSpace(holdingID), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad holding id %q", service.ErrInvalidHolding, holdingID)
	}

	userID, err := s.getUserID(ctx, chatID)
	if err != nil {
		return err
	}

	err = s.repo.DeleteHolding(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("RemoveHolding finished", slog.String("rqID", rqID), slog.String("op", op))
	return nil
}

// ListHoldings returns one priced page of holdings. Pages start at 1.
func (s *PortfolioService) ListHoldings(ctx context.Context, chatID int64, page int) (model.HoldingsPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListHoldings"

	slog.Debug("ListHoldings start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("page", page))

	if page < 1 {
		page = 1
	}

	userID, err := s.getUserID(ctx, chatID)
	if err != nil {
		return model.HoldingsPage{}, err
	}

	limit := s.cfg.HoldingsPerPage
	dbHoldings, hasNext, err := s.repo.GetPageHoldings(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return model.HoldingsPage{}, err
	}

	holdings := s.priceHoldings(ctx, dbConverter.ConvertHoldings(dbHoldings))

	slog.Debug("ListHoldings finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(holdings)))

	return model.HoldingsPage{
		Holdings:    holdings,
		CurPage:     page,
		HasNextPage: hasNext,
	}, nil
}
