package dbConverter

import (
	"strconv"

	"github.com/KotFed0t/portfolio_insight_bot/internal/model"
	"github.com/KotFed0t/portfolio_insight_bot/internal/model/dbModel"
)

// ConvertHolding returns an unpriced engine holding.
func ConvertHolding(dbHolding dbModel.Holding) model.Holding {
	return model.Holding{
		ID:            strconv.FormatInt(dbHolding.HoldingID, 10),
		AssetClass:    model.AssetClass(dbHolding.AssetClass),
		Symbol:        dbHolding.Symbol,
		Quantity:      dbHolding.Quantity.InexactFloat64(),
		PurchasePrice: dbHolding.PurchasePrice.InexactFloat64(),
	}
}

func ConvertHoldings(dbHoldings []dbModel.Holding) []model.Holding {
	holdings := make([]model.Holding, 0, len(dbHoldings))
	for _, h := range dbHoldings {
		holdings = append(holdings, ConvertHolding(h))
	}
	return holdings
}

func ConvertHoldingOperation(dbOperation dbModel.HoldingOperation) model.HoldingOperation {
	return model.HoldingOperation{
		AssetClass: model.AssetClass(dbOperation.AssetClass),
		Symbol:     dbOperation.Symbol,
		Quantity:   dbOperation.Quantity,
		Price:      dbOperation.Price,
		TotalPrice: dbOperation.TotalPrice,
		DtCreate:   dbOperation.DtCreate,
	}
}

func ConvertPriceAlert(dbAlert dbModel.PriceAlert) model.PriceAlert {
	return model.PriceAlert{
		AlertID:    dbAlert.AlertID,
		AssetClass: model.AssetClass(dbAlert.AssetClass),
		Symbol:     dbAlert.Symbol,
		Direction:  model.AlertDirection(dbAlert.Direction),
		Threshold:  dbAlert.Threshold,
		DtCreate:   dbAlert.DtCreate,
	}
}
