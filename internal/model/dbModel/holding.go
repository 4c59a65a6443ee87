package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	HoldingID     int64           `db:"holding_id"`
	UserID        int64           `db:"user_id"`
	AssetClass    string          `db:"asset_class"`
	Symbol        string          `db:"symbol"`
	Quantity      decimal.Decimal `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
}

type HoldingOperation struct {
	UserID     int64           `db:"user_id"`
	AssetClass string          `db:"asset_class"`
	Symbol     string          `db:"symbol"`
	Quantity   decimal.Decimal `db:"quantity"`
	Price      decimal.Decimal `db:"price"`
	TotalPrice decimal.Decimal `db:"total_price"`
	DtCreate   time.Time       `db:"dt_create"`
}

type PriceAlert struct {
	AlertID    int64           `db:"alert_id"`
	UserID     int64           `db:"user_id"`
	AssetClass string          `db:"asset_class"`
	Symbol     string          `db:"symbol"`
	Direction  string          `db:"direction"`
	Threshold  decimal.Decimal `db:"threshold"`
	DtCreate   time.Time       `db:"dt_create"`
}
